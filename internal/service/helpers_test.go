package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/langleague/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.Open(db.Options{
		Driver:   db.DriverSQLite,
		Path:     fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		LogLevel: logger.Silent,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func createActor(t *testing.T, gdb *gorm.DB, username, role string) Actor {
	t.Helper()

	if err := db.EnsureUser(gdb, username, "secret123", role); err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}

	var user db.User
	if err := gdb.Preload("Profile").Where("username = ?", username).First(&user).Error; err != nil {
		t.Fatalf("failed to load user %s: %v", username, err)
	}
	return Actor{UserID: user.ID, ProfileID: user.Profile.ID, Username: user.Username, Role: user.Role}
}

func createBook(t *testing.T, gdb *gorm.DB, owner Actor, title string, public bool) db.Book {
	t.Helper()

	book := db.Book{Title: title, IsPublic: public, TeacherProfileID: &owner.ProfileID}
	if err := gdb.Create(&book).Error; err != nil {
		t.Fatalf("failed to create book: %v", err)
	}
	return book
}

func createUnit(t *testing.T, gdb *gorm.DB, bookID uint, title string) db.Unit {
	t.Helper()

	unit := db.Unit{BookID: bookID, Title: title}
	if err := gdb.Create(&unit).Error; err != nil {
		t.Fatalf("failed to create unit: %v", err)
	}
	return unit
}
