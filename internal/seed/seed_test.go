package seed

import (
	"bytes"
	"testing"
	"time"

	"github.com/langleague/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestRunIsRepeatable(t *testing.T) {
	gdb, err := db.Open(db.Options{
		Driver:   db.DriverSQLite,
		Path:     "file:seed-run?mode=memory&cache=shared",
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	var out bytes.Buffer
	require.NoError(t, Run(gdb, &out, time.Now()))
	require.NoError(t, Run(gdb, &out, time.Now()))
	assert.Contains(t, out.String(), "教材已存在")

	var users, books, units, vocabularies, enrollments int64
	require.NoError(t, gdb.Model(&db.User{}).Count(&users).Error)
	require.NoError(t, gdb.Model(&db.Book{}).Count(&books).Error)
	require.NoError(t, gdb.Model(&db.Unit{}).Count(&units).Error)
	require.NoError(t, gdb.Model(&db.Vocabulary{}).Count(&vocabularies).Error)
	require.NoError(t, gdb.Model(&db.Enrollment{}).Count(&enrollments).Error)

	assert.Equal(t, int64(len(DefaultAccounts())), users)
	assert.Equal(t, int64(1), books)
	assert.Equal(t, int64(2), units)
	assert.Equal(t, int64(6), vocabularies)
	assert.Equal(t, int64(1), enrollments)
}
