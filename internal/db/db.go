package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// DriverSQLite 使用本地 SQLite 文件
	DriverSQLite = "sqlite"
	// DriverPostgres 使用 PostgreSQL，DSN 由 DATABASE_DSN 提供
	DriverPostgres = "postgres"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Options 描述数据库连接参数。
type Options struct {
	Driver   string
	Path     string
	DSN      string
	LogLevel logger.LogLevel
}

// Init 初始化数据库连接并执行自动迁移。
// Path 为空时将回退到默认值 langleague.db。
func Init(opts Options) error {
	gdb, err := Open(opts)
	if err != nil {
		return err
	}

	if err := Migrate(gdb); err != nil {
		return err
	}

	DB = gdb
	return nil
}

// Open 根据驱动类型建立 gorm 连接，不做迁移。
func Open(opts Options) (*gorm.DB, error) {
	cfg := &gorm.Config{}
	if opts.LogLevel != 0 {
		cfg.Logger = logger.Default.LogMode(opts.LogLevel)
	}

	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case DriverPostgres:
		dsn := strings.TrimSpace(opts.DSN)
		if dsn == "" {
			return nil, errors.New("postgres driver requires DATABASE_DSN")
		}
		return gorm.Open(postgres.Open(dsn), cfg)
	case "", DriverSQLite:
		path := strings.TrimSpace(opts.Path)
		if path == "" {
			path = "langleague.db"
		}
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
		return gorm.Open(sqlite.Open(path), cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

// Models 返回需要自动迁移的全部模型，测试中也复用这份清单。
func Models() []interface{} {
	return []interface{}{
		&User{},
		&UserProfile{},
		&Book{},
		&Unit{},
		&Vocabulary{},
		&Grammar{},
		&Exercise{},
		&ExerciseResult{},
		&Enrollment{},
		&Progress{},
		&Note{},
		&BookReview{},
		&StudySession{},
		&Achievement{},
		&Notification{},
	}
}

// Migrate 为核心模型创建表
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// 早期版本的 progress 没有百分比字段，回填为 0
	if err := gdb.Model(&Progress{}).
		Where("completion_percentage IS NULL").
		Update("completion_percentage", 0).Error; err != nil {
		return err
	}

	return nil
}

func ensureParentDir(path string) error {
	if strings.HasPrefix(path, "file:") {
		return nil
	}

	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
