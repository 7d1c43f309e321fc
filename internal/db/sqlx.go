package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// SQLX 基于 gorm 已有的连接池构造 sqlx 句柄，供聚合统计的手写 SQL 使用。
// 驱动名只影响占位符重绑定：sqlite 用 ?，postgres 用 $n。
func SQLX(gdb *gorm.DB) (*sqlx.DB, error) {
	if gdb == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql db: %w", err)
	}

	driverName := "sqlite3"
	if gdb.Dialector.Name() == DriverPostgres {
		driverName = "postgres"
	}

	return sqlx.NewDb(sqlDB, driverName), nil
}
