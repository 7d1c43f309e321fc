package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/langleague/internal/config"
	"github.com/langleague/internal/db"
	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"
)

var rootCmd = &cobra.Command{
	Use:          "langleague",
	Short:        "Language learning backend",
	Long:         "LangLeague 语言学习后端：教材、单元、学习进度与连续学习天数。",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "SQLite 数据库路径（覆盖 DATABASE_PATH）")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(createUserCmd)
	rootCmd.AddCommand(importVocabularyCmd)
	rootCmd.AddCommand(seedCmd)
}

// loadConfig 读取配置并应用 --db 覆盖
func loadConfig(cmd *cobra.Command) config.AppConfig {
	cfg := config.Load()
	if path, _ := cmd.Flags().GetString("db"); strings.TrimSpace(path) != "" {
		cfg.DatabasePath = path
	}
	return cfg
}

// openDatabase 初始化数据库连接并迁移
func openDatabase(cfg config.AppConfig) error {
	level := logger.Warn
	if cfg.GinMode == "debug" {
		level = logger.Info
	}
	if err := db.Init(db.Options{
		Driver:   cfg.DatabaseDriver,
		Path:     cfg.DatabasePath,
		DSN:      cfg.DatabaseDSN,
		LogLevel: level,
	}); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	log.Printf("database ready (%s)", cfg.DatabaseDriver)
	return nil
}
