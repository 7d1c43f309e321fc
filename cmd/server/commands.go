package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/langleague/internal/db"
	"github.com/langleague/internal/importer"
	"github.com/langleague/internal/seed"
	"github.com/langleague/internal/service"
	"github.com/spf13/cobra"
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "创建账号",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		role, _ := cmd.Flags().GetString("role")

		cfg := loadConfig(cmd)
		if err := openDatabase(cfg); err != nil {
			return err
		}

		user, err := service.NewAuthService(db.DB, cfg.JWTSecret, cfg.TokenTTL).CreateUser(username, password, role)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "用户 %s 创建成功（角色：%s）\n", user.Username, user.Role)
		return nil
	},
}

var importVocabularyCmd = &cobra.Command{
	Use:   "import-vocabulary",
	Short: "从 xlsx/csv 导入单元词汇",
	RunE: func(cmd *cobra.Command, args []string) error {
		unitID, _ := cmd.Flags().GetUint("unit")
		path, _ := cmd.Flags().GetString("file")

		cfg := loadConfig(cmd)
		if err := openDatabase(cfg); err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer file.Close()

		result, err := importer.ImportVocabulary(db.DB, unitID, filepath.Base(path), file)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "处理 %d 行：新增 %d，更新 %d，跳过 %d\n",
			result.TotalProcessed, result.Created, result.Updated, result.Skipped)
		for _, msg := range result.Errors {
			fmt.Fprintf(out, "  %s\n", msg)
		}
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "写入演示账号与示例教材",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		if err := openDatabase(cfg); err != nil {
			return err
		}
		return seed.Run(db.DB, cmd.OutOrStdout(), time.Now().In(cfg.Location))
	},
}

func init() {
	createUserCmd.Flags().String("username", "", "用户名")
	createUserCmd.Flags().String("password", "", "密码，至少 6 位")
	createUserCmd.Flags().String("role", db.RoleStudent, "角色：student/teacher/admin")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("password")

	importVocabularyCmd.Flags().Uint("unit", 0, "目标单元ID")
	importVocabularyCmd.Flags().String("file", "", "xlsx 或 csv 文件路径")
	_ = importVocabularyCmd.MarkFlagRequired("unit")
	_ = importVocabularyCmd.MarkFlagRequired("file")
}
