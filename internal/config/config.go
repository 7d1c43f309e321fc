package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	DatabaseDriver    string
	DatabasePath      string
	DatabaseDSN       string
	JWTSecret         string
	TokenTTL          time.Duration
	SessionSecret     string
	GinMode           string
	UploadDir         string
	UploadURLPath     string
	CORSAllowOrigins  []string
	ReminderHour      int
	Location          *time.Location
	SuperRootUserName string
	SuperRootPassword string
}

// Load 先尝试读取 .env，再从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: failed to load .env: %v", err)
	}

	port := envOrDefault("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	tokenTTL := 72 * time.Hour
	if hours, err := strconv.Atoi(strings.TrimSpace(os.Getenv("TOKEN_TTL_HOURS"))); err == nil && hours > 0 {
		tokenTTL = time.Duration(hours) * time.Hour
	}

	reminderHour := 20
	if hour, err := strconv.Atoi(strings.TrimSpace(os.Getenv("REMINDER_HOUR"))); err == nil && hour >= 0 && hour <= 23 {
		reminderHour = hour
	}

	location := time.Local
	if tz := strings.TrimSpace(os.Getenv("TIMEZONE")); tz != "" {
		loaded, err := time.LoadLocation(tz)
		if err != nil {
			log.Printf("config: unknown TIMEZONE %q, falling back to local: %v", tz, err)
		} else {
			location = loaded
		}
	}

	return AppConfig{
		ListenAddr:        listenAddr,
		Port:              port,
		DatabaseDriver:    envOrDefault("DATABASE_DRIVER", "sqlite"),
		DatabasePath:      envOrDefault("DATABASE_PATH", "langleague.db"),
		DatabaseDSN:       strings.TrimSpace(os.Getenv("DATABASE_DSN")),
		JWTSecret:         envOrDefault("JWT_SECRET", "langleague-dev-jwt-secret"),
		TokenTTL:          tokenTTL,
		SessionSecret:     envOrDefault("SESSION_SECRET", "langleague-dev-secret"),
		GinMode:           envOrDefault("GIN_MODE", "release"),
		UploadDir:         envOrDefault("UPLOAD_DIR", "web/static/uploads"),
		UploadURLPath:     envOrDefault("UPLOAD_URL_PATH", "/static/uploads"),
		CORSAllowOrigins:  splitList(envOrDefault("CORS_ALLOW_ORIGINS", "*")),
		ReminderHour:      reminderHour,
		Location:          location,
		SuperRootUserName: strings.TrimSpace(os.Getenv("SUPER_ROOT_USER_NAME")),
		SuperRootPassword: strings.TrimSpace(os.Getenv("SUPER_ROOT_PASSWORD")),
	}
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
