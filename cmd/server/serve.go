package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/langleague/internal/db"
	"github.com/langleague/internal/handler"
	"github.com/langleague/internal/router"
	"github.com/langleague/internal/scheduler"
	"github.com/langleague/internal/service"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务（默认命令）",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	cfg := loadConfig(cmd)
	gin.SetMode(cfg.GinMode)

	if err := openDatabase(cfg); err != nil {
		return err
	}

	if cfg.SuperRootUserName != "" && cfg.SuperRootPassword != "" {
		if err := db.EnsureUser(db.DB, cfg.SuperRootUserName, cfg.SuperRootPassword, db.RoleAdmin); err != nil {
			return err
		}
	}

	jobs := scheduler.New(service.NewReminderService(db.DB), cfg.Location)
	if err := jobs.Start(cfg.ReminderHour); err != nil {
		return err
	}
	defer jobs.Stop()

	api := handler.NewAPI(db.DB, handler.Options{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		UploadDir: cfg.UploadDir,
		UploadURL: cfg.UploadURLPath,
		Location:  cfg.Location,
	})
	r := router.SetupRouter(api, router.Options{
		SessionSecret:    cfg.SessionSecret,
		UploadDir:        cfg.UploadDir,
		UploadURLPath:    cfg.UploadURLPath,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
