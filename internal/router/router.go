package router

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/langleague/internal/db"
	"github.com/langleague/internal/handler"
)

// Options 描述路由层需要的外部配置
type Options struct {
	SessionSecret    string
	UploadDir        string
	UploadURLPath    string
	CORSAllowOrigins []string
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(corsConfig(opts.CORSAllowOrigins)))

	// 配置会话中间件
	secret := opts.SessionSecret
	if secret == "" {
		secret = "langleague-dev-secret"
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, MaxAge: 7 * 24 * 3600})
	r.Use(sessions.Sessions("langleague_session", store))

	// 上传文件服务
	if opts.UploadDir != "" {
		urlPath := opts.UploadURLPath
		if urlPath == "" {
			urlPath = "/static/uploads"
		}
		r.Static("/"+strings.Trim(urlPath, "/"), opts.UploadDir)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/healthz", api.HealthCheck)

	public := r.Group("/api")
	{
		public.POST("/register", api.Register)
		public.POST("/authenticate", api.Authenticate)
		public.POST("/logout", api.Logout)
		public.GET("/books/public", api.ListPublicBooks)
	}

	auth := r.Group("/api")
	auth.Use(api.AuthRequired())
	{
		auth.GET("/account", api.GetAccount)
		auth.PUT("/account/theme", api.UpdateTheme)
		auth.PUT("/account/bio", api.UpdateBio)
		auth.POST("/user-profiles/sync-streak", api.SyncStreak)

		progress := auth.Group("/progresses")
		{
			progress.POST("/update-section/:unitId/:sectionType", api.UpdateSectionProgress)
			progress.POST("/toggle-bookmark/:unitId", api.ToggleBookmark)
			progress.POST("/track-access/:unitId", api.TrackUnitAccess)
			progress.POST("/complete/:unitId", api.CompleteUnit)
			progress.GET("", api.ListMyProgress)
			progress.GET("/bookmarked", api.ListBookmarkedProgress)
			progress.GET("/recent", api.GetRecentProgress)
			progress.GET("/unit/:unitId", api.GetUnitProgress)
			progress.DELETE("/:id", handler.RequireRole(db.RoleAdmin), api.DeleteProgress)
			progress.GET("/completion-rate", handler.RequireRole(db.RoleAdmin), api.GetCompletionRate)
		}

		// 教材与单元，写操作仅限教师和管理员
		authoring := handler.RequireRole(db.RoleTeacher, db.RoleAdmin)

		auth.GET("/books", api.ListBooks)
		auth.GET("/books/newest", api.ListNewestBooks)
		auth.GET("/books/:id", api.GetBook)
		auth.POST("/books", authoring, api.CreateBook)
		auth.PUT("/books/:id", authoring, api.UpdateBook)
		auth.DELETE("/books/:id", authoring, api.DeleteBook)
		auth.POST("/books/:id/cover", authoring, api.UploadBookCover)

		auth.GET("/books/:id/units", api.ListBookUnits)
		auth.POST("/books/:id/units", authoring, api.CreateUnit)
		auth.PUT("/books/:id/units/reorder", authoring, api.ReorderUnits)
		auth.PUT("/units/:id", authoring, api.UpdateUnit)
		auth.DELETE("/units/:id", authoring, api.DeleteUnit)

		auth.GET("/units/:id/vocabularies", api.ListVocabularies)
		auth.POST("/units/:id/vocabularies", authoring, api.CreateVocabulary)
		auth.POST("/units/:id/vocabularies/import", authoring, api.ImportVocabularies)
		auth.PUT("/vocabularies/:id", authoring, api.UpdateVocabulary)
		auth.DELETE("/vocabularies/:id", authoring, api.DeleteVocabulary)

		auth.GET("/units/:id/grammars", api.ListGrammars)
		auth.POST("/units/:id/grammars", authoring, api.CreateGrammar)
		auth.PUT("/grammars/:id", authoring, api.UpdateGrammar)
		auth.DELETE("/grammars/:id", authoring, api.DeleteGrammar)

		auth.GET("/units/:id/exercises", api.ListExercises)
		auth.POST("/units/:id/exercises", authoring, api.CreateExercise)
		auth.PUT("/exercises/:id", authoring, api.UpdateExercise)
		auth.DELETE("/exercises/:id", authoring, api.DeleteExercise)
		auth.POST("/exercises/:id/check", api.CheckAnswer)
		auth.POST("/exercises/:id/submit", api.SubmitAnswer)

		auth.POST("/enrollments/books/:id", api.EnrollBook)
		auth.GET("/enrollments", api.ListMyEnrollments)
		auth.GET("/enrollments/count", handler.RequireRole(db.RoleAdmin), api.CountEnrollments)

		auth.GET("/notes", api.ListMyNotes)
		auth.POST("/notes", api.SaveNote)
		auth.PUT("/notes/:id", api.UpdateNote)
		auth.DELETE("/notes/:id", api.DeleteNote)

		auth.GET("/books/:id/reviews", api.ListBookReviews)
		auth.POST("/books/:id/reviews", api.ReviewBook)

		auth.POST("/study-sessions", api.StartStudySession)
		auth.POST("/study-sessions/:id/finish", api.FinishStudySession)
		auth.GET("/study-sessions", api.ListMyStudySessions)
		auth.GET("/study-sessions/heatmap", api.GetStudyHeatmap)
		auth.GET("/reports/me", api.GetLearningReport)

		auth.GET("/achievements", api.ListAchievements)
		auth.GET("/notifications", api.ListNotifications)
		auth.POST("/notifications/:id/read", api.MarkNotificationRead)

		auth.GET("/dashboard/teacher", handler.RequireRole(db.RoleTeacher), api.GetTeacherDashboard)
		auth.GET("/dashboard/admin", handler.RequireRole(db.RoleAdmin), api.GetAdminDashboard)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	allowAll := len(origins) == 0
	for _, origin := range origins {
		if origin == "*" {
			allowAll = true
		}
	}
	if allowAll {
		// 通配来源时不能携带凭证
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
