package handler

import (
	"time"

	"github.com/langleague/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db            *gorm.DB
	auth          *service.AuthService
	profiles      *service.ProfileService
	progress      *service.ProgressService
	achievements  *service.AchievementService
	books         *service.BookService
	units         *service.UnitService
	vocabularies  *service.VocabularyService
	grammars      *service.GrammarService
	exercises     *service.ExerciseService
	enrollments   *service.EnrollmentService
	notes         *service.NoteService
	reviews       *service.ReviewService
	sessions      *service.StudySessionService
	notifications *service.NotificationService
	dashboards    *service.DashboardService
	uploadDir     string
	uploadURL     string
	location      *time.Location
	now           func() time.Time
}

// Options 描述构造 API 时需要的外部配置
type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	UploadDir string
	UploadURL string
	Location  *time.Location
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, opts Options) *API {
	location := opts.Location
	if location == nil {
		location = time.Local
	}

	return &API{
		db:            db,
		auth:          service.NewAuthService(db, opts.JWTSecret, opts.TokenTTL),
		profiles:      service.NewProfileService(db),
		progress:      service.NewProgressService(db),
		achievements:  service.NewAchievementService(db),
		books:         service.NewBookService(db),
		units:         service.NewUnitService(db),
		vocabularies:  service.NewVocabularyService(db),
		grammars:      service.NewGrammarService(db),
		exercises:     service.NewExerciseService(db),
		enrollments:   service.NewEnrollmentService(db),
		notes:         service.NewNoteService(db),
		reviews:       service.NewReviewService(db),
		sessions:      service.NewStudySessionService(db),
		notifications: service.NewNotificationService(db),
		dashboards:    service.NewDashboardService(db),
		uploadDir:     opts.UploadDir,
		uploadURL:     opts.UploadURL,
		location:      location,
		now:           time.Now,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// WithClock 替换时钟，测试中用于固定“今天”
func (a *API) WithClock(now func() time.Time) *API {
	if now != nil {
		a.now = now
	}
	return a
}

// clock 返回配置时区下的当前时间，连续学习按该时区的自然日计算
func (a *API) clock() time.Time {
	return a.now().In(a.location)
}
