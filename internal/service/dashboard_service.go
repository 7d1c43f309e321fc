package service

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/langleague/internal/db"
	"gorm.io/gorm"
)

// DashboardService 汇总教师与管理员看板数据，每次请求都重新查询
type DashboardService struct {
	db *gorm.DB
}

// BookEnrollmentCount 是单本教材的报名人数
type BookEnrollmentCount struct {
	BookID          uint   `db:"book_id" json:"bookId"`
	Title           string `db:"title" json:"title"`
	EnrollmentCount int64  `db:"enrollment_count" json:"enrollmentCount"`
}

// TeacherDashboard 是教师看板
type TeacherDashboard struct {
	TotalBooks       int64                 `json:"totalBooks"`
	TotalStudents    int64                 `json:"totalStudents"`
	BookEnrollments  []BookEnrollmentCount `json:"bookEnrollments"`
	TotalEnrollments int64                 `json:"totalEnrollments"`
}

// AdminDashboard 是管理员看板
type AdminDashboard struct {
	TotalUsers           int64   `json:"totalUsers"`
	TotalStudents        int64   `json:"totalStudents"`
	TotalBooks           int64   `json:"totalBooks"`
	TotalEnrollments     int64   `json:"totalEnrollments"`
	CompletionRate       int     `json:"completionRate"`
	AverageExerciseScore float64 `json:"averageExerciseScore"`
}

// LearningReport 是学员个人学习报告，只统计仍在架的教材与单元
type LearningReport struct {
	BooksStarted      int64     `json:"booksStarted"`
	BooksCompleted    int64     `json:"booksCompleted"`
	UnitsStarted      int64     `json:"unitsStarted"`
	UnitsCompleted    int64     `json:"unitsCompleted"`
	AverageProgress   float64   `json:"averageProgress"`
	StudySessions     int64     `json:"studySessions"`
	StudyMinutes      int64     `json:"studyMinutes"`
	StreakCount       int       `json:"streakCount"`
	LongestStreak     int       `json:"longestStreak"`
	ExercisesAnswered int64     `json:"exercisesAnswered"`
	ExerciseAccuracy  int       `json:"exerciseAccuracy"`
	GeneratedAt       time.Time `json:"generatedAt"`
}

// NewDashboardService 构造 DashboardService
func NewDashboardService(gdb *gorm.DB) *DashboardService {
	return &DashboardService{db: gdb}
}

// TeacherDashboard 统计教师名下教材数、去重学员数与各教材报名数
func (s *DashboardService) TeacherDashboard(teacherProfileID uint) (*TeacherDashboard, error) {
	x, err := db.SQLX(s.db)
	if err != nil {
		return nil, err
	}

	dashboard := &TeacherDashboard{BookEnrollments: []BookEnrollmentCount{}}

	if err := x.Get(&dashboard.TotalBooks, x.Rebind(
		`SELECT COUNT(*) FROM books WHERE teacher_profile_id = ? AND deleted_at IS NULL`,
	), teacherProfileID); err != nil {
		return nil, fmt.Errorf("count teacher books: %w", err)
	}

	if err := x.Get(&dashboard.TotalStudents, x.Rebind(`
		SELECT COUNT(DISTINCT e.user_profile_id)
		FROM enrollments e
		JOIN books b ON b.id = e.book_id
		WHERE b.teacher_profile_id = ? AND b.deleted_at IS NULL`,
	), teacherProfileID); err != nil {
		return nil, fmt.Errorf("count teacher students: %w", err)
	}

	if err := x.Select(&dashboard.BookEnrollments, x.Rebind(`
		SELECT b.id AS book_id, b.title AS title, COUNT(e.id) AS enrollment_count
		FROM books b
		LEFT JOIN enrollments e ON e.book_id = b.id
		WHERE b.teacher_profile_id = ? AND b.deleted_at IS NULL
		GROUP BY b.id, b.title
		ORDER BY b.id`,
	), teacherProfileID); err != nil {
		return nil, fmt.Errorf("count book enrollments: %w", err)
	}

	for _, item := range dashboard.BookEnrollments {
		dashboard.TotalEnrollments += item.EnrollmentCount
	}
	return dashboard, nil
}

// AdminDashboard 统计全站用户、教材、报名、完成率与平均练习得分
func (s *DashboardService) AdminDashboard() (*AdminDashboard, error) {
	x, err := db.SQLX(s.db)
	if err != nil {
		return nil, err
	}

	dashboard := &AdminDashboard{}
	counts := []struct {
		dest  *int64
		query string
		args  []interface{}
	}{
		{&dashboard.TotalUsers, `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`, nil},
		{&dashboard.TotalStudents, `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL AND role = ?`, []interface{}{db.RoleStudent}},
		{&dashboard.TotalBooks, `SELECT COUNT(*) FROM books WHERE deleted_at IS NULL`, nil},
		{&dashboard.TotalEnrollments, `SELECT COUNT(*) FROM enrollments`, nil},
	}
	for _, item := range counts {
		if err := x.Get(item.dest, x.Rebind(item.query), item.args...); err != nil {
			return nil, fmt.Errorf("admin dashboard count: %w", err)
		}
	}

	rate, err := systemCompletionRate(x)
	if err != nil {
		return nil, err
	}
	dashboard.CompletionRate = rate

	if err := x.Get(&dashboard.AverageExerciseScore,
		`SELECT COALESCE(AVG(score), 0) FROM exercise_results`); err != nil {
		return nil, fmt.Errorf("average exercise score: %w", err)
	}
	return dashboard, nil
}

// SystemCompletionRate 返回全站进度完成率
func (s *DashboardService) SystemCompletionRate() (int, error) {
	x, err := db.SQLX(s.db)
	if err != nil {
		return 0, err
	}
	return systemCompletionRate(x)
}

func systemCompletionRate(x *sqlx.DB) (int, error) {
	var row struct {
		Total     int64 `db:"total"`
		Completed int64 `db:"completed"`
	}
	if err := x.Get(&row, x.Rebind(`
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN is_completed = ? THEN 1 ELSE 0 END), 0) AS completed
		FROM progresses`,
	), true); err != nil {
		return 0, fmt.Errorf("system completion rate: %w", err)
	}
	return completionRate(row.Completed, row.Total), nil
}

// LearningReport 汇总当前学员的进度、学习时长、连续天数与练习正确率
func (s *DashboardService) LearningReport(actor Actor, now time.Time) (*LearningReport, error) {
	profileID, err := requireProfileID(s.db, actor)
	if err != nil {
		return nil, err
	}
	x, err := db.SQLX(s.db)
	if err != nil {
		return nil, err
	}

	report := &LearningReport{GeneratedAt: now}

	var streak struct {
		Count   int `db:"streak_count"`
		Longest int `db:"longest_streak"`
	}
	if err := x.Get(&streak, x.Rebind(
		`SELECT streak_count, longest_streak FROM user_profiles WHERE id = ? AND deleted_at IS NULL`,
	), profileID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("report streak: %w", err)
	}
	report.StreakCount = streak.Count
	report.LongestStreak = streak.Longest

	var units struct {
		Started   int64   `db:"started"`
		Completed int64   `db:"completed"`
		Average   float64 `db:"average"`
	}
	if err := x.Get(&units, x.Rebind(`
		SELECT COUNT(*) AS started,
		       COALESCE(SUM(CASE WHEN p.is_completed = ? THEN 1 ELSE 0 END), 0) AS completed,
		       COALESCE(AVG(p.completion_percentage), 0) AS average
		FROM progresses p
		JOIN units u ON u.id = p.unit_id AND u.deleted_at IS NULL
		JOIN books b ON b.id = u.book_id AND b.deleted_at IS NULL
		WHERE p.user_profile_id = ?`,
	), true, profileID); err != nil {
		return nil, fmt.Errorf("report units: %w", err)
	}
	report.UnitsStarted = units.Started
	report.UnitsCompleted = units.Completed
	report.AverageProgress = units.Average

	var books []struct {
		Units     int64 `db:"units"`
		Completed int64 `db:"completed"`
	}
	if err := x.Select(&books, x.Rebind(`
		SELECT COUNT(u.id) AS units,
		       COALESCE(SUM(CASE WHEN p.is_completed = ? THEN 1 ELSE 0 END), 0) AS completed
		FROM units u
		JOIN books b ON b.id = u.book_id AND b.deleted_at IS NULL
		LEFT JOIN progresses p ON p.unit_id = u.id AND p.user_profile_id = ?
		WHERE u.deleted_at IS NULL
		GROUP BY u.book_id
		HAVING COUNT(p.id) > 0`,
	), true, profileID); err != nil {
		return nil, fmt.Errorf("report books: %w", err)
	}
	report.BooksStarted = int64(len(books))
	for _, book := range books {
		if book.Completed == book.Units {
			report.BooksCompleted++
		}
	}

	var sessions struct {
		Count   int64 `db:"sessions"`
		Seconds int64 `db:"seconds"`
	}
	if err := x.Get(&sessions, x.Rebind(`
		SELECT COUNT(*) AS sessions, COALESCE(SUM(duration_seconds), 0) AS seconds
		FROM study_sessions
		WHERE user_profile_id = ? AND end_at IS NOT NULL`,
	), profileID); err != nil {
		return nil, fmt.Errorf("report study sessions: %w", err)
	}
	report.StudySessions = sessions.Count
	report.StudyMinutes = sessions.Seconds / 60

	var exercises struct {
		Total   int64 `db:"total"`
		Correct int64 `db:"correct"`
	}
	if err := x.Get(&exercises, x.Rebind(`
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN correct = ? THEN 1 ELSE 0 END), 0) AS correct
		FROM exercise_results
		WHERE user_profile_id = ?`,
	), true, profileID); err != nil {
		return nil, fmt.Errorf("report exercises: %w", err)
	}
	report.ExercisesAnswered = exercises.Total
	report.ExerciseAccuracy = completionRate(exercises.Correct, exercises.Total)

	return report, nil
}
