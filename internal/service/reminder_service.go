package service

import (
	"fmt"
	"log"
	"time"

	"github.com/langleague/internal/db"
	"gorm.io/gorm"
)

const (
	reminderActiveDays = 7
	reminderBatchSize  = 100
	reminderHotStreak  = 3
)

// ReminderService 为最近活跃但今天尚未学习的学员生成每日提醒
type ReminderService struct {
	db *gorm.DB
}

type reminderCandidate struct {
	ProfileID   uint
	Username    string
	StreakCount int
}

// NewReminderService 构造 ReminderService
func NewReminderService(gdb *gorm.DB) *ReminderService {
	return &ReminderService{db: gdb}
}

// CreateDailyReminders 生成当天的学习提醒，返回新建通知数量
// 条件：学员、近 7 天学习过、今天未学习、今天还没收到提醒
func (s *ReminderService) CreateDailyReminders(now time.Time) (int, error) {
	todayStart := normalizeToDate(now)
	activeSince := now.AddDate(0, 0, -reminderActiveDays)

	studiedToday := s.db.Model(&db.StudySession{}).
		Select("user_profile_id").
		Where("start_at >= ?", todayStart)
	remindedToday := s.db.Model(&db.Notification{}).
		Select("user_profile_id").
		Where("kind = ? AND created_at >= ?", db.NotificationDailyReminder, todayStart)

	created := 0
	lastID := uint(0)
	for {
		var batch []reminderCandidate
		if err := s.db.Table("user_profiles").
			Select("user_profiles.id AS profile_id, users.username AS username, user_profiles.streak_count AS streak_count").
			Joins("JOIN users ON users.id = user_profiles.user_id AND users.deleted_at IS NULL").
			Where("users.role = ?", db.RoleStudent).
			Where("user_profiles.deleted_at IS NULL").
			Where("user_profiles.last_learning_date >= ?", activeSince).
			Where("user_profiles.last_learning_date < ?", todayStart).
			Where("user_profiles.id NOT IN (?)", studiedToday).
			Where("user_profiles.id NOT IN (?)", remindedToday).
			Where("user_profiles.id > ?", lastID).
			Order("user_profiles.id ASC").
			Limit(reminderBatchSize).
			Scan(&batch).Error; err != nil {
			return created, fmt.Errorf("find reminder candidates: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		notifications := make([]db.Notification, 0, len(batch))
		for _, candidate := range batch {
			notifications = append(notifications, buildReminder(candidate, now))
			lastID = candidate.ProfileID
		}
		if err := s.db.Create(&notifications).Error; err != nil {
			return created, fmt.Errorf("create reminders: %w", err)
		}
		created += len(notifications)

		if len(batch) < reminderBatchSize {
			break
		}
	}

	log.Printf("reminder: created %d daily reminders for %s", created, todayStart.Format("2006-01-02"))
	return created, nil
}

func buildReminder(candidate reminderCandidate, now time.Time) db.Notification {
	title := "今天还没有学习哦"
	body := fmt.Sprintf("%s，花 5 分钟复习一个单元吧！", candidate.Username)
	if candidate.StreakCount >= reminderHotStreak {
		title = fmt.Sprintf("保持 %d 天连续学习！", candidate.StreakCount)
		body = fmt.Sprintf("%s，你已经连续学习 %d 天了，今天再学 5 分钟就能继续保持！", candidate.Username, candidate.StreakCount)
	}

	return db.Notification{
		UserProfileID: candidate.ProfileID,
		Kind:          db.NotificationDailyReminder,
		Title:         title,
		Body:          body,
		CreatedAt:     now,
	}
}
