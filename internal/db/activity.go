package db

import "time"

// StudySession 记录一次学习时段，结束时写入 EndAt 与时长
type StudySession struct {
	ID              uint      `gorm:"primaryKey"`
	UserProfileID   uint      `gorm:"index;not null"`
	UnitID          *uint     `gorm:"index"`
	StartAt         time.Time `gorm:"index"`
	EndAt           *time.Time
	DurationSeconds int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName 返回自定义表名
func (StudySession) TableName() string {
	return "study_sessions"
}

// Achievement 记录已获得的成就，Code 形如 STREAK_7，每人每个 Code 唯一
type Achievement struct {
	ID            uint   `gorm:"primaryKey"`
	UserProfileID uint   `gorm:"uniqueIndex:idx_achievement_unique;not null"`
	Code          string `gorm:"size:50;uniqueIndex:idx_achievement_unique;not null"`
	Milestone     int
	AwardedAt     time.Time
}

// TableName 返回自定义表名
func (Achievement) TableName() string {
	return "achievements"
}

const (
	NotificationDailyReminder = "daily_reminder"
	NotificationAchievement   = "achievement"
)

// Notification 站内通知
type Notification struct {
	ID            uint      `gorm:"primaryKey"`
	UserProfileID uint      `gorm:"index;not null"`
	Kind          string    `gorm:"size:30;index"`
	Title         string    `gorm:"size:255"`
	Body          string    `gorm:"type:text"`
	IsRead        bool      `gorm:"default:false"`
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
}

// TableName 返回自定义表名
func (Notification) TableName() string {
	return "notifications"
}
