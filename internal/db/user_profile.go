package db

import (
	"time"

	"gorm.io/gorm"
)

const (
	ThemeLight  = "LIGHT"
	ThemeDark   = "DARK"
	ThemeSystem = "SYSTEM"
)

// UserProfile 保存学习者档案
// StreakCount/LastLearningDate 只能通过连续学习同步接口修改
// LongestStreak 记录历史最长连续天数
type UserProfile struct {
	gorm.Model
	UserID           uint `gorm:"uniqueIndex;not null"`
	StreakCount      int  `gorm:"default:0"`
	LongestStreak    int  `gorm:"default:0"`
	LastLearningDate *time.Time
	Bio              string `gorm:"type:text"`
	Theme            string `gorm:"size:10;default:SYSTEM"`
}

// TableName 返回自定义表名
func (UserProfile) TableName() string {
	return "user_profiles"
}
