package db

import "time"

// Progress 记录学员在单元上的学习进度，每个 (profile, unit) 一行
// CompletionPercentage = 已完成板块数 * 100 / 3
// 不使用软删除，避免唯一索引被已删除记录占用
type Progress struct {
	ID                   uint `gorm:"primaryKey"`
	UserProfileID        uint `gorm:"uniqueIndex:idx_progress_unique;not null"`
	UnitID               uint `gorm:"uniqueIndex:idx_progress_unique;index;not null"`
	IsCompleted          bool `gorm:"not null;default:false;index"`
	IsBookmarked         bool `gorm:"default:false"`
	Score                *int
	CompletionPercentage int `gorm:"default:0"`
	IsVocabularyFinished bool
	IsGrammarFinished    bool
	IsExerciseFinished   bool
	LastAccessedAt       *time.Time `gorm:"index"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TableName 返回自定义表名
func (Progress) TableName() string {
	return "progresses"
}
