package db

import (
	"time"

	"gorm.io/gorm"
)

// Book 定义了教材模型，TeacherProfileID 为创建者
type Book struct {
	gorm.Model
	Title            string `gorm:"size:255;not null"`
	Description      string `gorm:"type:text"`
	CoverImageURL    string `gorm:"size:512"`
	IsPublic         bool   `gorm:"index"`
	TeacherProfileID *uint  `gorm:"index"`
	Units            []Unit `gorm:"constraint:OnDelete:CASCADE"`
}

// Unit 是教材下的一个学习单元，包含词汇、语法与练习
type Unit struct {
	gorm.Model
	BookID       uint   `gorm:"index;not null"`
	Title        string `gorm:"size:255;not null"`
	Summary      string `gorm:"type:text"`
	OrderIndex   int    `gorm:"default:0"`
	Vocabularies []Vocabulary
	Grammars     []Grammar
	Exercises    []Exercise
}

// BookReview 记录学员对教材的评分，每人每本书一条
type BookReview struct {
	ID            uint   `gorm:"primaryKey"`
	UserProfileID uint   `gorm:"uniqueIndex:idx_book_review_unique;not null"`
	BookID        uint   `gorm:"uniqueIndex:idx_book_review_unique;index;not null"`
	Rating        int    `gorm:"not null"`
	Comment       string `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName 返回自定义表名
func (BookReview) TableName() string {
	return "book_reviews"
}
