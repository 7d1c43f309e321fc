package db

import "time"

const EnrollmentActive = "ACTIVE"

// Enrollment 学员报名教材，(profile, book) 唯一
type Enrollment struct {
	ID            uint   `gorm:"primaryKey"`
	UserProfileID uint   `gorm:"uniqueIndex:idx_enrollment_unique;not null"`
	BookID        uint   `gorm:"uniqueIndex:idx_enrollment_unique;index;not null"`
	Status        string `gorm:"size:20;not null"`
	EnrolledAt    time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName 返回自定义表名
func (Enrollment) TableName() string {
	return "enrollments"
}

// Note 学员在单元上的笔记，每个单元只保留一条
type Note struct {
	ID            uint   `gorm:"primaryKey"`
	UserProfileID uint   `gorm:"uniqueIndex:idx_note_unique;not null"`
	UnitID        uint   `gorm:"uniqueIndex:idx_note_unique;not null"`
	Content       string `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName 返回自定义表名
func (Note) TableName() string {
	return "notes"
}
