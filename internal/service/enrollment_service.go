package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/langleague/internal/db"
	"gorm.io/gorm"
)

// EnrollmentService 处理学员报名教材
type EnrollmentService struct {
	db *gorm.DB
}

// NewEnrollmentService 构造 EnrollmentService
func NewEnrollmentService(gdb *gorm.DB) *EnrollmentService {
	return &EnrollmentService{db: gdb}
}

// Enroll 报名教材，重复报名直接返回已有记录
func (s *EnrollmentService) Enroll(actor Actor, bookID uint, now time.Time) (*db.Enrollment, error) {
	var enrollment db.Enrollment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		profileID, err := requireProfileID(tx, actor)
		if err != nil {
			return err
		}
		if _, err := findBook(tx, bookID); err != nil {
			return err
		}

		err = tx.Where("user_profile_id = ? AND book_id = ?", profileID, bookID).First(&enrollment).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find enrollment: %w", err)
		}

		enrollment = db.Enrollment{
			UserProfileID: profileID,
			BookID:        bookID,
			Status:        db.EnrollmentActive,
			EnrolledAt:    now,
		}
		if err := tx.Create(&enrollment).Error; err != nil {
			return fmt.Errorf("create enrollment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListMine 返回当前学员的报名记录
func (s *EnrollmentService) ListMine(actor Actor) ([]db.Enrollment, error) {
	profileID, err := requireProfileID(s.db, actor)
	if err != nil {
		return nil, err
	}

	var items []db.Enrollment
	if err := s.db.Where("user_profile_id = ?", profileID).
		Order("enrolled_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return items, nil
}

// IsEnrolled 判断学员是否已报名
func (s *EnrollmentService) IsEnrolled(actor Actor, bookID uint) (bool, error) {
	profileID, err := requireProfileID(s.db, actor)
	if err != nil {
		return false, err
	}

	var count int64
	if err := s.db.Model(&db.Enrollment{}).
		Where("user_profile_id = ? AND book_id = ?", profileID, bookID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return count > 0, nil
}

// CountAll 返回全站报名总数
func (s *EnrollmentService) CountAll() (int64, error) {
	var count int64
	if err := s.db.Model(&db.Enrollment{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return count, nil
}
