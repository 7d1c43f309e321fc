package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/langleague/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewService 管理教材评分
type ReviewService struct {
	db *gorm.DB
}

// ReviewSummary 汇总教材评分
type ReviewSummary struct {
	BookID  uint    `json:"bookId"`
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
}

// NewReviewService 构造 ReviewService
func NewReviewService(gdb *gorm.DB) *ReviewService {
	return &ReviewService{db: gdb}
}

// Upsert 写入评分，每人每本教材一条
func (s *ReviewService) Upsert(actor Actor, bookID uint, rating int, comment string) (*db.BookReview, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidArgument)
	}

	profileID, err := requireProfileID(s.db, actor)
	if err != nil {
		return nil, err
	}
	if _, err := findBook(s.db, bookID); err != nil {
		return nil, err
	}

	review := db.BookReview{
		UserProfileID: profileID,
		BookID:        bookID,
		Rating:        rating,
		Comment:       strings.TrimSpace(comment),
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_profile_id"}, {Name: "book_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
	}).Create(&review).Error; err != nil {
		return nil, fmt.Errorf("upsert review: %w", err)
	}

	if err := s.db.Where("user_profile_id = ? AND book_id = ?", profileID, bookID).First(&review).Error; err != nil {
		return nil, fmt.Errorf("reload review: %w", err)
	}
	return &review, nil
}

// ListForBook 返回教材的评分列表
func (s *ReviewService) ListForBook(bookID uint) ([]db.BookReview, error) {
	var items []db.BookReview
	if err := s.db.Where("book_id = ?", bookID).
		Order("updated_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return items, nil
}

// Summary 返回评分数量与平均分（保留一位小数）
func (s *ReviewService) Summary(bookID uint) (ReviewSummary, error) {
	var row struct {
		Count   int64
		Average *float64
	}
	if err := s.db.Model(&db.BookReview{}).
		Select("COUNT(*) AS count, AVG(rating) AS average").
		Where("book_id = ?", bookID).
		Scan(&row).Error; err != nil {
		return ReviewSummary{}, fmt.Errorf("summarize reviews: %w", err)
	}

	summary := ReviewSummary{BookID: bookID, Count: row.Count}
	if row.Average != nil {
		summary.Average = math.Round(*row.Average*10) / 10
	}
	return summary, nil
}
