package service

import (
	"fmt"
	"time"

	"github.com/langleague/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AchievementService 负责连续学习里程碑成就的发放与查询
type AchievementService struct {
	db *gorm.DB
}

// NewAchievementService 构造 AchievementService
func NewAchievementService(gdb *gorm.DB) *AchievementService {
	return &AchievementService{db: gdb}
}

// StreakAchievementCode 返回里程碑对应的成就编码
func StreakAchievementCode(milestone int) string {
	return fmt.Sprintf("STREAK_%d", milestone)
}

// awardStreakMilestone 在命中里程碑时发放成就，重复发放不会产生新记录
func (s *AchievementService) awardStreakMilestone(tx *gorm.DB, profileID uint, streak int, now time.Time) error {
	if !IsStreakMilestone(streak) {
		return nil
	}

	achievement := db.Achievement{
		UserProfileID: profileID,
		Code:          StreakAchievementCode(streak),
		Milestone:     streak,
		AwardedAt:     now,
	}

	insert := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_profile_id"}, {Name: "code"}},
		DoNothing: true,
	}).Create(&achievement)
	if insert.Error != nil {
		return fmt.Errorf("award achievement: %w", insert.Error)
	}

	// 已经拿过的里程碑不再重复通知
	if insert.RowsAffected == 0 {
		return nil
	}

	notification := db.Notification{
		UserProfileID: profileID,
		Kind:          db.NotificationAchievement,
		Title:         fmt.Sprintf("连续学习 %d 天", streak),
		Body:          fmt.Sprintf("恭喜！你已经连续学习 %d 天，继续保持。", streak),
		CreatedAt:     now,
	}
	if err := tx.Create(&notification).Error; err != nil {
		return fmt.Errorf("create achievement notification: %w", err)
	}

	return nil
}

// ListMine 返回当前用户已获得的成就
func (s *AchievementService) ListMine(actor Actor) ([]db.Achievement, error) {
	profileID, err := requireProfileID(s.db, actor)
	if err != nil {
		return nil, err
	}

	var items []db.Achievement
	if err := s.db.Where("user_profile_id = ?", profileID).
		Order("awarded_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return items, nil
}
