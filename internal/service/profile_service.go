package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/langleague/internal/db"
	"gorm.io/gorm"
)

// ProfileService 负责学习档案与连续学习天数的维护
// 连续天数只通过 SyncStreak 修改，教师/管理员调用时原样返回
type ProfileService struct {
	db           *gorm.DB
	achievements *AchievementService
}

// StreakSyncResult 是一次连续学习同步的结果
type StreakSyncResult struct {
	StreakCount      int    `json:"streakCount"`
	LongestStreak    int    `json:"longestStreak"`
	MilestoneReached bool   `json:"milestoneReached"`
	Skipped          bool   `json:"skipped,omitempty"`
	Reason           string `json:"reason,omitempty"`
}

// NewProfileService 构造 ProfileService
func NewProfileService(gdb *gorm.DB) *ProfileService {
	return &ProfileService{db: gdb, achievements: NewAchievementService(gdb)}
}

// Get 根据主键获取档案
func (s *ProfileService) Get(id uint) (*db.UserProfile, error) {
	return loadProfile(s.db, Actor{ProfileID: id})
}

// GetByUserID 根据账号获取档案
func (s *ProfileService) GetByUserID(userID uint) (*db.UserProfile, error) {
	return loadProfile(s.db, Actor{UserID: userID})
}

// SyncStreak 记录今天的学习行为并返回最新连续天数
func (s *ProfileService) SyncStreak(actor Actor, now time.Time) (StreakSyncResult, error) {
	var result StreakSyncResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = s.syncStreak(tx, actor, now)
		return err
	})
	return result, err
}

func (s *ProfileService) syncStreak(tx *gorm.DB, actor Actor, now time.Time) (StreakSyncResult, error) {
	profile, err := loadProfile(tx, actor)
	if err != nil {
		return StreakSyncResult{}, err
	}

	if !actor.IsStudent() {
		return StreakSyncResult{
			StreakCount:   profile.StreakCount,
			LongestStreak: profile.LongestStreak,
			Skipped:       true,
			Reason:        "Streak only applies to students",
		}, nil
	}

	streak := NextStreak(profile.StreakCount, profile.LastLearningDate, now)
	longest := profile.LongestStreak
	if streak > longest {
		longest = streak
	}

	if err := tx.Model(profile).Updates(map[string]interface{}{
		"streak_count":       streak,
		"longest_streak":     longest,
		"last_learning_date": now,
	}).Error; err != nil {
		return StreakSyncResult{}, fmt.Errorf("save streak: %w", err)
	}

	result := StreakSyncResult{
		StreakCount:      streak,
		LongestStreak:    longest,
		MilestoneReached: IsStreakMilestone(streak),
	}

	if result.MilestoneReached {
		if err := s.achievements.awardStreakMilestone(tx, profile.ID, streak, now); err != nil {
			return StreakSyncResult{}, err
		}
	}

	return result, nil
}

// UpdateTheme 更新界面主题，仅接受 LIGHT/DARK/SYSTEM
func (s *ProfileService) UpdateTheme(actor Actor, theme string) (*db.UserProfile, error) {
	normalized := strings.ToUpper(strings.TrimSpace(theme))
	if normalized != db.ThemeLight && normalized != db.ThemeDark && normalized != db.ThemeSystem {
		return nil, fmt.Errorf("%w: unsupported theme %s", ErrInvalidArgument, theme)
	}

	profile, err := loadProfile(s.db, actor)
	if err != nil {
		return nil, err
	}

	profile.Theme = normalized
	if err := s.db.Save(profile).Error; err != nil {
		return nil, fmt.Errorf("update theme: %w", err)
	}
	return profile, nil
}

// UpdateBio 更新个人简介
func (s *ProfileService) UpdateBio(actor Actor, bio string) (*db.UserProfile, error) {
	profile, err := loadProfile(s.db, actor)
	if err != nil {
		return nil, err
	}

	profile.Bio = strings.TrimSpace(bio)
	if err := s.db.Save(profile).Error; err != nil {
		return nil, fmt.Errorf("update bio: %w", err)
	}
	return profile, nil
}
