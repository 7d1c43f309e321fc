package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/langleague/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrSessionNotFound 在学习时段不存在时返回
	ErrSessionNotFound = errors.New("study session not found")
)

// maxSessionDuration 单个学习时段的最长时长
const maxSessionDuration = 24 * time.Hour

// StudySessionService 记录学习时段；结束时段会同步连续学习天数
type StudySessionService struct {
	db       *gorm.DB
	profiles *ProfileService
}

// FinishResult 是结束时段后的时段与连续天数
type FinishResult struct {
	Session db.StudySession  `json:"session"`
	Streak  StreakSyncResult `json:"streak"`
}

// NewStudySessionService 构造 StudySessionService
func NewStudySessionService(gdb *gorm.DB) *StudySessionService {
	return &StudySessionService{db: gdb, profiles: NewProfileService(gdb)}
}

// Start 开始一个学习时段，unitID 可为空
func (s *StudySessionService) Start(actor Actor, unitID *uint, now time.Time) (*db.StudySession, error) {
	profileID, err := requireProfileID(s.db, actor)
	if err != nil {
		return nil, err
	}
	if unitID != nil {
		if err := ensureUnitExists(s.db, *unitID); err != nil {
			return nil, err
		}
	}

	session := db.StudySession{
		UserProfileID: profileID,
		UnitID:        unitID,
		StartAt:       now,
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("start study session: %w", err)
	}
	return &session, nil
}

// Finish 结束学习时段并记录时长，已结束的时段不能再次结束
// 结束时间早于开始时间或时长超过 24 小时的时段会被拒绝
func (s *StudySessionService) Finish(actor Actor, sessionID uint, now time.Time) (*FinishResult, error) {
	var result FinishResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		profileID, err := requireProfileID(tx, actor)
		if err != nil {
			return err
		}

		var session db.StudySession
		if err := tx.First(&session, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("get study session: %w", err)
		}
		if session.UserProfileID != profileID {
			return ErrForbidden
		}
		if session.EndAt != nil {
			return fmt.Errorf("%w: study session already finished", ErrInvalidArgument)
		}

		elapsed := now.Sub(session.StartAt)
		if elapsed < 0 {
			return fmt.Errorf("%w: study session cannot end before it starts", ErrInvalidArgument)
		}
		if elapsed > maxSessionDuration {
			return fmt.Errorf("%w: study session cannot exceed %s", ErrInvalidArgument, maxSessionDuration)
		}
		session.EndAt = &now
		session.DurationSeconds = int(elapsed.Seconds())
		if err := tx.Save(&session).Error; err != nil {
			return fmt.Errorf("finish study session: %w", err)
		}

		streak, err := s.profiles.syncStreak(tx, actor, now)
		if err != nil {
			return err
		}

		result = FinishResult{Session: session, Streak: streak}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListMine 返回当前学员的学习时段，最新的在前
func (s *StudySessionService) ListMine(actor Actor, limit int) ([]db.StudySession, error) {
	profileID, err := requireProfileID(s.db, actor)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var items []db.StudySession
	if err := s.db.Where("user_profile_id = ?", profileID).
		Order("start_at DESC, id DESC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list study sessions: %w", err)
	}
	return items, nil
}

// TotalMinutes 返回学员累计学习分钟数
func (s *StudySessionService) TotalMinutes(profileID uint) (int, error) {
	var seconds int64
	if err := s.db.Model(&db.StudySession{}).
		Select("COALESCE(SUM(duration_seconds), 0)").
		Where("user_profile_id = ?", profileID).
		Scan(&seconds).Error; err != nil {
		return 0, fmt.Errorf("sum study time: %w", err)
	}
	return int(seconds / 60), nil
}

// HeatmapDay 表示热力图中单日的学习量
type HeatmapDay struct {
	Date     string `json:"date"`
	Sessions int    `json:"sessions"`
	Seconds  int    `json:"seconds"`
}

// Heatmap 按自然日汇总 [start, end] 区间内已结束的学习时段，日期按 start 所在时区划分
func (s *StudySessionService) Heatmap(actor Actor, start, end time.Time) ([]HeatmapDay, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end before start", ErrInvalidArgument)
	}
	profileID, err := requireProfileID(s.db, actor)
	if err != nil {
		return nil, err
	}

	loc := start.Location()
	from := normalizeToDate(start)
	to := normalizeToDate(end.In(loc)).AddDate(0, 0, 1)

	var sessions []db.StudySession
	if err := s.db.Where("user_profile_id = ? AND end_at IS NOT NULL", profileID).
		Where("start_at >= ? AND start_at < ?", from, to).
		Order("start_at ASC").
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list heatmap sessions: %w", err)
	}

	days := make([]HeatmapDay, 0)
	index := make(map[string]int)
	for _, session := range sessions {
		key := session.StartAt.In(loc).Format("2006-01-02")
		pos, ok := index[key]
		if !ok {
			pos = len(days)
			index[key] = pos
			days = append(days, HeatmapDay{Date: key})
		}
		days[pos].Sessions++
		days[pos].Seconds += session.DurationSeconds
	}
	return days, nil
}
