package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/langleague/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrUnitNotFound 在单元不存在时返回
	ErrUnitNotFound = errors.New("unit not found")
	// ErrProgressNotFound 在进度记录不存在时返回
	ErrProgressNotFound = errors.New("progress not found")
)

// ProgressService 维护 (学员, 单元) 维度的学习进度
// 每次调用都在单个事务内完成：先取或建，再修改
type ProgressService struct {
	db *gorm.DB
}

// NewProgressService 构造 ProgressService
func NewProgressService(gdb *gorm.DB) *ProgressService {
	return &ProgressService{db: gdb}
}

// UpdateSectionProgress 标记单元内某个板块已完成，并重新计算完成百分比
func (s *ProgressService) UpdateSectionProgress(actor Actor, unitID uint, sectionType string, now time.Time) (*db.Progress, error) {
	section, err := ParseSectionType(sectionType)
	if err != nil {
		return nil, err
	}

	var progress *db.Progress
	err = atClock(s.db, now).Transaction(func(tx *gorm.DB) error {
		p, err := getOrCreateProgress(tx, actor, unitID, now)
		if err != nil {
			return err
		}

		markSection(p, section)
		p.CompletionPercentage = CompletionPercentage(*p)
		if p.CompletionPercentage >= 100 {
			p.IsCompleted = true
		}
		p.LastAccessedAt = &now

		if err := tx.Save(p).Error; err != nil {
			return fmt.Errorf("save progress: %w", err)
		}
		progress = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// ToggleBookmark 切换书签状态；首次访问的单元直接被收藏
func (s *ProgressService) ToggleBookmark(actor Actor, unitID uint, now time.Time) (*db.Progress, error) {
	var progress *db.Progress
	err := atClock(s.db, now).Transaction(func(tx *gorm.DB) error {
		p, created, err := findOrNewProgress(tx, actor, unitID, now)
		if err != nil {
			return err
		}

		if created {
			p.IsBookmarked = true
			p.LastAccessedAt = &now
			if err := tx.Create(p).Error; err != nil {
				return fmt.Errorf("create progress: %w", err)
			}
		} else {
			p.IsBookmarked = !p.IsBookmarked
			if err := tx.Save(p).Error; err != nil {
				return fmt.Errorf("toggle bookmark: %w", err)
			}
		}
		progress = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// TrackUnitAccess 只刷新最近访问时间
func (s *ProgressService) TrackUnitAccess(actor Actor, unitID uint, now time.Time) (*db.Progress, error) {
	var progress *db.Progress
	err := atClock(s.db, now).Transaction(func(tx *gorm.DB) error {
		p, err := getOrCreateProgress(tx, actor, unitID, now)
		if err != nil {
			return err
		}

		p.LastAccessedAt = &now
		if err := tx.Save(p).Error; err != nil {
			return fmt.Errorf("track access: %w", err)
		}
		progress = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// CompleteUnit 直接把单元标记为已完成，不修改板块标记与百分比
func (s *ProgressService) CompleteUnit(actor Actor, unitID uint, now time.Time) (*db.Progress, error) {
	var progress *db.Progress
	err := atClock(s.db, now).Transaction(func(tx *gorm.DB) error {
		p, err := getOrCreateProgress(tx, actor, unitID, now)
		if err != nil {
			return err
		}

		p.IsCompleted = true
		p.LastAccessedAt = &now
		if err := tx.Save(p).Error; err != nil {
			return fmt.Errorf("complete unit: %w", err)
		}
		progress = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// ListMine 返回当前学员的全部进度，最近更新的在前
func (s *ProgressService) ListMine(actor Actor) ([]db.Progress, error) {
	return s.listMine(actor, false)
}

// ListBookmarked 返回当前学员收藏的单元进度
func (s *ProgressService) ListBookmarked(actor Actor) ([]db.Progress, error) {
	return s.listMine(actor, true)
}

func (s *ProgressService) listMine(actor Actor, bookmarkedOnly bool) ([]db.Progress, error) {
	profileID, err := requireProfileID(s.db, actor)
	if err != nil {
		return nil, err
	}

	query := s.db.Where("user_profile_id = ?", profileID)
	if bookmarkedOnly {
		query = query.Where("is_bookmarked = ?", true)
	}

	var items []db.Progress
	if err := query.Order("updated_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list progresses: %w", err)
	}
	return items, nil
}

// MostRecentlyAccessed 返回最近访问的进度，没有记录时返回 ErrProgressNotFound
func (s *ProgressService) MostRecentlyAccessed(actor Actor) (*db.Progress, error) {
	profileID, err := requireProfileID(s.db, actor)
	if err != nil {
		return nil, err
	}

	var progress db.Progress
	if err := s.db.Where("user_profile_id = ? AND last_accessed_at IS NOT NULL", profileID).
		Order("last_accessed_at DESC, id DESC").
		First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, fmt.Errorf("recent progress: %w", err)
	}
	return &progress, nil
}

// GetForUnit 返回当前学员在指定单元上的进度
func (s *ProgressService) GetForUnit(actor Actor, unitID uint) (*db.Progress, error) {
	profileID, err := requireProfileID(s.db, actor)
	if err != nil {
		return nil, err
	}

	var progress db.Progress
	if err := s.db.Where("user_profile_id = ? AND unit_id = ?", profileID, unitID).
		First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return &progress, nil
}

// Delete 删除进度记录，仅管理员可用
func (s *ProgressService) Delete(actor Actor, id uint) error {
	if !actor.HasRole(db.RoleAdmin) {
		return ErrForbidden
	}

	result := s.db.Delete(&db.Progress{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete progress: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProgressNotFound
	}
	return nil
}

// getOrCreateProgress 取出 (profile, unit) 行，不存在时以全 false、0% 新建
func getOrCreateProgress(tx *gorm.DB, actor Actor, unitID uint, now time.Time) (*db.Progress, error) {
	progress, created, err := findOrNewProgress(tx, actor, unitID, now)
	if err != nil {
		return nil, err
	}
	if created {
		if err := tx.Create(progress).Error; err != nil {
			return nil, fmt.Errorf("create progress: %w", err)
		}
	}
	return progress, nil
}

// findOrNewProgress 返回已有行，或者一个尚未写库的新行
func findOrNewProgress(tx *gorm.DB, actor Actor, unitID uint, now time.Time) (*db.Progress, bool, error) {
	profileID, err := requireProfileID(tx, actor)
	if err != nil {
		return nil, false, err
	}

	var progress db.Progress
	err = tx.Where("user_profile_id = ? AND unit_id = ?", profileID, unitID).First(&progress).Error
	if err == nil {
		return &progress, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("find progress: %w", err)
	}

	if err := ensureUnitExists(tx, unitID); err != nil {
		return nil, false, err
	}

	return &db.Progress{
		UserProfileID: profileID,
		UnitID:        unitID,
		CreatedAt:     now,
	}, true, nil
}

func ensureUnitExists(tx *gorm.DB, unitID uint) error {
	var count int64
	if err := tx.Model(&db.Unit{}).Where("id = ?", unitID).Count(&count).Error; err != nil {
		return fmt.Errorf("check unit: %w", err)
	}
	if count == 0 {
		return ErrUnitNotFound
	}
	return nil
}

// SystemCompletionRate 返回全站已完成进度占比（四舍五入的整数百分比），无记录时为 0
func (s *ProgressService) SystemCompletionRate() (int, error) {
	return NewDashboardService(s.db).SystemCompletionRate()
}

func completionRate(completed, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
