package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/langleague/internal/db"
	"gorm.io/gorm"
)

// UnitService 管理教材下的单元，写操作仅限教材创建者
type UnitService struct {
	db *gorm.DB
}

// UnitInput 定义创建/更新单元时可配置字段
type UnitInput struct {
	Title      string
	Summary    string
	OrderIndex *int
}

// UnitSummary 是带内容数量的单元列表项
type UnitSummary struct {
	db.Unit
	VocabularyCount int64 `json:"vocabularyCount"`
	GrammarCount    int64 `json:"grammarCount"`
	ExerciseCount   int64 `json:"exerciseCount"`
}

// NewUnitService 构造 UnitService
func NewUnitService(gdb *gorm.DB) *UnitService {
	return &UnitService{db: gdb}
}

// Create 在教材末尾追加单元
func (s *UnitService) Create(actor Actor, bookID uint, input UnitInput) (*db.Unit, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}
	if _, err := requireBookOwner(s.db, actor, bookID); err != nil {
		return nil, err
	}

	order := 0
	if input.OrderIndex != nil {
		order = *input.OrderIndex
	} else {
		var maxOrder *int
		if err := s.db.Model(&db.Unit{}).Where("book_id = ?", bookID).
			Select("MAX(order_index)").Scan(&maxOrder).Error; err != nil {
			return nil, fmt.Errorf("load unit order: %w", err)
		}
		if maxOrder != nil {
			order = *maxOrder + 1
		}
	}

	unit := db.Unit{
		BookID:     bookID,
		Title:      strings.TrimSpace(input.Title),
		Summary:    strings.TrimSpace(input.Summary),
		OrderIndex: order,
	}
	if err := s.db.Create(&unit).Error; err != nil {
		return nil, fmt.Errorf("create unit: %w", err)
	}
	return &unit, nil
}

// Update 更新单元
func (s *UnitService) Update(actor Actor, id uint, input UnitInput) (*db.Unit, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}

	unit, err := requireUnitOwner(s.db, actor, id)
	if err != nil {
		return nil, err
	}

	unit.Title = strings.TrimSpace(input.Title)
	unit.Summary = strings.TrimSpace(input.Summary)
	if input.OrderIndex != nil {
		unit.OrderIndex = *input.OrderIndex
	}
	if err := s.db.Save(unit).Error; err != nil {
		return nil, fmt.Errorf("update unit: %w", err)
	}
	return unit, nil
}

// Delete 删除单元及其内容与学习记录
func (s *UnitService) Delete(actor Actor, id uint) error {
	if _, err := requireUnitOwner(s.db, actor, id); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteUnitContent(tx, []uint{id}); err != nil {
			return err
		}
		if err := tx.Delete(&db.Unit{}, id).Error; err != nil {
			return fmt.Errorf("delete unit: %w", err)
		}
		return nil
	})
}

// Get 根据 ID 获取单元
func (s *UnitService) Get(id uint) (*db.Unit, error) {
	return findUnit(s.db, id)
}

// ListByBook 按顺序返回单元，各类内容数量通过分组查询一次取出
func (s *UnitService) ListByBook(bookID uint) ([]UnitSummary, error) {
	if _, err := findBook(s.db, bookID); err != nil {
		return nil, err
	}

	var units []db.Unit
	if err := s.db.Where("book_id = ?", bookID).
		Order("order_index ASC, id ASC").
		Find(&units).Error; err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	if len(units) == 0 {
		return []UnitSummary{}, nil
	}

	ids := make([]uint, 0, len(units))
	for _, unit := range units {
		ids = append(ids, unit.ID)
	}

	vocabCounts, err := countByUnit(s.db, &db.Vocabulary{}, ids)
	if err != nil {
		return nil, err
	}
	grammarCounts, err := countByUnit(s.db, &db.Grammar{}, ids)
	if err != nil {
		return nil, err
	}
	exerciseCounts, err := countByUnit(s.db, &db.Exercise{}, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]UnitSummary, 0, len(units))
	for _, unit := range units {
		summaries = append(summaries, UnitSummary{
			Unit:            unit,
			VocabularyCount: vocabCounts[unit.ID],
			GrammarCount:    grammarCounts[unit.ID],
			ExerciseCount:   exerciseCounts[unit.ID],
		})
	}
	return summaries, nil
}

// Reorder 按给定顺序重排单元，不属于该教材的 ID 会被忽略
func (s *UnitService) Reorder(actor Actor, bookID uint, ids []uint) error {
	if _, err := requireBookOwner(s.db, actor, bookID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for index, id := range ids {
			if err := tx.Model(&db.Unit{}).
				Where("id = ? AND book_id = ?", id, bookID).
				Update("order_index", index).Error; err != nil {
				return fmt.Errorf("reorder units: %w", err)
			}
		}
		return nil
	})
}

type unitCount struct {
	UnitID uint
	Total  int64
}

func countByUnit(tx *gorm.DB, model interface{}, unitIDs []uint) (map[uint]int64, error) {
	var rows []unitCount
	if err := tx.Model(model).
		Select("unit_id, COUNT(*) AS total").
		Where("unit_id IN ?", unitIDs).
		Group("unit_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count unit content: %w", err)
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.UnitID] = row.Total
	}
	return counts, nil
}

// deleteUnitContent 只删除教材内容，学员的进度与笔记保留
func deleteUnitContent(tx *gorm.DB, unitIDs []uint) error {
	for _, model := range []interface{}{&db.Vocabulary{}, &db.Grammar{}, &db.Exercise{}} {
		if err := tx.Where("unit_id IN ?", unitIDs).Delete(model).Error; err != nil {
			return fmt.Errorf("delete unit content: %w", err)
		}
	}
	return nil
}

func findUnit(tx *gorm.DB, id uint) (*db.Unit, error) {
	var unit db.Unit
	if err := tx.First(&unit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, fmt.Errorf("get unit: %w", err)
	}
	return &unit, nil
}

// requireUnitOwner 返回单元，调用者必须是所属教材的创建者
func requireUnitOwner(tx *gorm.DB, actor Actor, unitID uint) (*db.Unit, error) {
	unit, err := findUnit(tx, unitID)
	if err != nil {
		return nil, err
	}
	if _, err := requireBookOwner(tx, actor, unit.BookID); err != nil {
		return nil, err
	}
	return unit, nil
}

// RequireOwner 校验调用者是否为单元所属教材的创建者
func (s *UnitService) RequireOwner(actor Actor, unitID uint) (*db.Unit, error) {
	return requireUnitOwner(s.db, actor, unitID)
}
