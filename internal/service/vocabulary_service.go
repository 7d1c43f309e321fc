package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/langleague/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrVocabularyNotFound 在词汇不存在时返回
	ErrVocabularyNotFound = errors.New("vocabulary not found")
)

// VocabularyService 管理单元词汇
type VocabularyService struct {
	db *gorm.DB
}

// VocabularyInput 定义词汇字段
type VocabularyInput struct {
	Word       string
	Phonetic   string
	Meaning    string
	Example    string
	ImageURL   string
	OrderIndex int
}

// NewVocabularyService 构造 VocabularyService
func NewVocabularyService(gdb *gorm.DB) *VocabularyService {
	return &VocabularyService{db: gdb}
}

// ListByUnit 按顺序返回单元词汇
func (s *VocabularyService) ListByUnit(unitID uint) ([]db.Vocabulary, error) {
	if _, err := findUnit(s.db, unitID); err != nil {
		return nil, err
	}

	var items []db.Vocabulary
	if err := s.db.Where("unit_id = ?", unitID).
		Order("order_index ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list vocabularies: %w", err)
	}
	return items, nil
}

// Create 新增词汇
func (s *VocabularyService) Create(actor Actor, unitID uint, input VocabularyInput) (*db.Vocabulary, error) {
	if err := validateVocabularyInput(input); err != nil {
		return nil, err
	}
	if _, err := requireUnitOwner(s.db, actor, unitID); err != nil {
		return nil, err
	}

	item := input.toModel(unitID)
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create vocabulary: %w", err)
	}
	return &item, nil
}

// Update 更新词汇
func (s *VocabularyService) Update(actor Actor, id uint, input VocabularyInput) (*db.Vocabulary, error) {
	if err := validateVocabularyInput(input); err != nil {
		return nil, err
	}

	var item db.Vocabulary
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVocabularyNotFound
		}
		return nil, fmt.Errorf("get vocabulary: %w", err)
	}
	if _, err := requireUnitOwner(s.db, actor, item.UnitID); err != nil {
		return nil, err
	}

	updated := input.toModel(item.UnitID)
	updated.Model = item.Model
	if err := s.db.Save(&updated).Error; err != nil {
		return nil, fmt.Errorf("update vocabulary: %w", err)
	}
	return &updated, nil
}

// Delete 删除词汇
func (s *VocabularyService) Delete(actor Actor, id uint) error {
	var item db.Vocabulary
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVocabularyNotFound
		}
		return fmt.Errorf("get vocabulary: %w", err)
	}
	if _, err := requireUnitOwner(s.db, actor, item.UnitID); err != nil {
		return err
	}

	// 硬删除，保证同一单词可以重新导入
	if err := s.db.Unscoped().Delete(&item).Error; err != nil {
		return fmt.Errorf("delete vocabulary: %w", err)
	}
	return nil
}

// Upsert 按 (单元, 单词) 写入词汇，已存在时覆盖其余字段；返回是否为新建
func (s *VocabularyService) Upsert(tx *gorm.DB, unitID uint, input VocabularyInput) (bool, error) {
	if tx == nil {
		tx = s.db
	}
	if err := validateVocabularyInput(input); err != nil {
		return false, err
	}

	var existing int64
	word := strings.TrimSpace(input.Word)
	if err := tx.Model(&db.Vocabulary{}).Where("unit_id = ? AND word = ?", unitID, word).Count(&existing).Error; err != nil {
		return false, fmt.Errorf("check vocabulary: %w", err)
	}

	item := input.toModel(unitID)
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "unit_id"}, {Name: "word"}},
		DoUpdates: clause.AssignmentColumns([]string{"phonetic", "meaning", "example", "image_url", "order_index", "updated_at"}),
	}).Create(&item).Error; err != nil {
		return false, fmt.Errorf("upsert vocabulary: %w", err)
	}
	return existing == 0, nil
}

func validateVocabularyInput(input VocabularyInput) error {
	if strings.TrimSpace(input.Word) == "" {
		return fmt.Errorf("%w: word is required", ErrInvalidArgument)
	}
	return nil
}

func (input VocabularyInput) toModel(unitID uint) db.Vocabulary {
	return db.Vocabulary{
		UnitID:     unitID,
		Word:       strings.TrimSpace(input.Word),
		Phonetic:   strings.TrimSpace(input.Phonetic),
		Meaning:    strings.TrimSpace(input.Meaning),
		Example:    strings.TrimSpace(input.Example),
		ImageURL:   strings.TrimSpace(input.ImageURL),
		OrderIndex: input.OrderIndex,
	}
}
