package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/langleague/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrGrammarNotFound 在语法点不存在时返回
	ErrGrammarNotFound = errors.New("grammar not found")
)

// GrammarService 管理单元语法点
type GrammarService struct {
	db *gorm.DB
}

// GrammarInput 定义语法点字段
type GrammarInput struct {
	Title           string
	ContentMarkdown string
	ExampleUsage    string
	OrderIndex      int
}

// GrammarView 附带渲染后的 HTML
type GrammarView struct {
	db.Grammar
	ContentHTML string `json:"contentHtml"`
}

// NewGrammarService 构造 GrammarService
func NewGrammarService(gdb *gorm.DB) *GrammarService {
	return &GrammarService{db: gdb}
}

// ListByUnit 返回单元语法点及渲染结果
func (s *GrammarService) ListByUnit(unitID uint) ([]GrammarView, error) {
	if _, err := findUnit(s.db, unitID); err != nil {
		return nil, err
	}

	var items []db.Grammar
	if err := s.db.Where("unit_id = ?", unitID).
		Order("order_index ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list grammars: %w", err)
	}

	views := make([]GrammarView, 0, len(items))
	for _, item := range items {
		view, err := newGrammarView(item)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Create 新增语法点
func (s *GrammarService) Create(actor Actor, unitID uint, input GrammarInput) (*GrammarView, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}
	if _, err := requireUnitOwner(s.db, actor, unitID); err != nil {
		return nil, err
	}

	item := db.Grammar{
		UnitID:          unitID,
		Title:           strings.TrimSpace(input.Title),
		ContentMarkdown: input.ContentMarkdown,
		ExampleUsage:    strings.TrimSpace(input.ExampleUsage),
		OrderIndex:      input.OrderIndex,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create grammar: %w", err)
	}

	view, err := newGrammarView(item)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Update 更新语法点
func (s *GrammarService) Update(actor Actor, id uint, input GrammarInput) (*GrammarView, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}

	item, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if _, err := requireUnitOwner(s.db, actor, item.UnitID); err != nil {
		return nil, err
	}

	item.Title = strings.TrimSpace(input.Title)
	item.ContentMarkdown = input.ContentMarkdown
	item.ExampleUsage = strings.TrimSpace(input.ExampleUsage)
	item.OrderIndex = input.OrderIndex
	if err := s.db.Save(item).Error; err != nil {
		return nil, fmt.Errorf("update grammar: %w", err)
	}

	view, err := newGrammarView(*item)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Delete 删除语法点
func (s *GrammarService) Delete(actor Actor, id uint) error {
	item, err := s.find(id)
	if err != nil {
		return err
	}
	if _, err := requireUnitOwner(s.db, actor, item.UnitID); err != nil {
		return err
	}
	if err := s.db.Delete(item).Error; err != nil {
		return fmt.Errorf("delete grammar: %w", err)
	}
	return nil
}

func (s *GrammarService) find(id uint) (*db.Grammar, error) {
	var item db.Grammar
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGrammarNotFound
		}
		return nil, fmt.Errorf("get grammar: %w", err)
	}
	return &item, nil
}

func newGrammarView(item db.Grammar) (GrammarView, error) {
	html, err := RenderMarkdown(item.ContentMarkdown)
	if err != nil {
		return GrammarView{}, err
	}
	return GrammarView{Grammar: item, ContentHTML: html}, nil
}
