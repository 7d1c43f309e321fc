package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/langleague/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrNoteNotFound 在笔记不存在时返回
	ErrNoteNotFound = errors.New("note not found")
)

// NoteService 管理学员笔记，每个单元一条
type NoteService struct {
	db *gorm.DB
}

// NoteView 附带渲染后的 HTML
type NoteView struct {
	db.Note
	ContentHTML string `json:"contentHtml"`
}

// NewNoteService 构造 NoteService
func NewNoteService(gdb *gorm.DB) *NoteService {
	return &NoteService{db: gdb}
}

// Save 写入笔记；该单元已有笔记时覆盖内容
func (s *NoteService) Save(actor Actor, unitID uint, content string, now time.Time) (*NoteView, error) {
	var note db.Note
	err := atClock(s.db, now).Transaction(func(tx *gorm.DB) error {
		profileID, err := requireProfileID(tx, actor)
		if err != nil {
			return err
		}
		if _, err := findUnit(tx, unitID); err != nil {
			return err
		}

		err = tx.Where("user_profile_id = ? AND unit_id = ?", profileID, unitID).First(&note).Error
		switch {
		case err == nil:
			note.Content = content
			if err := tx.Save(&note).Error; err != nil {
				return fmt.Errorf("update note: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			note = db.Note{UserProfileID: profileID, UnitID: unitID, Content: content, CreatedAt: now, UpdatedAt: now}
			if err := tx.Create(&note).Error; err != nil {
				return fmt.Errorf("create note: %w", err)
			}
		default:
			return fmt.Errorf("find note: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newNoteView(note)
}

// Update 修改指定笔记，仅作者可用
func (s *NoteService) Update(actor Actor, id uint, content string, now time.Time) (*NoteView, error) {
	note, err := s.requireOwner(actor, id)
	if err != nil {
		return nil, err
	}

	note.Content = content
	if err := atClock(s.db, now).Save(note).Error; err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return newNoteView(*note)
}

// Delete 删除指定笔记，仅作者可用
func (s *NoteService) Delete(actor Actor, id uint) error {
	note, err := s.requireOwner(actor, id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(note).Error; err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

// ListMine 返回当前学员的笔记，unitID 非 0 时只返回该单元
func (s *NoteService) ListMine(actor Actor, unitID uint) ([]NoteView, error) {
	profileID, err := requireProfileID(s.db, actor)
	if err != nil {
		return nil, err
	}

	query := s.db.Where("user_profile_id = ?", profileID)
	if unitID != 0 {
		query = query.Where("unit_id = ?", unitID)
	}

	var notes []db.Note
	if err := query.Order("updated_at DESC, id DESC").Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	views := make([]NoteView, 0, len(notes))
	for _, note := range notes {
		view, err := newNoteView(note)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *NoteService) requireOwner(actor Actor, id uint) (*db.Note, error) {
	var note db.Note
	if err := s.db.First(&note, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	profileID, err := requireProfileID(s.db, actor)
	if err != nil {
		return nil, err
	}
	if note.UserProfileID != profileID {
		return nil, ErrForbidden
	}
	return &note, nil
}

func newNoteView(note db.Note) (*NoteView, error) {
	html, err := RenderMarkdown(note.Content)
	if err != nil {
		return nil, err
	}
	return &NoteView{Note: note, ContentHTML: html}, nil
}
