package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/langleague/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrBookNotFound 在教材不存在时返回
	ErrBookNotFound = errors.New("book not found")
)

// 教材列表过滤条件
const (
	BookFilterAll         = "all"
	BookFilterPublic      = "public"
	BookFilterMine        = "mine"
	BookFilterEnrolled    = "enrolled"
	BookFilterNotEnrolled = "not-enrolled"
)

// BookService 负责教材的增删改查，写操作仅限创建者
type BookService struct {
	db *gorm.DB
}

// BookInput 定义创建/更新教材时可配置字段
type BookInput struct {
	Title         string
	Description   string
	CoverImageURL string
	IsPublic      bool
}

// NewBookService 构造 BookService
func NewBookService(gdb *gorm.DB) *BookService {
	return &BookService{db: gdb}
}

// Create 新建教材，创建者为当前教师
func (s *BookService) Create(actor Actor, input BookInput) (*db.Book, error) {
	if !actor.HasRole(db.RoleTeacher, db.RoleAdmin) {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}

	profileID, err := requireProfileID(s.db, actor)
	if err != nil {
		return nil, err
	}

	book := db.Book{
		Title:            strings.TrimSpace(input.Title),
		Description:      strings.TrimSpace(input.Description),
		CoverImageURL:    strings.TrimSpace(input.CoverImageURL),
		IsPublic:         input.IsPublic,
		TeacherProfileID: &profileID,
	}
	if err := s.db.Create(&book).Error; err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	return &book, nil
}

// Update 更新教材信息
func (s *BookService) Update(actor Actor, id uint, input BookInput) (*db.Book, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}

	book, err := requireBookOwner(s.db, actor, id)
	if err != nil {
		return nil, err
	}

	book.Title = strings.TrimSpace(input.Title)
	book.Description = strings.TrimSpace(input.Description)
	book.IsPublic = input.IsPublic
	if cover := strings.TrimSpace(input.CoverImageURL); cover != "" {
		book.CoverImageURL = cover
	}

	if err := s.db.Save(book).Error; err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}
	return book, nil
}

// SetCover 替换封面地址
func (s *BookService) SetCover(actor Actor, id uint, url string) (*db.Book, error) {
	book, err := requireBookOwner(s.db, actor, id)
	if err != nil {
		return nil, err
	}

	book.CoverImageURL = url
	if err := s.db.Model(book).Update("cover_image_url", url).Error; err != nil {
		return nil, fmt.Errorf("update cover: %w", err)
	}
	return book, nil
}

// Delete 删除教材及其单元
func (s *BookService) Delete(actor Actor, id uint) error {
	if _, err := requireBookOwner(s.db, actor, id); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var unitIDs []uint
		if err := tx.Model(&db.Unit{}).Where("book_id = ?", id).Pluck("id", &unitIDs).Error; err != nil {
			return fmt.Errorf("list units: %w", err)
		}
		if len(unitIDs) > 0 {
			if err := deleteUnitContent(tx, unitIDs); err != nil {
				return err
			}
			if err := tx.Where("book_id = ?", id).Delete(&db.Unit{}).Error; err != nil {
				return fmt.Errorf("delete units: %w", err)
			}
		}
		if err := tx.Where("book_id = ?", id).Delete(&db.Enrollment{}).Error; err != nil {
			return fmt.Errorf("delete enrollments: %w", err)
		}
		if err := tx.Where("book_id = ?", id).Delete(&db.BookReview{}).Error; err != nil {
			return fmt.Errorf("delete reviews: %w", err)
		}
		if err := tx.Delete(&db.Book{}, id).Error; err != nil {
			return fmt.Errorf("delete book: %w", err)
		}
		return nil
	})
}

// Get 根据 ID 获取教材
func (s *BookService) Get(id uint) (*db.Book, error) {
	return findBook(s.db, id)
}

// List 根据过滤条件返回教材，未知条件按 all 处理
func (s *BookService) List(actor Actor, filter string) ([]db.Book, error) {
	query := s.db.Model(&db.Book{})

	switch strings.ToLower(strings.TrimSpace(filter)) {
	case BookFilterPublic:
		query = query.Where("is_public = ?", true)
	case BookFilterMine:
		profileID, err := requireProfileID(s.db, actor)
		if err != nil {
			return nil, err
		}
		query = query.Where("teacher_profile_id = ?", profileID)
	case BookFilterEnrolled, BookFilterNotEnrolled:
		profileID, err := requireProfileID(s.db, actor)
		if err != nil {
			return nil, err
		}
		enrolled := s.db.Model(&db.Enrollment{}).Select("book_id").Where("user_profile_id = ?", profileID)
		if strings.EqualFold(filter, BookFilterEnrolled) {
			query = query.Where("id IN (?)", enrolled)
		} else {
			query = query.Where("id NOT IN (?)", enrolled).Where("is_public = ?", true)
		}
	}

	var books []db.Book
	if err := query.Order("created_at DESC, id DESC").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// ListPublic 返回公开教材，供未登录访问
func (s *BookService) ListPublic() ([]db.Book, error) {
	return s.List(Actor{}, BookFilterPublic)
}

// Newest 返回最新创建的公开教材
func (s *BookService) Newest(limit int) ([]db.Book, error) {
	if limit <= 0 || limit > 50 {
		limit = 5
	}

	var books []db.Book
	if err := s.db.Where("is_public = ?", true).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&books).Error; err != nil {
		return nil, fmt.Errorf("list newest books: %w", err)
	}
	return books, nil
}

func findBook(tx *gorm.DB, id uint) (*db.Book, error) {
	var book db.Book
	if err := tx.First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

// requireBookOwner 返回教材，调用者既不是创建者也不是管理员时返回 ErrForbidden
func requireBookOwner(tx *gorm.DB, actor Actor, bookID uint) (*db.Book, error) {
	book, err := findBook(tx, bookID)
	if err != nil {
		return nil, err
	}
	if actor.HasRole(db.RoleAdmin) {
		return book, nil
	}

	profileID, err := requireProfileID(tx, actor)
	if err != nil {
		return nil, err
	}
	if book.TeacherProfileID == nil || *book.TeacherProfileID != profileID {
		return nil, ErrForbidden
	}
	return book, nil
}

// RequireOwner 校验调用者是否为教材创建者
func (s *BookService) RequireOwner(actor Actor, id uint) (*db.Book, error) {
	return requireBookOwner(s.db, actor, id)
}
