package service

import (
	"errors"
	"fmt"

	"github.com/langleague/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrNotificationNotFound 在通知不存在时返回
	ErrNotificationNotFound = errors.New("notification not found")
)

// NotificationService 查询与标记站内通知
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService 构造 NotificationService
func NewNotificationService(gdb *gorm.DB) *NotificationService {
	return &NotificationService{db: gdb}
}

// ListMine 返回当前用户的通知，unreadOnly 为真时只返回未读
func (s *NotificationService) ListMine(actor Actor, unreadOnly bool) ([]db.Notification, error) {
	profileID, err := requireProfileID(s.db, actor)
	if err != nil {
		return nil, err
	}

	query := s.db.Where("user_profile_id = ?", profileID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var items []db.Notification
	if err := query.Order("created_at DESC, id DESC").Limit(100).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}

// MarkRead 标记通知为已读，仅接收者可用
func (s *NotificationService) MarkRead(actor Actor, id uint) (*db.Notification, error) {
	profileID, err := requireProfileID(s.db, actor)
	if err != nil {
		return nil, err
	}

	var item db.Notification
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	if item.UserProfileID != profileID {
		return nil, ErrForbidden
	}

	if !item.IsRead {
		item.IsRead = true
		if err := s.db.Model(&item).Update("is_read", true).Error; err != nil {
			return nil, fmt.Errorf("mark notification read: %w", err)
		}
	}
	return &item, nil
}

// UnreadCount 返回未读通知数量
func (s *NotificationService) UnreadCount(actor Actor) (int64, error) {
	profileID, err := requireProfileID(s.db, actor)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := s.db.Model(&db.Notification{}).
		Where("user_profile_id = ? AND is_read = ?", profileID, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return count, nil
}
