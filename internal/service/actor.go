package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/langleague/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrInvalidArgument 表示调用方传入了非法参数，对应 400
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrForbidden 表示调用方无权操作该资源，对应 403
	ErrForbidden = errors.New("forbidden")
	// ErrProfileNotFound 在当前用户没有学习档案时返回
	ErrProfileNotFound = errors.New("user profile not found")
)

// Actor 描述一次请求的调用者身份，由认证中间件解析后显式传入各个服务
type Actor struct {
	UserID    uint
	ProfileID uint
	Username  string
	Role      string
}

// IsStudent 判断是否为学员
func (a Actor) IsStudent() bool {
	return a.Role == db.RoleStudent
}

// HasRole 判断是否拥有任一角色
func (a Actor) HasRole(roles ...string) bool {
	for _, role := range roles {
		if a.Role == role {
			return true
		}
	}
	return false
}

func loadProfile(tx *gorm.DB, actor Actor) (*db.UserProfile, error) {
	var profile db.UserProfile
	query := tx
	switch {
	case actor.ProfileID != 0:
		query = query.Where("id = ?", actor.ProfileID)
	case actor.UserID != 0:
		query = query.Where("user_id = ?", actor.UserID)
	default:
		return nil, ErrProfileNotFound
	}

	if err := query.First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &profile, nil
}

func requireProfileID(tx *gorm.DB, actor Actor) (uint, error) {
	if actor.ProfileID != 0 {
		return actor.ProfileID, nil
	}
	profile, err := loadProfile(tx, actor)
	if err != nil {
		return 0, err
	}
	return profile.ID, nil
}

// atClock 让 gorm 自动维护的 created_at/updated_at 使用调用方给定的时间
func atClock(gdb *gorm.DB, now time.Time) *gorm.DB {
	return gdb.Session(&gorm.Session{NowFunc: func() time.Time { return now }})
}
