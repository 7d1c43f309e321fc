package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/langleague/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrInvalidCredentials 用户名或密码错误
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameTaken 用户名已被注册
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidToken 令牌无法解析或已过期
	ErrInvalidToken = errors.New("invalid token")
)

const minPasswordLength = 6

// AuthService 负责账号注册、登录与 JWT 签发
type AuthService struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
}

// Claims 是签入令牌的用户信息
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// NewAuthService 构造 AuthService
func NewAuthService(gdb *gorm.DB, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &AuthService{db: gdb, secret: []byte(secret), ttl: ttl}
}

// Register 注册学员账号并创建学习档案
func (s *AuthService) Register(username, password string) (*db.User, error) {
	return s.CreateUser(username, password, db.RoleStudent)
}

// CreateUser 以指定角色创建账号，供命令行与管理员使用
func (s *AuthService) CreateUser(username, password, role string) (*db.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidArgument)
	}
	if len(strings.TrimSpace(password)) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidArgument, minPasswordLength)
	}

	var count int64
	if err := s.db.Model(&db.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	if err := db.EnsureUser(s.db, username, password, role); err != nil {
		return nil, err
	}

	var user db.User
	if err := s.db.Preload("Profile").Where("username = ?", username).First(&user).Error; err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	return &user, nil
}

// Login 校验密码并签发令牌
func (s *AuthService) Login(username, password string, now time.Time) (*db.User, string, error) {
	var user db.User
	if err := s.db.Preload("Profile").Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(strings.TrimSpace(password))); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(user, now)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// IssueToken 为用户签发 HS256 令牌
func (s *AuthService) IssueToken(user db.User, now time.Time) (string, error) {
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken 校验令牌签名与有效期
func (s *AuthService) ParseToken(raw string) (*Claims, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Bearer "))
	if raw == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ActorForUser 根据账号构造调用者身份
func (s *AuthService) ActorForUser(userID uint) (Actor, error) {
	var user db.User
	if err := s.db.Preload("Profile").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Actor{}, ErrInvalidToken
		}
		return Actor{}, fmt.Errorf("load user: %w", err)
	}

	actor := Actor{UserID: user.ID, Username: user.Username, Role: user.Role}
	if user.Profile != nil {
		actor.ProfileID = user.Profile.ID
	}
	return actor, nil
}
