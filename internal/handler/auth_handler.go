package handler

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/langleague/internal/service"
)

const (
	actorContextKey = "__actor"
	sessionUserKey  = "user_id"
)

type credentialsRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// Register 注册学员账号
func (a *API) Register(c *gin.Context) {
	var payload credentialsRequest
	if !bindJSON(c, &payload, "请填写用户名和密码") {
		return
	}

	user, err := a.auth.Register(payload.Username, payload.Password)
	if err != nil {
		respondServiceError(c, err, "注册失败")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "注册成功",
		"user":    userPayload(*user),
	})
}

// Authenticate 校验账号并签发令牌，同时写入会话供浏览器使用
func (a *API) Authenticate(c *gin.Context) {
	var payload credentialsRequest
	if !bindJSON(c, &payload, "请填写用户名和密码") {
		return
	}

	user, token, err := a.auth.Login(payload.Username, payload.Password, a.clock())
	if err != nil {
		respondServiceError(c, err, "登录失败")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id_token": token,
		"user":     userPayload(*user),
	})
}

// Logout 清除会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.JSON(http.StatusOK, gin.H{"message": "已退出登录"})
}

// AuthRequired 解析 Bearer 令牌或会话中的用户，写入调用者身份
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := a.resolveUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "请先登录")
			c.Abort()
			return
		}

		actor, err := a.auth.ActorForUser(userID)
		if err != nil {
			respondServiceError(c, err, "加载用户失败")
			c.Abort()
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

func (a *API) resolveUserID(c *gin.Context) (uint, bool) {
	if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
		claims, err := a.auth.ParseToken(header)
		if err != nil {
			return 0, false
		}
		return claims.UserID, true
	}

	session := sessions.Default(c)
	switch value := session.Get(sessionUserKey).(type) {
	case uint:
		return value, value != 0
	case int:
		return uint(value), value > 0
	default:
		return 0, false
	}
}

// RequireRole 限制只有指定角色可以访问
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentActor(c).HasRole(roles...) {
			respondError(c, http.StatusForbidden, "无权执行该操作")
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentActor(c *gin.Context) service.Actor {
	if value, exists := c.Get(actorContextKey); exists {
		if actor, ok := value.(service.Actor); ok {
			return actor
		}
	}
	return service.Actor{}
}

// GetAccount 返回当前账号与学习档案
func (a *API) GetAccount(c *gin.Context) {
	actor := currentActor(c)
	profile, err := a.profiles.GetByUserID(actor.UserID)
	if err != nil {
		respondServiceError(c, err, "获取账号信息失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       actor.UserID,
		"username": actor.Username,
		"role":     actor.Role,
		"profile":  profilePayload(*profile),
	})
}
