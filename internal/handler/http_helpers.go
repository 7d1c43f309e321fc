package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/langleague/internal/importer"
	"github.com/langleague/internal/service"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

func parseUintQuery(c *gin.Context, key string) uint {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return fallback
	}
	return value
}

var notFoundMessages = []struct {
	err     error
	message string
}{
	{service.ErrProfileNotFound, "学习档案不存在"},
	{service.ErrUnitNotFound, "单元不存在"},
	{service.ErrProgressNotFound, "学习进度不存在"},
	{service.ErrBookNotFound, "教材不存在"},
	{service.ErrVocabularyNotFound, "词汇不存在"},
	{service.ErrGrammarNotFound, "语法点不存在"},
	{service.ErrExerciseNotFound, "练习不存在"},
	{service.ErrNoteNotFound, "笔记不存在"},
	{service.ErrSessionNotFound, "学习记录不存在"},
	{service.ErrNotificationNotFound, "通知不存在"},
}

// respondServiceError 把服务层哨兵错误映射为 HTTP 状态码
func respondServiceError(c *gin.Context, err error, fallback string) {
	for _, item := range notFoundMessages {
		if errors.Is(err, item.err) {
			respondError(c, http.StatusNotFound, item.message)
			return
		}
	}

	switch {
	case errors.Is(err, service.ErrInvalidArgument), errors.Is(err, importer.ErrUnsupportedFormat):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, "无权执行该操作")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "用户名或密码错误")
	case errors.Is(err, service.ErrInvalidToken):
		respondError(c, http.StatusUnauthorized, "登录已失效，请重新登录")
	case errors.Is(err, service.ErrUsernameTaken):
		respondError(c, http.StatusConflict, "用户名已存在")
	default:
		log.Printf("handler: %s %s: %v", c.Request.Method, c.FullPath(), err)
		respondError(c, http.StatusInternalServerError, fallback)
	}
}
