package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type themeRequest struct {
	Theme string `json:"theme"`
}

type bioRequest struct {
	Bio string `json:"bio"`
}

// SyncStreak 记录今天的学习并返回连续天数
func (a *API) SyncStreak(c *gin.Context) {
	result, err := a.profiles.SyncStreak(currentActor(c), a.clock())
	if err != nil {
		respondServiceError(c, err, "同步连续学习失败")
		return
	}

	payload := gin.H{
		"streakCount":      result.StreakCount,
		"longestStreak":    result.LongestStreak,
		"milestoneReached": result.MilestoneReached,
	}
	if result.Skipped {
		payload["skipped"] = true
		payload["reason"] = result.Reason
	}
	c.JSON(http.StatusOK, payload)
}

// UpdateTheme 更新界面主题
func (a *API) UpdateTheme(c *gin.Context) {
	var payload themeRequest
	if !bindJSON(c, &payload, "主题格式不正确") {
		return
	}

	profile, err := a.profiles.UpdateTheme(currentActor(c), payload.Theme)
	if err != nil {
		respondServiceError(c, err, "更新主题失败")
		return
	}

	c.JSON(http.StatusOK, profilePayload(*profile))
}

// UpdateBio 更新个人简介
func (a *API) UpdateBio(c *gin.Context) {
	var payload bioRequest
	if !bindJSON(c, &payload, "简介格式不正确") {
		return
	}

	profile, err := a.profiles.UpdateBio(currentActor(c), payload.Bio)
	if err != nil {
		respondServiceError(c, err, "更新简介失败")
		return
	}

	c.JSON(http.StatusOK, profilePayload(*profile))
}

// ListAchievements 返回已获得的成就
func (a *API) ListAchievements(c *gin.Context) {
	items, err := a.achievements.ListMine(currentActor(c))
	if err != nil {
		respondServiceError(c, err, "获取成就失败")
		return
	}

	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		out = append(out, achievementPayload(item))
	}
	c.JSON(http.StatusOK, gin.H{"achievements": out})
}

// ListNotifications 返回站内通知，?unread=true 只看未读
func (a *API) ListNotifications(c *gin.Context) {
	actor := currentActor(c)
	items, err := a.notifications.ListMine(actor, c.Query("unread") == "true")
	if err != nil {
		respondServiceError(c, err, "获取通知失败")
		return
	}
	unread, err := a.notifications.UnreadCount(actor)
	if err != nil {
		respondServiceError(c, err, "获取通知失败")
		return
	}

	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		out = append(out, notificationPayload(item))
	}
	c.JSON(http.StatusOK, gin.H{"notifications": out, "unread": unread})
}

// MarkNotificationRead 标记通知已读
func (a *API) MarkNotificationRead(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的通知ID")
		return
	}

	item, err := a.notifications.MarkRead(currentActor(c), id)
	if err != nil {
		respondServiceError(c, err, "更新通知失败")
		return
	}

	c.JSON(http.StatusOK, notificationPayload(*item))
}
