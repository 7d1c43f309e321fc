package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetTeacherDashboard 返回当前教师的看板
func (a *API) GetTeacherDashboard(c *gin.Context) {
	actor := currentActor(c)
	if actor.ProfileID == 0 {
		respondError(c, http.StatusNotFound, "未找到用户资料")
		return
	}

	dashboard, err := a.dashboards.TeacherDashboard(actor.ProfileID)
	if err != nil {
		respondServiceError(c, err, "获取看板失败")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// GetAdminDashboard 返回全站看板
func (a *API) GetAdminDashboard(c *gin.Context) {
	dashboard, err := a.dashboards.AdminDashboard()
	if err != nil {
		respondServiceError(c, err, "获取看板失败")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// GetLearningReport 返回当前用户的学习报告
func (a *API) GetLearningReport(c *gin.Context) {
	report, err := a.dashboards.LearningReport(currentActor(c), a.clock())
	if err != nil {
		respondServiceError(c, err, "获取学习报告失败")
		return
	}
	c.JSON(http.StatusOK, report)
}
