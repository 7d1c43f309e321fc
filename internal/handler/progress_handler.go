package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UpdateSectionProgress 标记单元内某个板块已完成
func (a *API) UpdateSectionProgress(c *gin.Context) {
	unitID, err := parseUintParam(c, "unitId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的单元ID")
		return
	}

	progress, err := a.progress.UpdateSectionProgress(currentActor(c), unitID, c.Param("sectionType"), a.clock())
	if err != nil {
		respondServiceError(c, err, "更新学习进度失败")
		return
	}

	c.JSON(http.StatusOK, progressPayload(*progress))
}

// ToggleBookmark 切换单元收藏
func (a *API) ToggleBookmark(c *gin.Context) {
	unitID, err := parseUintParam(c, "unitId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的单元ID")
		return
	}

	progress, err := a.progress.ToggleBookmark(currentActor(c), unitID, a.clock())
	if err != nil {
		respondServiceError(c, err, "更新收藏失败")
		return
	}

	c.JSON(http.StatusOK, progressPayload(*progress))
}

// TrackUnitAccess 记录单元访问时间
func (a *API) TrackUnitAccess(c *gin.Context) {
	unitID, err := parseUintParam(c, "unitId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的单元ID")
		return
	}

	progress, err := a.progress.TrackUnitAccess(currentActor(c), unitID, a.clock())
	if err != nil {
		respondServiceError(c, err, "记录访问失败")
		return
	}

	c.JSON(http.StatusOK, progressPayload(*progress))
}

// CompleteUnit 直接标记单元完成
func (a *API) CompleteUnit(c *gin.Context) {
	unitID, err := parseUintParam(c, "unitId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的单元ID")
		return
	}

	progress, err := a.progress.CompleteUnit(currentActor(c), unitID, a.clock())
	if err != nil {
		respondServiceError(c, err, "更新学习进度失败")
		return
	}

	c.JSON(http.StatusOK, progressPayload(*progress))
}

// ListMyProgress 返回当前学员的全部进度
func (a *API) ListMyProgress(c *gin.Context) {
	items, err := a.progress.ListMine(currentActor(c))
	if err != nil {
		respondServiceError(c, err, "获取学习进度失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"progresses": progressListPayload(items)})
}

// ListBookmarkedProgress 返回收藏的单元
func (a *API) ListBookmarkedProgress(c *gin.Context) {
	items, err := a.progress.ListBookmarked(currentActor(c))
	if err != nil {
		respondServiceError(c, err, "获取收藏失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"progresses": progressListPayload(items)})
}

// GetRecentProgress 返回最近访问的单元进度
func (a *API) GetRecentProgress(c *gin.Context) {
	progress, err := a.progress.MostRecentlyAccessed(currentActor(c))
	if err != nil {
		respondServiceError(c, err, "获取学习进度失败")
		return
	}

	c.JSON(http.StatusOK, progressPayload(*progress))
}

// GetUnitProgress 返回指定单元的进度
func (a *API) GetUnitProgress(c *gin.Context) {
	unitID, err := parseUintParam(c, "unitId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的单元ID")
		return
	}

	progress, err := a.progress.GetForUnit(currentActor(c), unitID)
	if err != nil {
		respondServiceError(c, err, "获取学习进度失败")
		return
	}

	c.JSON(http.StatusOK, progressPayload(*progress))
}

// DeleteProgress 删除进度记录（管理员）
func (a *API) DeleteProgress(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的进度ID")
		return
	}

	if err := a.progress.Delete(currentActor(c), id); err != nil {
		respondServiceError(c, err, "删除学习进度失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "学习进度已删除"})
}

// GetCompletionRate 返回全站完成率（管理员）
func (a *API) GetCompletionRate(c *gin.Context) {
	rate, err := a.progress.SystemCompletionRate()
	if err != nil {
		respondServiceError(c, err, "统计完成率失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"completionRate": rate})
}
