package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/langleague/internal/service"
)

type unitRequest struct {
	Title      string `json:"title"`
	Summary    string `json:"summary"`
	OrderIndex *int   `json:"orderIndex"`
}

type unitReorderRequest struct {
	IDs []uint `json:"ids"`
}

func (r unitRequest) toInput() service.UnitInput {
	return service.UnitInput{Title: r.Title, Summary: r.Summary, OrderIndex: r.OrderIndex}
}

// ListBookUnits 返回教材下的单元及内容数量
func (a *API) ListBookUnits(c *gin.Context) {
	bookID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的教材ID")
		return
	}

	units, err := a.units.ListByBook(bookID)
	if err != nil {
		respondServiceError(c, err, "获取单元失败")
		return
	}

	items := make([]gin.H, 0, len(units))
	for _, unit := range units {
		items = append(items, unitSummaryPayload(unit))
	}
	c.JSON(http.StatusOK, gin.H{"units": items})
}

// CreateUnit 新建单元
func (a *API) CreateUnit(c *gin.Context) {
	bookID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的教材ID")
		return
	}

	var payload unitRequest
	if !bindJSON(c, &payload, "请填写完整的单元信息") {
		return
	}

	unit, err := a.units.Create(currentActor(c), bookID, payload.toInput())
	if err != nil {
		respondServiceError(c, err, "创建单元失败")
		return
	}

	c.JSON(http.StatusCreated, unitPayload(*unit))
}

// ReorderUnits 更新单元顺序
func (a *API) ReorderUnits(c *gin.Context) {
	bookID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的教材ID")
		return
	}

	var payload unitReorderRequest
	if !bindJSON(c, &payload, "排序数据格式不正确") {
		return
	}

	if err := a.units.Reorder(currentActor(c), bookID, payload.IDs); err != nil {
		respondServiceError(c, err, "更新排序失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "排序已更新"})
}

// UpdateUnit 更新单元
func (a *API) UpdateUnit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的单元ID")
		return
	}

	var payload unitRequest
	if !bindJSON(c, &payload, "请填写完整的单元信息") {
		return
	}

	unit, err := a.units.Update(currentActor(c), id, payload.toInput())
	if err != nil {
		respondServiceError(c, err, "更新单元失败")
		return
	}

	c.JSON(http.StatusOK, unitPayload(*unit))
}

// DeleteUnit 删除单元
func (a *API) DeleteUnit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的单元ID")
		return
	}

	if err := a.units.Delete(currentActor(c), id); err != nil {
		respondServiceError(c, err, "删除单元失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "单元已删除"})
}
