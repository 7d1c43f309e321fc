package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/langleague/internal/service"
)

type bookRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	CoverImageURL string `json:"coverImageUrl"`
	IsPublic      bool   `json:"isPublic"`
}

func (r bookRequest) toInput() service.BookInput {
	return service.BookInput{
		Title:         r.Title,
		Description:   r.Description,
		CoverImageURL: r.CoverImageURL,
		IsPublic:      r.IsPublic,
	}
}

// ListPublicBooks 返回公开教材，无需登录
func (a *API) ListPublicBooks(c *gin.Context) {
	books, err := a.books.ListPublic()
	if err != nil {
		respondServiceError(c, err, "获取教材失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": bookListPayload(books)})
}

// ListBooks 返回教材列表，?filter=all|public|mine|enrolled|not-enrolled
func (a *API) ListBooks(c *gin.Context) {
	filter := c.DefaultQuery("filter", service.BookFilterAll)
	books, err := a.books.List(currentActor(c), filter)
	if err != nil {
		respondServiceError(c, err, "获取教材失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": bookListPayload(books)})
}

// ListNewestBooks 返回最新的公开教材
func (a *API) ListNewestBooks(c *gin.Context) {
	books, err := a.books.Newest(parseIntQuery(c, "limit", 5))
	if err != nil {
		respondServiceError(c, err, "获取教材失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": bookListPayload(books)})
}

// GetBook 返回教材详情、评分汇总与报名状态
func (a *API) GetBook(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的教材ID")
		return
	}

	book, err := a.books.Get(id)
	if err != nil {
		respondServiceError(c, err, "获取教材失败")
		return
	}

	actor := currentActor(c)
	enrolled, err := a.enrollments.IsEnrolled(actor, id)
	if err != nil {
		respondServiceError(c, err, "获取教材失败")
		return
	}
	summary, err := a.reviews.Summary(id)
	if err != nil {
		respondServiceError(c, err, "获取教材失败")
		return
	}

	payload := bookPayload(*book)
	payload["enrolled"] = enrolled
	payload["reviewSummary"] = summary
	c.JSON(http.StatusOK, payload)
}

// CreateBook 创建教材
func (a *API) CreateBook(c *gin.Context) {
	var payload bookRequest
	if !bindJSON(c, &payload, "请填写完整的教材信息") {
		return
	}

	book, err := a.books.Create(currentActor(c), payload.toInput())
	if err != nil {
		respondServiceError(c, err, "创建教材失败")
		return
	}

	c.JSON(http.StatusCreated, bookPayload(*book))
}

// UpdateBook 更新教材
func (a *API) UpdateBook(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的教材ID")
		return
	}

	var payload bookRequest
	if !bindJSON(c, &payload, "请填写完整的教材信息") {
		return
	}

	book, err := a.books.Update(currentActor(c), id, payload.toInput())
	if err != nil {
		respondServiceError(c, err, "更新教材失败")
		return
	}

	c.JSON(http.StatusOK, bookPayload(*book))
}

// DeleteBook 删除教材
func (a *API) DeleteBook(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的教材ID")
		return
	}

	if err := a.books.Delete(currentActor(c), id); err != nil {
		respondServiceError(c, err, "删除教材失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "教材已删除"})
}
