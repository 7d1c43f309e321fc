package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type noteRequest struct {
	UnitID  uint   `json:"unitId"`
	Content string `json:"content"`
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type sessionStartRequest struct {
	UnitID *uint `json:"unitId"`
}

// EnrollBook 报名教材，重复报名直接返回已有记录
func (a *API) EnrollBook(c *gin.Context) {
	bookID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的教材ID")
		return
	}

	enrollment, err := a.enrollments.Enroll(currentActor(c), bookID, a.clock())
	if err != nil {
		respondServiceError(c, err, "报名失败")
		return
	}

	c.JSON(http.StatusOK, enrollmentPayload(*enrollment))
}

// ListMyEnrollments 返回当前学员的报名记录
func (a *API) ListMyEnrollments(c *gin.Context) {
	items, err := a.enrollments.ListMine(currentActor(c))
	if err != nil {
		respondServiceError(c, err, "获取报名记录失败")
		return
	}

	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		out = append(out, enrollmentPayload(item))
	}
	c.JSON(http.StatusOK, gin.H{"enrollments": out})
}

// CountEnrollments 返回全站报名总数
func (a *API) CountEnrollments(c *gin.Context) {
	total, err := a.enrollments.CountAll()
	if err != nil {
		respondServiceError(c, err, "统计报名失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": total})
}

// ListMyNotes 返回当前用户的笔记，可按 unitId 过滤
func (a *API) ListMyNotes(c *gin.Context) {
	notes, err := a.notes.ListMine(currentActor(c), parseUintQuery(c, "unitId"))
	if err != nil {
		respondServiceError(c, err, "获取笔记失败")
		return
	}

	out := make([]gin.H, 0, len(notes))
	for _, note := range notes {
		out = append(out, notePayload(note))
	}
	c.JSON(http.StatusOK, gin.H{"notes": out})
}

// SaveNote 保存单元笔记，同一单元只保留一条
func (a *API) SaveNote(c *gin.Context) {
	var payload noteRequest
	if !bindJSON(c, &payload, "笔记内容格式不正确") {
		return
	}

	note, err := a.notes.Save(currentActor(c), payload.UnitID, payload.Content, a.clock())
	if err != nil {
		respondServiceError(c, err, "保存笔记失败")
		return
	}

	c.JSON(http.StatusOK, notePayload(*note))
}

// UpdateNote 更新笔记
func (a *API) UpdateNote(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的笔记ID")
		return
	}

	var payload noteRequest
	if !bindJSON(c, &payload, "笔记内容格式不正确") {
		return
	}

	note, err := a.notes.Update(currentActor(c), id, payload.Content, a.clock())
	if err != nil {
		respondServiceError(c, err, "更新笔记失败")
		return
	}

	c.JSON(http.StatusOK, notePayload(*note))
}

// DeleteNote 删除笔记
func (a *API) DeleteNote(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的笔记ID")
		return
	}

	if err := a.notes.Delete(currentActor(c), id); err != nil {
		respondServiceError(c, err, "删除笔记失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "笔记已删除"})
}

// ListBookReviews 返回教材评价与汇总
func (a *API) ListBookReviews(c *gin.Context) {
	bookID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的教材ID")
		return
	}

	reviews, err := a.reviews.ListForBook(bookID)
	if err != nil {
		respondServiceError(c, err, "获取评价失败")
		return
	}
	summary, err := a.reviews.Summary(bookID)
	if err != nil {
		respondServiceError(c, err, "获取评价失败")
		return
	}

	out := make([]gin.H, 0, len(reviews))
	for _, review := range reviews {
		out = append(out, reviewPayload(review))
	}
	c.JSON(http.StatusOK, gin.H{"reviews": out, "summary": summary})
}

// ReviewBook 写入或更新评价
func (a *API) ReviewBook(c *gin.Context) {
	bookID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的教材ID")
		return
	}

	var payload reviewRequest
	if !bindJSON(c, &payload, "评价内容格式不正确") {
		return
	}

	review, err := a.reviews.Upsert(currentActor(c), bookID, payload.Rating, payload.Comment)
	if err != nil {
		respondServiceError(c, err, "提交评价失败")
		return
	}

	c.JSON(http.StatusOK, reviewPayload(*review))
}

// StartStudySession 开始学习时段
func (a *API) StartStudySession(c *gin.Context) {
	var payload sessionStartRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &payload, "学习时段参数不正确") {
		return
	}

	session, err := a.sessions.Start(currentActor(c), payload.UnitID, a.clock())
	if err != nil {
		respondServiceError(c, err, "开始学习失败")
		return
	}

	c.JSON(http.StatusCreated, sessionPayload(*session))
}

// FinishStudySession 结束学习时段并同步连续学习天数
func (a *API) FinishStudySession(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的学习时段ID")
		return
	}

	result, err := a.sessions.Finish(currentActor(c), id, a.clock())
	if err != nil {
		respondServiceError(c, err, "结束学习失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": sessionPayload(result.Session),
		"streak":  result.Streak,
	})
}

// ListMyStudySessions 返回最近的学习时段与累计分钟数
func (a *API) ListMyStudySessions(c *gin.Context) {
	actor := currentActor(c)
	sessions, err := a.sessions.ListMine(actor, parseIntQuery(c, "limit", 20))
	if err != nil {
		respondServiceError(c, err, "获取学习时段失败")
		return
	}

	minutes := 0
	if actor.ProfileID != 0 {
		if minutes, err = a.sessions.TotalMinutes(actor.ProfileID); err != nil {
			respondServiceError(c, err, "获取学习时段失败")
			return
		}
	}

	out := make([]gin.H, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, sessionPayload(session))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out, "totalMinutes": minutes})
}
