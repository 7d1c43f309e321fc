package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/langleague/internal/importer"
	"github.com/langleague/internal/service"
)

type vocabularyRequest struct {
	Word       string `json:"word"`
	Phonetic   string `json:"phonetic"`
	Meaning    string `json:"meaning"`
	Example    string `json:"example"`
	ImageURL   string `json:"imageUrl"`
	OrderIndex int    `json:"orderIndex"`
}

func (r vocabularyRequest) toInput() service.VocabularyInput {
	return service.VocabularyInput{
		Word:       r.Word,
		Phonetic:   r.Phonetic,
		Meaning:    r.Meaning,
		Example:    r.Example,
		ImageURL:   r.ImageURL,
		OrderIndex: r.OrderIndex,
	}
}

type grammarRequest struct {
	Title           string `json:"title"`
	ContentMarkdown string `json:"contentMarkdown"`
	ExampleUsage    string `json:"exampleUsage"`
	OrderIndex      int    `json:"orderIndex"`
}

func (r grammarRequest) toInput() service.GrammarInput {
	return service.GrammarInput{
		Title:           r.Title,
		ContentMarkdown: r.ContentMarkdown,
		ExampleUsage:    r.ExampleUsage,
		OrderIndex:      r.OrderIndex,
	}
}

type exerciseRequest struct {
	ExerciseType  string   `json:"exerciseType"`
	ExerciseText  string   `json:"exerciseText"`
	CorrectAnswer string   `json:"correctAnswer"`
	Choices       []string `json:"choices"`
	AudioURL      string   `json:"audioUrl"`
	ImageURL      string   `json:"imageUrl"`
	OrderIndex    int      `json:"orderIndex"`
}

func (r exerciseRequest) toInput() service.ExerciseInput {
	return service.ExerciseInput{
		ExerciseType:  r.ExerciseType,
		ExerciseText:  r.ExerciseText,
		CorrectAnswer: r.CorrectAnswer,
		Choices:       r.Choices,
		AudioURL:      r.AudioURL,
		ImageURL:      r.ImageURL,
		OrderIndex:    r.OrderIndex,
	}
}

type answerRequest struct {
	Answer string `json:"answer"`
}

// ListVocabularies 返回单元词汇
func (a *API) ListVocabularies(c *gin.Context) {
	unitID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的单元ID")
		return
	}

	items, err := a.vocabularies.ListByUnit(unitID)
	if err != nil {
		respondServiceError(c, err, "获取词汇失败")
		return
	}

	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		out = append(out, vocabularyPayload(item))
	}
	c.JSON(http.StatusOK, gin.H{"vocabularies": out})
}

// CreateVocabulary 新增词汇
func (a *API) CreateVocabulary(c *gin.Context) {
	unitID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的单元ID")
		return
	}

	var payload vocabularyRequest
	if !bindJSON(c, &payload, "请填写完整的词汇信息") {
		return
	}

	item, err := a.vocabularies.Create(currentActor(c), unitID, payload.toInput())
	if err != nil {
		respondServiceError(c, err, "新增词汇失败")
		return
	}

	c.JSON(http.StatusCreated, vocabularyPayload(*item))
}

// UpdateVocabulary 更新词汇
func (a *API) UpdateVocabulary(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的词汇ID")
		return
	}

	var payload vocabularyRequest
	if !bindJSON(c, &payload, "请填写完整的词汇信息") {
		return
	}

	item, err := a.vocabularies.Update(currentActor(c), id, payload.toInput())
	if err != nil {
		respondServiceError(c, err, "更新词汇失败")
		return
	}

	c.JSON(http.StatusOK, vocabularyPayload(*item))
}

// DeleteVocabulary 删除词汇
func (a *API) DeleteVocabulary(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的词汇ID")
		return
	}

	if err := a.vocabularies.Delete(currentActor(c), id); err != nil {
		respondServiceError(c, err, "删除词汇失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "词汇已删除"})
}

// ImportVocabularies 从上传的 xlsx/csv 文件批量导入词汇
func (a *API) ImportVocabularies(c *gin.Context) {
	unitID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的单元ID")
		return
	}

	if _, err := a.units.RequireOwner(currentActor(c), unitID); err != nil {
		respondServiceError(c, err, "导入词汇失败")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "未找到上传的文件")
		return
	}
	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "读取文件失败")
		return
	}
	defer src.Close()

	result, err := importer.ImportVocabulary(a.db, unitID, file.Filename, src)
	if err != nil {
		respondServiceError(c, err, "导入词汇失败")
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListGrammars 返回单元语法点
func (a *API) ListGrammars(c *gin.Context) {
	unitID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的单元ID")
		return
	}

	items, err := a.grammars.ListByUnit(unitID)
	if err != nil {
		respondServiceError(c, err, "获取语法点失败")
		return
	}

	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		out = append(out, grammarPayload(item))
	}
	c.JSON(http.StatusOK, gin.H{"grammars": out})
}

// CreateGrammar 新增语法点
func (a *API) CreateGrammar(c *gin.Context) {
	unitID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的单元ID")
		return
	}

	var payload grammarRequest
	if !bindJSON(c, &payload, "请填写完整的语法信息") {
		return
	}

	item, err := a.grammars.Create(currentActor(c), unitID, payload.toInput())
	if err != nil {
		respondServiceError(c, err, "新增语法点失败")
		return
	}

	c.JSON(http.StatusCreated, grammarPayload(*item))
}

// UpdateGrammar 更新语法点
func (a *API) UpdateGrammar(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的语法点ID")
		return
	}

	var payload grammarRequest
	if !bindJSON(c, &payload, "请填写完整的语法信息") {
		return
	}

	item, err := a.grammars.Update(currentActor(c), id, payload.toInput())
	if err != nil {
		respondServiceError(c, err, "更新语法点失败")
		return
	}

	c.JSON(http.StatusOK, grammarPayload(*item))
}

// DeleteGrammar 删除语法点
func (a *API) DeleteGrammar(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的语法点ID")
		return
	}

	if err := a.grammars.Delete(currentActor(c), id); err != nil {
		respondServiceError(c, err, "删除语法点失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "语法点已删除"})
}

// ListExercises 返回单元练习，教材创建者可见答案
func (a *API) ListExercises(c *gin.Context) {
	unitID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的单元ID")
		return
	}

	items, err := a.exercises.ListByUnit(unitID)
	if err != nil {
		respondServiceError(c, err, "获取练习失败")
		return
	}

	_, ownerErr := a.units.RequireOwner(currentActor(c), unitID)
	withAnswer := ownerErr == nil

	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		out = append(out, exercisePayload(item, withAnswer))
	}
	c.JSON(http.StatusOK, gin.H{"exercises": out})
}

// CreateExercise 新增练习
func (a *API) CreateExercise(c *gin.Context) {
	unitID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的单元ID")
		return
	}

	var payload exerciseRequest
	if !bindJSON(c, &payload, "请填写完整的练习信息") {
		return
	}

	item, err := a.exercises.Create(currentActor(c), unitID, payload.toInput())
	if err != nil {
		respondServiceError(c, err, "新增练习失败")
		return
	}

	c.JSON(http.StatusCreated, exercisePayload(*item, true))
}

// UpdateExercise 更新练习
func (a *API) UpdateExercise(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的练习ID")
		return
	}

	var payload exerciseRequest
	if !bindJSON(c, &payload, "请填写完整的练习信息") {
		return
	}

	item, err := a.exercises.Update(currentActor(c), id, payload.toInput())
	if err != nil {
		respondServiceError(c, err, "更新练习失败")
		return
	}

	c.JSON(http.StatusOK, exercisePayload(*item, true))
}

// DeleteExercise 删除练习
func (a *API) DeleteExercise(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的练习ID")
		return
	}

	if err := a.exercises.Delete(currentActor(c), id); err != nil {
		respondServiceError(c, err, "删除练习失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "练习已删除"})
}

// CheckAnswer 判题但不记录
func (a *API) CheckAnswer(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的练习ID")
		return
	}

	var payload answerRequest
	if !bindJSON(c, &payload, "答案格式不正确") {
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": a.exercises.CheckAnswer(id, payload.Answer)})
}

// SubmitAnswer 判题并记录作答
func (a *API) SubmitAnswer(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的练习ID")
		return
	}

	var payload answerRequest
	if !bindJSON(c, &payload, "答案格式不正确") {
		return
	}

	result, err := a.exercises.Submit(currentActor(c), id, payload.Answer, a.clock())
	if err != nil {
		respondServiceError(c, err, "提交答案失败")
		return
	}

	verdict := service.AnswerWrong
	if result.Correct {
		verdict = service.AnswerCorrect
	}
	c.JSON(http.StatusOK, gin.H{
		"id":          result.ID,
		"exerciseId":  result.ExerciseID,
		"result":      verdict,
		"score":       result.Score,
		"submittedAt": result.SubmittedAt,
	})
}
