package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/langleague/internal/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrExerciseNotFound 在练习不存在时返回
	ErrExerciseNotFound = errors.New("exercise not found")
)

// 判题结果
const (
	AnswerCorrect = "CORRECT"
	AnswerWrong   = "WRONG"
)

// ExerciseService 管理单元练习与作答
type ExerciseService struct {
	db *gorm.DB
}

// ExerciseInput 定义练习字段
type ExerciseInput struct {
	ExerciseType  string
	ExerciseText  string
	CorrectAnswer string
	Choices       []string
	AudioURL      string
	ImageURL      string
	OrderIndex    int
}

// NewExerciseService 构造 ExerciseService
func NewExerciseService(gdb *gorm.DB) *ExerciseService {
	return &ExerciseService{db: gdb}
}

// ListByUnit 按顺序返回单元练习
func (s *ExerciseService) ListByUnit(unitID uint) ([]db.Exercise, error) {
	if _, err := findUnit(s.db, unitID); err != nil {
		return nil, err
	}

	var items []db.Exercise
	if err := s.db.Where("unit_id = ?", unitID).
		Order("order_index ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return items, nil
}

// Create 新增练习
func (s *ExerciseService) Create(actor Actor, unitID uint, input ExerciseInput) (*db.Exercise, error) {
	item, err := input.toModel(unitID)
	if err != nil {
		return nil, err
	}
	if _, err := requireUnitOwner(s.db, actor, unitID); err != nil {
		return nil, err
	}

	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create exercise: %w", err)
	}
	return &item, nil
}

// Update 更新练习
func (s *ExerciseService) Update(actor Actor, id uint, input ExerciseInput) (*db.Exercise, error) {
	existing, err := s.find(id)
	if err != nil {
		return nil, err
	}

	updated, err := input.toModel(existing.UnitID)
	if err != nil {
		return nil, err
	}
	if _, err := requireUnitOwner(s.db, actor, existing.UnitID); err != nil {
		return nil, err
	}

	updated.Model = existing.Model
	if err := s.db.Save(&updated).Error; err != nil {
		return nil, fmt.Errorf("update exercise: %w", err)
	}
	return &updated, nil
}

// Delete 删除练习
func (s *ExerciseService) Delete(actor Actor, id uint) error {
	item, err := s.find(id)
	if err != nil {
		return err
	}
	if _, err := requireUnitOwner(s.db, actor, item.UnitID); err != nil {
		return err
	}
	if err := s.db.Delete(item).Error; err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}
	return nil
}

// CheckAnswer 去除首尾空白后忽略大小写比较答案，练习不存在时视为错误
func (s *ExerciseService) CheckAnswer(exerciseID uint, answer string) string {
	item, err := s.find(exerciseID)
	if err != nil {
		return AnswerWrong
	}
	if answersMatch(item.CorrectAnswer, answer) {
		return AnswerCorrect
	}
	return AnswerWrong
}

// Submit 判题并记录作答结果
func (s *ExerciseService) Submit(actor Actor, exerciseID uint, answer string, now time.Time) (*db.ExerciseResult, error) {
	item, err := s.find(exerciseID)
	if err != nil {
		return nil, err
	}
	profileID, err := requireProfileID(s.db, actor)
	if err != nil {
		return nil, err
	}

	correct := answersMatch(item.CorrectAnswer, answer)
	result := db.ExerciseResult{
		UserProfileID: profileID,
		ExerciseID:    item.ID,
		Answer:        strings.TrimSpace(answer),
		Correct:       correct,
		SubmittedAt:   now,
	}
	if correct {
		result.Score = 100
	}

	if err := s.db.Create(&result).Error; err != nil {
		return nil, fmt.Errorf("save exercise result: %w", err)
	}
	return &result, nil
}

// DecodeChoices 读取选择题选项
func DecodeChoices(item db.Exercise) []string {
	if len(item.Choices) == 0 {
		return []string{}
	}
	var choices []string
	if err := json.Unmarshal(item.Choices, &choices); err != nil {
		return []string{}
	}
	return choices
}

func (s *ExerciseService) find(id uint) (*db.Exercise, error) {
	var item db.Exercise
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("get exercise: %w", err)
	}
	return &item, nil
}

func answersMatch(expected, actual string) bool {
	return strings.EqualFold(strings.TrimSpace(expected), strings.TrimSpace(actual))
}

func normalizeExerciseType(raw string) (string, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	switch value {
	case db.ExerciseListening, db.ExerciseReading, db.ExerciseWriting,
		db.ExerciseSpeaking, db.ExerciseMultipleChoice, db.ExerciseFillIn:
		return value, nil
	default:
		return "", fmt.Errorf("%w: unsupported exercise type %s", ErrInvalidArgument, raw)
	}
}

func (input ExerciseInput) toModel(unitID uint) (db.Exercise, error) {
	exerciseType, err := normalizeExerciseType(input.ExerciseType)
	if err != nil {
		return db.Exercise{}, err
	}
	if strings.TrimSpace(input.ExerciseText) == "" {
		return db.Exercise{}, fmt.Errorf("%w: exercise text is required", ErrInvalidArgument)
	}

	choices := make([]string, 0, len(input.Choices))
	for _, choice := range input.Choices {
		if trimmed := strings.TrimSpace(choice); trimmed != "" {
			choices = append(choices, trimmed)
		}
	}
	if exerciseType == db.ExerciseMultipleChoice && len(choices) < 2 {
		return db.Exercise{}, fmt.Errorf("%w: multiple choice needs at least two choices", ErrInvalidArgument)
	}

	encoded, err := json.Marshal(choices)
	if err != nil {
		return db.Exercise{}, fmt.Errorf("encode choices: %w", err)
	}

	return db.Exercise{
		UnitID:        unitID,
		ExerciseType:  exerciseType,
		ExerciseText:  strings.TrimSpace(input.ExerciseText),
		CorrectAnswer: strings.TrimSpace(input.CorrectAnswer),
		Choices:       datatypes.JSON(encoded),
		AudioURL:      strings.TrimSpace(input.AudioURL),
		ImageURL:      strings.TrimSpace(input.ImageURL),
		OrderIndex:    input.OrderIndex,
	}, nil
}
