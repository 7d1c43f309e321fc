package db

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ExerciseListening      = "LISTENING"
	ExerciseReading        = "READING"
	ExerciseWriting        = "WRITING"
	ExerciseSpeaking       = "SPEAKING"
	ExerciseMultipleChoice = "MULTIPLE_CHOICE"
	ExerciseFillIn         = "FILL_IN"
)

// Vocabulary 单元词汇，同一单元内单词唯一，便于批量导入时幂等更新
type Vocabulary struct {
	gorm.Model
	UnitID     uint   `gorm:"index;uniqueIndex:idx_vocabulary_unit_word;not null"`
	Word       string `gorm:"size:255;uniqueIndex:idx_vocabulary_unit_word;not null"`
	Phonetic   string `gorm:"size:255"`
	Meaning    string `gorm:"type:text"`
	Example    string `gorm:"type:text"`
	ImageURL   string `gorm:"size:512"`
	OrderIndex int    `gorm:"default:0"`
}

// Grammar 单元语法点，正文使用 Markdown
type Grammar struct {
	gorm.Model
	UnitID          uint   `gorm:"index;not null"`
	Title           string `gorm:"size:255;not null"`
	ContentMarkdown string `gorm:"type:text"`
	ExampleUsage    string `gorm:"type:text"`
	OrderIndex      int    `gorm:"default:0"`
}

// Exercise 单元练习；Choices 为选择题选项（JSON 字符串数组）
type Exercise struct {
	gorm.Model
	UnitID        uint   `gorm:"index;not null"`
	ExerciseType  string `gorm:"size:30;not null"`
	ExerciseText  string `gorm:"type:text;not null"`
	CorrectAnswer string `gorm:"type:text"`
	Choices       datatypes.JSON
	AudioURL      string `gorm:"size:512"`
	ImageURL      string `gorm:"size:512"`
	OrderIndex    int    `gorm:"default:0"`
}

// ExerciseResult 记录学员的一次作答
type ExerciseResult struct {
	ID            uint   `gorm:"primaryKey"`
	UserProfileID uint   `gorm:"index;not null"`
	ExerciseID    uint   `gorm:"index;not null"`
	Answer        string `gorm:"type:text"`
	Correct       bool
	Score         int
	SubmittedAt   time.Time `gorm:"index"`
}

// TableName 返回自定义表名
func (ExerciseResult) TableName() string {
	return "exercise_results"
}
