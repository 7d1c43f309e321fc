package service

import (
	"fmt"
	"strings"

	"github.com/langleague/internal/db"
)

// SectionType 是单元内可独立完成的板块
type SectionType string

const (
	SectionVocabulary SectionType = "VOCABULARY"
	SectionGrammar    SectionType = "GRAMMAR"
	SectionExercise   SectionType = "EXERCISE"

	totalSections = 3
)

// ParseSectionType 大小写不敏感地解析板块类型
func ParseSectionType(raw string) (SectionType, error) {
	switch SectionType(strings.ToUpper(strings.TrimSpace(raw))) {
	case SectionVocabulary:
		return SectionVocabulary, nil
	case SectionGrammar:
		return SectionGrammar, nil
	case SectionExercise:
		return SectionExercise, nil
	default:
		return "", fmt.Errorf("%w: invalid section type %s", ErrInvalidArgument, raw)
	}
}

// markSection 只置位不清除
func markSection(progress *db.Progress, section SectionType) {
	switch section {
	case SectionVocabulary:
		progress.IsVocabularyFinished = true
	case SectionGrammar:
		progress.IsGrammarFinished = true
	case SectionExercise:
		progress.IsExerciseFinished = true
	}
}

// CompletionPercentage 按已完成板块数计算整数百分比（截断）：0/33/66/100
func CompletionPercentage(progress db.Progress) int {
	completed := 0
	for _, done := range []bool{progress.IsVocabularyFinished, progress.IsGrammarFinished, progress.IsExerciseFinished} {
		if done {
			completed++
		}
	}
	return completed * 100 / totalSections
}
