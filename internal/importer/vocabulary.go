package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/langleague/internal/service"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ErrUnsupportedFormat 文件扩展名既不是 xlsx 也不是 csv
var ErrUnsupportedFormat = errors.New("unsupported import format")

// 列顺序：单词、音标、释义、例句、图片地址
const (
	columnWord = iota
	columnPhonetic
	columnMeaning
	columnExample
	columnImageURL
)

// Result 汇总一次导入的结果
type Result struct {
	TotalProcessed int      `json:"totalProcessed"`
	Created        int      `json:"created"`
	Updated        int      `json:"updated"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors"`
}

// ImportVocabulary 从 .xlsx（首个工作表）或 .csv 导入单元词汇，首行视为表头
// 同一单元内按单词去重，已存在的单词会被覆盖
func ImportVocabulary(gdb *gorm.DB, unitID uint, filename string, r io.Reader) (*Result, error) {
	if _, err := service.NewUnitService(gdb).Get(unitID); err != nil {
		return nil, err
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		rows, err = readExcel(r)
	case ".csv":
		rows, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}

	result := &Result{Errors: make([]string, 0)}
	vocabularies := service.NewVocabularyService(gdb)

	err = gdb.Transaction(func(tx *gorm.DB) error {
		for i, row := range rows {
			if i == 0 {
				continue
			}
			rowNum := i + 1

			input := toInput(row)
			if input.Word == "" {
				if !isBlank(row) {
					result.Errors = append(result.Errors, fmt.Sprintf("row %d: word is empty", rowNum))
				}
				result.Skipped++
				continue
			}

			result.TotalProcessed++
			input.OrderIndex = i
			created, err := vocabularies.Upsert(tx, unitID, input)
			if err != nil {
				if errors.Is(err, service.ErrInvalidArgument) {
					result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
					result.Skipped++
					continue
				}
				return err
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func readExcel(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open excel: %w", service.ErrInvalidArgument, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: excel file has no sheets", service.ErrInvalidArgument)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read rows: %w", service.ErrInvalidArgument, err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read csv: %w", service.ErrInvalidArgument, err)
	}
	return rows, nil
}

func toInput(row []string) service.VocabularyInput {
	return service.VocabularyInput{
		Word:     cell(row, columnWord),
		Phonetic: cell(row, columnPhonetic),
		Meaning:  cell(row, columnMeaning),
		Example:  cell(row, columnExample),
		ImageURL: cell(row, columnImageURL),
	}
}

func cell(row []string, index int) string {
	if index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

func isBlank(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
