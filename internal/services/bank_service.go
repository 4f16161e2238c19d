package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/preuniversitario/assessment-analysis-service/internal/models"
	"github.com/xuri/excelize/v2"
)

// BankService loads question banks (the answer key for an assessment) from
// tabular sources and normalizes them into validated models.
type BankService interface {
	LoadFromFile(ctx context.Context, path string) (*models.QuestionBank, error)
	LoadFromCSV(ctx context.Context, reader io.Reader) (*models.QuestionBank, error)
	LoadFromExcel(ctx context.Context, reader io.Reader) (*models.QuestionBank, error)
}

type bankService struct {
	logger *slog.Logger
}

func NewBankService(logger *slog.Logger) BankService {
	return &bankService{logger: logger}
}

func (s *bankService) LoadFromFile(ctx context.Context, path string) (*models.QuestionBank, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrBankFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to open question bank: %w", err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return s.LoadFromCSV(ctx, f)
	case ".xlsx", ".xls":
		return s.LoadFromExcel(ctx, f)
	default:
		return nil, NewValidationError("file", "unsupported question bank format", ext)
	}
}

func (s *bankService) LoadFromCSV(ctx context.Context, reader io.Reader) (*models.QuestionBank, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	return s.buildBank(records)
}

func (s *bankService) LoadFromExcel(ctx context.Context, reader io.Reader) (*models.QuestionBank, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("file", "Excel file has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}

	return s.buildBank(rows)
}

// buildBank turns raw rows into a validated bank. The first row is the
// header; matching is case-insensitive on trimmed names.
func (s *bankService) buildBank(rows [][]string) (*models.QuestionBank, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: got %d rows", ErrBankEmptySheet, len(rows))
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}

	required := []string{models.ColumnQuestionNumber, models.ColumnCorrectAlternative, models.ColumnLecture}
	var missing []string
	for _, col := range required {
		if _, ok := headerMap[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrBankMissingColumns, strings.Join(missing, ", "))
	}

	_, hasMateria := headerMap[models.ColumnMateria]

	entries := make([]models.QuestionBankEntry, 0, len(rows)-1)
	for rowIndex, row := range rows[1:] {
		rowNum := rowIndex + 2

		rawNumber := cellAt(row, headerMap[models.ColumnQuestionNumber])
		if rawNumber == "" {
			// Trailing blank rows are common in hand-edited sheets.
			if rowIsEmpty(row) {
				continue
			}
			return nil, fmt.Errorf("%w: row %d has no question number", ErrBankInvalidNumber, rowNum)
		}

		number, err := strconv.Atoi(rawNumber)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d value %q", ErrBankInvalidNumber, rowNum, rawNumber)
		}

		entry := models.QuestionBankEntry{
			QuestionNumber:     number,
			CorrectAlternative: cellAt(row, headerMap[models.ColumnCorrectAlternative]),
			Lecture:            cellAt(row, headerMap[models.ColumnLecture]),
		}
		if hasMateria {
			entry.Materia = cellAt(row, headerMap[models.ColumnMateria])
		}
		entries = append(entries, entry)
	}

	bank, err := models.NewQuestionBank(entries)
	if err != nil {
		return nil, err
	}

	s.logger.Info("question bank loaded",
		"entries", len(bank.Entries),
		"lectures", len(bank.Lectures()),
		"has_materia", bank.HasMateria())

	return bank, nil
}

func cellAt(row []string, index int) string {
	if index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

func rowIsEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
