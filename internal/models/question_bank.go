package models

import (
	"fmt"

	apperrors "github.com/preuniversitario/assessment-analysis-service/internal/errors"
)

// Canonical question bank column names after normalization
const (
	ColumnQuestionNumber     = "question_number"
	ColumnCorrectAlternative = "correct_alternative"
	ColumnLecture            = "lecture"
	ColumnMateria            = "materia"
)

// QuestionBankEntry is one row of a validated question bank: the correct
// alternative for a question and the lecture (and optional materia) it
// belongs to.
type QuestionBankEntry struct {
	QuestionNumber     int    `json:"question_number" validate:"required,min=1"`
	CorrectAlternative string `json:"correct_alternative" validate:"required"`
	Lecture            string `json:"lecture" validate:"required"`
	Materia            string `json:"materia,omitempty"`
}

// QuestionBank holds the answer key for one assessment. Construct it with
// NewQuestionBank so malformed data fails at the boundary instead of deep
// inside the scorer.
type QuestionBank struct {
	Entries []QuestionBankEntry `json:"entries"`
}

// NewQuestionBank validates the entries and returns a bank. Question numbers
// must be positive and unique within the bank.
func NewQuestionBank(entries []QuestionBankEntry) (*QuestionBank, error) {
	seen := make(map[int]struct{}, len(entries))
	var errs apperrors.ValidationErrors

	for i, e := range entries {
		if e.QuestionNumber < 1 {
			errs = append(errs, *apperrors.NewValidationError(
				ColumnQuestionNumber,
				fmt.Sprintf("must be a positive integer (entry %d)", i+1),
				e.QuestionNumber))
			continue
		}
		if _, dup := seen[e.QuestionNumber]; dup {
			errs = append(errs, *apperrors.NewValidationError(
				ColumnQuestionNumber,
				fmt.Sprintf("duplicate question number %d", e.QuestionNumber),
				e.QuestionNumber))
			continue
		}
		seen[e.QuestionNumber] = struct{}{}

		if e.CorrectAlternative == "" {
			errs = append(errs, *apperrors.NewValidationError(
				ColumnCorrectAlternative,
				fmt.Sprintf("is required (question %d)", e.QuestionNumber),
				nil))
		}
		if e.Lecture == "" {
			errs = append(errs, *apperrors.NewValidationError(
				ColumnLecture,
				fmt.Sprintf("is required (question %d)", e.QuestionNumber),
				nil))
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &QuestionBank{Entries: entries}, nil
}

// Lectures returns the distinct lecture labels in first-appearance order.
func (qb *QuestionBank) Lectures() []string {
	return qb.distinct(func(e QuestionBankEntry) string { return e.Lecture })
}

// Materias returns the distinct materia labels in first-appearance order.
func (qb *QuestionBank) Materias() []string {
	return qb.distinct(func(e QuestionBankEntry) string { return e.Materia })
}

// HasMateria reports whether every entry carries a materia label.
func (qb *QuestionBank) HasMateria() bool {
	for _, e := range qb.Entries {
		if e.Materia == "" {
			return false
		}
	}
	return len(qb.Entries) > 0
}

// ByLecture returns the entries belonging to the given lecture, in bank order.
func (qb *QuestionBank) ByLecture(lecture string) []QuestionBankEntry {
	var out []QuestionBankEntry
	for _, e := range qb.Entries {
		if e.Lecture == lecture {
			out = append(out, e)
		}
	}
	return out
}

// ByMateria returns a sub-bank containing only the entries of one materia.
func (qb *QuestionBank) ByMateria(materia string) *QuestionBank {
	sub := &QuestionBank{}
	for _, e := range qb.Entries {
		if e.Materia == materia {
			sub.Entries = append(sub.Entries, e)
		}
	}
	return sub
}

func (qb *QuestionBank) distinct(key func(QuestionBankEntry) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range qb.Entries {
		k := key(e)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
