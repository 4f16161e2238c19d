package services

import (
	"errors"
	"fmt"

	apperrors "github.com/preuniversitario/assessment-analysis-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")

	// Question bank specific errors
	ErrBankFileNotFound   = errors.New("question bank file not found")
	ErrBankEmptySheet     = errors.New("question bank sheet has no data rows")
	ErrBankMissingColumns = errors.New("question bank is missing required columns")
	ErrBankInvalidNumber  = errors.New("question number is not a valid integer")

	// Analysis specific errors
	ErrRunNotFound = errors.New("analysis run not found")

	// Report specific errors
	ErrReportAlreadySent = errors.New("report already delivered for this user and assessment")
	ErrTemplateNotFound  = errors.New("report template not found")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrRunNotFound) ||
		errors.Is(err, ErrBankFileNotFound) ||
		errors.Is(err, ErrTemplateNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrBankMissingColumns) ||
		errors.Is(err, ErrBankInvalidNumber) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrReportAlreadySent)
}
