package errors

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("assessment_type", "is required", nil)

	if err.Field != "assessment_type" {
		t.Errorf("Expected field to be 'assessment_type', got '%s'", err.Field)
	}

	expected := "validation error on field 'assessment_type': is required"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("answers", "is required", nil))
	expected := "validation failed: answers is required"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	errs = append(errs, *NewValidationError("user_id", "is required", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("month", "must be a plan month (agosto, septiembre, octubre)", "plan_month", "enero")

	if err.Rule != "plan_month" {
		t.Errorf("Expected rule to be 'plan_month', got '%s'", err.Rule)
	}

	if err.Value != "enero" {
		t.Errorf("Expected value to be 'enero', got '%v'", err.Value)
	}
}

func TestToValidationErrors(t *testing.T) {
	type payload struct {
		UserID  string   `validate:"required"`
		Answers []string `validate:"required,min=1"`
	}

	v := validator.New()
	err := v.Struct(payload{})
	if err == nil {
		t.Fatal("Expected validation to fail")
	}

	converted := ToValidationErrors(err)
	if len(converted) != 2 {
		t.Fatalf("Expected 2 converted errors, got %d", len(converted))
	}

	if converted[0].Rule != "required" {
		t.Errorf("Expected rule 'required', got '%s'", converted[0].Rule)
	}
	if converted[0].Message != "is required" {
		t.Errorf("Expected message 'is required', got '%s'", converted[0].Message)
	}
}
