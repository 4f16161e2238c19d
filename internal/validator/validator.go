package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/preuniversitario/assessment-analysis-service/internal/errors"
	"github.com/preuniversitario/assessment-analysis-service/internal/models"
)

// Validator wraps the struct validator with the domain's custom rules.
type Validator struct {
	structValidator *validator.Validate
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{structValidator: structValidator}
}

// ValidateStruct validates struct tags and maps failures onto the shared
// validation error type.
func (v *Validator) ValidateStruct(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		return apperrors.ToValidationErrors(err)
	}
	return nil
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("assessment_type", validateAssessmentType)
	validate.RegisterValidation("plan_month", validatePlanMonth)
	validate.RegisterValidation("level", validateLevel)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateAssessmentType(fl validator.FieldLevel) bool {
	validTypes := []models.AssessmentType{
		models.LectureBased,
		models.LectureBasedWithMateria,
		models.PercentageBased,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validatePlanMonth(fl validator.FieldLevel) bool {
	return models.Month(fl.Field().String()).Valid()
}

func validateLevel(fl validator.FieldLevel) bool {
	return models.Level(fl.Field().Int()).Valid()
}
