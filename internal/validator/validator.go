package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/traindesk/assessment-engine/internal/models"
)

// Validator is the main validator instance that combines struct-tag
// validation with question authoring validation.
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate performs struct-tag validation and converts failures into the
// shared ValidationErrors type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Question returns the question validator
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("answer_type", validateAnswerType)
	validate.RegisterValidation("table_input_type", validateTableInputType)
	validate.RegisterValidation("attempt_status", validateAttemptStatus)
	validate.RegisterValidation("grade_status", validateGradeStatus)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions
func validateAnswerType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, validType := range models.AnswerTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateTableInputType(fl validator.FieldLevel) bool {
	validTypes := []models.TableInputType{
		models.TableInputRadio,
		models.TableInputCheckbox,
		models.TableInputText,
		models.TableInputTextarea,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateAttemptStatus(fl validator.FieldLevel) bool {
	validStatuses := []models.AttemptStatus{
		models.AttemptInProgress,
		models.AttemptCompleted,
		models.AttemptPassed,
		models.AttemptFailed,
		models.AttemptReturned,
	}

	value := fl.Field().String()
	for _, validStatus := range validStatuses {
		if string(validStatus) == value {
			return true
		}
	}
	return false
}

func validateGradeStatus(fl validator.FieldLevel) bool {
	validStatuses := []models.GradeStatus{
		models.GradeCorrect,
		models.GradeIncorrect,
		models.GradePending,
	}

	value := fl.Field().String()
	for _, validStatus := range validStatuses {
		if string(validStatus) == value {
			return true
		}
	}
	return false
}
