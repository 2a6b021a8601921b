package validator

import (
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/SAP-F-2025/quiz-service/internal/errors"
	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// QuestionValidator checks that a question's options and correct answer are
// consistent with its declared type. It performs no I/O.
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// IsValid reports whether the question is internally consistent.
func (v *QuestionValidator) IsValid(question *models.Question) bool {
	return v.ValidateQuestion(question) == nil
}

// ValidateQuestion returns ValidationErrors describing the first shape
// problem found, or nil.
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if question == nil {
		return apperrors.ValidationErrors{*apperrors.NewValidationErrorWithRule("question", "is required", "required", nil)}
	}
	if !question.Type.IsValid() {
		return fieldError("type", "must be one of SINGLE_SELECT, MULTIPLE_SELECT, FILL_IN_BLANK, INTEGER", "question_type", question.Type)
	}

	key, err := question.AnswerKey()
	if err != nil {
		if errors.Is(err, models.ErrUnknownQuestionType) {
			return fieldError("type", err.Error(), "question_type", question.Type)
		}
		return fieldError("correct_answer", err.Error(), "answer_shape", string(question.CorrectAnswer))
	}

	switch k := key.(type) {
	case models.SingleSelectKey:
		return v.validateSingleSelect(question.Options, k)
	case models.MultipleSelectKey:
		return v.validateMultipleSelect(question.Options, k)
	case models.FillInBlankKey:
		return v.validateFillInBlank(k)
	case models.IntegerKey:
		return nil
	default:
		return fieldError("type", "unsupported question type", "question_type", question.Type)
	}
}

// ValidateBatch validates every question; the first failure aborts with the
// offending position.
func (v *QuestionValidator) ValidateBatch(questions []*models.Question) error {
	if len(questions) == 0 {
		return fieldError("questions", "must contain at least one question", "min", 0)
	}

	for i, question := range questions {
		if err := v.ValidateQuestion(question); err != nil {
			var ve apperrors.ValidationErrors
			if errors.As(err, &ve) {
				for j := range ve {
					ve[j].Field = fmt.Sprintf("questions[%d].%s", i, ve[j].Field)
				}
				return ve
			}
			return err
		}
	}

	return nil
}

func (v *QuestionValidator) validateSingleSelect(options []string, k models.SingleSelectKey) error {
	if len(options) == 0 {
		return fieldError("options", "must not be empty", "required", options)
	}
	if k.Index < 0 || k.Index >= len(options) {
		return fieldError("correct_answer", fmt.Sprintf("index must be between 0 and %d", len(options)-1), "option_index", k.Index)
	}
	return nil
}

func (v *QuestionValidator) validateMultipleSelect(options []string, k models.MultipleSelectKey) error {
	if len(options) == 0 {
		return fieldError("options", "must not be empty", "required", options)
	}
	if len(k.Indices) == 0 {
		return fieldError("correct_answer", "must select at least one option", "min", k.Indices)
	}
	for _, idx := range k.Indices {
		if idx < 0 || idx >= len(options) {
			return fieldError("correct_answer", fmt.Sprintf("index must be between 0 and %d", len(options)-1), "option_index", idx)
		}
	}
	return nil
}

func (v *QuestionValidator) validateFillInBlank(k models.FillInBlankKey) error {
	if len(k.Accepted) == 0 {
		return fieldError("correct_answer", "must list at least one accepted answer", "min", k.Accepted)
	}
	for _, accepted := range k.Accepted {
		if strings.TrimSpace(accepted) == "" {
			return fieldError("correct_answer", "accepted answers must not be blank", "not_blank", accepted)
		}
	}
	return nil
}

func fieldError(field, message, rule string, value interface{}) apperrors.ValidationErrors {
	return apperrors.ValidationErrors{*apperrors.NewValidationErrorWithRule(field, message, rule, value)}
}
