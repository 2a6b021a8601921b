package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/quiz-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Quiz specific errors
	ErrQuizNotFound          = errors.New("quiz not found")
	ErrQuizAccessDenied      = errors.New("access denied to quiz")
	ErrQuizNotPublic         = errors.New("quiz is not public")
	ErrQuizPasswordRequired  = errors.New("quiz password required")
	ErrQuizPasswordIncorrect = errors.New("incorrect quiz password")

	// Question specific errors
	ErrQuestionNotFound = errors.New("question not found")
	ErrQuestionInvalid  = errors.New("invalid question")

	// Submission specific errors
	ErrAlreadySubmitted = errors.New("you have already submitted this quiz")
	ErrOwnQuizSubmit    = errors.New("quiz owner cannot submit to their own quiz")
	ErrResponseNotFound = errors.New("response not found")

	// Class specific errors
	ErrClassNotFound         = errors.New("class not found")
	ErrClassPasswordMismatch = errors.New("invalid class password")

	// Media specific errors
	ErrMediaNotFound     = errors.New("file not found")
	ErrFileTooLarge      = errors.New("file exceeds the maximum upload size")
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// User/Auth errors
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailTaken            = errors.New("email already exists")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrIncorrectPassword     = errors.New("current password is incorrect")
	ErrInvalidRole           = errors.New("invalid user role")
	ErrUserOwnsContent       = errors.New("user still owns quizzes or classes")
	ErrInsufficientPrivilege = errors.New("insufficient permissions")
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

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a single-field ValidationErrors so callers can
// always match on one type.
func NewValidationError(field, message string, value interface{}) ValidationErrors {
	return ValidationErrors{*apperrors.NewValidationError(field, message, value)}
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrResponseNotFound) ||
		errors.Is(err, ErrClassNotFound) ||
		errors.Is(err, ErrMediaNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrQuizAccessDenied) ||
		errors.Is(err, ErrQuizNotPublic) ||
		errors.Is(err, ErrQuizPasswordRequired) ||
		errors.Is(err, ErrQuizPasswordIncorrect) ||
		errors.Is(err, ErrOwnQuizSubmit) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrClassPasswordMismatch) ||
		errors.Is(err, ErrInsufficientPrivilege)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrQuestionInvalid) ||
		errors.Is(err, ErrIncorrectPassword) ||
		errors.Is(err, ErrInvalidRole) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrFileTooLarge) {
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
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAlreadySubmitted) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrUserOwnsContent)
}
