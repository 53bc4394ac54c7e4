package app

import (
	"fmt"
	"net/http"
)

// DomainError is rendered as {code, error, details} with the given status.
type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func validationError(message string) *DomainError {
	return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", message, nil)
}

func questionNotFound(questionID string) *DomainError {
	return domainError(http.StatusNotFound, "QUESTION_NOT_FOUND", "Question not found", map[string]any{"questionId": questionID})
}

func exportInProgress(sessionID string) *DomainError {
	return domainError(http.StatusConflict, "EXPORT_IN_PROGRESS", "An export is already running for this session", map[string]any{"sessionId": sessionID})
}
