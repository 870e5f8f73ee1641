package services

import "errors"

// Lookup failures shared by several services.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrTeamNotFound         = errors.New("team not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrFileNotFound         = errors.New("file not found")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

// ValidationError is a rejected input whose message is safe to show clients.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalidInput(message string) error {
	return &ValidationError{Message: message}
}
