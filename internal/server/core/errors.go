package core

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindConflict
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	}
	return "unknown"
}

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

// Error is a domain failure carrying a machine readable code and the offending values.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is lets errors.Is match the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrConflict:
		return e.Kind == KindConflict
	case ErrValidation:
		return e.Kind == KindValidation
	}
	return false
}

// NotFound builds a not-found error.
func NotFound(code, message string, details map[string]any) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message, Details: details}
}

// Conflict builds a conflict error.
func Conflict(code, message string, details map[string]any) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message, Details: details}
}

// Validation builds a validation error.
func Validation(code, message string, details map[string]any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message, Details: details}
}

// NoteNotFound reports a missing note id.
func NoteNotFound(id string) *Error {
	return NotFound("NOTE_NOT_FOUND", fmt.Sprintf("Note with ID %s not found", id), map[string]any{"note_id": id})
}

// FolderNotFound reports a missing folder id.
func FolderNotFound(id string) *Error {
	return NotFound("FOLDER_NOT_FOUND", fmt.Sprintf("Folder with ID %s not found", id), map[string]any{"folder_id": id})
}

// ParentFolderNotFound reports a missing parent folder id.
func ParentFolderNotFound(id string) *Error {
	return NotFound("FOLDER_NOT_FOUND", fmt.Sprintf("Parent folder with ID %s not found", id), map[string]any{"folder_id": id})
}

// ConceptNotFound reports a missing concept id.
func ConceptNotFound(id string) *Error {
	return NotFound("CONCEPT_NOT_FOUND", fmt.Sprintf("Concept with ID %s not found", id), map[string]any{"concept_id": id})
}

// AsError extracts a domain error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
