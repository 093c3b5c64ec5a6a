package services

import (
	"errors"
	"fmt"

	"github.com/uniexp/uniexp-admin-backend/internal/draft"
	"github.com/uniexp/uniexp-admin-backend/internal/quest"
	"github.com/uniexp/uniexp-admin-backend/internal/repositories"
	"github.com/uniexp/uniexp-admin-backend/internal/session"
	"github.com/uniexp/uniexp-admin-backend/internal/validation"
	"github.com/uniexp/uniexp-admin-backend/pkg/imagecodec"
)

var (
	// ErrIntegrityCheckFailed is returned when a freshly written event reads
	// back without its required fields. Dependent records are not written.
	ErrIntegrityCheckFailed = errors.New("event saved but incomplete")
	// ErrDraftNotFound is returned for unknown, closed or foreign draft ids
	ErrDraftNotFound = errors.New("draft not found")
	// ErrForbidden is returned when a record belongs to another faculty
	ErrForbidden = errors.New("record belongs to another faculty")
	// ErrInvalidCredentials is returned by Login for any bad email/password pair
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// StoreError wraps a failed document store call
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// Severity levels of a Notification
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
	SeveritySuccess = "success"
)

// Notification is the single user-facing shape every failure is reduced to
type Notification struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// NotificationFor maps an engine error to its user-facing notification
func NotificationFor(err error) Notification {
	if _, ok := validation.AsErrors(err); ok {
		return Notification{Message: "Please fix the highlighted fields", Severity: SeverityError}
	}
	var storeError *StoreError
	switch {
	case errors.Is(err, ErrIntegrityCheckFailed):
		return Notification{Message: "Event was saved but some details are missing. Please review it.", Severity: SeverityWarning}
	case errors.Is(err, ErrDraftNotFound), errors.Is(err, repositories.ErrNotFound):
		return Notification{Message: "The requested item no longer exists", Severity: SeverityError}
	case errors.Is(err, ErrInvalidCursor):
		return Notification{Message: "Invalid page cursor", Severity: SeverityError}
	case errors.Is(err, ErrForbidden):
		return Notification{Message: "You do not have access to this item", Severity: SeverityError}
	case errors.Is(err, ErrInvalidCredentials):
		return Notification{Message: "Invalid email or password", Severity: SeverityError}
	case errors.Is(err, session.ErrNoSession):
		return Notification{Message: "Please sign in again", Severity: SeverityError}
	case errors.Is(err, quest.ErrUnknownQuestKind):
		return Notification{Message: "Unknown quest type", Severity: SeverityError}
	case errors.Is(err, quest.ErrQuestExists):
		return Notification{Message: "This quest has already been added", Severity: SeverityWarning}
	case errors.Is(err, quest.ErrNotEditable), errors.Is(err, quest.ErrNotRemovable):
		return Notification{Message: "This quest is generated automatically and cannot be changed", Severity: SeverityWarning}
	case errors.Is(err, quest.ErrQuestNotFound):
		return Notification{Message: "Quest not found", Severity: SeverityError}
	case errors.Is(err, draft.ErrTooManyImages):
		return Notification{Message: fmt.Sprintf("A maximum of %d images is allowed", draft.MaxImages), Severity: SeverityWarning}
	case errors.Is(err, draft.ErrImageTooLarge), errors.Is(err, imagecodec.ErrImageTooLarge):
		return Notification{Message: "Image is too large", Severity: SeverityError}
	case errors.Is(err, draft.ErrImageNotFound):
		return Notification{Message: "Image not found", Severity: SeverityError}
	case errors.Is(err, imagecodec.ErrNotAnImage):
		return Notification{Message: "Please upload an image file", Severity: SeverityError}
	case errors.Is(err, draft.ErrEmptyImage):
		return Notification{Message: "Image is empty", Severity: SeverityError}
	case errors.Is(err, draft.ErrUnknownField), errors.Is(err, draft.ErrReadOnlyField):
		return Notification{Message: err.Error(), Severity: SeverityError}
	case errors.Is(err, draft.ErrDraftClosed):
		return Notification{Message: "This draft has been closed", Severity: SeverityError}
	case errors.As(err, &storeError):
		return Notification{Message: "Something went wrong while saving. Please try again.", Severity: SeverityError}
	}
	var fieldErr *draft.FieldValueError
	if errors.As(err, &fieldErr) {
		return Notification{Message: fmt.Sprintf("Invalid value for %s", fieldErr.Field), Severity: SeverityError}
	}
	return Notification{Message: "Something went wrong. Please try again.", Severity: SeverityError}
}
