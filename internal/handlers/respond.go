package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uniexp/uniexp-admin-backend/internal/draft"
	"github.com/uniexp/uniexp-admin-backend/internal/middleware"
	"github.com/uniexp/uniexp-admin-backend/internal/quest"
	"github.com/uniexp/uniexp-admin-backend/internal/repositories"
	"github.com/uniexp/uniexp-admin-backend/internal/services"
	"github.com/uniexp/uniexp-admin-backend/internal/session"
	"github.com/uniexp/uniexp-admin-backend/internal/validation"
	"github.com/uniexp/uniexp-admin-backend/pkg/imagecodec"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// respondError writes err as a notification, plus the field errors for
// validation failures
func respondError(c *gin.Context, err error) {
	body := gin.H{"notification": services.NotificationFor(err)}
	if errs, ok := validation.AsErrors(err); ok {
		body["errors"] = errs
	}
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "path", c.FullPath(), "requestID", c.GetString("RequestID"), "error", err)
		_ = c.Error(err)
	}
	c.JSON(status, body)
}

func statusFor(err error) int {
	if _, ok := validation.AsErrors(err); ok {
		return http.StatusUnprocessableEntity
	}
	var fieldErr *draft.FieldValueError
	switch {
	case errors.Is(err, services.ErrDraftNotFound), errors.Is(err, repositories.ErrNotFound),
		errors.Is(err, quest.ErrQuestNotFound), errors.Is(err, draft.ErrImageNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, session.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, quest.ErrQuestExists), errors.Is(err, quest.ErrNotEditable),
		errors.Is(err, quest.ErrNotRemovable), errors.Is(err, draft.ErrTooManyImages):
		return http.StatusConflict
	case errors.Is(err, draft.ErrImageTooLarge), errors.Is(err, imagecodec.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, imagecodec.ErrNotAnImage):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, draft.ErrDraftClosed):
		return http.StatusGone
	case errors.Is(err, quest.ErrUnknownQuestKind), errors.Is(err, draft.ErrUnknownField),
		errors.Is(err, draft.ErrReadOnlyField), errors.Is(err, draft.ErrEmptyImage),
		errors.Is(err, services.ErrInvalidCursor), errors.As(err, &fieldErr):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// badRequest reports a malformed request
func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":        message,
		"notification": services.Notification{Message: message, Severity: services.SeverityError},
	})
}

// requireSession returns the caller's session or writes a 401
func requireSession(c *gin.Context) (session.Session, bool) {
	sess, err := middleware.SessionFrom(c)
	if err != nil {
		respondError(c, err)
		return session.Session{}, false
	}
	return sess, true
}

func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid ID format")
		return primitive.NilObjectID, false
	}
	return id, true
}
