package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imkarma/trophy/internal/auth"
	"github.com/imkarma/trophy/internal/observability"
	"github.com/imkarma/trophy/internal/recurrence"
	"github.com/imkarma/trophy/internal/tracker"
)

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, recurrence.ErrInvalidRule),
		errors.Is(err, tracker.ErrInvalidInput),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrMissingFields):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, tracker.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tracker.ErrLocked),
		errors.Is(err, tracker.ErrAlreadyCompleted),
		errors.Is(err, tracker.ErrNotReady),
		errors.Is(err, recurrence.ErrDuplicatePeriodCompletion),
		errors.Is(err, recurrence.ErrQuotaExceeded),
		errors.Is(err, auth.ErrUsernameTaken):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// messageFor returns the client-facing text for err.
func messageFor(err error, status int) string {
	switch {
	case status == http.StatusInternalServerError:
		return "internal error"
	case errors.Is(err, recurrence.ErrDuplicatePeriodCompletion):
		return "you've already completed this task for now!"
	case errors.Is(err, recurrence.ErrQuotaExceeded):
		return "task already complete"
	case errors.Is(err, auth.ErrUnauthorized):
		return "not logged in"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return auth.ErrInvalidCredentials.Error()
	}
	return err.Error()
}

// writeError logs err and sends it as {"error": ...}. Client errors log at
// info, server errors at error.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	log := observability.LoggerFromContext(c.Request.Context())
	if status == http.StatusInternalServerError {
		log.Error("request failed", "path", c.Request.URL.Path, "error", err)
	} else {
		log.Info("request refused", "path", c.Request.URL.Path, "status", status, "error", err.Error())
	}
	c.JSON(status, gin.H{"error": messageFor(err, status)})
}
