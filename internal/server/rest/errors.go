package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/10xr-agents/browse-automation-service/internal/braerr"
)

// notFoundError marks a lookup failure that isn't itself a braerr.Error (a
// missing knowledge entity or a 404 from an upstream presigned-URL object),
// mapped straight to HTTP 404 by writeError.
type notFoundError struct{ message string }

func (e notFoundError) Error() string { return e.message }

func errNotFound(message string) error { return notFoundError{message: message} }

// writeError maps a braerr.Error to the §7 "User-visible behavior" HTTP
// status table (400 validation, 404 unknown id, 410 expired URL, 502
// upstream download, 503 feature disabled); anything else is a 500.
func writeError(c *gin.Context, err error) {
	var nf notFoundError
	if errors.As(err, &nf) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "not_found", "message": nf.message}})
		return
	}
	var be *braerr.Error
	if errors.As(err, &be) {
		c.JSON(statusForCode(be.Code), gin.H{"error": gin.H{
			"code": be.Code, "message": be.Message, "retryable": be.Retryable,
		}})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "internal_error", "message": err.Error()}})
}

func statusForCode(code braerr.Code) int {
	switch code {
	case braerr.FeatureDisabled:
		return http.StatusServiceUnavailable
	case braerr.PresignedURLExpired:
		return http.StatusGone
	case braerr.SessionNotFound:
		return http.StatusNotFound
	case braerr.MalformedEnvelope, braerr.InvalidParams, braerr.UnknownActionType, braerr.SchemaValidationFailed:
		return http.StatusBadRequest
	case braerr.DriverTemporarilyUnavailable, braerr.NetworkFlap, braerr.StreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
