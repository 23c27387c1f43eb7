package handlers

import (
	"net/http"
	"strconv"

	"coldchain/internal/apperrors"

	"github.com/gin-gonic/gin"
)

// respondError translates a service error into the HTTP status the
// client should see. Unknown kinds are a 500 with a generic message so
// internals never leak.
func respondError(c *gin.Context, err error) {
	var status int
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindBadRequest, apperrors.KindInsufficientStock, apperrors.KindCapacityExceeded:
		status = http.StatusBadRequest
	case apperrors.KindInvalidTransition:
		status = http.StatusUnprocessableEntity
	case apperrors.KindConflict, apperrors.KindAlreadyExists, apperrors.KindConcurrentModification:
		status = http.StatusConflict
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// uintParam parses a numeric path parameter; a second return of false
// means the 400 response has already been written.
func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}

// actorID identifies the acting user from the X-Actor-ID header. Zero
// means unattributed; audit entries record it as the system actor.
func actorID(c *gin.Context) uint {
	v, err := strconv.ParseUint(c.GetHeader("X-Actor-ID"), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}
