package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sevabazar/delivery-backend/apperr"
)

// respondError maps error kinds to HTTP status codes and writes the standard
// error body. Unknown errors fall through as 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if kind, ok := apperr.KindOf(err); ok {
		switch kind {
		case apperr.KindNotFound:
			status = http.StatusNotFound
		case apperr.KindUnauthorized:
			status = http.StatusUnauthorized
		case apperr.KindInvalidInput:
			status = http.StatusBadRequest
		case apperr.KindConflict:
			status = http.StatusConflict
		case apperr.KindTransient:
			status = http.StatusServiceUnavailable
		}
	}
	body := gin.H{"error": err.Error()}
	if code := apperr.CodeOf(err); code != "" {
		body["code"] = code
	}
	c.JSON(status, body)
}

// contextUUID parses a profile id the auth middleware placed in context.
// Writes a 403 and returns ok=false when the key is missing or malformed.
func contextUUID(c *gin.Context, key string) (uuid.UUID, bool) {
	raw := c.GetString(key)
	if raw == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": key + " missing in context"})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "malformed " + key + " in context"})
		return uuid.Nil, false
	}
	return id, true
}

// pathUUID parses a :param UUID, writing a 400 on failure.
func pathUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return uuid.Nil, false
	}
	return id, true
}
