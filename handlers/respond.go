package handlers

import (
	"net/http"
	"strconv"

	"fridge-backend/apperr"

	"github.com/gin-gonic/gin"
)

// errorJSON writes the standard error envelope and aborts the chain.
func errorJSON(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondError maps a service error onto the envelope. Internal details
// are logged by the request logger through c.Error, never sent.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindPersistence {
		_ = c.Error(err)
	}
	errorJSON(c, apperr.HTTPStatus(kind), apperr.CodeOf(err), apperr.PublicMessage(err))
}

// bindFailed rejects a malformed body with a fixed message. The decode
// error only reaches the request log.
func bindFailed(c *gin.Context, err error, message string) {
	_ = c.Error(err)
	errorJSON(c, http.StatusBadRequest, "INVALID_REQUEST", message)
}

// paramID parses a positive int64 path parameter, writing a 400 on failure.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorJSON(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return id, true
}
