// Package handler contains the gin HTTP handlers. Handlers bind and
// shape requests; all behavior lives in the service layer.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/advisr/backend/internal/service"
)

// respondError maps a service error kind onto its HTTP status and emits
// the structured error body.
func respondError(c *gin.Context, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{"kind": "internal", "code": "internal_error", "message": "internal server error"},
		})
		return
	}

	status := http.StatusInternalServerError
	switch svcErr.Kind {
	case service.KindValidation, service.KindState:
		status = http.StatusBadRequest
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindConflict, service.KindConcurrency:
		status = http.StatusConflict
	case service.KindAuth:
		status = http.StatusUnauthorized
	case service.KindForbidden:
		status = http.StatusForbidden
	case service.KindCollaborator:
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": svcErr})
}
