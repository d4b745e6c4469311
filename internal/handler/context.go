package handler

import (
	"net/http"

	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// tenantFromContext reads the tenant UUID the auth middleware extracted from
// the JWT. Aborts with 401 when the claim is absent or malformed.
func tenantFromContext(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("tenantID")
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Tenant not found in token"))
		return uuid.Nil, false
	}

	tidStr, ok := raw.(string)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid tenant claim"))
		return uuid.Nil, false
	}

	tid, err := uuid.Parse(tidStr)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid tenant claim"))
		return uuid.Nil, false
	}
	return tid, true
}

// userFromContext reads the authenticated user ID set by the auth middleware.
// Returns an empty string when missing; callers treat that as "system".
func userFromContext(c *gin.Context) string {
	raw, exists := c.Get("userID")
	if !exists {
		return ""
	}
	if id, ok := raw.(string); ok {
		return id
	}
	return ""
}
