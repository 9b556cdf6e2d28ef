package handler

import (
	"net/http"
	"strings"

	"campusreport/backend/internal/access"
	"campusreport/backend/internal/auth"

	"github.com/gin-gonic/gin"
)

const callerKey = "caller"

// RequireAdmin accepts "Authorization: Bearer <jwt>" signed by the identity
// provider and stores the admin caller on the context.
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: h.text(c, "error.unauthorized")})
			return
		}

		subject, err := auth.ParseToken(h.JWTSecret, h.JWTIssuer, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: h.text(c, "error.unauthorized")})
			return
		}

		c.Set(callerKey, access.Admin(subject))
		c.Next()
	}
}

// callerFrom returns the caller set by RequireAdmin, or an anonymous reporter.
func callerFrom(c *gin.Context) access.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(access.Caller); ok {
			return caller
		}
	}
	return access.Reporter()
}
