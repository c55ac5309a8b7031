package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ankithlg/PeerBridge/internal/middleware"
	"github.com/ankithlg/PeerBridge/internal/models"
)

// claimsFromContext extracts the authenticated student's claims placed
// by the JWT middleware. ok is false when the route was mounted without
// authentication.
func claimsFromContext(c *gin.Context) (*models.JWTClaims, bool) {
	raw, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := raw.(*models.JWTClaims)
	return claims, ok
}
