package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/carematch/carematch/internal/domain"
	"github.com/carematch/carematch/internal/repository"
	"github.com/gin-gonic/gin"
)

// EnsureProfile runs after Auth. It resolves the authenticated subject to
// a marketplace profile and sets "role" in the gin context. Callers
// without a profile are rejected; profile creation belongs to the auth
// provider's onboarding flow, not this service.
func EnsureProfile(repo repository.ProfileRepository, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := repo.GetByID(c.Request.Context(), c.GetString("userID"))
		if err != nil {
			if errors.Is(err, domain.ErrProfileNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "No profile for this account"})
				return
			}
			logger.ErrorContext(c.Request.Context(), "ensure profile", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.Set("role", string(profile.Role))
		c.Next()
	}
}

// RequireRole guards a route group to one profile role.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != string(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}
