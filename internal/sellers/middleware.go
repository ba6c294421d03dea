package sellers

import (
	"errors"
	"net/http"

	"crm_backend/internal/sellers/repository"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// ProfileMiddleware binds the authenticated user to its seller profile. It
// sets the profile ID and adds the profile's role to the token roles.
// Users without a profile are rejected with 403.
func ProfileMiddleware(repo *repository.Repository, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := httpkit.GetIdentity(c)
		if !id.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		profile, err := repo.GetByUserID(c.Request.Context(), id.UserID())
		if errors.Is(err, repository.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "no profile for user"})
			return
		}
		if err != nil {
			log.DatabaseError("load profile", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		roles := id.Roles()
		if !id.HasRole(string(profile.Role)) {
			roles = append(append([]string(nil), roles...), string(profile.Role))
		}
		c.Set(httpkit.ContextProfileIDKey, profile.ID)
		c.Set(httpkit.ContextRolesKey, roles)
		c.Next()
	}
}
