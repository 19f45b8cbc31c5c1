package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
)

// PrincipalKey is the gin context key the authenticated principal is stored
// under.
const PrincipalKey = "principal"

// AuthMiddleware creates authentication middleware. The signed token is
// resolved first; the principal it carries is then checked against the
// server-side session row, so a revoked session dies even while its token is
// cryptographically valid.
func AuthMiddleware(tokenSvc domain.TokenService, sessionRepo domain.SessionRepository) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		principal, err := tokenSvc.Resolve(tokenParts[1])
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrSessionExpired):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			default:
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session token"})
			}
			c.Abort()
			return
		}

		session, err := sessionRepo.FindByID(c.Request.Context(), principal.SessionID)
		if err != nil || session == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session invalid or expired"})
			c.Abort()
			return
		}
		if session.AccountID != principal.AccountID {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session account mismatch"})
			c.Abort()
			return
		}

		c.Set(PrincipalKey, principal)
		c.Next()
	})
}

// RequireManager gates a route group to roles that may manage accounts and
// read the audit ledger. Role labels are compared directly; there is no
// policy engine behind this.
func RequireManager() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		principal := CurrentPrincipal(c)
		if principal == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		if !principal.Role.CanManageAccounts() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			c.Abort()
			return
		}
		c.Next()
	})
}

// CurrentPrincipal returns the authenticated principal set by AuthMiddleware,
// or nil when the request is unauthenticated.
func CurrentPrincipal(c *gin.Context) *domain.Principal {
	value, exists := c.Get(PrincipalKey)
	if !exists {
		return nil
	}
	principal, ok := value.(*domain.Principal)
	if !ok {
		return nil
	}
	return principal
}
