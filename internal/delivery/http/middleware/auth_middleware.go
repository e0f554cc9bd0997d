package middleware

import (
	"net/http"
	"strings"

	"go-talentmatch-backend/internal/delivery/http/response"
	"go-talentmatch-backend/internal/domain"
	"go-talentmatch-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// accessClaims is the token issued by the identity provider. The role may sit at
// the top level or under app_metadata.
type accessClaims struct {
	jwt.RegisteredClaims
	Email       string         `json:"email"`
	Role        string         `json:"role"`
	AppMetadata map[string]any `json:"app_metadata"`
}

func (c *accessClaims) appRole() string {
	if isAppRole(c.Role) {
		return c.Role
	}
	if c.AppMetadata != nil {
		if s, ok := c.AppMetadata["role"].(string); ok && isAppRole(s) {
			return s
		}
	}
	return domain.RoleCandidate
}

func isAppRole(role string) bool {
	switch role {
	case domain.RoleCandidate, domain.RoleRecruiter, domain.RoleAdmin:
		return true
	}
	return false
}

// AuthMiddleware validates a bearer token and stores the caller in both the gin
// context and the request context. HS256 tokens are checked against secret, RS256
// tokens against keys when a JWKS endpoint is configured.
func AuthMiddleware(secret string, keys *auth.KeySet) gin.HandlerFunc {
	var methods []string
	if secret != "" {
		methods = append(methods, jwt.SigningMethodHS256.Alg())
	}
	if keys != nil {
		methods = append(methods, jwt.SigningMethodRS256.Alg())
	}

	keyFunc := func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); ok {
			return keys.Keyfunc(t)
		}
		return []byte(secret), nil
	}

	return func(c *gin.Context) {
		if len(methods) == 0 {
			response.Error(c, http.StatusUnauthorized, "Authentication is not configured", nil)
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if !strings.HasPrefix(authHeader, "Bearer ") || tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header required", nil)
			c.Abort()
			return
		}

		claims := &accessClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc, jwt.WithValidMethods(methods))
		if err != nil || !token.Valid {
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}
		if claims.Subject == "" {
			response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
			c.Abort()
			return
		}

		actor := domain.Actor{UserID: claims.Subject, Email: claims.Email, Role: claims.appRole()}
		c.Set(string(domain.KeyUserID), actor.UserID)
		c.Set(string(domain.KeyUserEmail), actor.Email)
		c.Set(string(domain.KeyUserRole), actor.Role)
		c.Request = c.Request.WithContext(domain.WithActor(c.Request.Context(), actor))

		c.Next()
	}
}

// RequireRole lets the request through only for the listed roles.
func RequireRole(allowed ...string) gin.HandlerFunc {
	allow := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		allow[a] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(string(domain.KeyUserRole))
		if _, ok := allow[role]; !ok {
			response.Error(c, http.StatusForbidden, "You do not have access to this resource", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequireRecruiter() gin.HandlerFunc {
	return RequireRole(domain.RoleRecruiter, domain.RoleAdmin)
}

func RequireAdmin() gin.HandlerFunc { return RequireRole(domain.RoleAdmin) }
