package middleware

import (
	"net/http"
	"strings"

	"eventra/utils"

	"github.com/gin-gonic/gin"
)

// Identity roles issued by the auth collaborator. The engine trusts the
// token's identity and performs only authorization checks.
const (
	RoleUser     = "user"
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)

// Context keys set by the auth middleware.
const (
	CtxSubjectID = "subjectID"
	CtxRole      = "role"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}

// Auth validates the session token and requires one of the given roles.
// An empty role list admits any authenticated caller.
func Auth(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		id, role, err := utils.ExtractIdentity(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		if len(roles) > 0 && !roleAllowed(role, roles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			return
		}

		c.Set(CtxSubjectID, id)
		c.Set(CtxRole, role)
		c.Next()
	}
}

func roleAllowed(role string, allowed []string) bool {
	// Admins pass every role gate.
	if role == RoleAdmin {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// SubjectID returns the authenticated caller's id from the context.
func SubjectID(c *gin.Context) string {
	return c.GetString(CtxSubjectID)
}

// Role returns the authenticated caller's role from the context.
func Role(c *gin.Context) string {
	return c.GetString(CtxRole)
}

// IsAdmin reports whether the authenticated caller has the admin role.
func IsAdmin(c *gin.Context) bool {
	return Role(c) == RoleAdmin
}
