package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medihub/medihub-api/internal/utils"
)

var sessionCookies = []string{"patientToken", "doctorToken", "adminToken"}

const sessionsKey = "sessions"

// Authenticate extracts session tokens from the Authorization header or
// from the role-scoped cookies. One browser can hold a patient, doctor and
// admin session side by side, so every valid cookie is kept: the first one
// answers for ungated routes and RequireRoles may switch to whichever
// coexisting session satisfies its gate.
func Authenticate(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sessions []*utils.Claims
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			if claims, err := tokens.Validate(strings.TrimPrefix(authHeader, "Bearer ")); err == nil {
				sessions = append(sessions, claims)
			}
		} else {
			for _, name := range sessionCookies {
				cookie, err := c.Cookie(name)
				if err != nil || cookie == "" {
					continue
				}
				if claims, err := tokens.Validate(cookie); err == nil {
					sessions = append(sessions, claims)
				}
			}
		}

		if len(sessions) == 0 {
			utils.AbortError(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		c.Set(sessionsKey, sessions)
		c.Set("userID", sessions[0].UserID)
		c.Set("userRole", sessions[0].Role)
		c.Next()
	}
}

// RequireRoles gates a route to the given roles. It assumes Authenticate
// ran earlier in the chain. When the caller carries several role sessions,
// the first one whose role is allowed becomes the caller identity for the
// rest of the chain.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, claims := range callerSessions(c) {
			for _, allowed := range roles {
				if claims.Role == allowed {
					c.Set("userID", claims.UserID)
					c.Set("userRole", claims.Role)
					c.Next()
					return
				}
			}
		}
		utils.AbortError(c, http.StatusForbidden, "You are not allowed to access this resource")
	}
}

func callerSessions(c *gin.Context) []*utils.Claims {
	if v, ok := c.Get(sessionsKey); ok {
		if sessions, ok := v.([]*utils.Claims); ok {
			return sessions
		}
	}
	return nil
}
