package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medibook/medibook-api/internal/model"
)

const (
	contextUserID   = "user_id"
	contextEmail    = "user_email"
	contextIsDoctor = "user_is_doctor"
)

// TokenValidator decodes a bearer token into claims.
type TokenValidator interface {
	ValidateToken(token string) (*model.TokenClaims, error)
}

type AuthMiddleware struct {
	jwtSvc TokenValidator
}

func NewAuthMiddleware(jwtSvc TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{jwtSvc: jwtSvc}
}

// loginRedirect is the 401 body for guarded routes: it tells the client to
// go to /login and preserves the originating page so it can return there
// after sign-in.
type loginRedirect struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
	From     string `json:"from"`
}

func unauthorized(c *gin.Context, message string) {
	from := c.GetHeader("Referer")
	if from == "" {
		from = c.Request.URL.Path
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, loginRedirect{
		Status:   "error",
		Message:  message,
		Redirect: "/login",
		From:     from,
	})
}

// Authenticate verifies the bearer token and stores the identity in the
// request context. Guarded content is withheld, never optimistically shown.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "please login to continue")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "invalid authorization format")
			return
		}

		claims, err := m.jwtSvc.ValidateToken(parts[1])
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}

		c.Set(contextUserID, claims.UserID.String())
		c.Set(contextEmail, claims.Email)
		c.Set(contextIsDoctor, claims.IsDoctor)
		c.Next()
	}
}

// RequireDoctor gates doctor-only routes on the capability flag.
func (m *AuthMiddleware) RequireDoctor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(contextIsDoctor) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":  "error",
				"message": "doctor account required",
			})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user's ID from the request context.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetString(contextUserID)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
