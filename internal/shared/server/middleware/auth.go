package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"legal-backend/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
	userNameKey  = "userName"
	isGuestKey   = "isGuest"
)

var errInvalidToken = errors.New("invalid token")

// Claims is the identity carried by a bearer token.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// AuthOptions configures the identity middleware.
type AuthOptions struct {
	// Secret signs HS256 bearer tokens. Empty disables bearer tokens.
	Secret string
	// PublicPaths skip identity entirely.
	PublicPaths []string
}

// Auth validates JWTs or guest headers and stores identity in context.
func Auth(opts AuthOptions) gin.HandlerFunc {
	public := make(map[string]struct{}, len(opts.PublicPaths))
	for _, p := range opts.PublicPaths {
		public[p] = struct{}{}
	}
	secret := []byte(strings.TrimSpace(opts.Secret))

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if _, ok := public[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader != "" {
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			token = strings.TrimSpace(token)
			if !ok || token == "" {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			claims, err := VerifyToken(secret, token)
			if err != nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			c.Set(userIDKey, claims.Subject)
			if claims.Email != "" {
				c.Set(userEmailKey, claims.Email)
			}
			if claims.Name != "" {
				c.Set(userNameKey, claims.Name)
			}
			c.Set(isGuestKey, false)
			c.Next()
			return
		}

		guestID := strings.TrimSpace(c.GetHeader("X-Guest-Id"))
		if guestID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}

		c.Set(userIDKey, "guest:"+guestID)
		c.Set(isGuestKey, true)
		c.Next()
	}
}

// VerifyToken parses an HS256 token and returns its claims. A subject is required.
func VerifyToken(secret []byte, token string) (Claims, error) {
	if len(secret) == 0 {
		return Claims{}, errInvalidToken
	}
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return Claims{}, errInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Claims{}, errInvalidToken
	}
	return claims, nil
}

// SignToken issues an HS256 token for claims. It backs tests and local tooling.
func SignToken(secret []byte, claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	return contextString(c, userIDKey)
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	return contextString(c, userEmailKey)
}

// UserNameFromContext fetches the user name set by the auth middleware.
func UserNameFromContext(c *gin.Context) string {
	return contextString(c, userNameKey)
}

func contextString(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
