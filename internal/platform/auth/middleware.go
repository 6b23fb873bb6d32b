package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	userIDKey contextKey = "auth_user_id"
	rolesKey  contextKey = "auth_roles"
)

// Config holds the JWT verification settings.
type Config struct {
	Issuer     string
	Audience   string
	SigningKey []byte
}

// Claims is the token payload the server cares about.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Middleware verifies a Bearer token on every request and stashes the
// subject and roles on the echo context.
func Middleware(cfg Config) echo.MiddlewareFunc {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	parser := jwt.NewParser(opts...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c.Request())
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			claims := &Claims{}
			token, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				return cfg.SigningKey, nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(string(userIDKey), claims.Subject)
			c.Set(string(rolesKey), claims.Roles)
			return next(c)
		}
	}
}

// DevMiddleware grants every request a synthetic admin identity. Only for
// local development.
func DevMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(string(userIDKey), "dev-user")
			c.Set(string(rolesKey), []string{"admin"})
			return next(c)
		}
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", fmt.Errorf("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", fmt.Errorf("authorization header must be a bearer token")
	}
	return parts[1], nil
}

// UserIDFromContext returns the authenticated subject, if any.
func UserIDFromContext(c echo.Context) string {
	if v, ok := c.Get(string(userIDKey)).(string); ok {
		return v
	}
	return ""
}

// RolesFromContext returns the authenticated user's roles.
func RolesFromContext(c echo.Context) []string {
	if v, ok := c.Get(string(rolesKey)).([]string); ok {
		return v
	}
	return nil
}
