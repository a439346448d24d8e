package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	httpHandlers "github.com/tasknest/core/internal/adapters/http"
	"github.com/tasknest/core/internal/application/services"
)

// publicPaths are reachable without a token. Everything else requires a valid
// bearer token before any business logic runs.
var publicPaths = map[string]struct{}{
	"/":              {},
	"/auth/register": {},
	"/auth/login":    {},
	"/auth/refresh":  {},
	"/db-status":     {},
	"/health":        {},
	"/metrics":       {},
}

func isPublicPath(path string) bool {
	if _, ok := publicPaths[path]; ok {
		return true
	}
	return strings.HasPrefix(path, "/docs")
}

// requireAuth is the global authentication gate. It parses the bearer token,
// resolves its subject to a live user and stores the user in the request
// context for the handlers.
func (s *Server) requireAuth(authService *services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isPublicPath(c.Request().URL.Path) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			user, err := authService.Authenticate(c.Request().Context(), tokenString)
			if err != nil {
				s.logger.LogSecurityEvent("invalid_token", "", c.RealIP(), map[string]interface{}{
					"error": err.Error(),
				})
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(httpHandlers.CurrentUserKey, user)

			return next(c)
		}
	}
}
