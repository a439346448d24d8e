package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tasknest/core/internal/application/services"
	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/config"
	"github.com/tasknest/core/internal/infrastructure/database"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

// CurrentUserKey is the echo context key under which the auth middleware
// stores the authenticated *entities.User.
const CurrentUserKey = "current_user"

// currentUser returns the authenticated user set by the auth middleware.
func currentUser(c echo.Context) *entities.User {
	user, _ := c.Get(CurrentUserKey).(*entities.User)
	return user
}

// httpError maps domain errors to HTTP status codes. Not-found and not-owned
// are the same error by construction, so ownership leaks nothing.
func httpError(err error) error {
	switch {
	case errors.Is(err, entities.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, entities.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	case errors.Is(err, entities.ErrGroupNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Group not found")
	case errors.Is(err, entities.ErrTaskNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	case errors.Is(err, entities.ErrValidation),
		errors.Is(err, entities.ErrEmailTaken),
		errors.Is(err, entities.ErrUsernameTaken),
		errors.Is(err, entities.ErrDuplicateGroupName),
		errors.Is(err, entities.ErrDuplicateTaskTitle):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService *services.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register handles account creation
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Registration failed", "error", err, "username", req.Username)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, user)
}

// Login handles user login. The username field accepts a username or an
// email; the body may arrive as JSON or as an OAuth2-style form.
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, response)
}

// Refresh handles token refresh
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req ports.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, response)
}

// Logout revokes all of the caller's refresh tokens
func (h *AuthHandler) Logout(c echo.Context) error {
	user := currentUser(c)

	if err := h.authService.Logout(c.Request().Context(), user.ID); err != nil {
		h.logger.Errorw("Logout failed", "error", err, "user_id", user.ID)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Logged out successfully"})
}

// HealthHandler handles health and status probes
type HealthHandler struct {
	db        *database.DB
	appConfig config.AppConfig
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB, appConfig config.AppConfig) *HealthHandler {
	return &HealthHandler{
		db:        db,
		appConfig: appConfig,
	}
}

// Root serves the welcome message on /
func (h *HealthHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"app":     h.appConfig.Name,
		"version": h.appConfig.Version,
	})
}

// Health reports liveness
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// DBStatus reports database reachability. Always 200: the body carries the
// verdict so monitors can poll it without tripping on the status code.
func (h *HealthHandler) DBStatus(c echo.Context) error {
	status := "connected"
	if err := h.db.HealthCheck(); err != nil {
		status = "disconnected"
	}

	return c.JSON(http.StatusOK, map[string]string{"status": status})
}
