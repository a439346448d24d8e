package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tasknest/core/internal/application/services"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

// GroupHandler handles group-related requests
type GroupHandler struct {
	groupService *services.GroupService
	logger       *logger.Logger
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(groupService *services.GroupService, logger *logger.Logger) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
		logger:       logger,
	}
}

// CreateGroup handles group creation
func (h *GroupHandler) CreateGroup(c echo.Context) error {
	var req ports.CreateGroupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user := currentUser(c)

	group, err := h.groupService.Create(c.Request().Context(), user.ID, req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, group)
}

// ListGroups lists the caller's groups
func (h *GroupHandler) ListGroups(c echo.Context) error {
	user := currentUser(c)

	groups, err := h.groupService.List(c.Request().Context(), user.ID)
	if err != nil {
		h.logger.Errorw("List groups failed", "error", err, "user_id", user.ID)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, groups)
}

// GetGroup returns one of the caller's groups by id
func (h *GroupHandler) GetGroup(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	user := currentUser(c)

	group, err := h.groupService.Get(c.Request().Context(), id, user.ID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, group)
}

// UpdateGroup renames one of the caller's groups
func (h *GroupHandler) UpdateGroup(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req ports.UpdateGroupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user := currentUser(c)

	group, err := h.groupService.Update(c.Request().Context(), id, user.ID, req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, group)
}

// DeleteGroup deletes one of the caller's groups and its tasks
func (h *GroupHandler) DeleteGroup(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	user := currentUser(c)

	if err := h.groupService.Delete(c.Request().Context(), id, user.ID); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Group deleted successfully"})
}

// parseID parses the :id path parameter.
func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid ID")
	}
	return id, nil
}
