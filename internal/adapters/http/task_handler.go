package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tasknest/core/internal/application/services"
	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService       *services.TaskService
	suggestionService *services.SuggestionService
	logger            *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService, suggestionService *services.SuggestionService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService:       taskService,
		suggestionService: suggestionService,
		logger:            logger,
	}
}

// CreateTask handles task creation. The destination group must belong to the
// caller or the request fails with 404.
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user := currentUser(c)

	task, err := h.taskService.Create(c.Request().Context(), user.ID, req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, task)
}

// ListTasks lists the caller's tasks with pagination and optional group and
// completion filters.
func (h *TaskHandler) ListTasks(c echo.Context) error {
	user := currentUser(c)

	filter := ports.TaskFilter{
		OwnerID: user.ID,
		Limit:   defaultLimit,
	}

	if skipStr := c.QueryParam("skip"); skipStr != "" {
		skip, err := strconv.Atoi(skipStr)
		if err != nil || skip < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid skip parameter")
		}
		filter.Offset = skip
	}

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > maxLimit {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit parameter")
		}
		filter.Limit = limit
	}

	if groupIDStr := c.QueryParam("group_id"); groupIDStr != "" {
		groupID, err := strconv.ParseInt(groupIDStr, 10, 64)
		if err != nil || groupID < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid group_id parameter")
		}
		filter.GroupID = &groupID
	}

	if completedStr := c.QueryParam("completed"); completedStr != "" {
		completed, err := strconv.ParseBool(completedStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid completed parameter")
		}
		filter.Completed = &completed
	}

	tasks, total, err := h.taskService.List(c.Request().Context(), filter)
	if err != nil {
		h.logger.Errorw("List tasks failed", "error", err, "user_id", user.ID)
		return httpError(err)
	}

	response := ports.PaginatedResponse[*entities.Task]{
		Data:   tasks,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	return c.JSON(http.StatusOK, response)
}

// GetTask returns one of the caller's tasks by id
func (h *TaskHandler) GetTask(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	user := currentUser(c)

	task, err := h.taskService.Get(c.Request().Context(), id, user.ID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// UpdateTask applies a partial update to one of the caller's tasks
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user := currentUser(c)

	task, err := h.taskService.Update(c.Request().Context(), id, user.ID, req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// DeleteTask deletes one of the caller's tasks
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	user := currentUser(c)

	if err := h.taskService.Delete(c.Request().Context(), id, user.ID); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Task deleted successfully"})
}

// GetSuggestions returns a productivity tip derived from the caller's open
// tasks. Engine failures degrade to a canned tip, so this never 5xxes because
// of the suggestion backend.
func (h *TaskHandler) GetSuggestions(c echo.Context) error {
	user := currentUser(c)

	suggestion, err := h.suggestionService.Suggest(c.Request().Context(), user)
	if err != nil {
		h.logger.Errorw("Suggestion failed", "error", err, "user_id", user.ID)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, suggestion)
}
