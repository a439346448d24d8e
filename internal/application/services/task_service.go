package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

// TaskService handles task management, always scoped to an owner
type TaskService struct {
	taskRepo  ports.TaskRepository
	groupRepo ports.GroupRepository
	cache     ports.SuggestionCache
	logger    *logger.Logger
}

// NewTaskService creates a new task service. The cache may be nil when the
// suggestion cache is disabled.
func NewTaskService(taskRepo ports.TaskRepository, groupRepo ports.GroupRepository, cache ports.SuggestionCache, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		groupRepo: groupRepo,
		cache:     cache,
		logger:    logger,
	}
}

// Create validates input and verifies the destination group belongs to the
// caller. A group owned by someone else reports ErrGroupNotFound, never a
// permission error.
func (s *TaskService) Create(ctx context.Context, ownerID int64, req ports.CreateTaskRequest) (*entities.Task, error) {
	title, err := validateTaskTitle(req.Title)
	if err != nil {
		return nil, err
	}

	description, err := validateTaskDescription(req.Description)
	if err != nil {
		return nil, err
	}

	group, err := s.groupRepo.GetByID(ctx, req.GroupID, ownerID)
	if err != nil {
		return nil, err
	}

	task := &entities.Task{
		Title:       title,
		Description: description,
		IsCompleted: req.IsCompleted,
		UserID:      ownerID,
		GroupID:     group.ID,
	}

	created, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	created.Group = group

	s.invalidateSuggestions(ctx, ownerID)

	return created, nil
}

func (s *TaskService) Get(ctx context.Context, id, ownerID int64) (*entities.Task, error) {
	return s.taskRepo.GetByID(ctx, id, ownerID)
}

func (s *TaskService) List(ctx context.Context, filter ports.TaskFilter) ([]*entities.Task, int, error) {
	return s.taskRepo.List(ctx, filter)
}

// Update applies a partial update; nil fields are left untouched. Moving the
// task re-checks ownership of the destination group.
func (s *TaskService) Update(ctx context.Context, id, ownerID int64, req ports.UpdateTaskRequest) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if req.Title == nil && req.Description == nil && req.IsCompleted == nil && req.GroupID == nil {
		return task, nil
	}

	if req.Title != nil {
		title, err := validateTaskTitle(*req.Title)
		if err != nil {
			return nil, err
		}
		task.Title = title
	}

	if req.Description != nil {
		description, err := validateTaskDescription(req.Description)
		if err != nil {
			return nil, err
		}
		task.Description = description
	}

	if req.IsCompleted != nil {
		task.IsCompleted = *req.IsCompleted
	}

	if req.GroupID != nil && *req.GroupID != task.GroupID {
		group, err := s.groupRepo.GetByID(ctx, *req.GroupID, ownerID)
		if err != nil {
			return nil, err
		}
		task.GroupID = group.ID
		task.Group = group
	}

	updated, err := s.taskRepo.Update(ctx, task)
	if err != nil {
		return nil, err
	}

	s.invalidateSuggestions(ctx, ownerID)

	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, id, ownerID int64) error {
	if err := s.taskRepo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	s.invalidateSuggestions(ctx, ownerID)

	return nil
}

func (s *TaskService) invalidateSuggestions(ctx context.Context, ownerID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, ownerID); err != nil {
		s.logger.Debugw("Suggestion cache invalidation failed", "error", err, "user_id", ownerID)
	}
}

func validateTaskTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: task title must not be blank", entities.ErrValidation)
	}
	if utf8.RuneCountInString(title) > 200 {
		return "", fmt.Errorf("%w: task title must be at most 200 characters", entities.ErrValidation)
	}
	return title, nil
}

// validateTaskDescription trims and bounds the description. A provided blank
// description is stored as NULL.
func validateTaskDescription(description *string) (*string, error) {
	if description == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > 1000 {
		return nil, fmt.Errorf("%w: task description must be at most 1000 characters", entities.ErrValidation)
	}
	return &trimmed, nil
}
