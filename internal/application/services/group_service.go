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

// GroupService handles group management, always scoped to an owner
type GroupService struct {
	groupRepo ports.GroupRepository
	cache     ports.SuggestionCache
	logger    *logger.Logger
}

// NewGroupService creates a new group service. The cache may be nil when the
// suggestion cache is disabled.
func NewGroupService(groupRepo ports.GroupRepository, cache ports.SuggestionCache, logger *logger.Logger) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		cache:     cache,
		logger:    logger,
	}
}

func (s *GroupService) Create(ctx context.Context, ownerID int64, req ports.CreateGroupRequest) (*entities.Group, error) {
	name, err := validateGroupName(req.Name)
	if err != nil {
		return nil, err
	}

	group := &entities.Group{
		Name:   name,
		UserID: ownerID,
	}

	created, err := s.groupRepo.Create(ctx, group)
	if err != nil {
		return nil, err
	}

	s.invalidateSuggestions(ctx, ownerID)

	return created, nil
}

func (s *GroupService) Get(ctx context.Context, id, ownerID int64) (*entities.Group, error) {
	return s.groupRepo.GetByID(ctx, id, ownerID)
}

func (s *GroupService) List(ctx context.Context, ownerID int64) ([]*entities.Group, error) {
	return s.groupRepo.List(ctx, ownerID)
}

// Update applies a partial update. A request with no fields set is a no-op
// that returns the unchanged group.
func (s *GroupService) Update(ctx context.Context, id, ownerID int64, req ports.UpdateGroupRequest) (*entities.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if req.Name == nil {
		return group, nil
	}

	name, err := validateGroupName(*req.Name)
	if err != nil {
		return nil, err
	}

	group.Name = name

	updated, err := s.groupRepo.Update(ctx, group)
	if err != nil {
		return nil, err
	}

	s.invalidateSuggestions(ctx, ownerID)

	return updated, nil
}

// Delete soft-deletes the group and its remaining tasks.
func (s *GroupService) Delete(ctx context.Context, id, ownerID int64) error {
	if err := s.groupRepo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	s.invalidateSuggestions(ctx, ownerID)

	return nil
}

func (s *GroupService) invalidateSuggestions(ctx context.Context, ownerID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, ownerID); err != nil {
		s.logger.Debugw("Suggestion cache invalidation failed", "error", err, "user_id", ownerID)
	}
}

func validateGroupName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: group name must not be blank", entities.ErrValidation)
	}
	if utf8.RuneCountInString(name) > 100 {
		return "", fmt.Errorf("%w: group name must be at most 100 characters", entities.ErrValidation)
	}
	return name, nil
}
