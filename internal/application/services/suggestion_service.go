package services

import (
	"context"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/tasknest/core/internal/adapters/suggest"
	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

// SuggestionService produces a productivity tip from the caller's open tasks.
// The configured engine does the actual tip generation; engine failures
// degrade to a canned tip so the endpoint never fails because of the backend.
type SuggestionService struct {
	taskRepo ports.TaskRepository
	engine   ports.SuggestionEngine
	cache    ports.SuggestionCache
	logger   *logger.Logger
	sf       singleflight.Group
}

// NewSuggestionService creates a new suggestion service. The cache may be nil
// when the suggestion cache is disabled.
func NewSuggestionService(taskRepo ports.TaskRepository, engine ports.SuggestionEngine, cache ports.SuggestionCache, logger *logger.Logger) *SuggestionService {
	return &SuggestionService{
		taskRepo: taskRepo,
		engine:   engine,
		cache:    cache,
		logger:   logger,
	}
}

// Suggest returns the cached suggestion when present, otherwise computes one.
// Concurrent requests for the same user are collapsed into a single
// computation. A broken cache degrades to computing fresh.
func (s *SuggestionService) Suggest(ctx context.Context, user *entities.User) (*ports.SuggestionResponse, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, user.ID)
		if err != nil {
			s.logger.Debugw("Suggestion cache read failed", "error", err, "user_id", user.ID)
		} else if cached != nil {
			return cached, nil
		}
	}

	// The collapsed computation serves every waiting caller, so it must not
	// die with whichever request happened to start it.
	computeCtx := context.WithoutCancel(ctx)
	v, err, _ := s.sf.Do(strconv.FormatInt(user.ID, 10), func() (interface{}, error) {
		return s.compute(computeCtx, user)
	})
	if err != nil {
		return nil, err
	}

	return v.(*ports.SuggestionResponse), nil
}

func (s *SuggestionService) compute(ctx context.Context, user *entities.User) (*ports.SuggestionResponse, error) {
	tasks, err := s.taskRepo.ListOpen(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	tip, err := s.engine.Suggest(ctx, tasks)
	if err != nil {
		s.logger.Warnw("Suggestion engine failed, using canned tip",
			"error", err, "engine", s.engine.Name(), "user_id", user.ID)
		tip = suggest.GenericTip
	}

	response := &ports.SuggestionResponse{
		Tip:         tip,
		User:        user.Username,
		ActiveTasks: len(tasks),
		Engine:      s.engine.Name(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, user.ID, response); err != nil {
			s.logger.Debugw("Suggestion cache write failed", "error", err, "user_id", user.ID)
		}
	}

	return response, nil
}
