package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/config"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(config.LoggerConfig{Level: "error", Format: "json"})
	require.NoError(t, err)
	return l
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:           "test-secret-not-for-production",
		Algorithm:        "HS256",
		ExpiresIn:        30 * time.Minute,
		RefreshExpiresIn: 7 * 24 * time.Hour,
		Issuer:           "tasknest-test",
	}
}

// In-memory repository fakes. They reproduce the owner scoping and duplicate
// detection the SQL implementations enforce, so the services can be tested
// without a database.

type fakeUserRepo struct {
	users  map[int64]*entities.User
	groups *fakeGroupRepo
	nextID int64
}

func newFakeUserRepo(groups *fakeGroupRepo) *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*entities.User{}, groups: groups}
}

// Create inserts the user and, like the SQL implementation, the default group
// in the same step: a failed group insert leaves no user behind.
func (r *fakeUserRepo) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return nil, entities.ErrUsernameTaken
		}
		if existing.Email == user.Email {
			return nil, entities.ErrEmailTaken
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	if r.groups != nil {
		if _, err := r.groups.Create(ctx, &entities.Group{Name: entities.DefaultGroupName, UserID: user.ID}); err != nil {
			delete(r.users, user.ID)
			return nil, err
		}
	}
	return user, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*entities.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, entities.ErrUserNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*entities.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *fakeUserRepo) GetByLogin(ctx context.Context, login string) (*entities.User, error) {
	if user, err := r.GetByUsername(ctx, login); err == nil {
		return user, nil
	}
	return r.GetByEmail(ctx, login)
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return entities.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeAuthRepo struct {
	tokens map[string]*ports.RefreshToken
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{tokens: map[string]*ports.RefreshToken{}}
}

func (r *fakeAuthRepo) CreateRefreshToken(_ context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	r.tokens[tokenHash] = &ports.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (r *fakeAuthRepo) GetRefreshToken(_ context.Context, tokenHash string) (*ports.RefreshToken, error) {
	if token, ok := r.tokens[tokenHash]; ok {
		return token, nil
	}
	return nil, entities.ErrInvalidCredentials
}

func (r *fakeAuthRepo) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	if token, ok := r.tokens[tokenHash]; ok && token.RevokedAt == nil {
		now := time.Now()
		token.RevokedAt = &now
	}
	return nil
}

func (r *fakeAuthRepo) RevokeAllUserTokens(_ context.Context, userID int64) error {
	now := time.Now()
	for _, token := range r.tokens {
		if token.UserID == userID && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeAuthRepo) CleanupExpiredTokens(_ context.Context) error {
	for hash, token := range r.tokens {
		if token.IsExpired() {
			delete(r.tokens, hash)
		}
	}
	return nil
}

type fakeGroupRepo struct {
	groups map[int64]*entities.Group
	tasks  *fakeTaskRepo
	nextID int64
}

func newFakeGroupRepo(tasks *fakeTaskRepo) *fakeGroupRepo {
	return &fakeGroupRepo{groups: map[int64]*entities.Group{}, tasks: tasks}
}

func (r *fakeGroupRepo) Create(_ context.Context, group *entities.Group) (*entities.Group, error) {
	for _, existing := range r.groups {
		if existing.DeletedAt == nil && existing.UserID == group.UserID && existing.Name == group.Name {
			return nil, entities.ErrDuplicateGroupName
		}
	}
	r.nextID++
	group.ID = r.nextID
	group.CreatedAt = time.Now()
	r.groups[group.ID] = group
	return group, nil
}

func (r *fakeGroupRepo) GetByID(_ context.Context, id, ownerID int64) (*entities.Group, error) {
	group, ok := r.groups[id]
	if !ok || group.DeletedAt != nil || group.UserID != ownerID {
		return nil, entities.ErrGroupNotFound
	}
	return group, nil
}

func (r *fakeGroupRepo) List(_ context.Context, ownerID int64) ([]*entities.Group, error) {
	result := []*entities.Group{}
	for id := int64(1); id <= r.nextID; id++ {
		if group, ok := r.groups[id]; ok && group.DeletedAt == nil && group.UserID == ownerID {
			result = append(result, group)
		}
	}
	return result, nil
}

func (r *fakeGroupRepo) Update(_ context.Context, group *entities.Group) (*entities.Group, error) {
	existing, ok := r.groups[group.ID]
	if !ok || existing.DeletedAt != nil || existing.UserID != group.UserID {
		return nil, entities.ErrGroupNotFound
	}
	for _, other := range r.groups {
		if other.ID != group.ID && other.DeletedAt == nil && other.UserID == group.UserID && other.Name == group.Name {
			return nil, entities.ErrDuplicateGroupName
		}
	}
	now := time.Now()
	existing.Name = group.Name
	existing.UpdatedAt = &now
	return existing, nil
}

func (r *fakeGroupRepo) Delete(_ context.Context, id, ownerID int64) error {
	group, ok := r.groups[id]
	if !ok || group.DeletedAt != nil || group.UserID != ownerID {
		return entities.ErrGroupNotFound
	}
	now := time.Now()
	group.DeletedAt = &now
	if r.tasks != nil {
		for _, task := range r.tasks.tasks {
			if task.GroupID == id && task.UserID == ownerID && task.DeletedAt == nil {
				task.DeletedAt = &now
			}
		}
	}
	return nil
}

type fakeTaskRepo struct {
	tasks  map[int64]*entities.Task
	nextID int64
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[int64]*entities.Task{}}
}

func (r *fakeTaskRepo) Create(_ context.Context, task *entities.Task) (*entities.Task, error) {
	for _, existing := range r.tasks {
		if existing.DeletedAt == nil && existing.UserID == task.UserID &&
			existing.GroupID == task.GroupID && existing.Title == task.Title {
			return nil, entities.ErrDuplicateTaskTitle
		}
	}
	r.nextID++
	task.ID = r.nextID
	task.CreatedAt = time.Now()
	r.tasks[task.ID] = task
	return task, nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id, ownerID int64) (*entities.Task, error) {
	task, ok := r.tasks[id]
	if !ok || task.DeletedAt != nil || task.UserID != ownerID {
		return nil, entities.ErrTaskNotFound
	}
	return task, nil
}

func (r *fakeTaskRepo) List(_ context.Context, filter ports.TaskFilter) ([]*entities.Task, int, error) {
	matched := []*entities.Task{}
	for id := int64(1); id <= r.nextID; id++ {
		task, ok := r.tasks[id]
		if !ok || task.DeletedAt != nil || task.UserID != filter.OwnerID {
			continue
		}
		if filter.GroupID != nil && task.GroupID != *filter.GroupID {
			continue
		}
		if filter.Completed != nil && task.IsCompleted != *filter.Completed {
			continue
		}
		matched = append(matched, task)
	}

	total := len(matched)
	if filter.Offset >= len(matched) {
		return []*entities.Task{}, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *fakeTaskRepo) ListOpen(_ context.Context, ownerID int64) ([]*entities.Task, error) {
	result := []*entities.Task{}
	for id := int64(1); id <= r.nextID; id++ {
		if task, ok := r.tasks[id]; ok && task.DeletedAt == nil && task.UserID == ownerID && !task.IsCompleted {
			result = append(result, task)
		}
	}
	return result, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *entities.Task) (*entities.Task, error) {
	existing, ok := r.tasks[task.ID]
	if !ok || existing.DeletedAt != nil || existing.UserID != task.UserID {
		return nil, entities.ErrTaskNotFound
	}
	now := time.Now()
	task.UpdatedAt = &now
	r.tasks[task.ID] = task
	return task, nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id, ownerID int64) error {
	task, ok := r.tasks[id]
	if !ok || task.DeletedAt != nil || task.UserID != ownerID {
		return entities.ErrTaskNotFound
	}
	now := time.Now()
	task.DeletedAt = &now
	return nil
}

type fakeSuggestionCache struct {
	entries       map[int64]*ports.SuggestionResponse
	invalidations int
	getErr        error
	setErr        error
}

func newFakeSuggestionCache() *fakeSuggestionCache {
	return &fakeSuggestionCache{entries: map[int64]*ports.SuggestionResponse{}}
}

func (c *fakeSuggestionCache) Get(_ context.Context, userID int64) (*ports.SuggestionResponse, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries[userID], nil
}

func (c *fakeSuggestionCache) Set(_ context.Context, userID int64, suggestion *ports.SuggestionResponse) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[userID] = suggestion
	return nil
}

func (c *fakeSuggestionCache) Invalidate(_ context.Context, userID int64) error {
	c.invalidations++
	delete(c.entries, userID)
	return nil
}

type fakeEngine struct {
	tip   string
	err   error
	calls int
}

func (e *fakeEngine) Suggest(_ context.Context, _ []*entities.Task) (string, error) {
	e.calls++
	return e.tip, e.err
}

func (e *fakeEngine) Name() string {
	return "fake-engine"
}
