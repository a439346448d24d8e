package ports

import (
	"context"

	"github.com/tasknest/core/internal/domain/entities"
)

// AuthService interface for registration, login and token handling.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*entities.User, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Logout(ctx context.Context, userID int64) error
	// Authenticate parses a bearer token and resolves its subject to a live
	// user record.
	Authenticate(ctx context.Context, token string) (*entities.User, error)
	// CleanupExpiredTokens removes refresh tokens past their expiry.
	CleanupExpiredTokens(ctx context.Context) error
}

// GroupService interface for group management, always scoped to an owner.
type GroupService interface {
	Create(ctx context.Context, ownerID int64, req CreateGroupRequest) (*entities.Group, error)
	Get(ctx context.Context, id, ownerID int64) (*entities.Group, error)
	List(ctx context.Context, ownerID int64) ([]*entities.Group, error)
	Update(ctx context.Context, id, ownerID int64, req UpdateGroupRequest) (*entities.Group, error)
	Delete(ctx context.Context, id, ownerID int64) error
}

// TaskService interface for task management, always scoped to an owner.
type TaskService interface {
	Create(ctx context.Context, ownerID int64, req CreateTaskRequest) (*entities.Task, error)
	Get(ctx context.Context, id, ownerID int64) (*entities.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*entities.Task, int, error)
	Update(ctx context.Context, id, ownerID int64, req UpdateTaskRequest) (*entities.Task, error)
	Delete(ctx context.Context, id, ownerID int64) error
}

// SuggestionService derives a short productivity tip from the caller's open
// tasks.
type SuggestionService interface {
	Suggest(ctx context.Context, user *entities.User) (*SuggestionResponse, error)
}

// SuggestionEngine is one strategy for producing the tip text. Engines must
// tolerate an empty task list and tasks without a resolved group.
type SuggestionEngine interface {
	Suggest(ctx context.Context, tasks []*entities.Task) (string, error)
	Name() string
}

// Request/Response types

type RegisterRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=50,username"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=100,nospace"`
}

// LoginRequest accepts a username or an email in the username field, matching
// the OAuth2 password form shape.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token" validate:"required"`
}

type CreateGroupRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type UpdateGroupRequest struct {
	Name *string `json:"name" validate:"omitempty,max=100"`
}

type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	IsCompleted bool    `json:"is_completed"`
	GroupID     int64   `json:"group_id" validate:"required,gt=0"`
}

// UpdateTaskRequest applies a partial update: nil fields are left untouched,
// which keeps "not provided" distinct from "set to false/empty".
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	IsCompleted *bool   `json:"is_completed"`
	GroupID     *int64  `json:"group_id" validate:"omitempty,gt=0"`
}

type SuggestionResponse struct {
	Tip         string `json:"tip"`
	User        string `json:"user"`
	ActiveTasks int    `json:"active_tasks"`
	Engine      string `json:"engine"`
}

// Response types for pagination and common structures
type PaginatedResponse[T any] struct {
	Data   []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
