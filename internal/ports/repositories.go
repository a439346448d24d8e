package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tasknest/core/internal/domain/entities"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// Create inserts the user and its default "Inbox" group in a single
	// transaction.
	Create(ctx context.Context, user *entities.User) (*entities.User, error)
	GetByID(ctx context.Context, id int64) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	// GetByLogin resolves a user by username or email, whichever matches.
	GetByLogin(ctx context.Context, login string) (*entities.User, error)
	Delete(ctx context.Context, id int64) error
}

// GroupRepository defines the interface for group data operations. Every
// lookup is scoped to the owning user in the query itself: a row owned by
// someone else behaves exactly like a missing row.
type GroupRepository interface {
	Create(ctx context.Context, group *entities.Group) (*entities.Group, error)
	GetByID(ctx context.Context, id, ownerID int64) (*entities.Group, error)
	List(ctx context.Context, ownerID int64) ([]*entities.Group, error)
	Update(ctx context.Context, group *entities.Group) (*entities.Group, error)
	// Delete soft-deletes the group and, in the same transaction, any of its
	// remaining tasks.
	Delete(ctx context.Context, id, ownerID int64) error
}

// TaskRepository defines the interface for task data operations, owner-scoped
// like GroupRepository. Listing queries join the group row eagerly.
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) (*entities.Task, error)
	GetByID(ctx context.Context, id, ownerID int64) (*entities.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*entities.Task, int, error)
	// ListOpen returns the owner's incomplete tasks with their groups joined.
	ListOpen(ctx context.Context, ownerID int64) ([]*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) (*entities.Task, error)
	Delete(ctx context.Context, id, ownerID int64) error
}

// AuthRepository defines the interface for refresh token persistence.
type AuthRepository interface {
	CreateRefreshToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
	CleanupExpiredTokens(ctx context.Context) error
}

// SuggestionCache caches computed suggestions per user.
type SuggestionCache interface {
	Get(ctx context.Context, userID int64) (*SuggestionResponse, error)
	Set(ctx context.Context, userID int64, suggestion *SuggestionResponse) error
	Invalidate(ctx context.Context, userID int64) error
}

// TaskFilter narrows task listings. Pointer fields are ANDed when set.
type TaskFilter struct {
	OwnerID   int64
	GroupID   *int64
	Completed *bool
	Limit     int
	Offset    int
}

// RefreshToken represents a refresh token record. Only the SHA-256 hash of
// the token is stored.
type RefreshToken struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    int64      `json:"user_id" db:"user_id"`
	TokenHash string     `json:"token_hash" db:"token_hash"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	RevokedAt *time.Time `json:"revoked_at" db:"revoked_at"`
}

// IsExpired checks if the refresh token is expired.
func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// IsRevoked checks if the refresh token is revoked.
func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}
