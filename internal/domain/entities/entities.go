package entities

import (
	"errors"
	"strings"
	"time"
)

// Common errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrDuplicateGroupName = errors.New("group name already exists for this user")
	ErrDuplicateTaskTitle = errors.New("task title already exists in this group")
	ErrValidation         = errors.New("validation failed")
	ErrSuggestionBackend  = errors.New("suggestion backend unavailable")
)

// DefaultGroupName is the group every user receives on registration. It is
// created in the same transaction as the user row, so a task always has a
// valid destination group.
const DefaultGroupName = "Inbox"

// FallbackGroupLabel is used when a task's group reference cannot be resolved.
const FallbackGroupLabel = "General"

// User represents a registered account. Users are immutable after
// registration; there is no update endpoint.
type User struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
}

// Group is a named task bucket owned by exactly one user. The name is unique
// per owner among non-deleted rows, not globally.
type Group struct {
	ID        int64      `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	UserID    int64      `json:"user_id" db:"user_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// Task belongs to exactly one user and exactly one group. The title is unique
// per (owner, group) among non-deleted rows. Group carries the eagerly joined
// group row when the task was loaded through a listing query.
type Task struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description" db:"description"`
	IsCompleted bool       `json:"is_completed" db:"is_completed"`
	UserID      int64      `json:"user_id" db:"user_id"`
	GroupID     int64      `json:"group_id" db:"group_id"`
	Group       *Group     `json:"group,omitempty" db:"-"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"-" db:"deleted_at"`
}

// GroupName returns the name of the task's group, or the fallback label when
// the group reference did not resolve.
func (t *Task) GroupName() string {
	if t.Group == nil {
		return FallbackGroupLabel
	}
	return t.Group.Name
}

// SearchText returns the lower-cased title and description, used for keyword
// scoring.
func (t *Task) SearchText() string {
	text := t.Title
	if t.Description != nil {
		text += " " + *t.Description
	}
	return strings.ToLower(text)
}
