package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/database"
	"github.com/tasknest/core/internal/ports"
)

// GroupRepositoryImpl implements the GroupRepository interface
type GroupRepositoryImpl struct {
	db *database.DB
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *database.DB) ports.GroupRepository {
	return &GroupRepositoryImpl{db: db}
}

func (r *GroupRepositoryImpl) Create(ctx context.Context, group *entities.Group) (*entities.Group, error) {
	query := `
		INSERT INTO groups (name, user_id)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.DB.QueryRowContext(ctx, query, group.Name, group.UserID).
		Scan(&group.ID, &group.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, constraintGroupName) {
			return nil, entities.ErrDuplicateGroupName
		}
		return nil, fmt.Errorf("create group: %w", err)
	}

	return group, nil
}

func (r *GroupRepositoryImpl) GetByID(ctx context.Context, id, ownerID int64) (*entities.Group, error) {
	query := `
		SELECT id, name, user_id, created_at, updated_at, deleted_at
		FROM groups
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

	var group entities.Group
	err := r.db.DB.GetContext(ctx, &group, query, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrGroupNotFound
		}
		return nil, fmt.Errorf("get group by id: %w", err)
	}

	return &group, nil
}

func (r *GroupRepositoryImpl) List(ctx context.Context, ownerID int64) ([]*entities.Group, error) {
	query := `
		SELECT id, name, user_id, created_at, updated_at, deleted_at
		FROM groups
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY id`

	groups := []*entities.Group{}
	err := r.db.DB.SelectContext(ctx, &groups, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	return groups, nil
}

func (r *GroupRepositoryImpl) Update(ctx context.Context, group *entities.Group) (*entities.Group, error) {
	query := `
		UPDATE groups
		SET name = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.DB.QueryRowContext(ctx, query, group.ID, group.UserID, group.Name).
		Scan(&group.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrGroupNotFound
		}
		if isUniqueViolation(err, constraintGroupName) {
			return nil, entities.ErrDuplicateGroupName
		}
		return nil, fmt.Errorf("update group: %w", err)
	}

	return group, nil
}

// Delete soft-deletes the group and any tasks still in it, atomically. A task
// never outlives its group.
func (r *GroupRepositoryImpl) Delete(ctx context.Context, id, ownerID int64) error {
	return r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		groupQuery := `
			UPDATE groups
			SET deleted_at = CURRENT_TIMESTAMP
			WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

		result, err := tx.ExecContext(ctx, groupQuery, id, ownerID)
		if err != nil {
			return fmt.Errorf("delete group: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			return entities.ErrGroupNotFound
		}

		taskQuery := `
			UPDATE tasks
			SET deleted_at = CURRENT_TIMESTAMP
			WHERE group_id = $1 AND user_id = $2 AND deleted_at IS NULL`

		if _, err := tx.ExecContext(ctx, taskQuery, id, ownerID); err != nil {
			return fmt.Errorf("delete group tasks: %w", err)
		}

		return nil
	})
}
