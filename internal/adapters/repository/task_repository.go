package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/database"
	"github.com/tasknest/core/internal/ports"
)

// TaskRepositoryImpl implements the TaskRepository interface
type TaskRepositoryImpl struct {
	db *database.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *database.DB) ports.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

// taskRow carries a task with its LEFT JOINed group columns. The group columns
// are nullable: a dangling group reference scans as NULL and the task simply
// carries no group.
type taskRow struct {
	entities.Task
	GroupRowID      sql.NullInt64  `db:"g_id"`
	GroupRowName    sql.NullString `db:"g_name"`
	GroupRowUserID  sql.NullInt64  `db:"g_user_id"`
	GroupRowCreated sql.NullTime   `db:"g_created_at"`
	GroupRowUpdated sql.NullTime   `db:"g_updated_at"`
}

func (row *taskRow) toTask() *entities.Task {
	task := row.Task
	if row.GroupRowID.Valid {
		group := &entities.Group{
			ID:        row.GroupRowID.Int64,
			Name:      row.GroupRowName.String,
			UserID:    row.GroupRowUserID.Int64,
			CreatedAt: row.GroupRowCreated.Time,
		}
		if row.GroupRowUpdated.Valid {
			updated := row.GroupRowUpdated.Time
			group.UpdatedAt = &updated
		}
		task.Group = group
	}
	return &task
}

const taskSelectColumns = `
	t.id, t.title, t.description, t.is_completed, t.user_id, t.group_id,
	t.created_at, t.updated_at, t.deleted_at,
	g.id AS g_id, g.name AS g_name, g.user_id AS g_user_id,
	g.created_at AS g_created_at, g.updated_at AS g_updated_at`

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	query := `
		INSERT INTO tasks (title, description, is_completed, user_id, group_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.DB.QueryRowContext(ctx, query,
		task.Title, task.Description, task.IsCompleted, task.UserID, task.GroupID,
	).Scan(&task.ID, &task.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, constraintTaskTitle) {
			return nil, entities.ErrDuplicateTaskTitle
		}
		return nil, fmt.Errorf("create task: %w", err)
	}

	return task, nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id, ownerID int64) (*entities.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks t
		LEFT JOIN groups g ON g.id = t.group_id AND g.deleted_at IS NULL
		WHERE t.id = $1 AND t.user_id = $2 AND t.deleted_at IS NULL`, taskSelectColumns)

	var row taskRow
	err := r.db.DB.GetContext(ctx, &row, query, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}

	return row.toTask(), nil
}

func (r *TaskRepositoryImpl) List(ctx context.Context, filter ports.TaskFilter) ([]*entities.Task, int, error) {
	conditions := []string{"t.user_id = $1", "t.deleted_at IS NULL"}
	args := []interface{}{filter.OwnerID}

	if filter.GroupID != nil {
		args = append(args, *filter.GroupID)
		conditions = append(conditions, fmt.Sprintf("t.group_id = $%d", len(args)))
	}

	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		conditions = append(conditions, fmt.Sprintf("t.is_completed = $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM tasks t WHERE %s`, where)

	var total int
	if err := r.db.DB.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM tasks t
		LEFT JOIN groups g ON g.id = t.group_id AND g.deleted_at IS NULL
		WHERE %s
		ORDER BY t.id
		LIMIT $%d OFFSET $%d`, taskSelectColumns, where, len(args)-1, len(args))

	rows := []taskRow{}
	if err := r.db.DB.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]*entities.Task, 0, len(rows))
	for i := range rows {
		tasks = append(tasks, rows[i].toTask())
	}

	return tasks, total, nil
}

// ListOpen returns the owner's incomplete tasks with their groups joined.
func (r *TaskRepositoryImpl) ListOpen(ctx context.Context, ownerID int64) ([]*entities.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks t
		LEFT JOIN groups g ON g.id = t.group_id AND g.deleted_at IS NULL
		WHERE t.user_id = $1 AND t.is_completed = FALSE AND t.deleted_at IS NULL
		ORDER BY t.id`, taskSelectColumns)

	rows := []taskRow{}
	if err := r.db.DB.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}

	tasks := make([]*entities.Task, 0, len(rows))
	for i := range rows {
		tasks = append(tasks, rows[i].toTask())
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	query := `
		UPDATE tasks
		SET title = $3, description = $4, is_completed = $5, group_id = $6,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.DB.QueryRowContext(ctx, query,
		task.ID, task.UserID, task.Title, task.Description, task.IsCompleted, task.GroupID,
	).Scan(&task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTaskNotFound
		}
		if isUniqueViolation(err, constraintTaskTitle) {
			return nil, entities.ErrDuplicateTaskTitle
		}
		return nil, fmt.Errorf("update task: %w", err)
	}

	return task, nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id, ownerID int64) error {
	query := `
		UPDATE tasks
		SET deleted_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

	result, err := r.db.DB.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}

	return nil
}
