package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/weekplan/weekplan/internal/domain"
)

const taskColumns = `id, user_id, title, column_id, workspace, completed, position, subtasks, created_at, updated_at`

// Fixed task queries. Each carries its own user_id predicate in addition to
// the RLS policy, so neither layer is load-bearing alone.
const (
	queryGetTask    = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	queryListTasks  = `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY position, created_at`
	queryDeleteTask = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
)

// TaskRepo persists tasks under row-level security. Every method runs inside
// a withUser transaction, and every query also carries its own user_id
// predicate, so ownership holds even on a connection the policy does not
// bind (owner roles skip RLS unless forced). A foreign or missing id
// surfaces as ErrNotFound either way.
type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	subtasks, err := json.Marshal(t.Subtasks)
	if err != nil {
		return fmt.Errorf("taskRepo.Create: marshal subtasks: %w", err)
	}

	err = withUser(ctx, r.pool, t.UserID, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx,
			`INSERT INTO tasks (id, user_id, title, column_id, workspace, completed, position, subtasks, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			t.ID, t.UserID, t.Title, t.ColumnID, t.Workspace,
			t.Completed, t.Position, subtasks, t.CreatedAt, t.UpdatedAt,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("taskRepo.Create: %w", err)
	}

	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	var t *domain.Task

	err := withUser(ctx, r.pool, userID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, queryGetTask, id, userID)
		var scanErr error
		t, scanErr = scanTask(row)
		return scanErr
	})
	if errors.Is(err, pgx.ErrNoRows) {
		// The policy hides foreign rows, so "missing" and "not yours" are
		// indistinguishable here by construction.
		return nil, fmt.Errorf("taskRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", err)
	}

	return t, nil
}

func (r *TaskRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	var tasks []*domain.Task

	err := withUser(ctx, r.pool, userID, func(tx pgx.Tx) error {
		rows, queryErr := tx.Query(ctx, queryListTasks, userID)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		for rows.Next() {
			t, scanErr := scanTask(rows)
			if scanErr != nil {
				return fmt.Errorf("scan: %w", scanErr)
			}
			tasks = append(tasks, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ListByUser: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepo) Update(ctx context.Context, userID, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	set, args, err := buildPatch(patch)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.Update: %w", err)
	}
	args = append(args, id, userID)

	var t *domain.Task
	err = withUser(ctx, r.pool, userID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, updateQuery(set, len(args)), args...)
		var scanErr error
		t, scanErr = scanTask(row)
		return scanErr
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("taskRepo.Update: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("taskRepo.Update: %w", err)
	}

	return t, nil
}

func (r *TaskRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := withUser(ctx, r.pool, userID, func(tx pgx.Tx) error {
		tag, execErr := tx.Exec(ctx, queryDeleteTask, id, userID)
		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("taskRepo.Delete: %w", err)
	}

	return nil
}

// updateQuery renders the id-addressed UPDATE for a prepared SET clause. The
// last two arguments are always the task id and the acting user id, so a
// foreign id matches no row and scans as ErrNoRows.
func updateQuery(set string, argc int) string {
	return `UPDATE tasks SET ` + set + `, updated_at = now()
		 WHERE id = $` + strconv.Itoa(argc-1) + ` AND user_id = $` + strconv.Itoa(argc) + `
		 RETURNING ` + taskColumns
}

// buildPatch renders the non-nil patch fields as a SET clause. At least one
// field must be set.
func buildPatch(patch domain.TaskPatch) (string, []any, error) {
	var (
		set  string
		args []any
	)
	add := func(column string, value any) {
		if set != "" {
			set += ", "
		}
		args = append(args, value)
		set += column + " = $" + strconv.Itoa(len(args))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.ColumnID != nil {
		add("column_id", *patch.ColumnID)
	}
	if patch.Workspace != nil {
		add("workspace", *patch.Workspace)
	}
	if patch.Completed != nil {
		add("completed", *patch.Completed)
	}
	if patch.Position != nil {
		add("position", *patch.Position)
	}
	if patch.Subtasks != nil {
		raw, err := json.Marshal(*patch.Subtasks)
		if err != nil {
			return "", nil, fmt.Errorf("marshal subtasks: %w", err)
		}
		add("subtasks", raw)
	}

	if set == "" {
		return "", nil, errors.New("empty patch")
	}
	return set, args, nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t        domain.Task
		subtasks []byte
	)
	if err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.ColumnID, &t.Workspace,
		&t.Completed, &t.Position, &subtasks, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(subtasks, &t.Subtasks); err != nil {
		return nil, fmt.Errorf("unmarshal subtasks: %w", err)
	}
	return &t, nil
}
