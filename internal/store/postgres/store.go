package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/weekplan/weekplan/internal/domain"
)

// schema bootstraps the tables and the row-level security policy. The policy
// scopes every task read and write to the user id set on the transaction via
// set_config, so a request can only ever see and touch its own rows. Bootstrap
// requires table ownership, and owners skip RLS unless it is forced, so the
// schema forces it; otherwise a single-role deployment would serve traffic
// with the policy silently ignored.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            uuid PRIMARY KEY,
	email         text NOT NULL UNIQUE,
	password_hash text NOT NULL,
	name          text NOT NULL DEFAULT '',
	created_at    timestamptz NOT NULL DEFAULT now(),
	updated_at    timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tasks (
	id         uuid PRIMARY KEY,
	user_id    uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title      text NOT NULL,
	column_id  text NOT NULL,
	workspace  text NOT NULL DEFAULT 'pro',
	completed  boolean NOT NULL DEFAULT false,
	position   double precision NOT NULL,
	subtasks   jsonb NOT NULL DEFAULT '[]',
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS tasks_user_group_idx
	ON tasks (user_id, workspace, column_id, position);

ALTER TABLE tasks ENABLE ROW LEVEL SECURITY;
ALTER TABLE tasks FORCE ROW LEVEL SECURITY;

DROP POLICY IF EXISTS tasks_owner ON tasks;
CREATE POLICY tasks_owner ON tasks
	FOR ALL
	USING (user_id = current_setting('app.current_user_id', true)::uuid)
	WITH CHECK (user_id = current_setting('app.current_user_id', true)::uuid);
`

type Store struct {
	pool  *pgxpool.Pool
	tasks *TaskRepo
	users *UserRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:  pool,
		tasks: NewTaskRepo(pool),
		users: NewUserRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Bootstrap applies the schema and RLS policies. Call with a connection whose
// role owns the tables.
func (s *Store) Bootstrap(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres.Bootstrap: %w", err)
	}
	return nil
}

func (s *Store) Tasks() domain.TaskRepository { return s.tasks }
func (s *Store) Users() domain.UserRepository { return s.users }

// withUser runs fn inside a transaction whose first statement binds the
// acting user to the connection, so the tasks_owner policy filters every
// statement that follows. The app never queries tasks outside this wrapper.
func withUser(ctx context.Context, pool *pgxpool.Pool, userID uuid.UUID, fn func(pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`SELECT set_config('app.current_user_id', $1, true)`, userID.String(),
	); err != nil {
		return fmt.Errorf("set user: %w", err)
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
