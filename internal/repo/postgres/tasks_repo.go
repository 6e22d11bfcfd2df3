package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/idrissbado/taskhub/internal/domain/task"
	"github.com/idrissbado/taskhub/internal/observability"
)

// TasksRepo scopes every statement by the owning user id. Ownership
// mismatch and absence both come back as task.ErrNotFound.
type TasksRepo struct {
	db      DB
	metrics *observability.Prom
}

func NewTasksRepo(db DB, metrics *observability.Prom) *TasksRepo {
	return &TasksRepo{db: db, metrics: metrics}
}

func (r *TasksRepo) Create(ctx context.Context, userID string, req task.CreateTaskRequest) (task.Task, error) {
	t := task.NewFromCreateRequest(userID, req)

	err := r.metrics.ObserveDB("tasks.create", func() error {
		_, err := r.db.Exec(ctx,
			`INSERT INTO tasks (id, user_id, title, completed, priority, due_date, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			t.ID, t.UserID, t.Title, t.Completed, t.Priority, t.DueDate, t.CreatedAt, t.UpdatedAt)
		return err
	})

	if err != nil {
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) ListByOwner(ctx context.Context, userID string) ([]task.Task, error) {
	var out []task.Task

	err := r.metrics.ObserveDB("tasks.list", func() error {
		rows, err := r.db.Query(ctx,
			`SELECT id, user_id, title, completed, priority, due_date, created_at, updated_at
			 FROM tasks
			 WHERE user_id = $1
			 ORDER BY created_at DESC, id DESC`,
			userID)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]task.Task, 0)

		for rows.Next() {
			var t task.Task

			err = rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Completed, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)

			if err != nil {
				return err
			}

			out = append(out, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *TasksRepo) GetByID(ctx context.Context, userID, id string) (task.Task, error) {
	var t task.Task

	err := r.metrics.ObserveDB("tasks.get", func() error {
		return r.db.QueryRow(ctx,
			`SELECT id, user_id, title, completed, priority, due_date, created_at, updated_at
			 FROM tasks
			 WHERE id = $1 AND user_id = $2`,
			id, userID,
		).Scan(&t.ID, &t.UserID, &t.Title, &t.Completed, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}

		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) Update(ctx context.Context, userID, id string, req task.UpdateTaskRequest) (task.Task, error) {
	var t task.Task

	err := r.metrics.ObserveDB("tasks.update", func() error {
		// nil request fields fall through COALESCE and keep the stored value
		return r.db.QueryRow(ctx,
			`UPDATE tasks
			 SET title      = COALESCE($3, title),
			     completed  = COALESCE($4, completed),
			     priority   = COALESCE($5, priority),
			     due_date   = COALESCE($6, due_date),
			     updated_at = now()
			 WHERE id = $1 AND user_id = $2
			 RETURNING id, user_id, title, completed, priority, due_date, created_at, updated_at`,
			id, userID, req.Title, req.Completed, req.Priority, req.DueDate,
		).Scan(&t.ID, &t.UserID, &t.Title, &t.Completed, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}

		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) Delete(ctx context.Context, userID, id string) error {
	var tag int64

	err := r.metrics.ObserveDB("tasks.delete", func() error {
		res, err := r.db.Exec(ctx,
			`DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
			id, userID)

		if err != nil {
			return err
		}

		tag = res.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	// nothing deleted means nothing owned by this caller
	if tag == 0 {
		return task.ErrNotFound
	}

	return nil
}
