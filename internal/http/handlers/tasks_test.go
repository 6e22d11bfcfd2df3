package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/idrissbado/taskhub/internal/domain/task"
	"github.com/idrissbado/taskhub/internal/http/handlers"
	"github.com/idrissbado/taskhub/internal/http/middlewares"
)

// Fake repository implementation of the handlers.TasksStore interface

type fakeTasksRepo struct {
	createFn func(ctx context.Context, userID string, req task.CreateTaskRequest) (task.Task, error)
	listFn   func(ctx context.Context, userID string) ([]task.Task, error)
	getFn    func(ctx context.Context, userID, id string) (task.Task, error)
	updateFn func(ctx context.Context, userID, id string, req task.UpdateTaskRequest) (task.Task, error)
	deleteFn func(ctx context.Context, userID, id string) error
}

func (f *fakeTasksRepo) Create(ctx context.Context, userID string, req task.CreateTaskRequest) (task.Task, error) {
	if f.createFn != nil {
		return f.createFn(ctx, userID, req)
	}

	return task.Task{}, nil
}

func (f *fakeTasksRepo) ListByOwner(ctx context.Context, userID string) ([]task.Task, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID)
	}

	return []task.Task{}, nil
}

func (f *fakeTasksRepo) GetByID(ctx context.Context, userID, id string) (task.Task, error) {
	if f.getFn != nil {
		return f.getFn(ctx, userID, id)
	}

	return task.Task{}, task.ErrNotFound
}

func (f *fakeTasksRepo) Update(ctx context.Context, userID, id string, req task.UpdateTaskRequest) (task.Task, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, userID, id, req)
	}

	return task.Task{}, task.ErrNotFound
}

func (f *fakeTasksRepo) Delete(ctx context.Context, userID, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, userID, id)
	}

	return task.ErrNotFound
}

// mounts one handler per test, optionally with a caller identity

func setupTasksRouter(method, path, identity string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	if identity != "" {
		r.Use(func(c *gin.Context) {
			c.Set(middlewares.CtxUserID, identity)
			c.Next()
		})
	}

	r.Handle(method, path, h)

	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request

	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestListTasksHandler(t *testing.T) {
	now := time.Now().UTC()

	t.Run("newest_first_passthrough", func(t *testing.T) {
		repo := &fakeTasksRepo{
			listFn: func(ctx context.Context, userID string) ([]task.Task, error) {
				if userID != "user-a" {
					t.Fatalf("list queried with wrong owner %q", userID)
				}
				return []task.Task{
					{ID: "t3", UserID: userID, Title: "Third", CreatedAt: now},
					{ID: "t2", UserID: userID, Title: "Second", CreatedAt: now.Add(-time.Minute)},
					{ID: "t1", UserID: userID, Title: "First", CreatedAt: now.Add(-2 * time.Minute)},
				}, nil
			},
		}

		h := handlers.NewTasksHandler(repo)
		r := setupTasksRouter(http.MethodGet, "/api/tasks", "user-a", h.List)

		w := doJSON(r, http.MethodGet, "/api/tasks", "")

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}

		var got []task.Task

		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("bad body: %v", err)
		}

		if len(got) != 3 || got[0].ID != "t3" || got[2].ID != "t1" {
			t.Fatalf("unexpected order: %+v", got)
		}
	})

	t.Run("missing_identity", func(t *testing.T) {
		h := handlers.NewTasksHandler(&fakeTasksRepo{})
		r := setupTasksRouter(http.MethodGet, "/api/tasks", "", h.List)

		if w := doJSON(r, http.MethodGet, "/api/tasks", ""); w.Code != http.StatusUnauthorized {
			t.Fatalf("got status %d, want 401", w.Code)
		}
	})

	t.Run("repo_error", func(t *testing.T) {
		repo := &fakeTasksRepo{
			listFn: func(ctx context.Context, userID string) ([]task.Task, error) {
				return nil, errors.New("db error")
			},
		}

		h := handlers.NewTasksHandler(repo)
		r := setupTasksRouter(http.MethodGet, "/api/tasks", "user-a", h.List)

		if w := doJSON(r, http.MethodGet, "/api/tasks", ""); w.Code != http.StatusInternalServerError {
			t.Fatalf("got status %d, want 500", w.Code)
		}
	})
}

func TestGetTaskHandler(t *testing.T) {
	t.Run("owned", func(t *testing.T) {
		repo := &fakeTasksRepo{
			getFn: func(ctx context.Context, userID, id string) (task.Task, error) {
				return task.Task{ID: id, UserID: userID, Title: "Mine"}, nil
			},
		}

		h := handlers.NewTasksHandler(repo)
		r := setupTasksRouter(http.MethodGet, "/api/tasks/:id", "user-a", h.Get)

		if w := doJSON(r, http.MethodGet, "/api/tasks/t1", ""); w.Code != http.StatusOK {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("foreign_task_is_not_found", func(t *testing.T) {
		// the repo answers ErrNotFound for tasks owned by someone else;
		// the handler must not turn that into anything more revealing
		h := handlers.NewTasksHandler(&fakeTasksRepo{})
		r := setupTasksRouter(http.MethodGet, "/api/tasks/:id", "user-b", h.Get)

		if w := doJSON(r, http.MethodGet, "/api/tasks/t1", ""); w.Code != http.StatusNotFound {
			t.Fatalf("got status %d, want 404", w.Code)
		}
	})
}

func TestCreateTaskHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeTasksRepo)
		wantStatusCode int
	}{
		{
			name: "success_with_defaults",
			body: `{"title":"Buy milk"}`,
			repoSetUp: func(f *fakeTasksRepo) {
				f.createFn = func(ctx context.Context, userID string, req task.CreateTaskRequest) (task.Task, error) {
					return task.NewFromCreateRequest(userID, req), nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "missing_title",
			body:           `{"completed":true}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "bad_priority",
			body:           `{"title":"x","priority":"urgent"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: `{"title":"Buy milk"}`,
			repoSetUp: func(f *fakeTasksRepo) {
				f.createFn = func(ctx context.Context, userID string, req task.CreateTaskRequest) (task.Task, error) {
					return task.Task{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeTasksRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewTasksHandler(repo)
			r := setupTasksRouter(http.MethodPost, "/api/tasks", "user-a", h.Create)

			w := doJSON(r, http.MethodPost, "/api/tasks", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusCreated {
				var got task.Task

				if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
					t.Fatalf("bad body: %v", err)
				}

				if got.Priority != task.PriorityMedium {
					t.Fatalf("priority should default to medium, got %q", got.Priority)
				}

				if got.Completed {
					t.Fatal("completed should default to false")
				}
			}
		})
	}
}

func TestUpdateTaskHandler(t *testing.T) {
	t.Run("partial_body_forwards_only_supplied_fields", func(t *testing.T) {
		var captured task.UpdateTaskRequest

		repo := &fakeTasksRepo{
			updateFn: func(ctx context.Context, userID, id string, req task.UpdateTaskRequest) (task.Task, error) {
				captured = req
				return task.Task{ID: id, UserID: userID, Title: "A", Completed: true, Priority: task.PriorityLow}, nil
			},
		}

		h := handlers.NewTasksHandler(repo)
		r := setupTasksRouter(http.MethodPut, "/api/tasks/:id", "user-a", h.Update)

		w := doJSON(r, http.MethodPut, "/api/tasks/t1", `{"completed":true}`)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}

		if captured.Completed == nil || !*captured.Completed {
			t.Fatal("completed=true should be forwarded")
		}

		if captured.Title != nil || captured.Priority != nil || captured.DueDate != nil {
			t.Fatalf("omitted fields must stay nil, got %+v", captured)
		}
	})

	t.Run("not_owned", func(t *testing.T) {
		h := handlers.NewTasksHandler(&fakeTasksRepo{})
		r := setupTasksRouter(http.MethodPut, "/api/tasks/:id", "user-b", h.Update)

		if w := doJSON(r, http.MethodPut, "/api/tasks/t1", `{"completed":true}`); w.Code != http.StatusNotFound {
			t.Fatalf("got status %d, want 404", w.Code)
		}
	})

	t.Run("bad_priority", func(t *testing.T) {
		h := handlers.NewTasksHandler(&fakeTasksRepo{})
		r := setupTasksRouter(http.MethodPut, "/api/tasks/:id", "user-a", h.Update)

		if w := doJSON(r, http.MethodPut, "/api/tasks/t1", `{"priority":"asap"}`); w.Code != http.StatusBadRequest {
			t.Fatalf("got status %d, want 400", w.Code)
		}
	})
}

func TestDeleteTaskHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := &fakeTasksRepo{
			deleteFn: func(ctx context.Context, userID, id string) error {
				return nil
			},
		}

		h := handlers.NewTasksHandler(repo)
		r := setupTasksRouter(http.MethodDelete, "/api/tasks/:id", "user-a", h.Delete)

		w := doJSON(r, http.MethodDelete, "/api/tasks/t1", "")

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}

		var body map[string]string

		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("bad body: %v", err)
		}

		if body["message"] != "Task deleted" {
			t.Fatalf("got message %q", body["message"])
		}
	})

	t.Run("second_delete_is_not_found", func(t *testing.T) {
		h := handlers.NewTasksHandler(&fakeTasksRepo{})
		r := setupTasksRouter(http.MethodDelete, "/api/tasks/:id", "user-a", h.Delete)

		if w := doJSON(r, http.MethodDelete, "/api/tasks/t1", ""); w.Code != http.StatusNotFound {
			t.Fatalf("got status %d, want 404", w.Code)
		}
	})
}
