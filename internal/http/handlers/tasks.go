package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/idrissbado/taskhub/internal/config"
	"github.com/idrissbado/taskhub/internal/domain/task"
	"github.com/idrissbado/taskhub/internal/http/middlewares"
)

type TasksStore interface {
	Create(ctx context.Context, userID string, req task.CreateTaskRequest) (task.Task, error)
	ListByOwner(ctx context.Context, userID string) ([]task.Task, error)
	GetByID(ctx context.Context, userID, id string) (task.Task, error)
	Update(ctx context.Context, userID, id string, req task.UpdateTaskRequest) (task.Task, error)
	Delete(ctx context.Context, userID, id string) error
}

type TasksHandler struct {
	repo TasksStore
}

func NewTasksHandler(repo TasksStore) *TasksHandler {
	return &TasksHandler{repo: repo}
}

// caller identity, resolved by the session gate before these run
func callerID(ctx *gin.Context) (string, bool) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return "", false
	}

	return userID, true
}

func (h *TasksHandler) List(ctx *gin.Context) {
	userID, ok := callerID(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	tasks, err := h.repo.ListByOwner(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list tasks")
		return
	}

	ctx.JSON(http.StatusOK, tasks)
}

func (h *TasksHandler) Get(ctx *gin.Context) {
	userID, ok := callerID(ctx)

	if !ok {
		return
	}

	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	t, err := h.repo.GetByID(cctx, userID, id)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}

		RespondInternal(ctx, "Could not fetch task")
		return
	}

	ctx.JSON(http.StatusOK, t)
}

func (h *TasksHandler) Create(ctx *gin.Context) {
	userID, ok := callerID(ctx)

	if !ok {
		return
	}

	var req task.CreateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	t, err := h.repo.Create(cctx, userID, req)

	if err != nil {
		RespondInternal(ctx, "Could not create task")
		return
	}

	ctx.JSON(http.StatusCreated, t)
}

func (h *TasksHandler) Update(ctx *gin.Context) {
	userID, ok := callerID(ctx)

	if !ok {
		return
	}

	id := ctx.Param("id")

	var req task.UpdateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	t, err := h.repo.Update(cctx, userID, id, req)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}

		RespondInternal(ctx, "Could not update task")
		return
	}

	ctx.JSON(http.StatusOK, t)
}

func (h *TasksHandler) Delete(ctx *gin.Context) {
	userID, ok := callerID(ctx)

	if !ok {
		return
	}

	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, userID, id)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}

		RespondInternal(ctx, "Could not delete task")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}
