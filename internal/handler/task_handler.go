package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"taskflow/internal/auth"
	apperrors "taskflow/internal/errors"
	"taskflow/internal/model"
	"taskflow/internal/service"
)

// TaskHandler handles task endpoints. Every route sits behind the auth gate.
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTaskRequest represents a new task.
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Status      string  `json:"status" validate:"omitempty,oneof=pending completed"`
	DueDate     *string `json:"dueDate"`
}

// UpdateTaskRequest is a sparse task update; absent fields are unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=1"`
	Description *string `json:"description" validate:"omitnil,min=1"`
	Status      *string `json:"status" validate:"omitnil,oneof=pending completed"`
	DueDate     *string `json:"dueDate"`
}

// TaskResponse wraps a single task.
type TaskResponse struct {
	Message string     `json:"message"`
	Task    model.Task `json:"task"`
}

// TaskListResponse wraps the caller's tasks.
type TaskListResponse struct {
	Message string       `json:"message"`
	Tasks   []model.Task `json:"tasks"`
}

// CreateTask godoc
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTaskRequest true "Task data"
// @Success 201 {object} TaskResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req CreateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return fail(err)
	}

	task, err := h.taskService.Create(c.Request().Context(), userID, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      model.TaskStatus(req.Status),
		DueDate:     dueDate,
	})
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusCreated, TaskResponse{Message: "Task created successfully", Task: *task})
}

// ListTasks godoc
// @Summary List the caller's tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} TaskListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	tasks, err := h.taskService.List(c.Request().Context(), userID)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, TaskListResponse{Message: "Successfully fetched tasks", Tasks: tasks})
}

// UpdateTask godoc
// @Summary Update a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param request body UpdateTaskRequest true "Fields to change"
// @Success 200 {object} TaskResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	taskID, err := taskIDParam(c)
	if err != nil {
		return err
	}

	var req UpdateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return fail(err)
	}

	patch := model.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
	}
	if req.Status != nil {
		status := model.TaskStatus(*req.Status)
		patch.Status = &status
	}

	task, err := h.taskService.Update(c.Request().Context(), userID, taskID, patch)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, TaskResponse{Message: "Task updated successfully", Task: *task})
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} TaskResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	taskID, err := taskIDParam(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.Delete(c.Request().Context(), userID, taskID)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, TaskResponse{Message: "Task deleted successfully", Task: *task})
}

func currentUser(c echo.Context) (uuid.UUID, error) {
	userID, ok := auth.UserIDFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, fail(apperrors.ErrUnauthorized)
	}
	return userID, nil
}

// taskIDParam reports a malformed id exactly like a missing task.
func taskIDParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fail(apperrors.ErrTaskNotFound)
	}
	return id, nil
}
