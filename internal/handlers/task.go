package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/devboard-api/internal/dto"
	apierrors "github.com/yukikurage/devboard-api/internal/errors"
	"github.com/yukikurage/devboard-api/internal/models"
	"github.com/yukikurage/devboard-api/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks matching every given filter, newest first.
// Unknown priority or status values match nothing.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	assigneeID, ok := queryID(c, "assigneeId")
	if !ok {
		return
	}
	creatorID, ok := queryID(c, "creatorId")
	if !ok {
		return
	}

	views, err := h.taskService.ListTasks(services.ParseFilter(services.FilterParams{
		AssigneeID: assigneeID,
		CreatorID:  creatorID,
		Priority:   c.Query("priority"),
		Status:     c.Query("status"),
		Search:     c.Query("search"),
	}))
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, dto.ToTaskDTOs(views))
}

// ListMyTasks returns tasks the caller created or is assigned to
func (h *TaskHandler) ListMyTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	views, err := h.taskService.ListMyTasks(actor.ID)
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, dto.ToTaskDTOs(views))
}

// ListTasksByStatus returns tasks in the status given in the path
func (h *TaskHandler) ListTasksByStatus(c *gin.Context) {
	status, err := models.ParseTaskStatus(strings.ToUpper(c.Param("status")))
	if err != nil {
		c.Error(apierrors.Validation("Invalid task status: "+c.Param("status"), nil))
		return
	}

	views, err := h.taskService.ListTasksByStatus(status)
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, dto.ToTaskDTOs(views))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.taskService.GetTask(taskID)
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, dto.ToTaskDTO(*view))
}

// GetTaskDetail returns a task with its comments
func (h *TaskHandler) GetTaskDetail(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.taskService.GetTaskDetail(taskID)
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, dto.ToTaskDetailDTO(*detail))
}

// CreateTask creates a new task owned by the caller
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title       string  `json:"title" binding:"required,max=255"`
		Description string  `json:"description" binding:"max=1000"`
		Status      string  `json:"status" binding:"omitempty,taskstatus"`
		Priority    string  `json:"priority" binding:"omitempty,taskpriority"`
		AssigneeID  *uint64 `json:"assigneeId"`
	}

	var req CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.taskService.CreateTask(actor, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		Priority:    models.TaskPriority(req.Priority),
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		c.Error(err)
		return
	}
	respondCreated(c, dto.ToTaskDTO(*view))
}

// UpdateTask applies a partial update. Absent and null fields are left unchanged.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title       *string `json:"title" binding:"omitempty,max=255"`
		Description *string `json:"description" binding:"omitempty,max=1000"`
		Status      *string `json:"status" binding:"omitempty,taskstatus"`
		Priority    *string `json:"priority" binding:"omitempty,taskpriority"`
		AssigneeID  *uint64 `json:"assigneeId"`
	}

	var req UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		input.Priority = &priority
	}

	view, err := h.taskService.UpdateTask(actor, taskID, input)
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, dto.ToTaskDTO(*view))
}

// DeleteTask deletes a task and its comments. Runs behind the owner-or-admin gate.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(actor, taskID); err != nil {
		c.Error(err)
		return
	}
	respondMessage(c, "Task deleted successfully")
}

// AdminDeleteTask deletes any task. Admin only.
func (h *TaskHandler) AdminDeleteTask(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.AdminDeleteTask(taskID); err != nil {
		c.Error(err)
		return
	}
	respondMessage(c, "Task deleted successfully")
}

// SuggestTasks extracts task suggestions from free text without saving them
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	type SuggestRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req SuggestRequest
	if !bindJSON(c, &req) {
		return
	}

	suggestions, err := h.taskService.SuggestTasks(c.Request.Context(), req.Text)
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, dto.ToTaskSuggestionDTOs(suggestions))
}
