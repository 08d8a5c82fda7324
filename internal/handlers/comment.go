package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/devboard-api/internal/dto"
	"github.com/yukikurage/devboard-api/internal/services"
)

type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// CreateComment adds a comment to the task in the path
func (h *CommentHandler) CreateComment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	type CreateCommentRequest struct {
		Content string `json:"content" binding:"required"`
	}

	var req CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.CreateComment(actor, taskID, req.Content)
	if err != nil {
		c.Error(err)
		return
	}
	respondCreated(c, dto.ToCommentDTO(*comment))
}

// ListComments returns a task's comments, newest first
func (h *CommentHandler) ListComments(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	comments, err := h.commentService.ListComments(taskID)
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, dto.ToCommentDTOs(comments))
}

// DeleteComment removes a comment written by the caller, or any comment for admins
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return
	}

	if err := h.commentService.DeleteComment(actor, commentID); err != nil {
		c.Error(err)
		return
	}
	respondMessage(c, "Comment deleted successfully")
}
