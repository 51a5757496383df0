package handlers

import (
	"net/http"

	"clipsynq/services/board"
	"clipsynq/utils"

	"github.com/gin-gonic/gin"
)

type BoardHandler struct {
	Board board.Service
}

func NewBoardHandler(svc board.Service) *BoardHandler {
	return &BoardHandler{Board: svc}
}

type boardPostRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *BoardHandler) PostHandler(c *gin.Context) {
	var req boardPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid post", err.Error())
		return
	}
	id, err := h.Board.Post(c.Request.Context(), req.Text)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to post", err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *BoardHandler) ListHandler(c *gin.Context) {
	posts, err := h.Board.List(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load board", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *BoardHandler) ToggleLikeHandler(c *gin.Context) {
	if err := h.Board.ToggleLike(c.Request.Context(), c.Param("id")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to toggle like", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Toggled"})
}

type boardReplyRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *BoardHandler) ReplyHandler(c *gin.Context) {
	var req boardReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid reply", err.Error())
		return
	}
	id, err := h.Board.Reply(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to reply", err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *BoardHandler) DeletePostHandler(c *gin.Context) {
	if err := h.Board.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.JSONError(c, http.StatusForbidden, "Failed to delete post", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}
