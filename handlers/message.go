package handlers

import (
	"net/http"

	"clipsynq/services/message"
	"clipsynq/utils"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	Messages message.Service
}

func NewMessageHandler(svc message.Service) *MessageHandler {
	return &MessageHandler{Messages: svc}
}

type sendMessageRequest struct {
	Text   string `json:"text" binding:"required"`
	Folder string `json:"folder"`
}

func (h *MessageHandler) SendMessageHandler(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid message", err.Error())
		return
	}
	id, err := h.Messages.Send(c.Request.Context(), req.Text, req.Folder)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to send message", err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *MessageHandler) ListMessagesHandler(c *gin.Context) {
	messages, err := h.Messages.List(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load messages", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type editMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *MessageHandler) EditMessageHandler(c *gin.Context) {
	var req editMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid edit", err.Error())
		return
	}
	if err := h.Messages.Edit(c.Request.Context(), c.Param("id"), req.Text); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to edit message", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Updated"})
}

func (h *MessageHandler) DeleteMessageHandler(c *gin.Context) {
	if err := h.Messages.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to delete message", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}

type flagRequest struct {
	Value bool `json:"value"`
}

func (h *MessageHandler) PinMessageHandler(c *gin.Context) {
	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid pin request", err.Error())
		return
	}
	if err := h.Messages.SetPinned(c.Request.Context(), c.Param("id"), req.Value); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to pin message", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Updated"})
}

func (h *MessageHandler) StarMessageHandler(c *gin.Context) {
	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid star request", err.Error())
		return
	}
	if err := h.Messages.SetStarred(c.Request.Context(), c.Param("id"), req.Value); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to star message", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Updated"})
}

type moveRequest struct {
	Folder string `json:"folder" binding:"required"`
}

func (h *MessageHandler) MoveMessageHandler(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid move request", err.Error())
		return
	}
	if err := h.Messages.MoveToFolder(c.Request.Context(), c.Param("id"), req.Folder); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to move message", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Moved"})
}

func (h *MessageHandler) ClearFolderHandler(c *gin.Context) {
	folder := c.Param("folder")
	if err := h.Messages.ClearFolder(c.Request.Context(), folder); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to clear folder", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cleared", "folder": folder})
}
