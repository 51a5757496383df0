package handlers

import (
	"net/http"

	"clipsynq/services/folder"
	"clipsynq/services/session"
	"clipsynq/utils"

	"github.com/gin-gonic/gin"
)

type FolderHandler struct {
	Folders folder.Service
	Session session.Service
}

func NewFolderHandler(svc folder.Service, sess session.Service) *FolderHandler {
	return &FolderHandler{Folders: svc, Session: sess}
}

type createFolderRequest struct {
	Name string `json:"name" binding:"required"`
	Icon string `json:"icon"`
}

func (h *FolderHandler) CreateFolderHandler(c *gin.Context) {
	var req createFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid folder", err.Error())
		return
	}
	id, err := h.Folders.Create(c.Request.Context(), req.Name, req.Icon)
	if err != nil {
		utils.JSONError(c, http.StatusConflict, "Failed to create folder", err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *FolderHandler) ListFoldersHandler(c *gin.Context) {
	folders, err := h.Folders.List(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load folders", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"folders":       folders,
		"currentFolder": h.Session.CurrentFolder(),
	})
}

type renameFolderRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *FolderHandler) RenameFolderHandler(c *gin.Context) {
	var req renameFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid rename", err.Error())
		return
	}
	if err := h.Folders.Rename(c.Request.Context(), c.Param("id"), req.Name); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to rename folder", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Renamed"})
}

func (h *FolderHandler) DeleteFolderHandler(c *gin.Context) {
	if err := h.Folders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to delete folder", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}

type selectFolderRequest struct {
	Folder string `json:"folder" binding:"required"`
}

// SelectFolderHandler persists the active folder selection locally.
func (h *FolderHandler) SelectFolderHandler(c *gin.Context) {
	var req selectFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid selection", err.Error())
		return
	}
	h.Session.SetCurrentFolder(req.Folder)
	c.JSON(http.StatusOK, gin.H{"currentFolder": req.Folder})
}
