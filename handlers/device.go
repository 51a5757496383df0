package handlers

import (
	"net/http"

	"clipsynq/localstore"
	"clipsynq/services/device"
	"clipsynq/utils"

	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	Registry device.Registry
	Markers  localstore.Store
}

func NewDeviceHandler(reg device.Registry, markers localstore.Store) *DeviceHandler {
	return &DeviceHandler{Registry: reg, Markers: markers}
}

// ListDevicesHandler returns every device of the acting user, both primary
// and QR-linked, online first.
func (h *DeviceHandler) ListDevicesHandler(c *gin.Context) {
	devices, err := h.Registry.List(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to list devices", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"devices":         devices,
		"currentDeviceId": h.Markers.Get(localstore.KeyDeviceID),
	})
}

type renameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *DeviceHandler) RenameDeviceHandler(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid rename request", err.Error())
		return
	}
	if err := h.Registry.Rename(c.Request.Context(), req.Name); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to rename device", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device renamed", "name": req.Name})
}

type forceLogoutRequest struct {
	DeviceID string `json:"deviceId" binding:"required"`
	IsQR     bool   `json:"isQR"`
}

// ForceLogoutHandler flags another device for remote logout. The target
// device's own watcher completes the teardown.
func (h *DeviceHandler) ForceLogoutHandler(c *gin.Context) {
	var req forceLogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid force-logout request", err.Error())
		return
	}
	if req.DeviceID == h.Markers.Get(localstore.KeyDeviceID) {
		utils.JSONError(c, http.StatusBadRequest, "Cannot force-logout the current device", "use /auth/logout instead")
		return
	}
	if err := h.Registry.ForceLogout(c.Request.Context(), req.DeviceID, req.IsQR); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to flag device", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device flagged for logout", "deviceId": req.DeviceID})
}

type removeDeviceRequest struct {
	DeviceID string `json:"deviceId" binding:"required"`
	IsQR     bool   `json:"isQR"`
}

func (h *DeviceHandler) RemoveDeviceHandler(c *gin.Context) {
	var req removeDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid remove request", err.Error())
		return
	}
	userID := c.GetString("userID")
	if err := h.Registry.Remove(c.Request.Context(), userID, req.DeviceID, req.IsQR); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to remove device", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device removed", "deviceId": req.DeviceID})
}

// HeartbeatHandler marks this device online now. The cron ticker does the
// same on an interval; this endpoint lets a UI refresh presence immediately.
func (h *DeviceHandler) HeartbeatHandler(c *gin.Context) {
	if err := h.Registry.UpdateStatus(c.Request.Context(), true); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to update presence", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Presence updated"})
}
