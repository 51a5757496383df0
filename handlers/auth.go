package handlers

import (
	"context"
	"net/http"
	"time"

	"clipsynq/database"
	"clipsynq/localstore"
	"clipsynq/models"
	"clipsynq/services/device"
	"clipsynq/services/identity"
	"clipsynq/services/session"
	"clipsynq/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	Auth     identity.Provider
	Session  session.Service
	Registry device.Registry
	Watcher  *device.ForceLogoutWatcher
	Markers  localstore.Store
	DB       database.Client

	// appCtx outlives any single request. The force-logout subscription is
	// armed from login handlers but must keep streaming long after the
	// response is written, so it never runs under a request context.
	appCtx context.Context
}

func NewAuthHandler(appCtx context.Context, auth identity.Provider, sess session.Service, reg device.Registry, watcher *device.ForceLogoutWatcher, markers localstore.Store, db database.Client) *AuthHandler {
	return &AuthHandler{appCtx: appCtx, Auth: auth, Session: sess, Registry: reg, Watcher: watcher, Markers: markers, DB: db}
}

// afterSignIn runs the shared post-login sequence: promote any stale QR
// linkage, refresh the denormalized profile, register this device, and arm
// the force-logout watcher. Everything past authentication is best-effort.
func (h *AuthHandler) afterSignIn(ctx context.Context, user *models.AuthUser) {
	h.Session.PromoteQRSession()

	profile := models.UserProfile{
		DisplayName: user.Label(),
		Email:       user.Email,
		PhotoURL:    user.PhotoURL,
		UpdatedAt:   time.Now().UnixMilli(),
	}
	if err := h.DB.Set(ctx, utils.UserProfilePath(user.UID), profile); err != nil {
		zap.L().Warn("failed to refresh user profile", zap.Error(err))
	}

	if err := h.Registry.RegisterCurrentDevice(ctx); err != nil {
		zap.L().Warn("device registration after sign-in failed", zap.Error(err))
	}
	if err := h.Watcher.Start(h.appCtx); err != nil {
		zap.L().Warn("failed to start force-logout watcher", zap.Error(err))
	}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginHandler signs in with the provider, promotes any stale QR linkage,
// registers this device, and arms the force-logout watcher.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid login request", err.Error())
		return
	}

	user, err := h.Auth.SignInWithEmail(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.JSONError(c, http.StatusUnauthorized, "Sign-in failed", err.Error())
		return
	}

	h.afterSignIn(c.Request.Context(), user)

	c.JSON(http.StatusOK, gin.H{
		"uid":         user.UID,
		"email":       user.Email,
		"displayName": user.Label(),
		"photoURL":    user.PhotoURL,
	})
}

// SignupHandler creates a provider account and then runs the same post-login
// sequence as LoginHandler.
func (h *AuthHandler) SignupHandler(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid signup request", err.Error())
		return
	}

	user, err := h.Auth.SignUpWithEmail(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.JSONError(c, http.StatusConflict, "Sign-up failed", err.Error())
		return
	}

	h.afterSignIn(c.Request.Context(), user)

	c.JSON(http.StatusCreated, gin.H{
		"uid":         user.UID,
		"email":       user.Email,
		"displayName": user.Label(),
	})
}

// LogoutHandler runs the voluntary sign-out sequence: remove this device's
// record, sign out of the provider, clear local markers. Same steps as the
// forced path, minus the remote trigger.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	ctx := c.Request.Context()

	h.Watcher.Stop()

	userID := h.Session.UserID()
	deviceID := h.Markers.Get(localstore.KeyDeviceID)
	if userID != "" && deviceID != "" {
		if err := h.Registry.Remove(ctx, userID, deviceID, h.Session.IsQRLogin()); err != nil {
			zap.L().Warn("failed to remove device record on logout", zap.Error(err))
		}
	}
	if err := h.Auth.SignOut(ctx); err != nil {
		zap.L().Warn("provider sign-out failed", zap.Error(err))
	}
	h.Session.ClearLocalSession()

	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// SessionHandler reports the current session mode.
func (h *AuthHandler) SessionHandler(c *gin.Context) {
	userID := h.Session.UserID()
	c.JSON(http.StatusOK, gin.H{
		"userId":        userID,
		"authenticated": userID != "",
		"isQRLogin":     h.Session.IsQRLogin(),
		"label":         h.Session.UserLabel(),
		"currentFolder": h.Session.CurrentFolder(),
		"watcher":       string(h.Watcher.State()),
	})
}
