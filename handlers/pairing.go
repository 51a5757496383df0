package handlers

import (
	"context"
	"encoding/base64"
	"net/http"
	"sync"

	"clipsynq/services/pairing"
	"clipsynq/services/session"
	"clipsynq/utils"

	"github.com/gin-gonic/gin"
)

type PairingHandler struct {
	Initiator *pairing.Initiator
	Scanner   *pairing.Scanner
	Session   session.Service

	// appCtx outlives any single request. Both pairing sides subscribe to the
	// session record and wait minutes for the other device; those listeners
	// must not die with the request that started them.
	appCtx context.Context

	// ticket from the live pairing session, for the status and image
	// endpoints. Guarded by mu; handlers run concurrently.
	mu         sync.Mutex
	lastTicket *pairing.Ticket
}

func NewPairingHandler(appCtx context.Context, init *pairing.Initiator, scan *pairing.Scanner, sess session.Service) *PairingHandler {
	return &PairingHandler{appCtx: appCtx, Initiator: init, Scanner: scan, Session: sess}
}

// liveTicket returns the ticket only while its session is still the
// initiator's in-flight one, so expiry and close invalidate it without any
// callback wiring.
func (h *PairingHandler) liveTicket() *pairing.Ticket {
	h.mu.Lock()
	ticket := h.lastTicket
	h.mu.Unlock()
	if ticket == nil || h.Initiator.Live() != ticket.SessionID {
		return nil
	}
	return ticket
}

// InitiateHandler starts a pairing session for the signed-in owner and
// returns the QR payload plus the rendered image (base64).
func (h *PairingHandler) InitiateHandler(c *gin.Context) {
	owner := h.Session.CurrentUser()
	if owner == nil {
		utils.JSONError(c, http.StatusUnauthorized, "QR login requires a provider session", "sign in first")
		return
	}

	ticket, err := h.Initiator.Begin(h.appCtx, owner)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to start pairing", err.Error())
		return
	}
	h.mu.Lock()
	h.lastTicket = ticket
	h.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{
		"sessionId": ticket.SessionID,
		"expiresAt": ticket.ExpiresAt,
		"payload":   ticket.Payload,
		"image":     base64.StdEncoding.EncodeToString(ticket.PNG),
	})
}

// StatusHandler reports the live pairing session, if any. Progress beyond
// this snapshot streams over /events.
func (h *PairingHandler) StatusHandler(c *gin.Context) {
	ticket := h.liveTicket()
	if ticket == nil {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"active":    true,
		"sessionId": ticket.SessionID,
		"expiresAt": ticket.ExpiresAt,
	})
}

// ImageHandler serves the live session's QR code as a PNG.
func (h *PairingHandler) ImageHandler(c *gin.Context) {
	ticket := h.liveTicket()
	if ticket == nil || ticket.SessionID != c.Param("sessionId") {
		utils.JSONError(c, http.StatusNotFound, "No live pairing session", "")
		return
	}
	c.Data(http.StatusOK, "image/png", ticket.PNG)
}

func (h *PairingHandler) ApproveHandler(c *gin.Context) {
	if err := h.Initiator.Approve(c.Request.Context(), c.Param("sessionId")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to approve pairing", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Pairing approved"})
}

func (h *PairingHandler) DenyHandler(c *gin.Context) {
	if err := h.Initiator.Deny(c.Request.Context(), c.Param("sessionId")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to deny pairing", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Pairing denied"})
}

func (h *PairingHandler) CancelHandler(c *gin.Context) {
	h.Initiator.Cancel()
	h.mu.Lock()
	h.lastTicket = nil
	h.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"message": "Pairing cancelled"})
}

type scanRequest struct {
	Payload string `json:"payload" binding:"required"`
}

// ScanHandler feeds a scanned QR payload into the scanner flow. The outcome
// streams over the event bus; this endpoint only acknowledges receipt.
func (h *PairingHandler) ScanHandler(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid scan request", err.Error())
		return
	}
	h.Scanner.HandleScan(h.appCtx, []byte(req.Payload))
	c.JSON(http.StatusAccepted, gin.H{"message": "Scan received"})
}
