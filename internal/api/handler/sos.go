package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wanderlink/backend/internal/chat"
	"wanderlink/backend/internal/models"
	"wanderlink/backend/internal/sos"
)

type sosCreateBody struct {
	Message      string           `json:"message" binding:"required"`
	Category     string           `json:"category" binding:"required"`
	UrgencyLevel string           `json:"urgencyLevel" binding:"required"`
	Location     *models.Location `json:"location"`
}

func (h *Handler) CreateSOS(c *gin.Context) {
	var body sosCreateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message, category and urgencyLevel are required"})
		return
	}
	req, err := h.SOS.Create(c.Request.Context(), currentUser(c), body.Message, body.Category, models.UrgencyLevel(body.UrgencyLevel), body.Location)
	switch {
	case errors.Is(err, sos.ErrInvalidCategory), errors.Is(err, sos.ErrInvalidUrgency):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create request"})
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *Handler) ListSOS(c *gin.Context) {
	list, err := h.SOS.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load requests"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list})
}

func (h *Handler) ListMySOS(c *gin.Context) {
	list, err := h.SOS.ListFor(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load requests"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list})
}

func (h *Handler) GetSOS(c *gin.Context) {
	req, err := h.SOS.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, sos.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load request"})
		return
	}
	c.JSON(http.StatusOK, req)
}

type offerBody struct {
	Message string `json:"message"`
}

func (h *Handler) OfferHelp(c *gin.Context) {
	var body offerBody
	_ = c.ShouldBindJSON(&body)
	offered, err := h.SOS.OfferHelp(c.Request.Context(), currentUser(c), c.Param("id"), body.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record offer"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"offered": offered})
}

func (h *Handler) ResolveSOS(c *gin.Context) {
	err := h.SOS.Resolve(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	switch {
	case errors.Is(err, sos.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	case errors.Is(err, sos.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve request"})
		return
	}
	c.Status(http.StatusNoContent)
}

// loadSOS fetches one request and checks the caller is involved.
func (h *Handler) loadSOS(c *gin.Context) (models.SOSRequest, bool) {
	req, err := h.SOS.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, sos.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return models.SOSRequest{}, false
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load request"})
		return models.SOSRequest{}, false
	}
	if !req.InvolvesUser(currentUser(c).ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not involved in this request"})
		return models.SOSRequest{}, false
	}
	return req, true
}

func (h *Handler) SOSMessages(c *gin.Context) {
	req, ok := h.loadSOS(c)
	if !ok {
		return
	}
	messages, err := h.Chat.SOSMessages(c.Request.Context(), req.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *Handler) SendSOSMessage(c *gin.Context) {
	req, ok := h.loadSOS(c)
	if !ok {
		return
	}
	var body messageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	msg, err := h.Chat.AppendSOS(c.Request.Context(), req, currentUser(c), body.Message)
	switch {
	case errors.Is(err, chat.ErrRequestResolved):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) MarkSOSRead(c *gin.Context) {
	req, ok := h.loadSOS(c)
	if !ok {
		return
	}
	if err := h.Chat.MarkSOSRead(c.Request.Context(), req.ID, currentUser(c).ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark messages"})
		return
	}
	c.Status(http.StatusNoContent)
}
