package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wanderlink/backend/internal/contacts"
	"wanderlink/backend/internal/models"
)

type contactRequestBody struct {
	ToUserID string `json:"toUserId" binding:"required"`
	ToPseudo string `json:"toUserPseudo" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
	Message  string `json:"message"`
}

func (h *Handler) SendContactRequest(c *gin.Context) {
	var body contactRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "toUserId, toUserPseudo and reason are required"})
		return
	}
	from := currentUser(c)
	to := models.User{ID: body.ToUserID, Pseudo: body.ToPseudo}

	req, err := h.Contacts.Send(c.Request.Context(), from, to, models.ContactReason(body.Reason), body.Message)
	switch {
	case errors.Is(err, contacts.ErrInvalidReason), errors.Is(err, contacts.ErrSelfRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, contacts.ErrPendingExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send request"})
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *Handler) ListContactRequests(c *gin.Context) {
	user := currentUser(c)
	list, err := h.Contacts.ListFor(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load requests"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list})
}

func (h *Handler) AcceptContactRequest(c *gin.Context) {
	user := currentUser(c)
	changed, conv, err := h.Contacts.Accept(c.Request.Context(), c.Param("id"), user)
	switch {
	case errors.Is(err, contacts.ErrNotRecipient):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed, "conversation": conv})
}

func (h *Handler) DeclineContactRequest(c *gin.Context) {
	user := currentUser(c)
	changed, err := h.Contacts.Decline(c.Request.Context(), c.Param("id"), user)
	switch {
	case errors.Is(err, contacts.ErrNotRecipient):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to decline request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

// loadConversation fetches the pair conversation and checks the caller
// belongs to it.
func (h *Handler) loadConversation(c *gin.Context) (*models.Conversation, bool) {
	user := currentUser(c)
	conv, err := h.Contacts.Conversation(c.Request.Context(), c.Param("pairId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return nil, false
	}
	if conv == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return nil, false
	}
	if !conv.HasParticipant(user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return nil, false
	}
	return conv, true
}

func (h *Handler) GetConversation(c *gin.Context) {
	conv, ok := h.loadConversation(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (h *Handler) DirectMessages(c *gin.Context) {
	conv, ok := h.loadConversation(c)
	if !ok {
		return
	}
	messages, err := h.Chat.DirectMessages(c.Request.Context(), conv.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type messageBody struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) SendDirectMessage(c *gin.Context) {
	conv, ok := h.loadConversation(c)
	if !ok {
		return
	}
	var body messageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	msg, err := h.Chat.SendDirect(c.Request.Context(), *conv, currentUser(c), body.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) MarkDirectRead(c *gin.Context) {
	conv, ok := h.loadConversation(c)
	if !ok {
		return
	}
	if err := h.Chat.MarkDirectRead(c.Request.Context(), conv.ID, currentUser(c).ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark messages"})
		return
	}
	c.Status(http.StatusNoContent)
}
