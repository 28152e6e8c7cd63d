package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wanderlink/backend/internal/chat"
	"wanderlink/backend/internal/models"
)

func (h *Handler) ListRooms(c *gin.Context) {
	domain := models.RoomDomain(c.Param("domain"))
	rooms, err := h.Chat.Rooms(c.Request.Context(), domain)
	switch {
	case errors.Is(err, chat.ErrInvalidDomain):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rooms"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *Handler) JoinRoom(c *gin.Context) {
	domain := models.RoomDomain(c.Param("domain"))
	err := h.Chat.Join(c.Request.Context(), domain, c.Param("roomId"), currentUser(c))
	switch {
	case errors.Is(err, chat.ErrInvalidDomain):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, chat.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join room"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SendRoomMessage(c *gin.Context) {
	var body messageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	domain := models.RoomDomain(c.Param("domain"))
	msg, err := h.Chat.Send(c.Request.Context(), domain, c.Param("roomId"), currentUser(c), body.Message)
	switch {
	case errors.Is(err, chat.ErrInvalidDomain):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, chat.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) MarkRoomRead(c *gin.Context) {
	domain := models.RoomDomain(c.Param("domain"))
	err := h.Chat.MarkRoomRead(c.Request.Context(), domain, c.Param("roomId"), currentUser(c).ID)
	switch {
	case errors.Is(err, chat.ErrInvalidDomain):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark messages"})
		return
	}
	c.Status(http.StatusNoContent)
}
