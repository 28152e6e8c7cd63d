package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wanderlink/backend/internal/models"
)

func (h *Handler) ListExperts(c *gin.Context) {
	experts, err := h.Experts.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load experts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"experts": experts})
}

func (h *Handler) MatchExperts(c *gin.Context) {
	var criteria models.MatchCriteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid criteria"})
		return
	}
	results, err := h.Experts.Match(criteria)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to match experts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *Handler) OpenExpertRoom(c *gin.Context) {
	expertProfile, found, err := h.Experts.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load expert"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "expert not found"})
		return
	}
	roomID, err := h.Chat.OpenExpertRoom(c.Request.Context(), expertProfile, currentUser(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open room"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"roomId": roomID})
}
