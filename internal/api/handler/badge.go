package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetBadge(c *gin.Context) {
	data, err := h.Badge.Compute(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute badge"})
		return
	}
	c.JSON(http.StatusOK, data)
}
