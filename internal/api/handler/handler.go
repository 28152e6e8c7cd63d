// Package handler exposes the engine over HTTP and WebSocket.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"wanderlink/backend/internal/badge"
	"wanderlink/backend/internal/changebus"
	"wanderlink/backend/internal/chat"
	"wanderlink/backend/internal/contacts"
	"wanderlink/backend/internal/expert"
	"wanderlink/backend/internal/notify"
	"wanderlink/backend/internal/sos"
)

type Handler struct {
	JWTSecret []byte

	Bus      *changebus.Bus
	Notify   *notify.Service
	Contacts *contacts.Workflow
	SOS      *sos.Workflow
	Chat     *chat.Service
	Badge    *badge.Aggregator
	Experts  *expert.Catalog
}

func NewHandler(jwtSecret string, bus *changebus.Bus, n *notify.Service, c *contacts.Workflow, s *sos.Workflow, ch *chat.Service, b *badge.Aggregator, e *expert.Catalog) *Handler {
	return &Handler{
		JWTSecret: []byte(jwtSecret),
		Bus:       bus,
		Notify:    n,
		Contacts:  c,
		SOS:       s,
		Chat:      ch,
		Badge:     b,
		Experts:   e,
	}
}

// rateLimit caps the whole surface with a shared token bucket. Bursty
// clients get 429 instead of queueing.
func rateLimit(rps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// Register wires every route. Everything except the token endpoint and
// the health check sits behind JWT auth.
func (h *Handler) Register(r *gin.Engine) {
	r.Use(rateLimit(100, 200))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.POST("/auth/token", h.IssueToken)

	api := r.Group("/api", h.AuthRequired())
	{
		api.GET("/notifications", h.ListNotifications)
		api.GET("/notifications/unread", h.UnreadCount)
		api.PUT("/notifications/:id/read", h.MarkNotificationRead)
		api.PUT("/notifications/read", h.MarkAllNotificationsRead)
		api.DELETE("/notifications/:id", h.DeleteNotification)
		api.DELETE("/notifications", h.DeleteAllNotifications)

		api.POST("/contacts/requests", h.SendContactRequest)
		api.GET("/contacts/requests", h.ListContactRequests)
		api.PUT("/contacts/requests/:id/accept", h.AcceptContactRequest)
		api.PUT("/contacts/requests/:id/decline", h.DeclineContactRequest)
		api.GET("/contacts/conversations/:pairId", h.GetConversation)
		api.GET("/contacts/conversations/:pairId/messages", h.DirectMessages)
		api.POST("/contacts/conversations/:pairId/messages", h.SendDirectMessage)
		api.PUT("/contacts/conversations/:pairId/read", h.MarkDirectRead)

		api.POST("/sos", h.CreateSOS)
		api.GET("/sos", h.ListSOS)
		api.GET("/sos/mine", h.ListMySOS)
		api.GET("/sos/:id", h.GetSOS)
		api.POST("/sos/:id/offers", h.OfferHelp)
		api.PUT("/sos/:id/resolve", h.ResolveSOS)
		api.GET("/sos/:id/messages", h.SOSMessages)
		api.POST("/sos/:id/messages", h.SendSOSMessage)
		api.PUT("/sos/:id/read", h.MarkSOSRead)

		api.GET("/chat/:domain/rooms", h.ListRooms)
		api.POST("/chat/:domain/rooms/:roomId/join", h.JoinRoom)
		api.POST("/chat/:domain/rooms/:roomId/messages", h.SendRoomMessage)
		api.PUT("/chat/:domain/rooms/:roomId/read", h.MarkRoomRead)

		api.GET("/badge", h.GetBadge)

		api.GET("/experts", h.ListExperts)
		api.POST("/experts/match", h.MatchExperts)
		api.POST("/experts/:id/room", h.OpenExpertRoom)

		api.GET("/ws", h.ServeWebSocket)
	}
}
