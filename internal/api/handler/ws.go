package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"wanderlink/backend/internal/changebus"
	"wanderlink/backend/internal/contacts"
	"wanderlink/backend/internal/notify"
	"wanderlink/backend/internal/sos"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Tighten for production deployments.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsEvent is one change pushed to a connected client.
type wsEvent struct {
	Record  string          `json:"record"`
	Version uint64          `json:"version"`
	Value   json.RawMessage `json:"value"`
}

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

// ServeWebSocket upgrades the connection and streams changes on the
// caller's notification list, the shared SOS list and the contact request
// list. Subscriptions are released when the socket closes.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	user := currentUser(c)
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	send := make(chan wsEvent, 64)
	var once sync.Once
	closed := make(chan struct{})
	shutdown := func() { once.Do(func() { close(closed) }) }

	handler := func(name string, value []byte, version uint64) {
		ev := wsEvent{Record: name, Version: version, Value: json.RawMessage(value)}
		select {
		case send <- ev:
		default:
			// Slow consumer: drop, the poll path re-delivers.
		}
	}

	subs := []*changebus.Subscription{
		h.Bus.Subscribe(notify.RecordName(user.ID), handler),
		h.Bus.Subscribe(sos.RecordName, handler),
		h.Bus.Subscribe(contacts.RecordName, handler),
	}
	defer func() {
		for _, s := range subs {
			s.Unsubscribe()
		}
		conn.Close()
	}()

	// Reader only watches for close frames.
	go func() {
		defer shutdown()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case ev := <-send:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
