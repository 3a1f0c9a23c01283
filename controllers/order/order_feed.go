package orderControllers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/MilanKumarMishra/ecommerce-platform/models"
)

// Feed pushes newly completed orders to connected websocket clients, e.g. an
// admin dashboard. A nil *Feed drops broadcasts.
type Feed struct {
	upgrader websocket.Upgrader
	log      *zap.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func NewFeed(log *zap.Logger) *Feed {
	return &Feed{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:   log,
		conns: make(map[*websocket.Conn]bool),
	}
}

// GET /api/orders/feed
func (f *Feed) Handler(c *gin.Context) {
	conn, err := f.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	f.mu.Lock()
	f.conns[conn] = true
	f.mu.Unlock()

	// Block on reads until the client goes away; inbound messages are ignored.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			f.mu.Lock()
			delete(f.conns, conn)
			f.mu.Unlock()
			return
		}
	}
}

func (f *Feed) Broadcast(order models.Order) {
	if f == nil {
		return
	}
	data, err := json.Marshal(order)
	if err != nil {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			f.log.Debug("dropping dead order feed connection", zap.Error(err))
			conn.Close()
			delete(f.conns, conn)
		}
	}
}
