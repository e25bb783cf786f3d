package server

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"quote-server/src/interfaces"
	"quote-server/src/logger"
	"quote-server/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var _ interfaces.IQuoteListener = (*Hub)(nil)

// -----------------------------------------------------------------------------
// Hub fans quote updates out to websocket subscribers.
//
// A single goroutine (Run) owns the client set. Every new subscriber first
// receives an INITIAL message with the whole cache, then one UPDATE per quote
// written by the refresher.
// -----------------------------------------------------------------------------

type Hub struct {
	Logger *logger.Logger

	snapshot func() []models.MQuote

	clients    map[*Client]struct{}
	broadcast  chan *models.MStreamMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	connections atomic.Int64
	dropped     atomic.Uint64
}

// -----------------------------------------------------------------------------

func NewHub(snapshot func() []models.MQuote, log *logger.Logger) *Hub {
	return &Hub{
		Logger:   log,
		snapshot: snapshot,
		clients:  make(map[*Client]struct{}),
		// Buffered so the refresher never waits on subscribers
		broadcast:  make(chan *models.MStreamMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// -----------------------------------------------------------------------------

// Run is the hub loop. It returns when ctx is cancelled, closing every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.connections.Add(1)
			client.send <- &models.MStreamMessage{
				Type:      models.StreamTypeInitial,
				Quotes:    h.snapshot(),
				Timestamp: time.Now().Unix(),
			}

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer, disconnect rather than block the hub
					h.drop(client)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.connections.Add(-1)
}

// -----------------------------------------------------------------------------

// Publish queues an UPDATE for quote. It never blocks; when the queue is full
// the update is dropped.
func (h *Hub) Publish(quote models.MQuote) {
	msg := &models.MStreamMessage{
		Type:      models.StreamTypeUpdate,
		Quotes:    []models.MQuote{quote},
		Timestamp: time.Now().Unix(),
	}

	select {
	case h.broadcast <- msg:
	default:
		if h.dropped.Add(1)%100 == 1 {
			h.Logger.Warning("Stream queue full, dropped update for %s", quote.Symbol)
		}
	}
}

// -----------------------------------------------------------------------------

func (h *Hub) Connections() int {
	return int(h.connections.Load())
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan *models.MStreamMessage, 256),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
