package presentation

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/puzpuzpuz/xsync/v2"

	"github.com/sglre6355/venuevibe/internal/modules/jukebox/application/ports"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/application/usecases"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
)

const (
	streamSendBuffer = 16
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
)

// Reasons attached to stream messages.
const (
	StreamReasonConnected     = "connected"
	StreamReasonEntryEnqueued = "entry_enqueued"
	StreamReasonEntryPopped   = "entry_popped"
)

type streamMessage struct {
	Type   string        `json:"type"`
	Reason string        `json:"reason"`
	Queue  queueResponse `json:"queue"`
}

type streamClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *streamClient) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// StreamHub pushes the ranked queue to websocket clients whenever it changes.
type StreamHub struct {
	queue    *usecases.QueueService
	upgrader websocket.Upgrader
	clients  *xsync.MapOf[string, *streamClient]

	ctx    context.Context
	cancel context.CancelFunc
}

// NewStreamHub creates a new StreamHub.
func NewStreamHub(queue *usecases.QueueService) *StreamHub {
	ctx, cancel := context.WithCancel(context.Background())
	return &StreamHub{
		queue: queue,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Origin policy is left to the CORS layer.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: xsync.NewMapOf[*streamClient](),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start subscribes the hub to queue changes.
func (h *StreamHub) Start(subscriber ports.EventSubscriber) {
	subscriber.OnEntryEnqueued(func(ctx context.Context, _ domain.EntryEnqueuedEvent) {
		h.Broadcast(ctx, StreamReasonEntryEnqueued)
	})
	subscriber.OnEntryPopped(func(ctx context.Context, _ domain.EntryPoppedEvent) {
		h.Broadcast(ctx, StreamReasonEntryPopped)
	})
}

// Clients returns the number of connected clients.
func (h *StreamHub) Clients() int {
	return h.clients.Size()
}

// Broadcast sends the current queue to every client. Clients that cannot
// keep up are disconnected.
func (h *StreamHub) Broadcast(ctx context.Context, reason string) {
	if h.clients.Size() == 0 {
		return
	}

	msg, err := h.snapshot(ctx, reason)
	if err != nil {
		slog.Error("failed to build queue snapshot", "error", err)
		return
	}

	h.clients.Range(func(id string, c *streamClient) bool {
		select {
		case c.send <- msg:
		case <-c.done:
		default:
			slog.Warn("dropping slow stream client", "client", id)
			h.remove(c)
		}
		return true
	})
}

// ServeHTTP handles GET /queue/stream.
func (h *StreamHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("failed to upgrade stream connection", "error", err)
		return
	}

	c := &streamClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, streamSendBuffer),
		done: make(chan struct{}),
	}

	msg, err := h.snapshot(r.Context(), StreamReasonConnected)
	if err != nil {
		slog.Error("failed to build queue snapshot", "error", err)
		_ = conn.Close()
		return
	}
	c.send <- msg

	h.clients.Store(c.id, c)
	slog.Debug("stream client connected", "client", c.id, "clients", h.clients.Size())

	go h.writeLoop(c)
	h.readLoop(c)
}

// Close disconnects every client.
func (h *StreamHub) Close() {
	h.cancel()
	h.clients.Range(func(_ string, c *streamClient) bool {
		h.remove(c)
		return true
	})
}

func (h *StreamHub) remove(c *streamClient) {
	h.clients.Delete(c.id)
	c.close()
}

func (h *StreamHub) snapshot(ctx context.Context, reason string) ([]byte, error) {
	out, err := h.queue.List(ctx, usecases.QueueListInput{PageSize: -1})
	if err != nil {
		return nil, err
	}
	return json.Marshal(streamMessage{
		Type:   "queue",
		Reason: reason,
		Queue:  newQueueResponse(out),
	})
}

// readLoop drains control frames until the client goes away.
func (h *StreamHub) readLoop(c *streamClient) {
	defer func() {
		h.remove(c)
		slog.Debug("stream client disconnected", "client", c.id)
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(streamPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *StreamHub) writeLoop(c *streamClient) {
	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			_ = c.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(streamWriteWait),
			)
			h.remove(c)
			return
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}
