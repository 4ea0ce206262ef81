package websocket

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/wavenation/wavenation/internal/logger"
	"github.com/wavenation/wavenation/internal/models"
	"github.com/wavenation/wavenation/internal/schedule"
)

// Message types pushed to clients
const (
	TypeOnAir       = "on_air"
	TypePollResults = "poll_results"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// OnAirSource resolves the on-air view pushed to clients
type OnAirSource interface {
	OnAir(ctx context.Context, now time.Time, viewer *time.Location) schedule.OnAirView
}

// PollResultsPayload is the payload of a poll_results message
type PollResultsPayload struct {
	PollID  int                `json:"poll_id"`
	Results models.PollResults `json:"results"`
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	log        logger.Logger
	onAir      OnAirSource
	now        func() time.Time
	clients    map[*Client]bool
	broadcast  chan models.WSMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	mutex      sync.RWMutex

	lastMu    sync.Mutex
	lastOnAir string
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan models.WSMessage
}

// New creates a new Hub. onAir may be nil, in which case no on_air
// messages are sent.
func New(log logger.Logger, onAir OnAirSource) *Hub {
	return &Hub{
		log:        log,
		onAir:      onAir,
		now:        time.Now,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan models.WSMessage, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run handles client registration and broadcasting until ctx is done.
// All client connections are closed on return.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client connected", "total_clients", total)

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.mutex.RLock()
			var slow []*Client
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					slow = append(slow, client)
				}
			}
			h.mutex.RUnlock()
			for _, c := range slow {
				h.remove(c)
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mutex.Unlock()
	h.log.Debug("Client disconnected", "total_clients", total)
}

func (h *Hub) shutdown() {
	h.stopOnce.Do(func() { close(h.done) })
	h.mutex.Lock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
	h.mutex.Unlock()
	h.log.Info("WebSocket hub stopped")
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// BroadcastMessage sends a message to all connected clients. It is a
// no-op once the hub has stopped.
func (h *Hub) BroadcastMessage(msgType string, payload interface{}) {
	select {
	case h.broadcast <- models.WSMessage{Type: msgType, Payload: payload}:
	case <-h.done:
	}
}

// BroadcastPollResults pushes the tally of a poll after a vote
func (h *Hub) BroadcastPollResults(pollID int, results models.PollResults) {
	h.BroadcastMessage(TypePollResults, PollResultsPayload{PollID: pollID, Results: results})
}

// onAirMessage resolves the current on-air view and its identity key
func (h *Hub) onAirMessage(ctx context.Context) (models.WSMessage, string) {
	view := h.onAir.OnAir(ctx, h.now(), nil)
	return models.WSMessage{Type: TypeOnAir, Payload: view}, resolutionKey(view)
}

// resolutionKey identifies which slots are live and up next. Label text
// such as the countdown is excluded so it does not trigger a push.
func resolutionKey(v schedule.OnAirView) string {
	key := string(v.State)
	for _, slot := range []*schedule.ResolvedSlot{v.Live, v.UpNext} {
		if slot == nil {
			key += "|-"
			continue
		}
		key += "|" + slot.StartsAt.UTC().Format(time.RFC3339) + "#" + strconv.Itoa(slot.ID)
	}
	return key
}

// WatchOnAir checks the schedule every interval and broadcasts an on_air
// message whenever what is live or up next changes. It returns when ctx
// is done.
func (h *Hub) WatchOnAir(ctx context.Context, interval time.Duration) {
	if h.onAir == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.checkOnAir(ctx)
	for {
		select {
		case <-ctx.Done():
			h.log.Info("On-air watcher stopped")
			return
		case <-ticker.C:
			h.checkOnAir(ctx)
		}
	}
}

// checkOnAir broadcasts the current view when its resolution changed
func (h *Hub) checkOnAir(ctx context.Context) {
	msg, key := h.onAirMessage(ctx)

	h.lastMu.Lock()
	changed := key != h.lastOnAir
	h.lastOnAir = key
	h.lastMu.Unlock()

	if changed {
		h.log.Debug("On-air state changed", "key", key)
		h.BroadcastMessage(msg.Type, msg.Payload)
	}
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}

		// Clients only listen; anything they send is logged and dropped.
		var msg models.WSMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.hub.log.Debug("Received message", "type", msg.Type)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			msgBytes, err := json.Marshal(message)
			if err != nil {
				c.hub.log.Error("Failed to encode message", "type", message.Type, "error", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msgBytes); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs upgrades the request and registers the client. The client is
// sent the current on_air state before anything else.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.done:
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan models.WSMessage, sendBuffer),
	}
	if h.onAir != nil {
		msg, _ := h.onAirMessage(r.Context())
		client.send <- msg
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
