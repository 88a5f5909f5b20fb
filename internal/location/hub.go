package location

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// viewMessage is one frame pushed to dashboard clients: the joined live view
// for the family the client asked for, plus the family list for the picker.
type viewMessage struct {
	Type      string                     `json:"type"`
	Family    string                     `json:"family,omitempty"`
	Locations map[string]*MemberLocation `json:"locations"`
	Families  map[string]string          `json:"families"`
}

type hubClient struct {
	conn   *websocket.Conn
	send   chan *viewMessage
	family string
}

// Hub fans the aggregator's live view out to websocket clients. Each client
// subscribes to one family (or all families with an empty filter) and
// receives a full snapshot on connect and after every upstream change.
type Hub struct {
	aggregator *Aggregator
	logger     *zap.SugaredLogger

	register   chan *hubClient
	unregister chan *hubClient
	broadcast  chan struct{}
	clients    map[*hubClient]bool

	removeListener func()
}

func NewHub(aggregator *Aggregator, logger *zap.SugaredLogger) *Hub {
	return &Hub{
		aggregator: aggregator,
		logger:     logger,
		register:   make(chan *hubClient),
		unregister: make(chan *hubClient),
		broadcast:  make(chan struct{}, 1),
		clients:    make(map[*hubClient]bool),
	}
}

// Run owns the client set. Change notifications are coalesced: a burst of
// snapshots while a broadcast is pending produces one refresh.
func (h *Hub) Run() {
	h.removeListener = h.aggregator.OnChange(func() {
		select {
		case h.broadcast <- struct{}{}:
		default:
		}
	})

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.push(client)
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case <-h.broadcast:
			for client := range h.clients {
				h.push(client)
			}
		}
	}
}

func (h *Hub) Stop() {
	if h.removeListener != nil {
		h.removeListener()
	}
}

func (h *Hub) push(client *hubClient) {
	msg := &viewMessage{
		Type:      "locations",
		Family:    client.family,
		Locations: h.aggregator.View(client.family),
		Families:  h.aggregator.Families(),
	}
	select {
	case client.send <- msg:
	default:
		delete(h.clients, client)
		close(client.send)
	}
}

// ServeWS upgrades the request and attaches the client to the hub. The
// family filter comes from the query string.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Errorf("websocket upgrade failed: %v", err)
		return
	}

	client := &hubClient{
		conn:   conn,
		send:   make(chan *viewMessage, 8),
		family: r.URL.Query().Get("family"),
	}
	h.register <- client

	go h.writePump(client)
	go h.readPump(client)
}

func (h *Hub) readPump(client *hubClient) {
	defer func() {
		h.unregister <- client
		client.conn.Close()
	}()

	client.conn.SetReadLimit(maxMessageSize)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warnf("websocket read: %v", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(client *hubClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
