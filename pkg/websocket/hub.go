package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Hub manages websocket clients and room-based broadcasts. One room per game
// ("game:<id>"); a client belongs to exactly one room. All channel sends on
// Client.Send happen inside Run, so the hub goroutine is the only closer and
// the only writer of that channel.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan Broadcast
	direct     chan directMsg
	replies    chan clientMsg
	stop       chan struct{}
	stopOnce   sync.Once

	rooms map[string]map[*Client]bool
}

type Broadcast struct {
	Room    string
	Type    string
	Payload any
}

type directMsg struct {
	Room    string
	Seat    int
	Type    string
	Payload any
}

type clientMsg struct {
	Client  *Client
	Type    string
	Payload any
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Broadcast, 256),
		direct:     make(chan directMsg, 256),
		replies:    make(chan clientMsg, 256),
		stop:       make(chan struct{}),
		rooms:      map[string]map[*Client]bool{},
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			if h.rooms[c.Room] == nil {
				h.rooms[c.Room] = map[*Client]bool{}
			}
			h.rooms[c.Room][c] = true
		case c := <-h.unregister:
			h.removeClient(c)
		case b := <-h.broadcast:
			h.broadcastToRoom(b.Room, b.Type, b.Payload)
		case d := <-h.direct:
			h.sendToSeat(d)
		case m := <-h.replies:
			h.sendToClient(m)
		case <-h.stop:
			for _, clients := range h.rooms {
				for c := range clients {
					h.removeClient(c)
				}
			}
			return
		}
	}
}

// Stop shuts the hub down; pending and future enqueues become no-ops instead
// of blocking forever. Safe to call from multiple goroutines.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.stop:
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stop:
	}
}

func (h *Hub) Broadcast(room, typ string, payload any) {
	select {
	case h.broadcast <- Broadcast{Room: room, Type: typ, Payload: payload}:
	case <-h.stop:
	}
}

// SendToSeat delivers a private message to every connection the seat holds in
// the room (a player may have more than one tab open).
func (h *Hub) SendToSeat(room string, seat int, typ string, payload any) {
	select {
	case h.direct <- directMsg{Room: room, Seat: seat, Type: typ, Payload: payload}:
	case <-h.stop:
	}
}

// SendToClient delivers a reply to one specific connection. The send happens
// on the hub goroutine, which checks the client is still registered first, so
// callers never race the close of the client's Send channel.
func (h *Hub) SendToClient(c *Client, typ string, payload any) {
	select {
	case h.replies <- clientMsg{Client: c, Type: typ, Payload: payload}:
	case <-h.stop:
	}
}

func (h *Hub) removeClient(c *Client) {
	if c == nil {
		return
	}
	if c.Room != "" && h.rooms[c.Room] != nil {
		delete(h.rooms[c.Room], c)
		if len(h.rooms[c.Room]) == 0 {
			delete(h.rooms, c.Room)
		}
	}
	c.SendCloseOnce.Do(func() { close(c.Send) })
}

func (h *Hub) broadcastToRoom(room, typ string, payload any) {
	clients := h.rooms[room]
	if len(clients) == 0 {
		return
	}
	data, ok := envelope(room, typ, payload)
	if !ok {
		return
	}
	for c := range clients {
		select {
		case c.Send <- data:
		default:
			// Backpressure / dead client.
			h.removeClient(c)
		}
	}
}

func (h *Hub) sendToClient(m clientMsg) {
	c := m.Client
	if c == nil || h.rooms[c.Room] == nil || !h.rooms[c.Room][c] {
		// Already removed; the reply is dropped rather than sent on a channel
		// this goroutine may have closed.
		return
	}
	data, ok := envelope(c.Room, m.Type, m.Payload)
	if !ok {
		return
	}
	select {
	case c.Send <- data:
	default:
		h.removeClient(c)
	}
}

func (h *Hub) sendToSeat(d directMsg) {
	clients := h.rooms[d.Room]
	if len(clients) == 0 {
		return
	}
	data, ok := envelope(d.Room, d.Type, d.Payload)
	if !ok {
		return
	}
	for c := range clients {
		if c.Seat != d.Seat {
			continue
		}
		select {
		case c.Send <- data:
		default:
			h.removeClient(c)
		}
	}
}

func envelope(room, typ string, payload any) ([]byte, bool) {
	msg := map[string]any{
		"type":      typ,
		"payload":   payload,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("ws marshal error: room=%s type=%s err=%v", room, typ, err)
		return nil, false
	}
	return data, true
}
