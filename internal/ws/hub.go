package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zaqqye/salon_backoffice/internal/logger"
	"github.com/zaqqye/salon_backoffice/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
)

type eventMessage struct {
	resource string
	payload  []byte
}

// EventHub fans change events out to connected operator sessions.
type EventHub struct {
	register   chan *eventClient
	unregister chan *eventClient
	broadcast  chan eventMessage
	clients    map[*eventClient]struct{}
	done       chan struct{}
	log        logger.Logger
}

func NewEventHub(log logger.Logger) *EventHub {
	if log == nil {
		log = logger.Nop()
	}
	return &EventHub{
		register:   make(chan *eventClient),
		unregister: make(chan *eventClient),
		broadcast:  make(chan eventMessage, 256),
		clients:    make(map[*eventClient]struct{}),
		done:       make(chan struct{}),
		log:        log.With("component", "ws"),
	}
}

// Run serves the hub until ctx is done, then disconnects every client.
func (h *EventHub) Run(ctx context.Context) {
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
			h.log.Debug("client connected", "clients", len(h.clients))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				if !client.wants(msg.resource) {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					h.drop(client)
				}
			}
		}
	}
}

func (h *EventHub) drop(client *eventClient) {
	delete(h.clients, client)
	close(client.send)
	client.conn.Close()
}

// Publish queues ev for delivery. Events are dropped when the queue is full.
func (h *EventHub) Publish(ev models.ChangeEvent) {
	if h == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("failed to marshal event", "err", err)
		return
	}
	select {
	case h.broadcast <- eventMessage{resource: ev.Resource, payload: data}:
	default:
		h.log.Warn("event queue full, dropping event", "resource", ev.Resource, "action", ev.Action)
	}
}

type eventClient struct {
	hub       *EventHub
	conn      *websocket.Conn
	send      chan []byte
	resources map[string]struct{}
}

func newEventClient(hub *EventHub, conn *websocket.Conn, resources map[string]struct{}) *eventClient {
	return &eventClient{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		resources: resources,
	}
}

// wants reports whether the client subscribed to resource. No subscription
// list means everything.
func (c *eventClient) wants(resource string) bool {
	if len(c.resources) == 0 {
		return true
	}
	_, ok := c.resources[resource]
	return ok
}

func (c *eventClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *eventClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
