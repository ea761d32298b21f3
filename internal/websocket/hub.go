package adminws

import (
	"encoding/json"
	"log"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
)

// Hub fans activity events out to every connected admin dashboard.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	events     chan *Event
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

const (
	EventQuizSubmitted   = "quiz.submitted"
	EventOrderCreated    = "order.created"
	EventPaymentCaptured = "payment.captured"
	EventReportGenerated = "report.generated"
)

type Event struct {
	Type        string `json:"type"`
	Tier        string `json:"tier,omitempty"`
	OrderID     string `json:"order_id,omitempty"`
	AmountPaise int64  `json:"amount_paise,omitempty"`
	Timestamp   string `json:"timestamp"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan *Event, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case event := <-h.events:
			h.deliver(event)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Publish queues an event without blocking the request path. A full queue
// drops the event; the dashboard refreshes from the stats endpoint anyway.
func (h *Hub) Publish(eventType, tier, orderID string, amountPaise int64) {
	event := &Event{
		Type:        eventType,
		Tier:        tier,
		OrderID:     orderID,
		AmountPaise: amountPaise,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	select {
	case h.events <- event:
	default:
		log.Printf("admin hub queue full, dropping %s event", eventType)
	}
}

func (h *Hub) deliver(event *Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("admin hub encode event: %v", err)
		return
	}

	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// ReadPump only watches for the connection closing; admins don't send
// anything upstream.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
