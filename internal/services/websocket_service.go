package services

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Type    string      `json:"type"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Client represents a connected dashboard
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan WebSocketMessage
	Hub  *Hub
}

// Hub maintains the set of active clients and broadcasts dashboard events
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan WebSocketMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// WebSocketService pushes dashboard refresh events to connected clients so
// open dashboards re-render without polling
type WebSocketService struct {
	hub      *Hub
	upgrader websocket.Upgrader
	auth     *AuthService
}

// NewWebSocketService creates a new WebSocket service
func NewWebSocketService(auth *AuthService) *WebSocketService {
	hub := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan WebSocketMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}

	service := &WebSocketService{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Origin filtering happens in the CORS middleware
				return true
			},
		},
		auth: auth,
	}

	go hub.run()

	return service
}

// HandleWebSocket upgrades a dashboard connection. Browsers cannot set an
// Authorization header on a websocket, so the session token arrives as a
// query parameter.
func (s *WebSocketService) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Token required",
		})
		return
	}

	if _, err := s.auth.ValidateToken(token); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Invalid token: " + err.Error(),
		})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		ID:   uuid.New().String(),
		Conn: conn,
		Send: make(chan WebSocketMessage, 256),
		Hub:  s.hub,
	}

	s.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// Broadcast sends a message to every connected dashboard
func (s *WebSocketService) Broadcast(message WebSocketMessage) {
	s.hub.broadcast <- message
}

// NotifyMetricsUpdated tells connected dashboards to re-fetch their views
func (s *WebSocketService) NotifyMetricsUpdated() {
	s.Broadcast(WebSocketMessage{Type: "metrics_updated"})
}

// ClientCount returns the number of connected dashboards
func (s *WebSocketService) ClientCount() int {
	s.hub.mutex.RLock()
	defer s.hub.mutex.RUnlock()
	return len(s.hub.clients)
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()

			select {
			case client.Send <- WebSocketMessage{Type: "connected", Message: "Connected to FeedLink dashboard stream"}:
			default:
				close(client.Send)
				h.mutex.Lock()
				delete(h.clients, client)
				h.mutex.Unlock()
			}

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		var message WebSocketMessage
		err := c.Conn.ReadJSON(&message)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		switch message.Type {
		case "ping":
			select {
			case c.Send <- WebSocketMessage{Type: "pong"}:
			default:
				return
			}
		}
	}
}

func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteJSON(message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
