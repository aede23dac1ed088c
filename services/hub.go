package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"sync"

	"popularchoice/models"

	"github.com/gorilla/websocket"
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// StateProvider lets the hub answer a board's request for the current
// game state without owning the session logic itself.
type StateProvider interface {
	BoardStatus(ctx context.Context, code string) (models.GameInfo, error)
}

// Hub tracks which websocket client is watching which board code and
// fans host mutations out to them. Purely transient: clients re-join
// after a restart.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	states     StateProvider
}

type Client struct {
	hub    *Hub
	id     string
	socket *websocket.Conn
	send   chan []byte
	board  string // game code this client is subscribed to, "" if none
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// SetStates wires the session side in after construction; the controller
// needs the hub first, so this cannot happen in NewHub.
func (h *Hub) SetStates(states StateProvider) {
	h.states = states
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Client registered: %s - Total clients: %d", client.id, h.ClientCount())

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("Client unregistered: %s (board %q) - Total clients: %d", client.id, client.board, len(h.clients))
			}
			h.mutex.Unlock()
		}
	}
}

// Subscribe puts the client in the room for a board code. Subscribing
// twice to the same code is a no-op; subscribing to a different code
// moves the client, so a stale registration never leaks broadcasts.
func (h *Hub) Subscribe(client *Client, code string) {
	h.mutex.Lock()
	client.board = code
	h.mutex.Unlock()
	log.Printf("Client %s subscribed to board %s", client.id, code)
}

// MembersOf returns the ids of clients currently watching a code.
func (h *Hub) MembersOf(code string) []string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	var ids []string
	for client := range h.clients {
		if client.board == code {
			ids = append(ids, client.id)
		}
	}
	return ids
}

// HasSubscribers reports whether any board is watching the code.
func (h *Hub) HasSubscribers(code string) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		if client.board == code {
			return true
		}
	}
	return false
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// GenerateUniqueCode produces a 6-character board code not currently in
// use by any connected client. 36^6 is roomy but collisions do happen at
// scale, so it retries until the code is free.
func (h *Hub) GenerateUniqueCode() string {
	for {
		code := randomCode()
		if !h.HasSubscribers(code) {
			return code
		}
		log.Printf("Generated code %s collides with an active board, retrying", code)
	}
}

func randomCode() string {
	bytes := make([]byte, 6)
	rand.Read(bytes)
	code := make([]byte, 6)
	for i, b := range bytes {
		code[i] = codeCharset[int(b)%len(codeCharset)]
	}
	return string(code)
}

// BroadcastToBoard sends a message to every client watching the code.
// Delivery is fire and forget: a slow or dead client is dropped, the
// rest still get the message, and the caller never sees a failure.
func (h *Hub) BroadcastToBoard(code string, messageType string, payload interface{}) {
	message := Message{
		Type:    messageType,
		Payload: payload,
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling %s message for board %s: %v", messageType, code, err)
		return
	}

	h.mutex.Lock()
	sent := 0
	for client := range h.clients {
		if client.board != code {
			continue
		}
		select {
		case client.send <- data:
			sent++
		default:
			log.Printf("Client %s send buffer full, dropping connection", client.id)
			close(client.send)
			delete(h.clients, client)
		}
	}
	h.mutex.Unlock()

	log.Printf("Broadcast %s to %d clients on board %s", messageType, sent, code)
}

// sendTo delivers a message to a single client.
func (h *Hub) sendTo(client *Client, messageType string, payload interface{}) {
	message := Message{
		Type:    messageType,
		Payload: payload,
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling %s message: %v", messageType, err)
		return
	}

	h.mutex.Lock()
	if _, ok := h.clients[client]; ok {
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
	h.mutex.Unlock()
}

func (h *Hub) RegisterClient(conn *websocket.Conn) *Client {
	client := &Client{
		hub:    h,
		id:     generateClientID(),
		socket: conn,
		send:   make(chan []byte, 256),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	return client
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.socket.Close()
	}()

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		var msg clientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Error unmarshaling message from client %s: %v", c.id, err)
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer c.socket.Close()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}

		w.Write(message)

		if err := w.Close(); err != nil {
			return
		}
	}
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

type clientMessage struct {
	Type    string `json:"type"`
	Payload struct {
		Code string `json:"code"`
	} `json:"payload"`
}

func (c *Client) handleMessage(msg clientMessage) {
	switch msg.Type {
	case "ping":
		c.hub.sendTo(c, "pong", "pong")

	case "generate_code":
		// Board asks for a fresh game and becomes its first subscriber
		code := c.hub.GenerateUniqueCode()
		c.hub.Subscribe(c, code)
		c.hub.sendTo(c, "code_generated", map[string]interface{}{"code": code})

	case "join_board":
		code := normalizeCode(msg.Payload.Code)
		if err := ValidateCode(code); err != nil {
			c.hub.sendTo(c, "error", map[string]interface{}{"message": err.Error()})
			return
		}
		c.hub.Subscribe(c, code)
		c.hub.sendTo(c, "board_joined", map[string]interface{}{"code": code})

	case "request_state":
		if c.hub.states == nil || c.board == "" {
			return
		}
		info, err := c.hub.states.BoardStatus(context.Background(), c.board)
		if err != nil {
			log.Printf("Error getting state for client %s on board %s: %v", c.id, c.board, err)
			c.hub.sendTo(c, "error", map[string]interface{}{"message": err.Error()})
			return
		}
		c.hub.sendTo(c, "game_state", info)

	default:
		log.Printf("Unknown message type %q from client %s", msg.Type, c.id)
	}
}

func generateClientID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "client_" + hex.EncodeToString(bytes)
}
