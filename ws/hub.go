package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

type Hub struct {
	Rooms         map[string]map[*websocket.Conn]*Client // client theo từng roomID
	GlobalClients map[*websocket.Conn]*Client            // kênh trạng thái chung
	Mutex         sync.RWMutex
}

var H = Hub{
	Rooms:         make(map[string]map[*websocket.Conn]*Client),
	GlobalClients: make(map[*websocket.Conn]*Client),
}

// NoteStatusUpdate đẩy trạng thái pipeline của một ghi chú cho client
type NoteStatusUpdate struct {
	Type   string `json:"type"`
	NoteID string `json:"note_id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Register client vào một phòng
func (h *Hub) Register(roomID string, conn *websocket.Conn) *Client {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if _, ok := h.Rooms[roomID]; !ok {
		h.Rooms[roomID] = make(map[*websocket.Conn]*Client)
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}
	h.Rooms[roomID][conn] = client

	go h.writePump(client)
	return client
}

// Register client vào kênh trạng thái chung
func (h *Hub) RegisterGlobal(conn *websocket.Conn) *Client {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}
	h.GlobalClients[conn] = client

	go h.writePump(client)
	return client
}

// Broadcast tới mọi client trong phòng
func (h *Hub) Broadcast(roomID string, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	if clients, ok := h.Rooms[roomID]; ok {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

// Broadcast toàn bộ global clients
func (h *Hub) BroadcastGlobal(data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	for _, client := range h.GlobalClients {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// SendNoteStatusUpdate báo trạng thái xử lý ghi chú lên kênh chung
func SendNoteStatusUpdate(noteID, status, errorMsg string) {
	update := NoteStatusUpdate{
		Type:   "note_status",
		NoteID: noteID,
		Status: status,
		Error:  errorMsg,
	}
	data, err := json.Marshal(update)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	H.BroadcastGlobal(data)
}

// BroadcastRoomMessage phát một payload JSON tới phòng
func BroadcastRoomMessage(roomID string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	H.Broadcast(roomID, data)
}

func (h *Hub) Unregister(roomID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := h.Rooms[roomID]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.Rooms, roomID)
		}
	}
}

func (h *Hub) UnregisterGlobal(conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if client, ok := h.GlobalClients[conn]; ok {
		close(client.Send)
		delete(h.GlobalClients, conn)
	}
}

// GetStats cho health check
func (h *Hub) GetStats() map[string]interface{} {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	roomClients := 0
	for _, clients := range h.Rooms {
		roomClients += len(clients)
	}
	return map[string]interface{}{
		"rooms":          len(h.Rooms),
		"room_clients":   roomClients,
		"global_clients": len(h.GlobalClients),
	}
}

func (h *Hub) writePump(client *Client) {
	defer func() {
		client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
		client.Conn.Close()
	}()
	for msg := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}
