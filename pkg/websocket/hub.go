package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hub управляет всеми клиентами и рассылкой сообщений
type Hub struct {
	clients     map[*Client]bool
	userClients map[string][]*Client
	broadcast   chan []byte
	Register    chan *Client
	unregister  chan *Client
	done        chan struct{}
	mu          sync.RWMutex
	logger      *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		userClients: make(map[string][]*Client),
		broadcast:   make(chan []byte, 64),
		Register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// Run обслуживает регистрацию и рассылку до отмены ctx.
// После выхода хаб считается остановленным: join и leave больше не блокируются.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				h.removeLocked(client)
			}
			h.mu.Unlock()
			return
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Debug("Клиент зарегистрирован", zap.String("userID", client.UserID))
		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()
			h.logger.Debug("Клиент отсоединен", zap.String("userID", client.UserID))
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// join регистрирует клиента. Возвращает false, если хаб уже остановлен.
func (h *Hub) join(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// leave снимает клиента с регистрации; после остановки хаба ничего не делает.
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	clients := h.userClients[client.UserID]
	for i, c := range clients {
		if c == client {
			h.userClients[client.UserID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(h.userClients[client.UserID]) == 0 {
		delete(h.userClients, client.UserID)
	}
}

func encode(payload interface{}, messageType string) ([]byte, error) {
	return json.Marshal(Envelope{
		Type:      messageType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
}

// Broadcast ставит сообщение в очередь рассылки всем подключённым клиентам.
// Если очередь переполнена, сообщение отбрасывается.
func (h *Hub) Broadcast(payload interface{}, messageType string) error {
	messageBytes, err := encode(payload, messageType)
	if err != nil {
		h.logger.Error("Ошибка сериализации сообщения для WebSocket", zap.Error(err))
		return err
	}
	select {
	case h.broadcast <- messageBytes:
	default:
		h.logger.Warn("Очередь WebSocket переполнена, сообщение пропущено", zap.String("type", messageType))
	}
	return nil
}

// SendMessageToUser отправляет сообщение всем соединениям одного пользователя.
func (h *Hub) SendMessageToUser(userID string, payload interface{}, messageType string) error {
	messageBytes, err := encode(payload, messageType)
	if err != nil {
		h.logger.Error("Ошибка сериализации сообщения для WebSocket", zap.Error(err))
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.userClients[userID] {
		select {
		case client.Send <- messageBytes:
		default:
		}
	}
	return nil
}

// ClientCount возвращает число активных соединений.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
