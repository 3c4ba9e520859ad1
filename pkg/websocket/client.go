package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// клиент доски ничего не шлёт, кроме служебных кадров
	maxIncomingSize = 512
	sendQueueSize   = 256
)

// Client - одно WebSocket-соединение пользователя.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		Send:   make(chan []byte, sendQueueSize),
		UserID: userID,
	}
}

// Serve регистрирует клиента в хабе и запускает чтение и запись.
// Возвращается сразу; соединение закрывается, когда клиент отвалится.
// Если хаб уже остановлен, соединение закрывается сразу.
func (c *Client) Serve() {
	if !c.Hub.join(c) {
		_ = c.Conn.Close()
		return
	}
	go c.writeLoop()
	go c.readLoop()
}

func (c *Client) readLoop() {
	defer func() {
		c.Hub.leave(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxIncomingSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, _, err := c.Conn.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			c.Hub.logger.Warn("WebSocket закрыт с ошибкой", zap.String("userID", c.UserID), zap.Error(err))
		}
		return
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if !ok {
				// хаб закрыл очередь: клиент снят с регистрации
				_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.writeBatch(message); err != nil {
				c.Hub.logger.Debug("WebSocket: запись не удалась", zap.String("userID", c.UserID), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// writeBatch отправляет first и всё, что уже накопилось в очереди, отдельными
// кадрами в пределах одного дедлайна. При массовой генерации профилактики
// доска получает пачку обновлений без лишних пробуждений горутины.
func (c *Client) writeBatch(first []byte) error {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := c.Conn.WriteMessage(websocket.TextMessage, first); err != nil {
		return err
	}
	for pending := len(c.Send); pending > 0; pending-- {
		message, ok := <-c.Send
		if !ok {
			return nil
		}
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return err
		}
	}
	return nil
}
