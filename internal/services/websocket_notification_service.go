package services

import (
	"gearguard/pkg/websocket"

	"go.uber.org/zap"
)

// WebSocketNotificationServiceInterface - рассылка изменений канбан-доски.
type WebSocketNotificationServiceInterface interface {
	BroadcastBoardUpdate(payload websocket.BoardUpdatePayload) error
}

type WebSocketNotificationService struct {
	hub    *websocket.Hub
	logger *zap.Logger
}

func NewWebSocketNotificationService(hub *websocket.Hub, logger *zap.Logger) WebSocketNotificationServiceInterface {
	return &WebSocketNotificationService{
		hub:    hub,
		logger: logger,
	}
}

func (s *WebSocketNotificationService) BroadcastBoardUpdate(payload websocket.BoardUpdatePayload) error {
	s.logger.Debug("Отправка обновления доски",
		zap.String("requestID", payload.RequestID),
		zap.String("event", payload.Event))
	return s.hub.Broadcast(payload, "board."+payload.Event)
}
