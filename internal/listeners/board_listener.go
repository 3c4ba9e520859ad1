package listeners

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gearguard/internal/events"
	"gearguard/internal/services"
	"gearguard/pkg/eventbus"
	"gearguard/pkg/utils"
	"gearguard/pkg/websocket"
)

// BoardListener пересылает изменения заявок подключённым клиентам канбан-доски.
type BoardListener struct {
	wsNotificationService services.WebSocketNotificationServiceInterface
	clock                 utils.Clock
	logger                *zap.Logger
}

func NewBoardListener(
	wsNotificationService services.WebSocketNotificationServiceInterface,
	clock utils.Clock,
	logger *zap.Logger,
) *BoardListener {
	if clock == nil {
		clock = time.Now
	}
	return &BoardListener{
		wsNotificationService: wsNotificationService,
		clock:                 clock,
		logger:                logger,
	}
}

func (l *BoardListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(l.handleRequestEvent, events.RequestEvents...)
	l.logger.Info("BoardListener подписан на события заявок", zap.Strings("events", events.RequestEvents))
}

func (l *BoardListener) handleRequestEvent(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.RequestEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события %T", event)
	}

	payload := websocket.BoardUpdatePayload{
		RequestID: e.RequestID,
		Event:     e.Type,
		FromStage: string(e.FromStage),
	}
	if e.Request != nil {
		payload.ToStage = string(e.Request.Stage)
		payload.Request = services.ToRequestResponse(e.Request, utils.DateOnly(l.clock()))
	}

	return l.wsNotificationService.BroadcastBoardUpdate(payload)
}
