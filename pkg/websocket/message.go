package websocket

import "time"

// Envelope - конверт сообщения: тип подсказывает фронтенду, что делать с payload.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// BoardUpdatePayload - изменение карточки на канбан-доске.
type BoardUpdatePayload struct {
	RequestID string      `json:"request_id"`
	Event     string      `json:"event"`
	FromStage string      `json:"from_stage,omitempty"`
	ToStage   string      `json:"to_stage,omitempty"`
	Request   interface{} `json:"request,omitempty"`
}
