package eventbus

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event представляет собой любое событие в системе.
type Event interface {
	Name() string
}

// Listener - обработчик (слушатель) событий.
type Listener func(ctx context.Context, event Event) error

const listenerTimeout = time.Minute

// Bus - шина событий. Слушатели выполняются асинхронно и не влияют
// на результат операции, которая опубликовала событие.
type Bus struct {
	listeners map[string][]Listener
	mu        sync.RWMutex
	wg        sync.WaitGroup
	logger    *zap.Logger
}

func New(logger *zap.Logger) *Bus {
	return &Bus{
		listeners: make(map[string][]Listener),
		logger:    logger,
	}
}

// Subscribe подписывает слушателя на одно или несколько событий.
func (b *Bus) Subscribe(listener Listener, eventNames ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, name := range eventNames {
		b.listeners[name] = append(b.listeners[name], listener)
	}
}

// Publish вызывает всех подписчиков события в отдельных горутинах.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	eventName := event.Name()
	for _, listener := range b.listeners[eventName] {
		b.wg.Add(1)
		go func(l Listener) {
			defer b.wg.Done()
			defer func() {
				if p := recover(); p != nil {
					b.logger.Error("Паника в обработчике события", zap.String("event", eventName), zap.Any("panic", p))
				}
			}()

			// контекст запроса к этому моменту может быть уже отменён
			ctxWithTimeout, cancel := context.WithTimeout(context.WithoutCancel(ctx), listenerTimeout)
			defer cancel()

			if err := l(ctxWithTimeout, event); err != nil {
				b.logger.Error("Ошибка в обработчике события",
					zap.String("event", eventName),
					zap.Error(err),
				)
			}
		}(listener)
	}
}

// Wait дожидается завершения запущенных обработчиков.
func (b *Bus) Wait() {
	b.wg.Wait()
}
