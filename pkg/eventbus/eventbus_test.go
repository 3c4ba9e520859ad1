package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type testEvent struct{ name string }

func (e testEvent) Name() string { return e.name }

func TestBus_PublishDeliversToSubscribers(t *testing.T) {
	bus := New(zap.NewNop())

	var calls atomic.Int32
	bus.Subscribe(func(ctx context.Context, event Event) error {
		calls.Add(1)
		return nil
	}, "a", "b")
	bus.Subscribe(func(ctx context.Context, event Event) error {
		calls.Add(10)
		return errors.New("ошибка слушателя не ломает остальных")
	}, "a")

	bus.Publish(context.Background(), testEvent{name: "a"})
	bus.Publish(context.Background(), testEvent{name: "b"})
	bus.Publish(context.Background(), testEvent{name: "unknown"})
	bus.Wait()

	assert.Equal(t, int32(12), calls.Load())
}

func TestBus_ListenerOutlivesCancelledContext(t *testing.T) {
	bus := New(zap.NewNop())

	var ctxErr atomic.Value
	bus.Subscribe(func(ctx context.Context, event Event) error {
		ctxErr.Store(ctx.Err() == nil)
		return nil
	}, "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, testEvent{name: "a"})
	bus.Wait()

	assert.Equal(t, true, ctxErr.Load())
}

func TestBus_RecoversFromPanic(t *testing.T) {
	bus := New(zap.NewNop())
	bus.Subscribe(func(ctx context.Context, event Event) error {
		panic("boom")
	}, "a")

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), testEvent{name: "a"})
		bus.Wait()
	})
}
