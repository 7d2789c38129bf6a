package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "ProductionOrder", uuid.New())}
}

type recordingHandler struct {
	types   []string
	err     error
	block   chan struct{}
	mu      sync.Mutex
	handled []shared.DomainEvent
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.block != nil {
		<-h.block
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

type panickingHandler struct{}

func (panickingHandler) Handle(context.Context, shared.DomainEvent) error { panic("boom") }
func (panickingHandler) EventTypes() []string                            { return nil }

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	issued := &recordingHandler{types: []string{"MaterialsIssued"}}
	all := &recordingHandler{}
	bus.Subscribe(issued)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("MaterialsIssued"),
		newTestEvent("MaterialsReturned"),
	))

	assert.Equal(t, 1, issued.count())
	assert.Equal(t, 2, all.count())

	bus.Unsubscribe(issued)
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("MaterialsIssued")))
	assert.Equal(t, 1, issued.count())
}

func TestInMemoryEventBus_HandlerFailuresAreContained(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	failing := &recordingHandler{err: errors.New("archive down")}
	after := &recordingHandler{}
	bus.Subscribe(panickingHandler{}, "MaterialsIssued")
	bus.Subscribe(failing, "MaterialsIssued")
	bus.Subscribe(after, "MaterialsIssued")

	assert.NoError(t, bus.Publish(context.Background(), newTestEvent("MaterialsIssued")))
	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, after.count())
}

func TestInMemoryEventBus_AsyncStopWaitsForDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(nil, WithAsyncDispatch())
	h := &recordingHandler{block: make(chan struct{})}
	bus.Subscribe(h, "MaterialsReturned")
	require.NoError(t, bus.Start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Publish(ctx, newTestEvent("MaterialsReturned")))
	cancel()
	assert.Equal(t, 0, h.count(), "publish must not wait for the handler")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer stopCancel()
	assert.ErrorIs(t, bus.Stop(stopCtx), context.DeadlineExceeded)

	close(h.block)
	require.NoError(t, bus.Stop(context.Background()))
	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_AsyncBeforeStartIsSynchronous(t *testing.T) {
	bus := NewInMemoryEventBus(nil, WithAsyncDispatch())
	h := &recordingHandler{}
	bus.Subscribe(h, "MaterialsIssued")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("MaterialsIssued")))
	assert.Equal(t, 1, h.count())
}
