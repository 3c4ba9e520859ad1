package listeners

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/events"
	"gearguard/pkg/eventbus"
	"gearguard/pkg/websocket"
)

type recordingBoard struct {
	mu       sync.Mutex
	payloads []websocket.BoardUpdatePayload
}

func (r *recordingBoard) BroadcastBoardUpdate(payload websocket.BoardUpdatePayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
	return nil
}

type countingReports struct {
	mu          sync.Mutex
	invalidated int
}

func (r *countingReports) Dashboard(context.Context) (*entities.DashboardStats, error) {
	return &entities.DashboardStats{}, nil
}

func (r *countingReports) Utilization(context.Context) ([]entities.EquipmentUtilization, error) {
	return nil, nil
}

func (r *countingReports) TeamPerformance(context.Context) ([]entities.TeamPerformance, error) {
	return nil, nil
}

func (r *countingReports) Compliance(context.Context) (*entities.ComplianceReport, error) {
	return &entities.ComplianceReport{}, nil
}

func (r *countingReports) ExportRequests(context.Context) ([]dto.RequestResponseDTO, error) {
	return nil, nil
}

func (r *countingReports) InvalidateCache(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidated++
	return nil
}

func fixedNow() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }

func TestBoardListener_StageChange(t *testing.T) {
	bus := eventbus.New(zap.NewNop())
	board := &recordingBoard{}
	NewBoardListener(board, fixedNow, zap.NewNop()).Register(bus)

	scheduled := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	bus.Publish(context.Background(), events.RequestEvent{
		Type:      events.RequestStageChanged,
		RequestID: "r1",
		FromStage: entities.StageNew,
		Request: &entities.MaintenanceRequest{
			ID: "r1", Subject: "Утечка", Stage: entities.StageInProgress, ScheduledDate: &scheduled,
		},
	})
	bus.Wait()

	require.Len(t, board.payloads, 1)
	p := board.payloads[0]
	assert.Equal(t, "r1", p.RequestID)
	assert.Equal(t, events.RequestStageChanged, p.Event)
	assert.Equal(t, "new", p.FromStage)
	assert.Equal(t, "in_progress", p.ToStage)

	req, ok := p.Request.(dto.RequestResponseDTO)
	require.True(t, ok)
	assert.True(t, req.IsOverdue)
}

func TestBoardListener_Deleted(t *testing.T) {
	bus := eventbus.New(zap.NewNop())
	board := &recordingBoard{}
	NewBoardListener(board, nil, zap.NewNop()).Register(bus)

	bus.Publish(context.Background(), events.RequestEvent{Type: events.RequestDeleted, RequestID: "r9"})
	bus.Publish(context.Background(), events.EquipmentChangedEvent{EquipmentID: "eq-1", Action: "updated"})
	bus.Wait()

	require.Len(t, board.payloads, 1)
	assert.Equal(t, "r9", board.payloads[0].RequestID)
	assert.Empty(t, board.payloads[0].ToStage)
	assert.Nil(t, board.payloads[0].Request)
}

func TestReportCacheListener(t *testing.T) {
	bus := eventbus.New(zap.NewNop())
	reports := &countingReports{}
	NewReportCacheListener(reports, zap.NewNop()).Register(bus)

	ctx := context.Background()
	bus.Publish(ctx, events.RequestEvent{Type: events.RequestCreated, RequestID: "r1"})
	bus.Publish(ctx, events.RequestEvent{Type: events.RequestStageChanged, RequestID: "r1"})
	bus.Publish(ctx, events.EquipmentChangedEvent{EquipmentID: "eq-1", Action: "deleted"})
	bus.Publish(ctx, events.TeamChangedEvent{TeamID: "t1", Action: "updated"})
	bus.Wait()

	assert.Equal(t, 4, reports.invalidated)
}
