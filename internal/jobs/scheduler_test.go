package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/pkg/config"
)

type stubSchedule struct {
	sweeps      int
	horizon     int
	lead        int
	generateErr error
}

func (s *stubSchedule) ListOverdue(ctx context.Context) ([]dto.RequestResponseDTO, error) {
	return nil, nil
}

func (s *stubSchedule) RunOverdueSweep(ctx context.Context) (*dto.SweepSummaryDTO, error) {
	s.sweeps++
	return &dto.SweepSummaryDTO{Count: 2}, nil
}

func (s *stubSchedule) GeneratePreventiveMaintenance(ctx context.Context, horizonDays, leadDays int) (*dto.GenerationSummaryDTO, error) {
	s.horizon, s.lead = horizonDays, leadDays
	if s.generateErr != nil {
		return nil, s.generateErr
	}
	return &dto.GenerationSummaryDTO{Checked: 3, Created: 1, Skipped: 2}, nil
}

func testJobsConfig() config.JobsConfig {
	return config.JobsConfig{
		Enabled:            true,
		OverdueSweepCron:   "0 0 * * *",
		PreventiveCron:     "0 8 * * 1",
		PreventiveHorizon:  30,
		PreventiveLeadDays: 7,
		Timezone:           "UTC",
	}
}

func TestNewScheduler_RegistersBothJobs(t *testing.T) {
	s, err := NewScheduler(&stubSchedule{}, testJobsConfig(), zap.NewNop())
	require.NoError(t, err)
	defer func() { _ = s.Shutdown() }()

	names := make([]string, 0, 2)
	for _, j := range s.sched.Jobs() {
		names = append(names, j.Name())
	}
	assert.ElementsMatch(t, []string{"overdue_sweep", "preventive_generation"}, names)
}

func TestNewScheduler_InvalidCron(t *testing.T) {
	cfg := testJobsConfig()
	cfg.PreventiveCron = "каждый понедельник"

	_, err := NewScheduler(&stubSchedule{}, cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preventive_generation")
}

func TestScheduler_RunPassesConfiguredWindow(t *testing.T) {
	stub := &stubSchedule{}
	s, err := NewScheduler(stub, testJobsConfig(), zap.NewNop())
	require.NoError(t, err)
	defer func() { _ = s.Shutdown() }()

	require.NoError(t, s.runOverdueSweep(context.Background()))
	require.NoError(t, s.runPreventiveGeneration(context.Background()))
	assert.Equal(t, 1, stub.sweeps)
	assert.Equal(t, 30, stub.horizon)
	assert.Equal(t, 7, stub.lead)

	stub.generateErr = errors.New("db down")
	assert.Error(t, s.runPreventiveGeneration(context.Background()))
}
