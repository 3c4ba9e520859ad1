package config

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JobsFromEnv(t *testing.T) {
	t.Setenv("JOBS_ENABLED", "false")
	t.Setenv("JOBS_PREVENTIVE_HORIZON_DAYS", "14")
	t.Setenv("JOBS_PREVENTIVE_LEAD_DAYS", "3")
	t.Setenv("JOBS_TIMEZONE", "Asia/Dushanbe")

	cfg := New()
	assert.False(t, cfg.Jobs.Enabled)
	assert.Equal(t, 14, cfg.Jobs.PreventiveHorizon)
	assert.Equal(t, 3, cfg.Jobs.PreventiveLeadDays)
	assert.Equal(t, "Asia/Dushanbe", cfg.Jobs.Timezone)

	loc := cfg.Jobs.Location()
	require.NotNil(t, loc)
	assert.Equal(t, "Asia/Dushanbe", loc.String())
}

func TestJobsConfig_LocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, JobsConfig{Timezone: "Марс/Олимп"}.Location())
	assert.Equal(t, time.UTC, JobsConfig{Timezone: "UTC"}.Location())
}
