package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/events"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/utils"
)

func newTeamService(env *testEnv) *TeamService {
	return NewTeamService(env.teams, env.equipment, env.requests, env.tx, env.publisher, fixedClock, zap.NewNop())
}

func TestTeamService_CreateDefaults(t *testing.T) {
	env := newTestEnv()
	svc := newTeamService(env)

	resp, err := svc.Create(context.Background(), dto.CreateTeamDTO{Name: "  Mechanical  "})
	require.NoError(t, err)
	assert.Equal(t, "Mechanical", resp.Name)
	assert.Equal(t, defaultTeamColor, resp.Color)
	assert.True(t, resp.IsActive)
	assert.NotNil(t, resp.Members)

	_, err = svc.Create(context.Background(), dto.CreateTeamDTO{Name: "Mechanical"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateTeamName)

	inactive, err := svc.Create(context.Background(), dto.CreateTeamDTO{Name: "Archive", IsActive: utils.ToPtr(false)})
	require.NoError(t, err)
	assert.False(t, inactive.IsActive)

	active, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Mechanical", active[0].Name)
}

func TestTeamService_Update(t *testing.T) {
	env := newTestEnv()
	env.addTeam("t1", "Electrical")
	svc := newTeamService(env)

	body := []byte(`{"color":null,"is_active":false,"specialization":"Высокое напряжение"}`)
	var patch dto.UpdateTeamDTO
	require.NoError(t, json.Unmarshal(body, &patch))

	resp, err := svc.Update(context.Background(), "t1", patch, body)
	require.NoError(t, err)
	assert.Equal(t, defaultTeamColor, resp.Color)
	assert.False(t, resp.IsActive)
	assert.Equal(t, "Высокое напряжение", utils.SafeDeref(resp.Specialization))

	body = []byte(`{"name":"   "}`)
	patch = dto.UpdateTeamDTO{}
	require.NoError(t, json.Unmarshal(body, &patch))
	_, err = svc.Update(context.Background(), "t1", patch, body)
	var httpErr *apperrors.HttpError
	assert.ErrorAs(t, err, &httpErr)
}

func TestTeamService_DeleteBlockedByEquipment(t *testing.T) {
	env := newTestEnv()
	team := env.addTeam("t1", "HVAC")
	env.addEquipment("eq-1", "Chiller", entities.EquipmentActive, &team.ID)
	svc := newTeamService(env)

	err := svc.Delete(context.Background(), "t1")
	assert.ErrorIs(t, err, apperrors.ErrDependentRecordsExist)
	assert.Contains(t, env.db.teams, "t1")

	delete(env.db.equipment, "eq-1")
	require.NoError(t, svc.Delete(context.Background(), "t1"))
	assert.NotContains(t, env.db.teams, "t1")

	assert.ErrorIs(t, svc.Delete(context.Background(), "t1"), apperrors.ErrTeamNotFound)
}

func TestTeamService_Members(t *testing.T) {
	env := newTestEnv()
	env.addTeam("t1", "Mechanical")
	env.addUser("u1", "Mike Technician", entities.RoleTechnician)
	env.addUser("u2", "Alex Manager", entities.RoleManager)
	svc := newTeamService(env)
	ctx := context.Background()

	resp, err := svc.AddMember(ctx, "t1", dto.AddTeamMemberDTO{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, resp.Members, 1)
	assert.Equal(t, "member", resp.Members[0].Role)
	assert.Equal(t, "Mike Technician", resp.Members[0].FullName)

	resp, err = svc.AddMember(ctx, "t1", dto.AddTeamMemberDTO{UserID: "u2", Role: "lead"})
	require.NoError(t, err)
	require.Len(t, resp.Members, 2)

	_, err = svc.AddMember(ctx, "t1", dto.AddTeamMemberDTO{UserID: "u1"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyTeamMember)

	_, err = svc.AddMember(ctx, "missing", dto.AddTeamMemberDTO{UserID: "u1"})
	assert.ErrorIs(t, err, apperrors.ErrTeamNotFound)

	require.NoError(t, svc.RemoveMember(ctx, "t1", "u1"))
	assert.ErrorIs(t, svc.RemoveMember(ctx, "t1", "u1"), apperrors.ErrTeamMemberNotFound)

	team, err := svc.Get(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, team.Members, 1)
	assert.Equal(t, "u2", team.Members[0].UserID)
}

func TestTeamService_Workload(t *testing.T) {
	env := newTestEnv()
	t1 := env.addTeam("t1", "Mechanical")
	t2 := env.addTeam("t2", "Electrical")
	env.addEquipment("eq-1", "Press", entities.EquipmentActive, &t1.ID)
	env.addRequest(entities.MaintenanceRequest{ID: "r1", Subject: "a", EquipmentID: "eq-1", MaintenanceTeamID: &t1.ID})
	env.addRequest(entities.MaintenanceRequest{ID: "r2", Subject: "b", EquipmentID: "eq-1", MaintenanceTeamID: &t1.ID,
		Stage: entities.StageInProgress, Type: entities.RequestTypePreventive, ScheduledDate: datePtr("2026-03-01")})
	env.addRequest(entities.MaintenanceRequest{ID: "r3", Subject: "c", EquipmentID: "eq-1", MaintenanceTeamID: &t1.ID,
		Stage: entities.StageRepaired})
	env.addRequest(entities.MaintenanceRequest{ID: "r4", Subject: "d", EquipmentID: "eq-1", MaintenanceTeamID: &t2.ID})
	svc := newTeamService(env)

	w, err := svc.Workload(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "Mechanical", w.TeamName)
	assert.Equal(t, 2, w.TotalRequests)
	assert.Equal(t, entities.WorkloadByStage{New: 1, InProgress: 1}, w.ByStage)
	assert.Equal(t, entities.WorkloadByType{Corrective: 1, Preventive: 1}, w.ByType)
	require.Len(t, w.Requests, 2)
	assert.True(t, w.Requests[1].IsOverdue)

	_, err = svc.Workload(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrTeamNotFound)
}

func TestTeamService_PublishesTeamChanged(t *testing.T) {
	env := newTestEnv()
	env.addUser("u1", "Mike Technician", entities.RoleTechnician)
	svc := newTeamService(env)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateTeamDTO{Name: "Mechanical"})
	require.NoError(t, err)

	body := []byte(`{"name":"Mechanical West"}`)
	var patch dto.UpdateTeamDTO
	require.NoError(t, json.Unmarshal(body, &patch))
	_, err = svc.Update(ctx, created.ID, patch, body)
	require.NoError(t, err)

	_, err = svc.AddMember(ctx, created.ID, dto.AddTeamMemberDTO{UserID: "u1"})
	require.NoError(t, err)
	require.NoError(t, svc.RemoveMember(ctx, created.ID, "u1"))
	require.NoError(t, svc.Delete(ctx, created.ID))

	// повторное удаление падает и ничего не публикует
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), apperrors.ErrTeamNotFound)

	var actions []string
	for _, e := range env.publisher.events {
		tc, ok := e.(events.TeamChangedEvent)
		require.True(t, ok, "неожиданное событие %s", e.Name())
		assert.Equal(t, created.ID, tc.TeamID)
		actions = append(actions, tc.Action)
	}
	assert.Equal(t, []string{"created", "updated", "member_added", "member_removed", "deleted"}, actions)
}
