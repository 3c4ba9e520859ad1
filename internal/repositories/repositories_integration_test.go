package repositories

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gearguard/internal/entities"
	"gearguard/pkg/database/postgresql"
	apperrors "gearguard/pkg/errors"
)

// Тесты ходят в настоящий PostgreSQL. Без TEST_DATABASE_URL они пропускаются.
var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		os.Exit(m.Run())
	}

	if err := postgresql.Migrate(dsn); err != nil {
		fmt.Printf("миграции тестовой БД: %v\n", err)
		os.Exit(1)
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		fmt.Printf("подключение к тестовой БД: %v\n", err)
		os.Exit(1)
	}
	testPool = pool

	code := m.Run()
	pool.Close()
	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DATABASE_URL не задан")
	}
	cleanupTables(t)
}

func cleanupTables(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		`TRUNCATE maintenance_requests, equipment, team_members, maintenance_teams, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

func date(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return &d
}

func seedTeam(t *testing.T, name string) *entities.MaintenanceTeam {
	t.Helper()
	team := &entities.MaintenanceTeam{ID: uuid.NewString(), Name: name, Color: "#3B82F6", IsActive: true}
	require.NoError(t, NewTeamRepository(testPool, zap.NewNop()).Create(context.Background(), team))
	return team
}

func seedEquipment(t *testing.T, serial string, teamID *string) *entities.Equipment {
	t.Helper()
	e := &entities.Equipment{
		ID:                uuid.NewString(),
		Name:              "Компрессор " + serial,
		SerialNumber:      serial,
		Category:          "Machinery",
		Status:            entities.EquipmentActive,
		MaintenanceTeamID: teamID,
	}
	require.NoError(t, NewEquipmentRepository(testPool, zap.NewNop()).Create(context.Background(), nil, e))
	return e
}

func newRequest(e *entities.Equipment, typ entities.RequestType, scheduled *time.Time) *entities.MaintenanceRequest {
	return &entities.MaintenanceRequest{
		ID:                uuid.NewString(),
		Subject:           "Проверка " + e.Name,
		Type:              typ,
		Priority:          entities.PriorityMedium,
		Stage:             entities.StageNew,
		EquipmentID:       e.ID,
		EquipmentName:     e.Name,
		EquipmentCategory: e.Category,
		ScheduledDate:     scheduled,
	}
}

func TestRequestRepository_CreateAndFind(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewRequestRepository(testPool, zap.NewNop())

	e := seedEquipment(t, "SN-1", nil)
	req := newRequest(e, entities.RequestTypeCorrective, nil)
	require.NoError(t, repo.Create(ctx, nil, req))
	assert.Equal(t, 1, req.Version)

	found, err := repo.FindByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.Subject, found.Subject)
	assert.Equal(t, entities.StageNew, found.Stage)
	assert.Equal(t, e.Name, found.EquipmentName)
	assert.Nil(t, found.ScheduledDate)

	_, err = repo.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)
}

func TestRequestRepository_UpdateStageConflict(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewRequestRepository(testPool, zap.NewNop())

	e := seedEquipment(t, "SN-2", nil)
	req := newRequest(e, entities.RequestTypeCorrective, nil)
	require.NoError(t, repo.Create(ctx, nil, req))

	stale := *req

	req.Stage = entities.StageInProgress
	require.NoError(t, repo.UpdateStage(ctx, nil, req, entities.StageNew))
	assert.Equal(t, 2, req.Version)

	// вторая смена по устаревшему чтению не должна пройти
	stale.Stage = entities.StageScrap
	err := repo.UpdateStage(ctx, nil, &stale, entities.StageNew)
	assert.ErrorIs(t, err, apperrors.ErrStageConflict)

	found, err := repo.FindByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StageInProgress, found.Stage)
}

func TestRequestRepository_PreventiveWindowAndDuplicate(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewRequestRepository(testPool, zap.NewNop())

	e := seedEquipment(t, "SN-3", nil)
	require.NoError(t, repo.Create(ctx, nil, newRequest(e, entities.RequestTypePreventive, date(t, "2026-03-17"))))

	tests := []struct {
		name     string
		from, to string
		want     bool
	}{
		{"дата внутри окна", "2026-03-10", "2026-04-09", true},
		{"дата на левой границе", "2026-03-17", "2026-03-20", true},
		{"дата на правой границе", "2026-03-01", "2026-03-17", true},
		{"окно раньше даты", "2026-03-01", "2026-03-16", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exists, err := repo.ExistsPreventiveInWindow(ctx, nil, e.ID, *date(t, tt.from), *date(t, tt.to))
			require.NoError(t, err)
			assert.Equal(t, tt.want, exists)
		})
	}

	err := repo.Create(ctx, nil, newRequest(e, entities.RequestTypePreventive, date(t, "2026-03-17")))
	assert.ErrorIs(t, err, apperrors.ErrDuplicatePreventive)
}

func TestRequestRepository_ListOverdue(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewRequestRepository(testPool, zap.NewNop())
	today := *date(t, "2026-03-10")

	e := seedEquipment(t, "SN-4", nil)
	older := newRequest(e, entities.RequestTypeCorrective, date(t, "2026-03-01"))
	newer := newRequest(e, entities.RequestTypeCorrective, date(t, "2026-03-09"))
	dueToday := newRequest(e, entities.RequestTypeCorrective, date(t, "2026-03-10"))
	done := newRequest(e, entities.RequestTypeCorrective, date(t, "2026-02-01"))
	done.Stage = entities.StageRepaired
	for _, r := range []*entities.MaintenanceRequest{newer, older, dueToday, done} {
		require.NoError(t, repo.Create(ctx, nil, r))
	}

	overdue, err := repo.ListOverdue(ctx, today)
	require.NoError(t, err)
	require.Len(t, overdue, 2)
	assert.Equal(t, older.ID, overdue[0].ID)
	assert.Equal(t, newer.ID, overdue[1].ID)

	list, total, err := repo.List(ctx, RequestListOptions{OverdueOnly: true, Today: today})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)
}

func TestTxManager_RollbackOnError(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewRequestRepository(testPool, zap.NewNop())
	e := seedEquipment(t, "SN-5", nil)
	req := newRequest(e, entities.RequestTypeCorrective, nil)

	err := NewTxManager(testPool).RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := repo.Create(ctx, tx, req); err != nil {
			return err
		}
		return apperrors.ErrStageConflict
	})
	assert.ErrorIs(t, err, apperrors.ErrStageConflict)

	_, err = repo.FindByID(ctx, req.ID)
	assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)
}

func TestEquipmentRepository_DuplicateSerialAndTeamCount(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewEquipmentRepository(testPool, zap.NewNop())

	team := seedTeam(t, "Механики")
	first := seedEquipment(t, "SN-10", &team.ID)
	seedEquipment(t, "SN-11", &team.ID)
	seedEquipment(t, "SN-12", nil)

	dup := &entities.Equipment{
		ID: uuid.NewString(), Name: "Дубль", SerialNumber: "SN-10",
		Category: "Machinery", Status: entities.EquipmentActive,
	}
	assert.ErrorIs(t, repo.Create(ctx, nil, dup), apperrors.ErrDuplicateSerialNumber)

	count, err := repo.CountByTeam(ctx, nil, team.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	found, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, found.MaintenanceTeamName)
	assert.Equal(t, "Механики", *found.MaintenanceTeamName)

	require.NoError(t, repo.UpdateStatus(ctx, nil, first.ID, entities.EquipmentScrapped))
	scrapped, err := repo.ListByStatus(ctx, entities.EquipmentScrapped)
	require.NoError(t, err)
	require.Len(t, scrapped, 1)
	assert.Equal(t, first.ID, scrapped[0].ID)
}

func TestTeamRepository_Members(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	teams := NewTeamRepository(testPool, zap.NewNop())
	users := NewUserRepository(testPool, zap.NewNop())

	team := seedTeam(t, "Электрики")
	user := &entities.User{
		ID: uuid.NewString(), Email: "ivanov@example.com", Password: "hash",
		FullName: "Иванов И.И.", Role: entities.RoleTechnician, IsActive: true,
	}
	require.NoError(t, users.Create(ctx, user))

	require.NoError(t, teams.AddMember(ctx, team.ID, user.ID, entities.MemberRoleLead))
	assert.ErrorIs(t, teams.AddMember(ctx, team.ID, user.ID, entities.MemberRoleMember), apperrors.ErrAlreadyTeamMember)

	members, err := teams.ListMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Иванов И.И.", members[0].FullName)
	assert.Equal(t, entities.MemberRoleLead, members[0].Role)

	require.NoError(t, teams.RemoveMember(ctx, team.ID, user.ID))
	assert.ErrorIs(t, teams.RemoveMember(ctx, team.ID, user.ID), apperrors.ErrTeamMemberNotFound)

	assert.ErrorIs(t, teams.Create(ctx, &entities.MaintenanceTeam{
		ID: uuid.NewString(), Name: "Электрики", Color: "#000000", IsActive: true,
	}), apperrors.ErrDuplicateTeamName)
}
