package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"gearguard/internal/entities"
	apperrors "gearguard/pkg/errors"
)

var teamColumns = []string{
	"id", "name", "description", "specialization", "color", "is_active", "created_at", "updated_at",
}

type TeamRepositoryInterface interface {
	List(ctx context.Context, activeOnly bool) ([]entities.MaintenanceTeam, error)
	FindByID(ctx context.Context, id string) (*entities.MaintenanceTeam, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*entities.MaintenanceTeam, error)
	Create(ctx context.Context, team *entities.MaintenanceTeam) error
	Update(ctx context.Context, team *entities.MaintenanceTeam) error
	Delete(ctx context.Context, tx pgx.Tx, id string) error
	ListMembers(ctx context.Context, teamID string) ([]entities.TeamMember, error)
	AddMember(ctx context.Context, teamID, userID string, role entities.MemberRole) error
	RemoveMember(ctx context.Context, teamID, userID string) error
}

type TeamRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewTeamRepository(storage *pgxpool.Pool, logger *zap.Logger) TeamRepositoryInterface {
	return &TeamRepository{storage: storage, logger: logger}
}

func scanTeam(row scanner) (*entities.MaintenanceTeam, error) {
	var t entities.MaintenanceTeam
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Specialization, &t.Color, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Members = []entities.TeamMember{}
	return &t, nil
}

func (r *TeamRepository) List(ctx context.Context, activeOnly bool) ([]entities.MaintenanceTeam, error) {
	builder := sq.Select(teamColumns...).From("maintenance_teams").OrderBy("name ASC").PlaceholderFormat(sq.Dollar)
	if activeOnly {
		builder = builder.Where(sq.Eq{"is_active": true})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса команд: %w", err)
	}
	defer rows.Close()

	teams := make([]entities.MaintenanceTeam, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования команды: %w", err)
		}
		teams = append(teams, *t)
	}
	return teams, rows.Err()
}

func (r *TeamRepository) findOne(ctx context.Context, q querier, id string, suffix string) (*entities.MaintenanceTeam, error) {
	builder := sq.Select(teamColumns...).From("maintenance_teams").Where(sq.Eq{"id": id}).PlaceholderFormat(sq.Dollar)
	if suffix != "" {
		builder = builder.Suffix(suffix)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	t, err := scanTeam(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTeamNotFound
		}
		return nil, fmt.Errorf("ошибка поиска команды: %w", err)
	}
	return t, nil
}

func (r *TeamRepository) FindByID(ctx context.Context, id string) (*entities.MaintenanceTeam, error) {
	t, err := r.findOne(ctx, r.storage, id, "")
	if err != nil {
		return nil, err
	}
	members, err := r.ListMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Members = members
	return t, nil
}

func (r *TeamRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*entities.MaintenanceTeam, error) {
	return r.findOne(ctx, pick(r.storage, tx), id, "FOR UPDATE")
}

func (r *TeamRepository) Create(ctx context.Context, team *entities.MaintenanceTeam) error {
	query := `
		INSERT INTO maintenance_teams (id, name, description, specialization, color, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`
	err := r.storage.QueryRow(ctx, query,
		team.ID, team.Name, team.Description, team.Specialization, team.Color, team.IsActive,
	).Scan(&team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return apperrors.ErrDuplicateTeamName
		}
		return fmt.Errorf("ошибка создания команды: %w", err)
	}
	return nil
}

func (r *TeamRepository) Update(ctx context.Context, team *entities.MaintenanceTeam) error {
	query := `
		UPDATE maintenance_teams
		SET name = $1, description = $2, specialization = $3, color = $4, is_active = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at`
	err := r.storage.QueryRow(ctx, query,
		team.Name, team.Description, team.Specialization, team.Color, team.IsActive, team.ID,
	).Scan(&team.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrTeamNotFound
		}
		if isPgError(err, pgUniqueViolation) {
			return apperrors.ErrDuplicateTeamName
		}
		return fmt.Errorf("ошибка обновления команды: %w", err)
	}
	return nil
}

func (r *TeamRepository) Delete(ctx context.Context, tx pgx.Tx, id string) error {
	result, err := pick(r.storage, tx).Exec(ctx, `DELETE FROM maintenance_teams WHERE id = $1`, id)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return apperrors.ErrDependentRecordsExist
		}
		return fmt.Errorf("ошибка удаления команды: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrTeamNotFound
	}
	return nil
}

func (r *TeamRepository) ListMembers(ctx context.Context, teamID string) ([]entities.TeamMember, error) {
	query := `
		SELECT tm.team_id, tm.user_id, u.full_name, u.email, tm.role, tm.joined_at
		FROM team_members tm
		JOIN users u ON u.id = tm.user_id
		WHERE tm.team_id = $1
		ORDER BY tm.role ASC, u.full_name ASC`

	rows, err := r.storage.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса участников команды: %w", err)
	}
	defer rows.Close()

	members := make([]entities.TeamMember, 0)
	for rows.Next() {
		var m entities.TeamMember
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.FullName, &m.Email, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования участника: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID string, role entities.MemberRole) error {
	_, err := r.storage.Exec(ctx,
		`INSERT INTO team_members (team_id, user_id, role) VALUES ($1, $2, $3)`, teamID, userID, string(role))
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return apperrors.ErrAlreadyTeamMember
		}
		if isPgError(err, pgForeignKeyViolation) {
			return apperrors.ErrUserNotFound.WithStatus(400)
		}
		return fmt.Errorf("ошибка добавления участника: %w", err)
	}
	return nil
}

func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	result, err := r.storage.Exec(ctx, `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	if err != nil {
		return fmt.Errorf("ошибка удаления участника: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrTeamMemberNotFound
	}
	return nil
}
