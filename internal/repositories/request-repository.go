package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"gearguard/internal/entities"
	db "gearguard/internal/infrastructure/bd"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/types"
	"gearguard/pkg/utils"
)

const requestTable = "maintenance_requests"

var requestColumns = []string{
	"r.id", "r.subject", "r.description", "r.type", "r.priority", "r.stage",
	"r.equipment_id", "r.equipment_name", "r.equipment_category",
	"r.maintenance_team_id", "r.maintenance_team_name",
	"r.technician_id", "r.technician_name",
	"r.scheduled_date", "r.duration", "r.hours_spent", "r.notes", "r.scrap_reason",
	"r.version", "r.created_at", "r.updated_at", "r.completed_at",
}

var requestAllowedFields = map[string]string{
	"type":                "r.type",
	"stage":               "r.stage",
	"priority":            "r.priority",
	"equipment_id":        "r.equipment_id",
	"maintenance_team_id": "r.maintenance_team_id",
	"technician_id":       "r.technician_id",
	"scheduled_date":      "r.scheduled_date",
	"created_at":          "r.created_at",
	"updated_at":          "r.updated_at",
	"subject":             "r.subject",
}

var openStages = []string{string(entities.StageNew), string(entities.StageInProgress)}

// RequestListOptions - стандартный фильтр списка плюс условия календаря и просрочки.
type RequestListOptions struct {
	Filter        types.Filter
	OverdueOnly   bool
	Today         time.Time
	ScheduledFrom *time.Time
	ScheduledTo   *time.Time
}

type RequestRepositoryInterface interface {
	List(ctx context.Context, opts RequestListOptions) ([]entities.MaintenanceRequest, uint64, error)
	ListAll(ctx context.Context) ([]entities.MaintenanceRequest, error)
	ListOverdue(ctx context.Context, today time.Time) ([]entities.MaintenanceRequest, error)
	ListOpenByEquipment(ctx context.Context, equipmentID string) ([]entities.MaintenanceRequest, error)
	ListOpenByTeam(ctx context.Context, teamID string) ([]entities.MaintenanceRequest, error)
	FindByID(ctx context.Context, id string) (*entities.MaintenanceRequest, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*entities.MaintenanceRequest, error)
	Create(ctx context.Context, tx pgx.Tx, req *entities.MaintenanceRequest) error
	UpdateDetails(ctx context.Context, tx pgx.Tx, req *entities.MaintenanceRequest) error
	UpdateStage(ctx context.Context, tx pgx.Tx, req *entities.MaintenanceRequest, expected entities.Stage) error
	Delete(ctx context.Context, id string) error
	CountByEquipment(ctx context.Context, tx pgx.Tx, equipmentID string) (int, error)
	ExistsPreventiveInWindow(ctx context.Context, tx pgx.Tx, equipmentID string, from, to time.Time) (bool, error)
}

type RequestRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewRequestRepository(storage *pgxpool.Pool, logger *zap.Logger) RequestRepositoryInterface {
	return &RequestRepository{storage: storage, logger: logger}
}

func (r *RequestRepository) baseSelect() sq.SelectBuilder {
	return sq.Select(requestColumns...).From(requestTable + " r").PlaceholderFormat(sq.Dollar)
}

func scanRequest(row scanner) (*entities.MaintenanceRequest, error) {
	var m entities.MaintenanceRequest
	err := row.Scan(
		&m.ID, &m.Subject, &m.Description, &m.Type, &m.Priority, &m.Stage,
		&m.EquipmentID, &m.EquipmentName, &m.EquipmentCategory,
		&m.MaintenanceTeamID, &m.MaintenanceTeamName,
		&m.TechnicianID, &m.TechnicianName,
		&m.ScheduledDate, &m.Duration, &m.HoursSpent, &m.Notes, &m.ScrapReason,
		&m.Version, &m.CreatedAt, &m.UpdatedAt, &m.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *RequestRepository) collect(ctx context.Context, q querier, builder sq.SelectBuilder) ([]entities.MaintenanceRequest, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса заявок: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса заявок: %w", err)
	}
	defer rows.Close()

	list := make([]entities.MaintenanceRequest, 0)
	for rows.Next() {
		m, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования заявки: %w", err)
		}
		list = append(list, *m)
	}
	return list, rows.Err()
}

// overdueCondition - SQL-версия entities.MaintenanceRequest.IsOverdue.
func overdueCondition(today time.Time) sq.Sqlizer {
	return sq.And{
		sq.NotEq{"r.scheduled_date": nil},
		sq.Expr("r.scheduled_date < ?::date", today.Format(utils.DateLayout)),
		sq.Eq{"r.stage": openStages},
	}
}

func applyRequestConditions(builder sq.SelectBuilder, opts RequestListOptions) sq.SelectBuilder {
	builder = db.ApplyFilters(builder, opts.Filter, requestAllowedFields)
	builder = db.ApplySearch(builder, opts.Filter.Search, "r.subject", "r.equipment_name")
	if opts.OverdueOnly {
		builder = builder.Where(overdueCondition(opts.Today))
	}
	if opts.ScheduledFrom != nil {
		builder = builder.Where(sq.Expr("r.scheduled_date >= ?::date", opts.ScheduledFrom.Format(utils.DateLayout)))
	}
	if opts.ScheduledTo != nil {
		builder = builder.Where(sq.Expr("r.scheduled_date <= ?::date", opts.ScheduledTo.Format(utils.DateLayout)))
	}
	return builder
}

func (r *RequestRepository) List(ctx context.Context, opts RequestListOptions) ([]entities.MaintenanceRequest, uint64, error) {
	countBuilder := sq.Select("COUNT(*)").From(requestTable + " r").PlaceholderFormat(sq.Dollar)
	countQuery, countArgs, err := applyRequestConditions(countBuilder, opts).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта заявок: %w", err)
	}
	if total == 0 {
		return []entities.MaintenanceRequest{}, 0, nil
	}

	// фильтры уже применены, ApplyListParams отвечает только за порядок и страницу
	builder := applyRequestConditions(r.baseSelect(), opts)
	builder = db.ApplyListParams(builder, types.Filter{
		Sort:           opts.Filter.Sort,
		Limit:          opts.Filter.Limit,
		Offset:         opts.Filter.Offset,
		WithPagination: opts.Filter.WithPagination,
	}, requestAllowedFields, "r.created_at DESC")

	list, err := r.collect(ctx, r.storage, builder)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *RequestRepository) ListAll(ctx context.Context) ([]entities.MaintenanceRequest, error) {
	return r.collect(ctx, r.storage, r.baseSelect().OrderBy("r.created_at ASC"))
}

// ListOverdue возвращает просроченные заявки, начиная с самой старой даты.
func (r *RequestRepository) ListOverdue(ctx context.Context, today time.Time) ([]entities.MaintenanceRequest, error) {
	builder := r.baseSelect().Where(overdueCondition(today)).OrderBy("r.scheduled_date ASC", "r.created_at ASC")
	return r.collect(ctx, r.storage, builder)
}

func (r *RequestRepository) ListOpenByEquipment(ctx context.Context, equipmentID string) ([]entities.MaintenanceRequest, error) {
	builder := r.baseSelect().
		Where(sq.Eq{"r.equipment_id": equipmentID, "r.stage": openStages}).
		OrderBy("r.created_at DESC")
	return r.collect(ctx, r.storage, builder)
}

func (r *RequestRepository) ListOpenByTeam(ctx context.Context, teamID string) ([]entities.MaintenanceRequest, error) {
	builder := r.baseSelect().
		Where(sq.Eq{"r.maintenance_team_id": teamID, "r.stage": openStages}).
		OrderBy("r.created_at DESC")
	return r.collect(ctx, r.storage, builder)
}

func (r *RequestRepository) findOne(ctx context.Context, q querier, builder sq.SelectBuilder) (*entities.MaintenanceRequest, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	m, err := scanRequest(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRequestNotFound
		}
		return nil, fmt.Errorf("ошибка поиска заявки: %w", err)
	}
	return m, nil
}

func (r *RequestRepository) FindByID(ctx context.Context, id string) (*entities.MaintenanceRequest, error) {
	return r.findOne(ctx, r.storage, r.baseSelect().Where(sq.Eq{"r.id": id}))
}

// FindByIDForUpdate блокирует строку заявки: смены стадии одной заявки идут строго по очереди.
func (r *RequestRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*entities.MaintenanceRequest, error) {
	return r.findOne(ctx, pick(r.storage, tx), r.baseSelect().Where(sq.Eq{"r.id": id}).Suffix("FOR UPDATE"))
}

func (r *RequestRepository) Create(ctx context.Context, tx pgx.Tx, req *entities.MaintenanceRequest) error {
	query := `
		INSERT INTO maintenance_requests (
			id, subject, description, type, priority, stage,
			equipment_id, equipment_name, equipment_category,
			maintenance_team_id, maintenance_team_name, technician_id, technician_name,
			scheduled_date, duration, hours_spent, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING version, created_at, updated_at`

	err := pick(r.storage, tx).QueryRow(ctx, query,
		req.ID, req.Subject, req.Description, string(req.Type), string(req.Priority), string(req.Stage),
		req.EquipmentID, req.EquipmentName, req.EquipmentCategory,
		req.MaintenanceTeamID, req.MaintenanceTeamName, req.TechnicianID, req.TechnicianName,
		req.ScheduledDate, req.Duration, req.HoursSpent, req.Notes,
	).Scan(&req.Version, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return apperrors.ErrDuplicatePreventive
		}
		if isPgError(err, pgForeignKeyViolation) {
			return apperrors.ErrEquipmentNotFound.WithStatus(400)
		}
		return fmt.Errorf("ошибка создания заявки: %w", err)
	}
	return nil
}

// UpdateDetails обновляет всё, кроме стадии и полей завершения.
func (r *RequestRepository) UpdateDetails(ctx context.Context, tx pgx.Tx, req *entities.MaintenanceRequest) error {
	query := `
		UPDATE maintenance_requests
		SET subject = $1, description = $2, priority = $3, technician_id = $4, technician_name = $5,
			scheduled_date = $6, duration = $7, hours_spent = $8, notes = $9,
			version = version + 1, updated_at = NOW()
		WHERE id = $10
		RETURNING version, updated_at`

	err := pick(r.storage, tx).QueryRow(ctx, query,
		req.Subject, req.Description, string(req.Priority), req.TechnicianID, req.TechnicianName,
		req.ScheduledDate, req.Duration, req.HoursSpent, req.Notes, req.ID,
	).Scan(&req.Version, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrRequestNotFound
		}
		if isPgError(err, pgUniqueViolation) {
			return apperrors.ErrDuplicatePreventive
		}
		return fmt.Errorf("ошибка обновления заявки: %w", err)
	}
	return nil
}

// UpdateStage записывает новую стадию, только если стадия и версия в базе
// совпадают с прочитанными. Иначе возвращается ErrStageConflict.
func (r *RequestRepository) UpdateStage(ctx context.Context, tx pgx.Tx, req *entities.MaintenanceRequest, expected entities.Stage) error {
	query := `
		UPDATE maintenance_requests
		SET stage = $1, completed_at = $2, scrap_reason = $3, version = version + 1, updated_at = NOW()
		WHERE id = $4 AND stage = $5 AND version = $6
		RETURNING version, updated_at`

	err := pick(r.storage, tx).QueryRow(ctx, query,
		string(req.Stage), req.CompletedAt, req.ScrapReason, req.ID, string(expected), req.Version,
	).Scan(&req.Version, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrStageConflict
		}
		return fmt.Errorf("ошибка смены стадии заявки: %w", err)
	}
	return nil
}

func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	result, err := r.storage.Exec(ctx, `DELETE FROM maintenance_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления заявки: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrRequestNotFound
	}
	return nil
}

func (r *RequestRepository) CountByEquipment(ctx context.Context, tx pgx.Tx, equipmentID string) (int, error) {
	var count int
	err := pick(r.storage, tx).QueryRow(ctx,
		`SELECT COUNT(*) FROM maintenance_requests WHERE equipment_id = $1`, equipmentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта заявок оборудования: %w", err)
	}
	return count, nil
}

// ExistsPreventiveInWindow: есть ли профилактика с датой в [from, to] включительно.
func (r *RequestRepository) ExistsPreventiveInWindow(ctx context.Context, tx pgx.Tx, equipmentID string, from, to time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM maintenance_requests
			WHERE equipment_id = $1 AND type = 'preventive'
			  AND scheduled_date BETWEEN $2::date AND $3::date
		)`
	var exists bool
	err := pick(r.storage, tx).QueryRow(ctx, query,
		equipmentID, from.Format(utils.DateLayout), to.Format(utils.DateLayout)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки профилактики: %w", err)
	}
	return exists, nil
}
