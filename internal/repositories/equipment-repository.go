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
	db "gearguard/internal/infrastructure/bd"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/types"
)

const equipmentTable = "equipment"

var equipmentColumns = []string{
	"e.id", "e.name", "e.serial_number", "e.category", "e.department", "e.employee", "e.location",
	"e.purchase_date", "e.warranty_expiry", "e.status", "e.maintenance_team_id", "t.name",
	"e.created_at", "e.updated_at",
}

var equipmentAllowedFields = map[string]string{
	"status":              "e.status",
	"category":            "e.category",
	"department":          "e.department",
	"maintenance_team_id": "e.maintenance_team_id",
	"name":                "e.name",
	"serial_number":       "e.serial_number",
	"created_at":          "e.created_at",
}

type EquipmentRepositoryInterface interface {
	List(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error)
	ListAll(ctx context.Context) ([]entities.Equipment, error)
	ListByStatus(ctx context.Context, status entities.EquipmentStatus) ([]entities.Equipment, error)
	FindByID(ctx context.Context, id string) (*entities.Equipment, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*entities.Equipment, error)
	FindBySerialNumber(ctx context.Context, serial string) (*entities.Equipment, error)
	Create(ctx context.Context, tx pgx.Tx, e *entities.Equipment) error
	Update(ctx context.Context, tx pgx.Tx, e *entities.Equipment) error
	UpdateStatus(ctx context.Context, tx pgx.Tx, id string, status entities.EquipmentStatus) error
	Delete(ctx context.Context, tx pgx.Tx, id string) error
	CountByTeam(ctx context.Context, tx pgx.Tx, teamID string) (int, error)
}

type EquipmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewEquipmentRepository(storage *pgxpool.Pool, logger *zap.Logger) EquipmentRepositoryInterface {
	return &EquipmentRepository{storage: storage, logger: logger}
}

func (r *EquipmentRepository) baseSelect() sq.SelectBuilder {
	return sq.Select(equipmentColumns...).
		From(equipmentTable + " e").
		LeftJoin("maintenance_teams t ON t.id = e.maintenance_team_id").
		PlaceholderFormat(sq.Dollar)
}

func scanEquipment(row scanner) (*entities.Equipment, error) {
	var e entities.Equipment
	err := row.Scan(
		&e.ID, &e.Name, &e.SerialNumber, &e.Category, &e.Department, &e.Employee, &e.Location,
		&e.PurchaseDate, &e.WarrantyExpiry, &e.Status, &e.MaintenanceTeamID, &e.MaintenanceTeamName,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EquipmentRepository) collect(ctx context.Context, q querier, builder sq.SelectBuilder) ([]entities.Equipment, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса оборудования: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса оборудования: %w", err)
	}
	defer rows.Close()

	list := make([]entities.Equipment, 0)
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования оборудования: %w", err)
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

func (r *EquipmentRepository) List(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error) {
	countBuilder := sq.Select("COUNT(*)").From(equipmentTable + " e").PlaceholderFormat(sq.Dollar)
	countBuilder = db.ApplyFilters(countBuilder, filter, equipmentAllowedFields)
	countBuilder = db.ApplySearch(countBuilder, filter.Search, "e.name", "e.serial_number", "e.location")

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта оборудования: %w", err)
	}
	if total == 0 {
		return []entities.Equipment{}, 0, nil
	}

	builder := db.ApplySearch(r.baseSelect(), filter.Search, "e.name", "e.serial_number", "e.location")
	builder = db.ApplyListParams(builder, filter, equipmentAllowedFields, "e.created_at DESC")

	list, err := r.collect(ctx, r.storage, builder)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *EquipmentRepository) ListAll(ctx context.Context) ([]entities.Equipment, error) {
	return r.collect(ctx, r.storage, r.baseSelect().OrderBy("e.name ASC"))
}

func (r *EquipmentRepository) ListByStatus(ctx context.Context, status entities.EquipmentStatus) ([]entities.Equipment, error) {
	builder := r.baseSelect().Where(sq.Eq{"e.status": string(status)}).OrderBy("e.name ASC")
	return r.collect(ctx, r.storage, builder)
}

func (r *EquipmentRepository) findOne(ctx context.Context, q querier, builder sq.SelectBuilder) (*entities.Equipment, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	e, err := scanEquipment(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEquipmentNotFound
		}
		return nil, fmt.Errorf("ошибка поиска оборудования: %w", err)
	}
	return e, nil
}

func (r *EquipmentRepository) FindByID(ctx context.Context, id string) (*entities.Equipment, error) {
	return r.findOne(ctx, r.storage, r.baseSelect().Where(sq.Eq{"e.id": id}))
}

// FindByIDForUpdate блокирует строку оборудования до конца транзакции.
func (r *EquipmentRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*entities.Equipment, error) {
	builder := r.baseSelect().Where(sq.Eq{"e.id": id}).Suffix("FOR UPDATE OF e")
	return r.findOne(ctx, pick(r.storage, tx), builder)
}

func (r *EquipmentRepository) FindBySerialNumber(ctx context.Context, serial string) (*entities.Equipment, error) {
	return r.findOne(ctx, r.storage, r.baseSelect().Where(sq.Eq{"e.serial_number": serial}))
}

func (r *EquipmentRepository) Create(ctx context.Context, tx pgx.Tx, e *entities.Equipment) error {
	query := `
		INSERT INTO equipment (id, name, serial_number, category, department, employee, location,
			purchase_date, warranty_expiry, status, maintenance_team_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := pick(r.storage, tx).QueryRow(ctx, query,
		e.ID, e.Name, e.SerialNumber, e.Category, e.Department, e.Employee, e.Location,
		e.PurchaseDate, e.WarrantyExpiry, string(e.Status), e.MaintenanceTeamID,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return apperrors.ErrDuplicateSerialNumber
		}
		if isPgError(err, pgForeignKeyViolation) {
			return apperrors.ErrTeamNotFound.WithStatus(400)
		}
		return fmt.Errorf("ошибка создания оборудования: %w", err)
	}
	return nil
}

func (r *EquipmentRepository) Update(ctx context.Context, tx pgx.Tx, e *entities.Equipment) error {
	query := `
		UPDATE equipment
		SET name = $1, serial_number = $2, category = $3, department = $4, employee = $5, location = $6,
			purchase_date = $7, warranty_expiry = $8, status = $9, maintenance_team_id = $10, updated_at = NOW()
		WHERE id = $11
		RETURNING updated_at`

	err := pick(r.storage, tx).QueryRow(ctx, query,
		e.Name, e.SerialNumber, e.Category, e.Department, e.Employee, e.Location,
		e.PurchaseDate, e.WarrantyExpiry, string(e.Status), e.MaintenanceTeamID, e.ID,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrEquipmentNotFound
		}
		if isPgError(err, pgUniqueViolation) {
			return apperrors.ErrDuplicateSerialNumber
		}
		if isPgError(err, pgForeignKeyViolation) {
			return apperrors.ErrTeamNotFound.WithStatus(400)
		}
		return fmt.Errorf("ошибка обновления оборудования: %w", err)
	}
	return nil
}

func (r *EquipmentRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id string, status entities.EquipmentStatus) error {
	result, err := pick(r.storage, tx).Exec(ctx,
		`UPDATE equipment SET status = $1, updated_at = NOW() WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("ошибка смены статуса оборудования: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrEquipmentNotFound
	}
	return nil
}

func (r *EquipmentRepository) Delete(ctx context.Context, tx pgx.Tx, id string) error {
	result, err := pick(r.storage, tx).Exec(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return apperrors.ErrDependentRecordsExist
		}
		return fmt.Errorf("ошибка удаления оборудования: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrEquipmentNotFound
	}
	return nil
}

func (r *EquipmentRepository) CountByTeam(ctx context.Context, tx pgx.Tx, teamID string) (int, error) {
	var count int
	err := pick(r.storage, tx).QueryRow(ctx,
		`SELECT COUNT(*) FROM equipment WHERE maintenance_team_id = $1`, teamID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта оборудования команды: %w", err)
	}
	return count, nil
}
