package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"gearguard/internal/entities"
	db "gearguard/internal/infrastructure/bd"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/types"
)

var userColumns = []string{
	"id", "email", "password_hash", "full_name", "role", "is_active", "created_at", "updated_at",
}

var userAllowedFields = map[string]string{
	"role":       "role",
	"is_active":  "is_active",
	"full_name":  "full_name",
	"email":      "email",
	"created_at": "created_at",
}

type UserRepositoryInterface interface {
	List(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error)
	FindByID(ctx context.Context, id string) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	Create(ctx context.Context, user *entities.User) error
	Update(ctx context.Context, user *entities.User) error
	Delete(ctx context.Context, id string) error
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row scanner) (*entities.User, error) {
	var u entities.User
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	countBuilder := sq.Select("COUNT(*)").From("users").PlaceholderFormat(sq.Dollar)
	countBuilder = db.ApplyFilters(countBuilder, filter, userAllowedFields)
	countBuilder = db.ApplySearch(countBuilder, filter.Search, "full_name", "email")
	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта пользователей: %w", err)
	}

	builder := sq.Select(userColumns...).From("users").PlaceholderFormat(sq.Dollar)
	builder = db.ApplySearch(builder, filter.Search, "full_name", "email")
	builder = db.ApplyListParams(builder, filter, userAllowedFields, "full_name ASC")
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка запроса пользователей: %w", err)
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования пользователя: %w", err)
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) findBy(ctx context.Context, column string, value string) (*entities.User, error) {
	query, args, err := sq.Select(userColumns...).From("users").
		Where(sq.Eq{column: value}).PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	u, err := scanUser(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка поиска пользователя: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	return r.findBy(ctx, "id", id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findBy(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, full_name, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`
	err := r.storage.QueryRow(ctx, query,
		user.ID, user.Email, user.Password, user.FullName, string(user.Role), user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	query := `
		UPDATE users
		SET email = $1, password_hash = $2, full_name = $3, role = $4, is_active = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at`
	err := r.storage.QueryRow(ctx, query,
		user.Email, user.Password, user.FullName, string(user.Role), user.IsActive, user.ID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrUserNotFound
		}
		if isPgError(err, pgUniqueViolation) {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("ошибка обновления пользователя: %w", err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.storage.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления пользователя: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
