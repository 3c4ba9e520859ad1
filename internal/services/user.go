package services

import (
	"context"
	"net/http"
	"strings"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/types"
	"gearguard/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserServiceInterface interface {
	List(ctx context.Context, filter types.Filter) ([]dto.UserResponseDTO, uint64, error)
	Get(ctx context.Context, id string) (*dto.UserResponseDTO, error)
	Create(ctx context.Context, payload dto.CreateUserDTO) (*dto.UserResponseDTO, error)
	Update(ctx context.Context, id string, patch dto.UpdateUserDTO, rawBody []byte) (*dto.UserResponseDTO, error)
	Delete(ctx context.Context, id string) error
}

type UserService struct {
	userRepo repositories.UserRepositoryInterface
	logger   *zap.Logger
}

func NewUserService(userRepo repositories.UserRepositoryInterface, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

func (s *UserService) List(ctx context.Context, filter types.Filter) ([]dto.UserResponseDTO, uint64, error) {
	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.UserResponseDTO, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out, total, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*dto.UserResponseDTO, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// Create используется регистрацией и администратором. Роль по умолчанию - technician.
func (s *UserService) Create(ctx context.Context, payload dto.CreateUserDTO) (*dto.UserResponseDTO, error) {
	hash, err := utils.HashPassword(payload.Password)
	if err != nil {
		return nil, err
	}
	role := entities.UserRole(payload.Role)
	if role == "" {
		role = entities.RoleTechnician
	}

	user := &entities.User{
		ID:       uuid.NewString(),
		Email:    strings.ToLower(strings.TrimSpace(payload.Email)),
		Password: hash,
		FullName: strings.TrimSpace(payload.FullName),
		Role:     role,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("Пользователь создан", zap.String("userID", user.ID), zap.String("role", string(user.Role)))

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *UserService) Update(ctx context.Context, id string, patch dto.UpdateUserDTO, rawBody []byte) (*dto.UserResponseDTO, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	currentHash := user.Password

	if err := utils.ApplyPatchFinal(user, &patch, rawBody); err != nil {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Неверные данные для обновления", err, nil)
	}
	if patch.Password.Valid {
		hash, err := utils.HashPassword(patch.Password.String)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	} else {
		user.Password = currentHash
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email == "" || strings.TrimSpace(user.FullName) == "" {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Поля email и full_name обязательны", nil, nil)
	}
	if !user.Role.Valid() {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Недопустимая роль пользователя", nil, nil)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// Delete - заявки удалённого техника сохраняют technician_name, ссылка обнуляется.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Пользователь удалён", zap.String("userID", id))
	return nil
}
