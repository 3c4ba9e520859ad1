package services

import (
	"context"
	"errors"
	"strings"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/service"
	"gearguard/pkg/utils"

	"go.uber.org/zap"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, payload dto.RegisterDTO) (*dto.AuthResponseDTO, error)
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponseDTO, error)
	Me(ctx context.Context) (*dto.UserResponseDTO, error)
}

type AuthService struct {
	userRepo    repositories.UserRepositoryInterface
	userService *UserService
	jwtService  service.JWTService
	logger      *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	userService *UserService,
	jwtService service.JWTService,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		userService: userService,
		jwtService:  jwtService,
		logger:      logger,
	}
}

func (s *AuthService) issue(user *entities.User) (*dto.AuthResponseDTO, error) {
	access, refresh, err := s.jwtService.GenerateTokens(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponseDTO{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         toUserResponse(user),
	}, nil
}

// Register создаёт пользователя с ролью technician и сразу выдаёт токены.
func (s *AuthService) Register(ctx context.Context, payload dto.RegisterDTO) (*dto.AuthResponseDTO, error) {
	created, err := s.userService.Create(ctx, dto.CreateUserDTO{
		Email:    payload.Email,
		Password: payload.Password,
		FullName: payload.FullName,
		Role:     string(entities.RoleTechnician),
	})
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, created.ID)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(payload.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		s.logger.Warn("Попытка входа неактивного пользователя", zap.String("userID", user.ID))
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := utils.ComparePasswords(user.Password, payload.Password); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	s.logger.Info("Пользователь вошёл в систему", zap.String("userID", user.ID))
	return s.issue(user)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponseDTO, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrTokenIsNotRefresh
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrUnauthorized
	}
	return s.issue(user)
}

func (s *AuthService) Me(ctx context.Context) (*dto.UserResponseDTO, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	return s.userService.Get(ctx, userID)
}
