package services

import (
	"context"
	"net/http"
	"strings"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/events"
	"gearguard/internal/repositories"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const defaultTeamColor = "#3B82F6"

type TeamServiceInterface interface {
	List(ctx context.Context, activeOnly bool) ([]dto.TeamResponseDTO, error)
	Get(ctx context.Context, id string) (*dto.TeamResponseDTO, error)
	Create(ctx context.Context, payload dto.CreateTeamDTO) (*dto.TeamResponseDTO, error)
	Update(ctx context.Context, id string, patch dto.UpdateTeamDTO, rawBody []byte) (*dto.TeamResponseDTO, error)
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, teamID string, payload dto.AddTeamMemberDTO) (*dto.TeamResponseDTO, error)
	RemoveMember(ctx context.Context, teamID, userID string) error
	Workload(ctx context.Context, teamID string) (*dto.TeamWorkloadDTO, error)
}

type TeamService struct {
	teamRepo      repositories.TeamRepositoryInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	requestRepo   repositories.RequestRepositoryInterface
	txManager     repositories.TxManagerInterface
	publisher     EventPublisher
	clock         utils.Clock
	logger        *zap.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	requestRepo repositories.RequestRepositoryInterface,
	txManager repositories.TxManagerInterface,
	publisher EventPublisher,
	clock utils.Clock,
	logger *zap.Logger,
) *TeamService {
	return &TeamService{
		teamRepo:      teamRepo,
		equipmentRepo: equipmentRepo,
		requestRepo:   requestRepo,
		txManager:     txManager,
		publisher:     publisher,
		clock:         clock,
		logger:        logger,
	}
}

func (s *TeamService) changed(ctx context.Context, id, action string) {
	if s.publisher != nil {
		s.publisher.Publish(ctx, events.TeamChangedEvent{TeamID: id, Action: action})
	}
}

func (s *TeamService) List(ctx context.Context, activeOnly bool) ([]dto.TeamResponseDTO, error) {
	teams, err := s.teamRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TeamResponseDTO, 0, len(teams))
	for i := range teams {
		out = append(out, toTeamResponse(&teams[i]))
	}
	return out, nil
}

func (s *TeamService) Get(ctx context.Context, id string) (*dto.TeamResponseDTO, error) {
	team, err := s.teamRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toTeamResponse(team)
	return &resp, nil
}

func (s *TeamService) Create(ctx context.Context, payload dto.CreateTeamDTO) (*dto.TeamResponseDTO, error) {
	team := &entities.MaintenanceTeam{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(payload.Name),
		Description:    payload.Description,
		Specialization: payload.Specialization,
		Color:          payload.Color,
		IsActive:       true,
	}
	if team.Color == "" {
		team.Color = defaultTeamColor
	}
	if payload.IsActive != nil {
		team.IsActive = *payload.IsActive
	}

	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, err
	}
	s.logger.Info("Команда создана", zap.String("teamID", team.ID), zap.String("name", team.Name))
	s.changed(ctx, team.ID, "created")

	team.Members = []entities.TeamMember{}
	resp := toTeamResponse(team)
	return &resp, nil
}

func (s *TeamService) Update(ctx context.Context, id string, patch dto.UpdateTeamDTO, rawBody []byte) (*dto.TeamResponseDTO, error) {
	team, err := s.teamRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := utils.ApplyPatchFinal(team, &patch, rawBody); err != nil {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Неверные данные для обновления", err, nil)
	}
	if strings.TrimSpace(team.Name) == "" {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Поле name не может быть пустым", nil, nil)
	}
	if team.Color == "" {
		team.Color = defaultTeamColor
	}
	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, err
	}
	s.changed(ctx, id, "updated")
	resp := toTeamResponse(team)
	return &resp, nil
}

// Delete запрещён, пока за командой закреплено оборудование. Заявки
// команды при удалении теряют ссылку на неё, но сохраняют имя-снимок.
func (s *TeamService) Delete(ctx context.Context, id string) error {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.teamRepo.FindByIDForUpdate(ctx, tx, id); err != nil {
			return err
		}
		count, err := s.equipmentRepo.CountByTeam(ctx, tx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.ErrDependentRecordsExist.WithMessage("за командой закреплено оборудование: %d", count)
		}
		return s.teamRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Команда удалена", zap.String("teamID", id))
	s.changed(ctx, id, "deleted")
	return nil
}

func (s *TeamService) AddMember(ctx context.Context, teamID string, payload dto.AddTeamMemberDTO) (*dto.TeamResponseDTO, error) {
	if _, err := s.teamRepo.FindByID(ctx, teamID); err != nil {
		return nil, err
	}
	role := entities.MemberRole(payload.Role)
	if role == "" {
		role = entities.MemberRoleMember
	}
	if err := s.teamRepo.AddMember(ctx, teamID, payload.UserID, role); err != nil {
		return nil, err
	}
	s.changed(ctx, teamID, "member_added")
	return s.Get(ctx, teamID)
}

func (s *TeamService) RemoveMember(ctx context.Context, teamID, userID string) error {
	if _, err := s.teamRepo.FindByID(ctx, teamID); err != nil {
		return err
	}
	if err := s.teamRepo.RemoveMember(ctx, teamID, userID); err != nil {
		return err
	}
	s.changed(ctx, teamID, "member_removed")
	return nil
}

// Workload - открытые заявки команды по стадиям и типам.
func (s *TeamService) Workload(ctx context.Context, teamID string) (*dto.TeamWorkloadDTO, error) {
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	open, err := s.requestRepo.ListOpenByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	w := BuildWorkload(team, open)
	return &dto.TeamWorkloadDTO{
		TeamID:        w.TeamID,
		TeamName:      w.TeamName,
		TotalRequests: w.TotalRequests,
		ByStage:       w.ByStage,
		ByType:        w.ByType,
		Requests:      toRequestResponses(w.Requests, utils.DateOnly(s.clock())),
	}, nil
}
