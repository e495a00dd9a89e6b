package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/model"
	"marina-guard/backend/internal/repository"
	pkgerrors "marina-guard/backend/pkg/errors"
)

// ── Location errors ──

var (
	ErrLocationNotFound  = pkgerrors.NotFound(12001, "Location not found")
	ErrLocationInactive  = pkgerrors.Conflict(12002, "Location is inactive")
	ErrCheckpointTaken   = pkgerrors.Conflict(12003, "Checkpoint code is already in use")
	ErrCheckpointUnknown = pkgerrors.NotFound(12004, "Unknown checkpoint code")
)

// qrSize edge length of the checkpoint PNG in pixels
const qrSize = 512

// LocationService marina posts
type LocationService interface {
	Create(ctx context.Context, callerID string, req *dto.CreateLocationRequest) (*dto.LocationResponse, error)
	GetByID(ctx context.Context, id string) (*dto.LocationResponse, error)
	List(ctx context.Context, req *dto.LocationListRequest) ([]dto.LocationResponse, error)
	Update(ctx context.Context, callerID, id string, req *dto.UpdateLocationRequest) (*dto.LocationResponse, error)
	Delete(ctx context.Context, callerID, id string) error
	// QRCode PNG encoding the checkpoint code, for printing at the post
	QRCode(ctx context.Context, callerID, id string) ([]byte, string, error)
}

type locationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLocationService creates a LocationService
func NewLocationService(repo *repository.Repository, logger *zap.Logger) LocationService {
	return &locationService{repo: repo, logger: logger.Named("location")}
}

// ────────────────────── Create ──────────────────────

func (s *locationService) Create(ctx context.Context, callerID string, req *dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if _, err := authorize(ctx, s.repo, callerID, model.RoleAdmin); err != nil {
		return nil, err
	}

	code := strings.ToUpper(req.CheckpointCode)
	if code == "" {
		code = newCheckpointCode()
	}
	if err := s.ensureCodeFree(ctx, code, ""); err != nil {
		return nil, err
	}

	loc := &model.Location{
		Name:           strings.TrimSpace(req.Name),
		Address:        req.Address,
		CheckpointCode: code,
		IsActive:       true,
	}
	loc.CreatedBy = &callerID
	loc.UpdatedBy = &callerID

	if err := s.repo.Location.Create(ctx, loc); err != nil {
		if isDuplicate(err) {
			return nil, ErrCheckpointTaken
		}
		s.logger.Error("create location", zap.Error(err))
		return nil, err
	}

	return toLocationResponse(loc), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *locationService) GetByID(ctx context.Context, id string) (*dto.LocationResponse, error) {
	loc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toLocationResponse(loc), nil
}

// ────────────────────── List ──────────────────────

func (s *locationService) List(ctx context.Context, req *dto.LocationListRequest) ([]dto.LocationResponse, error) {
	locations, err := s.repo.Location.List(ctx, req.IncludeInactive)
	if err != nil {
		s.logger.Error("list locations", zap.Error(err))
		return nil, err
	}

	result := make([]dto.LocationResponse, 0, len(locations))
	for i := range locations {
		result = append(result, *toLocationResponse(&locations[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *locationService) Update(ctx context.Context, callerID, id string, req *dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	if _, err := authorize(ctx, s.repo, callerID, model.RoleAdmin); err != nil {
		return nil, err
	}

	loc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		loc.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		loc.Address = *req.Address
	}
	if req.CheckpointCode != nil {
		code := strings.ToUpper(*req.CheckpointCode)
		if code != loc.CheckpointCode {
			if err := s.ensureCodeFree(ctx, code, loc.LocationID); err != nil {
				return nil, err
			}
			loc.CheckpointCode = code
		}
	}
	if req.IsActive != nil {
		loc.IsActive = *req.IsActive
	}
	loc.UpdatedBy = &callerID

	if err := s.repo.Location.Update(ctx, loc); err != nil {
		if isDuplicate(err) {
			return nil, ErrCheckpointTaken
		}
		s.logger.Error("update location", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toLocationResponse(loc), nil
}

// ────────────────────── Delete ──────────────────────

func (s *locationService) Delete(ctx context.Context, callerID, id string) error {
	if _, err := authorize(ctx, s.repo, callerID, model.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Location.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("delete location", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── QRCode ──────────────────────

func (s *locationService) QRCode(ctx context.Context, callerID, id string) ([]byte, string, error) {
	if _, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor); err != nil {
		return nil, "", err
	}

	loc, err := s.load(ctx, id)
	if err != nil {
		return nil, "", err
	}

	png, err := qrcode.Encode(loc.CheckpointCode, qrcode.Medium, qrSize)
	if err != nil {
		s.logger.Error("encode qr code", zap.String("id", id), zap.Error(err))
		return nil, "", err
	}
	return png, "checkpoint-" + loc.CheckpointCode + ".png", nil
}

// ── helpers ──

func (s *locationService) load(ctx context.Context, id string) (*model.Location, error) {
	loc, err := s.repo.Location.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrLocationNotFound
		}
		s.logger.Error("load location", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return loc, nil
}

func (s *locationService) ensureCodeFree(ctx context.Context, code, selfID string) error {
	existing, err := s.repo.Location.GetByCheckpointCode(ctx, code)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		s.logger.Error("check checkpoint code", zap.Error(err))
		return err
	}
	if existing.LocationID != selfID {
		return ErrCheckpointTaken
	}
	return nil
}

// newCheckpointCode 12 upper-case hex characters
func newCheckpointCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// requireActiveLocation loads id and rejects unknown or disabled posts
func requireActiveLocation(ctx context.Context, repo *repository.Repository, id string) (*model.Location, error) {
	loc, err := repo.Location.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	if !loc.IsActive {
		return nil, ErrLocationInactive
	}
	return loc, nil
}

func toLocationResponse(loc *model.Location) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:             loc.LocationID,
		Name:           loc.Name,
		Address:        loc.Address,
		CheckpointCode: loc.CheckpointCode,
		IsActive:       loc.IsActive,
		CreatedAt:      dto.FormatTime(loc.CreatedAt),
		UpdatedAt:      dto.FormatTime(loc.UpdatedAt),
	}
}
