package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/model"
	"marina-guard/backend/internal/repository"
	pkgerrors "marina-guard/backend/pkg/errors"
)

// ── Equipment errors ──

var (
	ErrEquipmentNotFound    = pkgerrors.NotFound(17001, "Equipment not found")
	ErrEquipmentUnavailable = pkgerrors.Conflict(17002, "Equipment is already checked out")
	ErrEquipmentInactive    = pkgerrors.Conflict(17003, "Equipment is retired")
	ErrNotCheckedOut        = pkgerrors.Conflict(17004, "Equipment is not checked out")
	ErrIdentifierTaken      = pkgerrors.Conflict(17005, "Identifier is already registered")
	ErrMileageBackwards     = pkgerrors.Validation(17006, "End mileage cannot be lower than start mileage")
	ErrInvalidKind          = pkgerrors.Validation(17007, "Kind must be CAR or RADIO")
)

// EquipmentService patrol cars and radios
type EquipmentService interface {
	Create(ctx context.Context, callerID string, req *dto.CreateEquipmentRequest) (*dto.EquipmentResponse, error)
	List(ctx context.Context, req *dto.EquipmentListRequest) ([]dto.EquipmentResponse, error)
	Checkout(ctx context.Context, callerID, equipmentID string, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	Checkin(ctx context.Context, callerID, equipmentID string, req *dto.CheckinRequest) (*dto.CheckoutResponse, error)
	History(ctx context.Context, callerID, equipmentID string, page *dto.PaginationRequest) ([]dto.CheckoutResponse, error)
	MyCheckouts(ctx context.Context, callerID string) ([]dto.CheckoutResponse, error)
}

type equipmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewEquipmentService creates an EquipmentService
func NewEquipmentService(repo *repository.Repository, logger *zap.Logger) EquipmentService {
	return &equipmentService{repo: repo, logger: logger.Named("equipment"), now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *equipmentService) Create(ctx context.Context, callerID string, req *dto.CreateEquipmentRequest) (*dto.EquipmentResponse, error) {
	if _, err := authorize(ctx, s.repo, callerID, model.RoleAdmin); err != nil {
		return nil, err
	}
	kind := model.EquipmentKind(req.Kind)
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}

	e := &model.Equipment{
		Kind:        kind,
		Identifier:  strings.ToUpper(strings.TrimSpace(req.Identifier)),
		Name:        req.Name,
		IsAvailable: true,
		IsActive:    true,
	}
	e.CreatedBy = &callerID
	e.UpdatedBy = &callerID

	if err := s.repo.Equipment.Create(ctx, e); err != nil {
		if isDuplicate(err) {
			return nil, ErrIdentifierTaken
		}
		s.logger.Error("create equipment", zap.Error(err))
		return nil, err
	}
	return toEquipmentResponse(e), nil
}

// ────────────────────── List ──────────────────────

func (s *equipmentService) List(ctx context.Context, req *dto.EquipmentListRequest) ([]dto.EquipmentResponse, error) {
	list, err := s.repo.Equipment.List(ctx, model.EquipmentKind(req.Kind), req.AvailableOnly)
	if err != nil {
		s.logger.Error("list equipment", zap.Error(err))
		return nil, err
	}
	result := make([]dto.EquipmentResponse, 0, len(list))
	for i := range list {
		result = append(result, *toEquipmentResponse(&list[i]))
	}
	return result, nil
}

// ═══════════════════════════════════════════════════════════
// Checkout
// ═══════════════════════════════════════════════════════════
//
// availability check + create checkout + mark unavailable, atomically,
// with the equipment row locked

func (s *equipmentService) Checkout(ctx context.Context, callerID, equipmentID string, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	checkout := &model.EquipmentCheckout{
		EquipmentID:  equipmentID,
		UserID:       actor.UserID,
		CheckedOutAt: s.now().UTC(),
		StartMileage: req.StartMileage,
		Notes:        req.Notes,
	}
	checkout.CreatedBy = &callerID
	checkout.UpdatedBy = &callerID

	// link the caller's open duty session when there is one
	if open, err := s.repo.DutySession.GetOpenByUser(ctx, actor.UserID); err == nil {
		checkout.DutySessionID = &open.DutySessionID
	} else if !isNotFound(err) {
		s.logger.Error("load open session", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		e, err := tx.Equipment.LockByID(ctx, equipmentID)
		if err != nil {
			if isNotFound(err) {
				return ErrEquipmentNotFound
			}
			return err
		}
		if !e.IsActive {
			return ErrEquipmentInactive
		}
		if !e.IsAvailable {
			return ErrEquipmentUnavailable
		}
		if _, err := tx.EquipmentCheckout.GetOpenByEquipment(ctx, equipmentID); err == nil {
			return ErrEquipmentUnavailable
		} else if !isNotFound(err) {
			return err
		}

		if err := tx.EquipmentCheckout.Create(ctx, checkout); err != nil {
			return err
		}
		checkout.Equipment = e
		return tx.Equipment.SetAvailable(ctx, equipmentID, false, callerID)
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrEquipmentUnavailable
		}
		if _, ok := pkgerrors.As(err); !ok {
			s.logger.Error("checkout", zap.String("equipment_id", equipmentID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("equipment checked out",
		zap.String("equipment_id", equipmentID), zap.String("user_id", actor.UserID))
	checkout.User = actor
	return toCheckoutResponse(checkout), nil
}

// ────────────────────── Checkin ──────────────────────

// Checkin the holder or a supervisor returns the item
func (s *equipmentService) Checkin(ctx context.Context, callerID, equipmentID string, req *dto.CheckinRequest) (*dto.CheckoutResponse, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	var checkout *model.EquipmentCheckout
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		e, err := tx.Equipment.LockByID(ctx, equipmentID)
		if err != nil {
			if isNotFound(err) {
				return ErrEquipmentNotFound
			}
			return err
		}
		open, err := tx.EquipmentCheckout.GetOpenByEquipment(ctx, equipmentID)
		if err != nil {
			if isNotFound(err) {
				return ErrNotCheckedOut
			}
			return err
		}
		if err := requireSelfOr(actor, open.UserID, model.RoleSupervisor); err != nil {
			return err
		}
		if req.EndMileage != nil && open.StartMileage != nil && *req.EndMileage < *open.StartMileage {
			return ErrMileageBackwards
		}

		now := s.now().UTC()
		open.CheckedInAt = &now
		open.EndMileage = req.EndMileage
		if req.Notes != "" {
			open.Notes = strings.TrimSpace(strings.Join([]string{open.Notes, req.Notes}, "\n"))
		}
		open.UpdatedBy = &callerID
		if err := tx.EquipmentCheckout.Close(ctx, open); err != nil {
			return err
		}
		open.Equipment = e
		checkout = open
		return tx.Equipment.SetAvailable(ctx, equipmentID, true, callerID)
	})
	if err != nil {
		if _, ok := pkgerrors.As(err); !ok {
			s.logger.Error("checkin", zap.String("equipment_id", equipmentID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("equipment checked in",
		zap.String("equipment_id", equipmentID), zap.String("by", callerID))
	return toCheckoutResponse(checkout), nil
}

// ────────────────────── History ──────────────────────

func (s *equipmentService) History(ctx context.Context, callerID, equipmentID string, page *dto.PaginationRequest) ([]dto.CheckoutResponse, error) {
	if _, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor); err != nil {
		return nil, err
	}
	e, err := s.repo.Equipment.GetByID(ctx, equipmentID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrEquipmentNotFound
		}
		s.logger.Error("load equipment", zap.String("id", equipmentID), zap.Error(err))
		return nil, err
	}

	list, err := s.repo.EquipmentCheckout.ListByEquipment(ctx, equipmentID,
		repository.Page{Offset: page.GetOffset(), Limit: page.GetPageSize()})
	if err != nil {
		s.logger.Error("list checkouts", zap.String("equipment_id", equipmentID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.CheckoutResponse, 0, len(list))
	for i := range list {
		list[i].Equipment = e
		result = append(result, *toCheckoutResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── MyCheckouts ──────────────────────

func (s *equipmentService) MyCheckouts(ctx context.Context, callerID string) ([]dto.CheckoutResponse, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.EquipmentCheckout.ListOpenByUser(ctx, actor.UserID)
	if err != nil {
		s.logger.Error("list open checkouts", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.CheckoutResponse, 0, len(list))
	for i := range list {
		result = append(result, *toCheckoutResponse(&list[i]))
	}
	return result, nil
}

func toEquipmentResponse(e *model.Equipment) *dto.EquipmentResponse {
	return &dto.EquipmentResponse{
		ID:          e.EquipmentID,
		Kind:        string(e.Kind),
		Identifier:  e.Identifier,
		Name:        e.Name,
		IsAvailable: e.IsAvailable,
	}
}

func toCheckoutResponse(c *model.EquipmentCheckout) *dto.CheckoutResponse {
	resp := &dto.CheckoutResponse{
		ID:           c.CheckoutID,
		EquipmentID:  c.EquipmentID,
		UserID:       c.UserID,
		CheckedOutAt: dto.FormatTime(c.CheckedOutAt),
		CheckedInAt:  dto.FormatTimePtr(c.CheckedInAt),
		StartMileage: c.StartMileage,
		EndMileage:   c.EndMileage,
		Notes:        c.Notes,
	}
	if c.Equipment != nil {
		resp.Identifier = c.Equipment.Identifier
	}
	if c.User != nil {
		resp.UserName = c.User.Name
	}
	return resp
}
