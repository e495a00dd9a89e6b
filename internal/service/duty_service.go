package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/model"
	"marina-guard/backend/internal/repository"
	"marina-guard/backend/internal/worktime"
	pkgerrors "marina-guard/backend/pkg/errors"
)

// ── Duty errors ──

var (
	ErrAlreadyClockedIn    = pkgerrors.Conflict(15001, "Already clocked in")
	ErrNotClockedIn        = pkgerrors.Conflict(15002, "Not clocked in")
	ErrRoamingNotAllowed   = pkgerrors.Forbidden("Only supervisors can start roaming duty")
	ErrSessionNotFound     = pkgerrors.NotFound(15003, "Duty session not found")
	ErrNotRoaming          = pkgerrors.Conflict(15004, "Location check-ins need an open roaming session")
	ErrCheckInTarget       = pkgerrors.Validation(15005, "Provide a location id or a checkpoint code")
	ErrClockOutBeforeIn    = pkgerrors.Validation(15006, "Clock-out must be after clock-in")
	ErrSessionAlreadyEnded = pkgerrors.Conflict(15007, "Duty session is already closed")
	ErrDutyInvalidDate     = pkgerrors.Validation(15008, "Dates must be YYYY-MM-DD")
)

// DutyService clock-in / clock-out and roaming tours
type DutyService interface {
	ClockIn(ctx context.Context, callerID string, req *dto.ClockInRequest) (*dto.DutySessionResponse, error)
	ClockOut(ctx context.Context, callerID string, req *dto.ClockOutRequest) (*dto.DutySessionResponse, error)
	Current(ctx context.Context, callerID string) (*dto.DutySessionResponse, error)
	GetByID(ctx context.Context, callerID, id string) (*dto.DutySessionResponse, error)
	ListMine(ctx context.Context, callerID string, req *dto.DutySessionListRequest) ([]dto.DutySessionResponse, int64, error)
	List(ctx context.Context, callerID string, req *dto.DutySessionListRequest) ([]dto.DutySessionResponse, int64, error)
	CheckIn(ctx context.Context, callerID string, req *dto.LocationCheckInRequest) (*dto.LocationCheckInResponse, error)
	ForceClockOut(ctx context.Context, callerID, sessionID string, req *dto.ForceClockOutRequest) (*dto.DutySessionResponse, error)
}

type dutyService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewDutyService creates a DutyService
func NewDutyService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) DutyService {
	return &dutyService{repo: repo, loc: loc, logger: logger.Named("duty"), now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// ClockIn
// ═══════════════════════════════════════════════════════════
//
// The user row is locked for the check-then-insert so two concurrent
// clock-ins serialise; the partial unique index backs it up.

func (s *dutyService) ClockIn(ctx context.Context, callerID string, req *dto.ClockInRequest) (*dto.DutySessionResponse, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	// 1. roaming vs fixed post
	var locationID *string
	if req.LocationID == "" {
		if !actor.Role.IsSupervisorTier() {
			return nil, ErrRoamingNotAllowed
		}
	} else {
		if _, err := requireActiveLocation(ctx, s.repo, req.LocationID); err != nil {
			return nil, err
		}
		id := req.LocationID
		locationID = &id
	}

	// 2. optional shift link
	var shiftID *string
	if req.ShiftID != "" {
		if _, err := s.repo.Shift.GetByID(ctx, req.ShiftID); err != nil {
			if isNotFound(err) {
				return nil, ErrShiftNotFound
			}
			s.logger.Error("load shift", zap.String("shift_id", req.ShiftID), zap.Error(err))
			return nil, err
		}
		id := req.ShiftID
		shiftID = &id
	}

	session := &model.DutySession{
		UserID:      actor.UserID,
		LocationID:  locationID,
		ShiftID:     shiftID,
		ClockInTime: s.now().UTC(),
		Notes:       req.Notes,
	}
	session.CreatedBy = &callerID
	session.UpdatedBy = &callerID

	// 3. lock, check, insert
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.User.LockByID(ctx, actor.UserID); err != nil {
			return err
		}
		open, err := tx.DutySession.GetOpenByUser(ctx, actor.UserID)
		if err != nil && !isNotFound(err) {
			return err
		}
		if open != nil {
			return ErrAlreadyClockedIn
		}
		return tx.DutySession.Create(ctx, session)
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrAlreadyClockedIn
		}
		if _, ok := pkgerrors.As(err); ok {
			return nil, err
		}
		s.logger.Error("clock in", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("clocked in",
		zap.String("user_id", actor.UserID),
		zap.String("session_id", session.DutySessionID),
		zap.Bool("roaming", session.IsRoaming()),
	)
	return s.reload(ctx, session.DutySessionID)
}

// ────────────────────── ClockOut ──────────────────────

func (s *dutyService) ClockOut(ctx context.Context, callerID string, req *dto.ClockOutRequest) (*dto.DutySessionResponse, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	open, err := s.repo.DutySession.GetOpenByUser(ctx, actor.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotClockedIn
		}
		s.logger.Error("load open session", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}

	if err := s.close(ctx, open, req.Notes, callerID); err != nil {
		if errors.Is(err, ErrSessionAlreadyEnded) {
			return nil, ErrNotClockedIn
		}
		return nil, err
	}
	return s.reload(ctx, open.DutySessionID)
}

// ────────────────────── Current ──────────────────────

func (s *dutyService) Current(ctx context.Context, callerID string) (*dto.DutySessionResponse, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	open, err := s.repo.DutySession.GetOpenByUser(ctx, actor.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotClockedIn
		}
		s.logger.Error("load open session", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	return s.reload(ctx, open.DutySessionID)
}

// ────────────────────── GetByID ──────────────────────

func (s *dutyService) GetByID(ctx context.Context, callerID, id string) (*dto.DutySessionResponse, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireSelfOr(actor, session.UserID, model.RoleSupervisor); err != nil {
		return nil, err
	}
	return toDutySessionResponse(session), nil
}

// ────────────────────── List ──────────────────────

func (s *dutyService) ListMine(ctx context.Context, callerID string, req *dto.DutySessionListRequest) ([]dto.DutySessionResponse, int64, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, 0, err
	}
	filter, err := s.filter(req)
	if err != nil {
		return nil, 0, err
	}
	filter.UserID = actor.UserID
	return s.list(ctx, filter, req)
}

func (s *dutyService) List(ctx context.Context, callerID string, req *dto.DutySessionListRequest) ([]dto.DutySessionResponse, int64, error) {
	if _, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor); err != nil {
		return nil, 0, err
	}
	filter, err := s.filter(req)
	if err != nil {
		return nil, 0, err
	}
	return s.list(ctx, filter, req)
}

// ────────────────────── CheckIn ──────────────────────

// CheckIn logs a roaming supervisor's stop at a post
func (s *dutyService) CheckIn(ctx context.Context, callerID string, req *dto.LocationCheckInRequest) (*dto.LocationCheckInResponse, error) {
	actor, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor)
	if err != nil {
		return nil, err
	}

	open, err := s.repo.DutySession.GetOpenByUser(ctx, actor.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotRoaming
		}
		s.logger.Error("load open session", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	if !open.IsRoaming() {
		return nil, ErrNotRoaming
	}

	var loc *model.Location
	switch {
	case req.LocationID != "":
		loc, err = requireActiveLocation(ctx, s.repo, req.LocationID)
	case req.CheckpointCode != "":
		loc, err = s.repo.Location.GetByCheckpointCode(ctx, req.CheckpointCode)
		if err != nil && isNotFound(err) {
			err = ErrCheckpointUnknown
		} else if err == nil && !loc.IsActive {
			err = ErrLocationInactive
		}
	default:
		return nil, ErrCheckInTarget
	}
	if err != nil {
		if _, ok := pkgerrors.As(err); !ok {
			s.logger.Error("resolve check-in location", zap.Error(err))
		}
		return nil, err
	}

	checkIn := &model.LocationCheckIn{
		DutySessionID: open.DutySessionID,
		UserID:        actor.UserID,
		LocationID:    loc.LocationID,
		CheckedInAt:   s.now().UTC(),
		Notes:         req.Notes,
	}
	if err := s.repo.LocationCheckIn.Create(ctx, checkIn); err != nil {
		s.logger.Error("create check-in", zap.Error(err))
		return nil, err
	}
	checkIn.Location = loc

	return toCheckInResponse(checkIn), nil
}

// ────────────────────── ForceClockOut ──────────────────────

func (s *dutyService) ForceClockOut(ctx context.Context, callerID, sessionID string, req *dto.ForceClockOutRequest) (*dto.DutySessionResponse, error) {
	if _, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor); err != nil {
		return nil, err
	}

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsOpen() {
		return nil, ErrSessionAlreadyEnded
	}

	notes := "Closed by supervisor: " + req.Reason
	if err := s.close(ctx, session, notes, callerID); err != nil {
		return nil, err
	}

	s.logger.Info("session force-closed",
		zap.String("session_id", sessionID), zap.String("by", callerID))
	return s.reload(ctx, sessionID)
}

// ── helpers ──

func (s *dutyService) close(ctx context.Context, session *model.DutySession, notes, by string) error {
	clockOut := s.now().UTC()
	if !clockOut.After(session.ClockInTime) {
		return ErrClockOutBeforeIn
	}
	closed, err := s.repo.DutySession.Close(ctx, session.DutySessionID, clockOut, notes, by)
	if err != nil {
		s.logger.Error("close session", zap.String("session_id", session.DutySessionID), zap.Error(err))
		return err
	}
	if !closed {
		return ErrSessionAlreadyEnded
	}
	return nil
}

func (s *dutyService) load(ctx context.Context, id string) (*model.DutySession, error) {
	session, err := s.repo.DutySession.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("load session", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return session, nil
}

func (s *dutyService) reload(ctx context.Context, id string) (*dto.DutySessionResponse, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDutySessionResponse(session), nil
}

func (s *dutyService) filter(req *dto.DutySessionListRequest) (repository.DutySessionFilter, error) {
	f := repository.DutySessionFilter{
		UserID:     req.UserID,
		LocationID: req.LocationID,
		OpenOnly:   req.OpenOnly,
	}
	if req.From != "" {
		d, err := worktime.ParseDate(req.From, s.loc)
		if err != nil {
			return f, ErrDutyInvalidDate
		}
		f.From = d
	}
	if req.To != "" {
		d, err := worktime.ParseDate(req.To, s.loc)
		if err != nil {
			return f, ErrDutyInvalidDate
		}
		f.To = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return f, nil
}

func (s *dutyService) list(ctx context.Context, filter repository.DutySessionFilter, req *dto.DutySessionListRequest) ([]dto.DutySessionResponse, int64, error) {
	sessions, total, err := s.repo.DutySession.List(ctx, filter,
		repository.Page{Offset: req.GetOffset(), Limit: req.GetPageSize()})
	if err != nil {
		s.logger.Error("list sessions", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.DutySessionResponse, 0, len(sessions))
	for i := range sessions {
		result = append(result, *toDutySessionResponse(&sessions[i]))
	}
	return result, total, nil
}

func toDutySessionResponse(ds *model.DutySession) *dto.DutySessionResponse {
	resp := &dto.DutySessionResponse{
		ID:           ds.DutySessionID,
		UserID:       ds.UserID,
		LocationID:   ds.LocationID,
		ShiftID:      ds.ShiftID,
		Roaming:      ds.IsRoaming(),
		ClockInTime:  dto.FormatTime(ds.ClockInTime),
		ClockOutTime: dto.FormatTimePtr(ds.ClockOutTime),
		Notes:        ds.Notes,
	}
	if ds.User != nil {
		resp.UserName = ds.User.Name
	}
	if ds.Location != nil {
		resp.LocationName = ds.Location.Name
	}
	if ds.ClockOutTime != nil {
		if h, err := worktime.WorkedHours(ds.ClockInTime, *ds.ClockOutTime); err == nil {
			resp.HoursWorked = &h
		}
	}
	for i := range ds.CheckIns {
		resp.CheckIns = append(resp.CheckIns, *toCheckInResponse(&ds.CheckIns[i]))
	}
	return resp
}

func toCheckInResponse(c *model.LocationCheckIn) *dto.LocationCheckInResponse {
	resp := &dto.LocationCheckInResponse{
		ID:          c.CheckInID,
		LocationID:  c.LocationID,
		CheckedInAt: dto.FormatTime(c.CheckedInAt),
		Notes:       c.Notes,
	}
	if c.Location != nil {
		resp.LocationName = c.Location.Name
	}
	return resp
}
