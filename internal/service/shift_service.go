package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/model"
	"marina-guard/backend/internal/repository"
	"marina-guard/backend/internal/worktime"
	pkgerrors "marina-guard/backend/pkg/errors"
)

// ── Shift errors ──

var (
	ErrShiftNotFound      = pkgerrors.NotFound(14001, "Shift not found")
	ErrShiftInvalidRange  = pkgerrors.Validation(14002, "Shift end must be after its start")
	ErrShiftAlreadyMember = pkgerrors.Conflict(14003, "User is already assigned to this shift")
	ErrShiftNotMember     = pkgerrors.NotFound(14004, "User is not assigned to this shift")
	ErrShiftAssignee      = pkgerrors.Validation(14005, "Assigned user does not exist or is inactive")
	ErrShiftInvalidDate   = pkgerrors.Validation(14006, "Dates must be YYYY-MM-DD")
	ErrShiftPrimaryTaken  = pkgerrors.Conflict(14007, "The shift already has a PRIMARY guard")
)

// calendarHorizon how far ahead the personal feed reaches
const calendarHorizon = 60 * 24 * time.Hour

// ShiftService concrete shifts
type ShiftService interface {
	Create(ctx context.Context, callerID string, req *dto.CreateShiftRequest) (*dto.ShiftResponse, error)
	GetByID(ctx context.Context, callerID, id string) (*dto.ShiftResponse, error)
	List(ctx context.Context, callerID string, req *dto.ShiftListRequest) ([]dto.ShiftResponse, error)
	MyShifts(ctx context.Context, callerID string, req *dto.ShiftListRequest) ([]dto.ShiftResponse, error)
	Delete(ctx context.Context, callerID, id string) error
	Assign(ctx context.Context, callerID, shiftID string, req *dto.ShiftAssignmentInput) (*dto.ShiftResponse, error)
	Unassign(ctx context.Context, callerID, shiftID, userID string) error
	// Calendar iCalendar feed of the caller's upcoming shifts
	Calendar(ctx context.Context, callerID string) ([]byte, error)
}

type shiftService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewShiftService creates a ShiftService
func NewShiftService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) ShiftService {
	return &shiftService{repo: repo, loc: loc, logger: logger.Named("shift"), now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *shiftService) Create(ctx context.Context, callerID string, req *dto.CreateShiftRequest) (*dto.ShiftResponse, error) {
	if _, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor); err != nil {
		return nil, err
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrShiftInvalidRange
	}
	if _, err := requireActiveLocation(ctx, s.repo, req.LocationID); err != nil {
		return nil, err
	}

	shift := &model.Shift{
		LocationID: req.LocationID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Notes:      req.Notes,
	}
	shift.CreatedBy = &callerID
	shift.UpdatedBy = &callerID

	seen := make(map[string]bool, len(req.Assignments))
	primary := false
	for _, in := range req.Assignments {
		if seen[in.UserID] {
			return nil, ErrShiftAlreadyMember
		}
		seen[in.UserID] = true
		a, err := s.newAssignment(ctx, "", in)
		if err != nil {
			return nil, err
		}
		if a.Role != nil && *a.Role == model.AssignmentPrimary {
			if primary {
				return nil, ErrShiftPrimaryTaken
			}
			primary = true
		}
		shift.Assignments = append(shift.Assignments, *a)
	}

	if err := s.repo.Shift.Create(ctx, shift); err != nil {
		s.logger.Error("create shift", zap.Error(err))
		return nil, err
	}
	return s.reload(ctx, shift.ShiftID)
}

// ────────────────────── GetByID ──────────────────────

func (s *shiftService) GetByID(ctx context.Context, callerID, id string) (*dto.ShiftResponse, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	shift, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.AtLeast(model.RoleSupervisor) && !hasAssignee(shift, actor.UserID) {
		return nil, ErrForbidden
	}
	return toShiftResponse(shift), nil
}

// ────────────────────── List ──────────────────────

// List guards only ever see their own shifts
func (s *shiftService) List(ctx context.Context, callerID string, req *dto.ShiftListRequest) ([]dto.ShiftResponse, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	filter, err := s.filter(req)
	if err != nil {
		return nil, err
	}
	if !actor.Role.AtLeast(model.RoleSupervisor) {
		filter.UserID = actor.UserID
	}
	return s.list(ctx, filter)
}

// ────────────────────── MyShifts ──────────────────────

func (s *shiftService) MyShifts(ctx context.Context, callerID string, req *dto.ShiftListRequest) ([]dto.ShiftResponse, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	filter, err := s.filter(req)
	if err != nil {
		return nil, err
	}
	filter.UserID = actor.UserID
	if filter.From.IsZero() {
		filter.From = s.now()
	}
	return s.list(ctx, filter)
}

// ────────────────────── Delete ──────────────────────

func (s *shiftService) Delete(ctx context.Context, callerID, id string) error {
	if _, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor); err != nil {
		return err
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Shift.Delete(ctx, id); err != nil {
		s.logger.Error("delete shift", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Assign / Unassign ──────────────────────

func (s *shiftService) Assign(ctx context.Context, callerID, shiftID string, req *dto.ShiftAssignmentInput) (*dto.ShiftResponse, error) {
	if _, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor); err != nil {
		return nil, err
	}
	shift, err := s.load(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if hasAssignee(shift, req.UserID) {
		return nil, ErrShiftAlreadyMember
	}

	a, err := s.newAssignment(ctx, shiftID, *req)
	if err != nil {
		return nil, err
	}
	if a.Role != nil && *a.Role == model.AssignmentPrimary {
		for _, existing := range shift.Assignments {
			if existing.Role != nil && *existing.Role == model.AssignmentPrimary {
				return nil, ErrShiftPrimaryTaken
			}
		}
	}

	if err := s.repo.Shift.AddAssignment(ctx, a); err != nil {
		if isDuplicate(err) {
			return nil, ErrShiftAlreadyMember
		}
		s.logger.Error("assign shift", zap.String("shift_id", shiftID), zap.Error(err))
		return nil, err
	}
	return s.reload(ctx, shiftID)
}

func (s *shiftService) Unassign(ctx context.Context, callerID, shiftID, userID string) error {
	if _, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor); err != nil {
		return err
	}
	if _, err := s.load(ctx, shiftID); err != nil {
		return err
	}
	removed, err := s.repo.Shift.RemoveAssignment(ctx, shiftID, userID)
	if err != nil {
		s.logger.Error("unassign shift", zap.String("shift_id", shiftID), zap.Error(err))
		return err
	}
	if !removed {
		return ErrShiftNotMember
	}
	return nil
}

// ────────────────────── Calendar ──────────────────────

func (s *shiftService) Calendar(ctx context.Context, callerID string) ([]byte, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	shifts, err := s.repo.Shift.List(ctx, repository.ShiftFilter{
		From:   now,
		To:     now.Add(calendarHorizon),
		UserID: actor.UserID,
	})
	if err != nil {
		s.logger.Error("list calendar shifts", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Marina Guard//Shifts//EN")
	cal.SetName("Marina Guard shifts")
	cal.SetTimezoneId(s.loc.String())

	for i := range shifts {
		sh := &shifts[i]
		event := cal.AddEvent(sh.ShiftID + "@marina-guard")
		event.SetDtStampTime(now.UTC())
		event.SetStartAt(sh.StartTime.UTC())
		event.SetEndAt(sh.EndTime.UTC())
		summary := "Guard shift"
		if sh.Location != nil {
			summary = fmt.Sprintf("Guard shift: %s", sh.Location.Name)
			event.SetLocation(sh.Location.Name)
		}
		if role := assigneeRole(sh, actor.UserID); role != "" {
			summary += " (" + role + ")"
		}
		event.SetSummary(summary)
		if sh.Notes != "" {
			event.SetDescription(sh.Notes)
		}
	}

	return []byte(cal.Serialize()), nil
}

// ── helpers ──

func (s *shiftService) filter(req *dto.ShiftListRequest) (repository.ShiftFilter, error) {
	f := repository.ShiftFilter{LocationID: req.LocationID, UserID: req.UserID}
	if req.From != "" {
		d, err := worktime.ParseDate(req.From, s.loc)
		if err != nil {
			return f, ErrShiftInvalidDate
		}
		f.From = d
	}
	if req.To != "" {
		d, err := worktime.ParseDate(req.To, s.loc)
		if err != nil {
			return f, ErrShiftInvalidDate
		}
		// inclusive calendar day
		f.To = d.AddDate(0, 0, 1)
	}
	return f, nil
}

func (s *shiftService) list(ctx context.Context, filter repository.ShiftFilter) ([]dto.ShiftResponse, error) {
	shifts, err := s.repo.Shift.List(ctx, filter)
	if err != nil {
		s.logger.Error("list shifts", zap.Error(err))
		return nil, err
	}
	result := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		result = append(result, *toShiftResponse(&shifts[i]))
	}
	return result, nil
}

func (s *shiftService) load(ctx context.Context, id string) (*model.Shift, error) {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("load shift", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return shift, nil
}

func (s *shiftService) reload(ctx context.Context, id string) (*dto.ShiftResponse, error) {
	shift, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toShiftResponse(shift), nil
}

func (s *shiftService) newAssignment(ctx context.Context, shiftID string, in dto.ShiftAssignmentInput) (*model.ShiftAssignment, error) {
	user, err := s.repo.User.GetByID(ctx, in.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrShiftAssignee
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrShiftAssignee
	}

	a := &model.ShiftAssignment{ShiftID: shiftID, UserID: in.UserID}
	if in.Role != "" {
		role := model.AssignmentRole(in.Role)
		if !role.Valid() {
			return nil, ErrPatternAssignmentRole
		}
		a.Role = &role
	}
	return a, nil
}

func hasAssignee(shift *model.Shift, userID string) bool {
	for _, a := range shift.Assignments {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

func assigneeRole(shift *model.Shift, userID string) string {
	for _, a := range shift.Assignments {
		if a.UserID == userID && a.Role != nil {
			return string(*a.Role)
		}
	}
	return ""
}

func toShiftResponse(sh *model.Shift) *dto.ShiftResponse {
	resp := &dto.ShiftResponse{
		ID:          sh.ShiftID,
		LocationID:  sh.LocationID,
		PatternID:   sh.PatternID,
		StartTime:   dto.FormatTime(sh.StartTime),
		EndTime:     dto.FormatTime(sh.EndTime),
		Notes:       sh.Notes,
		Assignments: make([]dto.ShiftAssignmentResponse, 0, len(sh.Assignments)),
	}
	if sh.Location != nil {
		resp.LocationName = sh.Location.Name
	}
	for _, a := range sh.Assignments {
		ar := dto.ShiftAssignmentResponse{UserID: a.UserID}
		if a.Role != nil {
			ar.Role = string(*a.Role)
		}
		if a.User != nil {
			ar.UserName = a.User.Name
		}
		resp.Assignments = append(resp.Assignments, ar)
	}
	return resp
}
