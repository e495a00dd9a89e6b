package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"marina-guard/backend/config"
	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/model"
	"marina-guard/backend/internal/repository"
	"marina-guard/backend/internal/roster"
	"marina-guard/backend/internal/worktime"
	pkgerrors "marina-guard/backend/pkg/errors"
	"marina-guard/backend/pkg/redis"
)

// ── Pattern errors ──

var (
	ErrPatternNotFound       = pkgerrors.NotFound(13001, "Shift pattern not found")
	ErrPatternZeroLength     = pkgerrors.Validation(13002, "Start and end time must differ")
	ErrPatternDateRange      = pkgerrors.Validation(13003, "End date must be on or after the start date")
	ErrPatternBadTime        = pkgerrors.Validation(13004, "Times must be HH:MM between 00:00 and 23:59")
	ErrPatternBadDays        = pkgerrors.Validation(13005, "Days of week must be 1 to 7 distinct values between 0 and 6")
	ErrPatternAssignee       = pkgerrors.Validation(13006, "Assigned user does not exist or is inactive")
	ErrPatternDupAssignee    = pkgerrors.Validation(13007, "A user can be assigned to a pattern only once")
	ErrPatternPrimaryCount   = pkgerrors.Validation(13008, "A pattern can have at most one PRIMARY guard")
	ErrGenerationRunning     = pkgerrors.Conflict(13009, "Shift generation is already running")
	ErrGenerationWindow      = pkgerrors.Validation(13010, "Generation window must be between 1 and 90 days")
	ErrPatternInvalidDate    = pkgerrors.Validation(13011, "Dates must be YYYY-MM-DD")
	ErrPatternAssignmentRole = pkgerrors.Validation(13012, "Assignment role must be PRIMARY or BACKUP")
)

const (
	generationLockName = "shift-generation"
	generationLockTTL  = 5 * time.Minute
	maxGenerationDays  = 90
)

// PatternService recurring shift patterns and shift generation
type PatternService interface {
	Create(ctx context.Context, callerID string, req *dto.CreatePatternRequest) (*dto.PatternResponse, error)
	GetByID(ctx context.Context, callerID, id string) (*dto.PatternResponse, error)
	List(ctx context.Context, callerID string, req *dto.PatternListRequest) ([]dto.PatternResponse, error)
	Update(ctx context.Context, callerID, id string, req *dto.UpdatePatternRequest) (*dto.PatternResponse, error)
	Delete(ctx context.Context, callerID, id string) error
	// GenerateShifts expands every active pattern over the window and
	// persists the result in one transaction
	GenerateShifts(ctx context.Context, callerID string, req *dto.GenerateShiftsRequest) (*dto.GenerateShiftsResponse, error)
}

type patternService struct {
	repo   *repository.Repository
	cfg    *config.ScheduleConfig
	loc    *time.Location
	locker Locker
	logger *zap.Logger
	now    func() time.Time
}

// NewPatternService creates a PatternService. locker may be nil.
func NewPatternService(
	repo *repository.Repository,
	cfg *config.ScheduleConfig,
	locker Locker,
	logger *zap.Logger,
) PatternService {
	return &patternService{
		repo:   repo,
		cfg:    cfg,
		loc:    cfg.Location(),
		locker: locker,
		logger: logger.Named("pattern"),
		now:    time.Now,
	}
}

// ────────────────────── Create ──────────────────────

func (s *patternService) Create(ctx context.Context, callerID string, req *dto.CreatePatternRequest) (*dto.PatternResponse, error) {
	if _, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor); err != nil {
		return nil, err
	}

	// 1. times and days
	if err := validateWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if err := validateDays(req.DaysOfWeek); err != nil {
		return nil, err
	}

	// 2. date range
	startDate, err := worktime.ParseDate(req.StartDate, time.UTC)
	if err != nil {
		return nil, ErrPatternInvalidDate
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if endDate != nil && endDate.Before(startDate) {
		return nil, ErrPatternDateRange
	}

	// 3. location and assignees
	if _, err := requireActiveLocation(ctx, s.repo, req.LocationID); err != nil {
		return nil, err
	}
	assignments, err := s.buildAssignments(ctx, req.Assignments)
	if err != nil {
		return nil, err
	}

	p := &model.RecurringShiftPattern{
		Name:        strings.TrimSpace(req.Name),
		LocationID:  req.LocationID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		DaysOfWeek:  model.IntArray(req.DaysOfWeek),
		StartDate:   startDate,
		EndDate:     endDate,
		IsActive:    true,
		Assignments: assignments,
	}
	p.CreatedBy = &callerID
	p.UpdatedBy = &callerID

	if err := s.repo.Pattern.Create(ctx, p); err != nil {
		s.logger.Error("create pattern", zap.Error(err))
		return nil, err
	}

	s.logger.Info("pattern created",
		zap.String("pattern_id", p.PatternID), zap.String("location_id", p.LocationID))
	return s.reload(ctx, p.PatternID)
}

// ────────────────────── GetByID ──────────────────────

func (s *patternService) GetByID(ctx context.Context, callerID, id string) (*dto.PatternResponse, error) {
	if _, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor); err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

// ────────────────────── List ──────────────────────

func (s *patternService) List(ctx context.Context, callerID string, req *dto.PatternListRequest) ([]dto.PatternResponse, error) {
	if _, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor); err != nil {
		return nil, err
	}

	patterns, err := s.repo.Pattern.List(ctx, req.LocationID, req.ActiveOnly)
	if err != nil {
		s.logger.Error("list patterns", zap.Error(err))
		return nil, err
	}

	result := make([]dto.PatternResponse, 0, len(patterns))
	for i := range patterns {
		result = append(result, *toPatternResponse(&patterns[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *patternService) Update(ctx context.Context, callerID, id string, req *dto.UpdatePatternRequest) (*dto.PatternResponse, error) {
	if _, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor); err != nil {
		return nil, err
	}

	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Version != req.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	// 1. merge scalar fields
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.LocationID != nil && *req.LocationID != p.LocationID {
		if _, err := requireActiveLocation(ctx, s.repo, *req.LocationID); err != nil {
			return nil, err
		}
		p.LocationID = *req.LocationID
	}
	if req.StartTime != nil {
		p.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		p.EndTime = *req.EndTime
	}
	if req.DaysOfWeek != nil {
		if err := validateDays(req.DaysOfWeek); err != nil {
			return nil, err
		}
		p.DaysOfWeek = model.IntArray(req.DaysOfWeek)
	}
	if req.StartDate != nil {
		d, err := worktime.ParseDate(*req.StartDate, time.UTC)
		if err != nil {
			return nil, ErrPatternInvalidDate
		}
		p.StartDate = d
	}
	if req.ClearEndDate {
		p.EndDate = nil
	} else if req.EndDate != nil {
		d, err := parseOptionalDate(*req.EndDate)
		if err != nil {
			return nil, err
		}
		p.EndDate = d
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	// 2. re-validate the merged pattern
	if err := validateWindow(p.StartTime, p.EndTime); err != nil {
		return nil, err
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return nil, ErrPatternDateRange
	}

	var assignments []model.PatternAssignment
	if req.Assignments != nil {
		assignments, err = s.buildAssignments(ctx, *req.Assignments)
		if err != nil {
			return nil, err
		}
	}
	p.UpdatedBy = &callerID

	// 3. persist
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Pattern.Update(ctx, p); err != nil {
			return err
		}
		if req.Assignments != nil {
			return tx.Pattern.ReplaceAssignments(ctx, p.PatternID, assignments)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, err
		}
		s.logger.Error("update pattern", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.reload(ctx, id)
}

// ────────────────────── Delete ──────────────────────

// Delete soft-deletes the pattern; shifts already generated stay
func (s *patternService) Delete(ctx context.Context, callerID, id string) error {
	if _, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor); err != nil {
		return err
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Pattern.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("delete pattern", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ═══════════════════════════════════════════════════════════
// GenerateShifts
// ═══════════════════════════════════════════════════════════
//
//  1. window: From (default today in the roster timezone) for Days days
//  2. one run at a time across instances (Redis lock)
//  3. expand active patterns day by day
//  4. drop (pattern, start) pairs that already exist
//  5. insert the rest with their assignments in one transaction

func (s *patternService) GenerateShifts(ctx context.Context, callerID string, req *dto.GenerateShiftsRequest) (*dto.GenerateShiftsResponse, error) {
	if _, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor); err != nil {
		return nil, err
	}

	// 1. window
	days := req.Days
	if days == 0 {
		days = s.cfg.GenerationDays
	}
	if days < 1 || days > maxGenerationDays {
		return nil, ErrGenerationWindow
	}
	from := worktime.StartOfDay(s.now().In(s.loc))
	if req.From != "" {
		d, err := worktime.ParseDate(req.From, s.loc)
		if err != nil {
			return nil, ErrPatternInvalidDate
		}
		from = d
	}
	y, m, d := from.Date()
	to := time.Date(y, m, d+days, 0, 0, 0, 0, s.loc)

	// 2. lock
	if s.locker != nil {
		lock, err := s.locker.AcquireLock(ctx, generationLockName, generationLockTTL)
		if err != nil {
			if errors.Is(err, redis.ErrLockHeld) {
				return nil, ErrGenerationRunning
			}
			s.logger.Error("acquire generation lock", zap.Error(err))
			return nil, err
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("release generation lock", zap.Error(err))
			}
		}()
	}

	// 3. expand
	patterns, err := s.repo.Pattern.ListActive(ctx)
	if err != nil {
		s.logger.Error("list active patterns", zap.Error(err))
		return nil, err
	}
	expanded, err := roster.Expand(patterns, from, days)
	if err != nil {
		s.logger.Error("expand patterns", zap.Error(err))
		return nil, err
	}

	// 4 + 5. skip existing, insert the rest
	created, skipped := 0, 0
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		existing, err := tx.Shift.ExistingPatternStarts(ctx, from, to)
		if err != nil {
			return err
		}
		seen := make(map[string]struct{}, len(existing))
		for i := range existing {
			seen[generatedKey(existing[i].PatternID, existing[i].StartTime)] = struct{}{}
		}

		fresh := make([]model.Shift, 0, len(expanded))
		for _, sh := range expanded {
			if _, ok := seen[generatedKey(sh.PatternID, sh.StartTime)]; ok {
				skipped++
				continue
			}
			sh.CreatedBy = &callerID
			sh.UpdatedBy = &callerID
			fresh = append(fresh, sh)
		}
		created = len(fresh)
		return tx.Shift.BatchCreate(ctx, fresh)
	})
	if err != nil {
		s.logger.Error("persist generated shifts", zap.Error(err))
		return nil, err
	}

	s.logger.Info("shifts generated",
		zap.String("from", worktime.DateKey(from)),
		zap.Int("days", days),
		zap.Int("created", created),
		zap.Int("skipped", skipped),
	)

	return &dto.GenerateShiftsResponse{
		From:    worktime.DateKey(from),
		To:      worktime.DateKey(to.AddDate(0, 0, -1)),
		Created: created,
		Skipped: skipped,
	}, nil
}

// ── helpers ──

func (s *patternService) load(ctx context.Context, id string) (*model.RecurringShiftPattern, error) {
	p, err := s.repo.Pattern.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPatternNotFound
		}
		s.logger.Error("load pattern", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (s *patternService) reload(ctx context.Context, id string) (*dto.PatternResponse, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPatternResponse(p), nil
}

// buildAssignments checks assignees exist, appear once and include at most
// one PRIMARY
func (s *patternService) buildAssignments(ctx context.Context, inputs []dto.PatternAssignmentInput) ([]model.PatternAssignment, error) {
	seen := make(map[string]bool, len(inputs))
	primaries := 0
	result := make([]model.PatternAssignment, 0, len(inputs))

	for _, in := range inputs {
		role := model.AssignmentRole(in.Role)
		if !role.Valid() {
			return nil, ErrPatternAssignmentRole
		}
		if seen[in.UserID] {
			return nil, ErrPatternDupAssignee
		}
		seen[in.UserID] = true
		if role == model.AssignmentPrimary {
			primaries++
		}

		user, err := s.repo.User.GetByID(ctx, in.UserID)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrPatternAssignee
			}
			s.logger.Error("load assignee", zap.String("user_id", in.UserID), zap.Error(err))
			return nil, err
		}
		if !user.IsActive {
			return nil, ErrPatternAssignee
		}

		result = append(result, model.PatternAssignment{UserID: in.UserID, Role: role})
	}

	if primaries > 1 {
		return nil, ErrPatternPrimaryCount
	}
	return result, nil
}

func validateWindow(start, end string) error {
	from, err := worktime.ParseClock(start)
	if err != nil {
		return ErrPatternBadTime
	}
	to, err := worktime.ParseClock(end)
	if err != nil {
		return ErrPatternBadTime
	}
	if from == to {
		return ErrPatternZeroLength
	}
	return nil
}

func validateDays(days []int) error {
	if len(days) < 1 || len(days) > 7 {
		return ErrPatternBadDays
	}
	seen := make(map[int]bool, len(days))
	for _, d := range days {
		if d < 0 || d > 6 || seen[d] {
			return ErrPatternBadDays
		}
		seen[d] = true
	}
	return nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := worktime.ParseDate(s, time.UTC)
	if err != nil {
		return nil, ErrPatternInvalidDate
	}
	return &d, nil
}

func generatedKey(patternID *string, start time.Time) string {
	if patternID == nil {
		return ""
	}
	return *patternID + "|" + start.UTC().Format(time.RFC3339)
}

func toPatternResponse(p *model.RecurringShiftPattern) *dto.PatternResponse {
	resp := &dto.PatternResponse{
		ID:          p.PatternID,
		Name:        p.Name,
		LocationID:  p.LocationID,
		StartTime:   p.StartTime,
		EndTime:     p.EndTime,
		Overnight:   p.EndTime < p.StartTime,
		DaysOfWeek:  []int(p.DaysOfWeek),
		StartDate:   p.StartDate.Format(worktime.DateLayout),
		IsActive:    p.IsActive,
		Assignments: make([]dto.PatternAssignmentResponse, 0, len(p.Assignments)),
		Version:     p.Version,
	}
	if p.Location != nil {
		resp.LocationName = p.Location.Name
	}
	if p.EndDate != nil {
		end := p.EndDate.Format(worktime.DateLayout)
		resp.EndDate = &end
	}
	for _, a := range p.Assignments {
		ar := dto.PatternAssignmentResponse{UserID: a.UserID, Role: string(a.Role)}
		if a.User != nil {
			ar.UserName = a.User.Name
		}
		resp.Assignments = append(resp.Assignments, ar)
	}
	return resp
}
