package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/model"
	"marina-guard/backend/internal/repository"
	"marina-guard/backend/internal/roster"
	"marina-guard/backend/internal/worktime"
	pkgerrors "marina-guard/backend/pkg/errors"
	"marina-guard/backend/pkg/mq"
)

// ── Timesheet errors ──

var (
	ErrTimesheetNotFound     = pkgerrors.NotFound(16001, "Timesheet not found")
	ErrTimesheetExists       = pkgerrors.Conflict(16002, "A timesheet already exists for this week")
	ErrNoCompletedSessions   = pkgerrors.Conflict(16003, "No completed duty sessions in this week")
	ErrTimesheetNotDraft     = pkgerrors.Conflict(16004, "Only draft timesheets can be submitted")
	ErrTimesheetNotPending   = pkgerrors.Conflict(16005, "Only pending timesheets can be approved or rejected")
	ErrTimesheetNotDeletable = pkgerrors.Conflict(16006, "Only draft timesheets can be deleted")
	ErrTimesheetLocked       = pkgerrors.Conflict(16007, "Entries can only be changed while the timesheet is draft or pending")
	ErrEntryNotFound         = pkgerrors.NotFound(16008, "Timesheet entry not found")
	ErrRejectReasonRequired  = pkgerrors.Validation(16009, "A rejection reason is required")
	ErrAdjustReasonRequired  = pkgerrors.Validation(16010, "An adjustment reason is required")
	ErrEntryInvalidRange     = pkgerrors.Validation(16011, "Clock-out must be after clock-in")
	ErrEntryOutsideWeek      = pkgerrors.Validation(16012, "Clock-in must fall inside the timesheet week")
	ErrTimesheetInvalidDate  = pkgerrors.Validation(16013, "Dates must be YYYY-MM-DD")
)

// bulkGenerateWorkers concurrent generations in BulkGenerate
const bulkGenerateWorkers = 4

// TimesheetService weekly timesheets and their approval
type TimesheetService interface {
	Generate(ctx context.Context, callerID string, req *dto.GenerateTimesheetRequest) (*dto.TimesheetResponse, error)
	BulkGenerate(ctx context.Context, callerID string, req *dto.BulkGenerateRequest) (*dto.BulkGenerateResponse, error)
	GetByID(ctx context.Context, callerID, id string) (*dto.TimesheetResponse, error)
	List(ctx context.Context, callerID string, req *dto.TimesheetListRequest) ([]dto.TimesheetResponse, int64, error)
	Submit(ctx context.Context, callerID, id string) (*dto.TimesheetResponse, error)
	Approve(ctx context.Context, callerID, id string) (*dto.TimesheetResponse, error)
	Reject(ctx context.Context, callerID, id string, req *dto.RejectTimesheetRequest) (*dto.TimesheetResponse, error)
	BulkApprove(ctx context.Context, callerID string, req *dto.BulkApproveRequest) (*dto.BulkApproveResponse, error)
	Delete(ctx context.Context, callerID, id string) error
	AdjustEntry(ctx context.Context, callerID, entryID string, req *dto.AdjustEntryRequest) (*dto.TimesheetResponse, error)
	AddEntry(ctx context.Context, callerID, timesheetID string, req *dto.AddEntryRequest) (*dto.TimesheetResponse, error)
	ListAdjustments(ctx context.Context, callerID, timesheetID string) ([]dto.TimesheetAdjustmentResponse, error)
}

type timesheetService struct {
	repo     *repository.Repository
	loc      *time.Location
	notifier mq.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewTimesheetService creates a TimesheetService
func NewTimesheetService(
	repo *repository.Repository,
	loc *time.Location,
	notifier mq.Notifier,
	logger *zap.Logger,
) TimesheetService {
	return &timesheetService{
		repo:     repo,
		loc:      loc,
		notifier: notifier,
		logger:   logger.Named("timesheet"),
		now:      time.Now,
	}
}

// ═══════════════════════════════════════════════════════════
// Generate
// ═══════════════════════════════════════════════════════════
//
//  1. target user: the caller, or anyone for supervisors
//  2. Sunday..Saturday bounds of the week containing WeekDate
//  3. one timesheet per (user, week)
//  4. closed sessions with clock-in in the week, rounded per entry
//  5. persist DRAFT with its entries

func (s *timesheetService) Generate(ctx context.Context, callerID string, req *dto.GenerateTimesheetRequest) (*dto.TimesheetResponse, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	// 1. target
	targetID := req.UserID
	if targetID == "" {
		targetID = actor.UserID
	}
	if err := requireSelfOr(actor, targetID, model.RoleSupervisor); err != nil {
		return nil, err
	}
	target, err := s.repo.User.GetByID(ctx, targetID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user", zap.String("user_id", targetID), zap.Error(err))
		return nil, err
	}

	// 2. week
	day, err := worktime.ParseDate(req.WeekDate, s.loc)
	if err != nil {
		return nil, ErrTimesheetInvalidDate
	}

	ts, err := s.generateFor(ctx, actor.UserID, target, day)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, ts.TimesheetID)
}

func (s *timesheetService) generateFor(ctx context.Context, actorID string, target *model.User, day time.Time) (*model.Timesheet, error) {
	weekStart, weekEnd := worktime.WeekBounds(day)

	// 3. uniqueness
	if _, err := s.repo.Timesheet.GetByUserWeek(ctx, target.UserID, weekStart); err == nil {
		return nil, ErrTimesheetExists
	} else if !isNotFound(err) {
		s.logger.Error("check existing timesheet", zap.String("user_id", target.UserID), zap.Error(err))
		return nil, err
	}

	// 4. aggregate
	sessions, err := s.repo.DutySession.ListCompleted(ctx, target.UserID, weekStart, weekEnd)
	if err != nil {
		s.logger.Error("list completed sessions", zap.String("user_id", target.UserID), zap.Error(err))
		return nil, err
	}
	entries, total, err := roster.Aggregate(sessions, weekStart, weekEnd)
	if err != nil {
		if errors.Is(err, roster.ErrNoSessions) {
			return nil, ErrNoCompletedSessions
		}
		return nil, err
	}
	for i := range entries {
		entries[i].CreatedBy = &actorID
		entries[i].UpdatedBy = &actorID
	}

	// 5. persist
	ts := &model.Timesheet{
		UserID:       target.UserID,
		WeekStart:    weekStart,
		WeekEnd:      weekEnd,
		TotalHours:   total,
		TotalEntries: len(entries),
		Status:       model.TimesheetDraft,
		Entries:      entries,
	}
	ts.CreatedBy = &actorID
	ts.UpdatedBy = &actorID

	if err := s.repo.Timesheet.Create(ctx, ts); err != nil {
		if isDuplicate(err) {
			return nil, ErrTimesheetExists
		}
		s.logger.Error("create timesheet", zap.String("user_id", target.UserID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("timesheet generated",
		zap.String("timesheet_id", ts.TimesheetID),
		zap.String("user_id", target.UserID),
		zap.String("week_start", worktime.DateKey(weekStart)),
		zap.Int("entries", ts.TotalEntries),
		zap.Float64("total_hours", ts.TotalHours),
	)
	return ts, nil
}

// ────────────────────── BulkGenerate ──────────────────────

// BulkGenerate one timesheet per active user; a failure for one user does
// not stop the others
func (s *timesheetService) BulkGenerate(ctx context.Context, callerID string, req *dto.BulkGenerateRequest) (*dto.BulkGenerateResponse, error) {
	actor, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor)
	if err != nil {
		return nil, err
	}
	day, err := worktime.ParseDate(req.WeekDate, s.loc)
	if err != nil {
		return nil, ErrTimesheetInvalidDate
	}
	users, err := s.repo.User.ListActive(ctx)
	if err != nil {
		s.logger.Error("list active users", zap.Error(err))
		return nil, err
	}

	results := make([]dto.BulkGenerateResult, len(users))
	var mu sync.Mutex
	resp := &dto.BulkGenerateResponse{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkGenerateWorkers)
	for i := range users {
		u := &users[i]
		g.Go(func() error {
			r := dto.BulkGenerateResult{UserID: u.UserID, UserName: u.Name}
			ts, err := s.generateFor(gctx, actor.UserID, u, day)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				r.Status = "generated"
				r.TimesheetID = ts.TimesheetID
				resp.Generated++
			case errors.Is(err, ErrTimesheetExists), errors.Is(err, ErrNoCompletedSessions):
				r.Status = "skipped"
				r.Message = err.Error()
				resp.Skipped++
			default:
				r.Status = "failed"
				r.Message = publicMessage(err)
				resp.Failed++
			}
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()

	weekStart, _ := worktime.WeekBounds(day)
	resp.WeekStart = worktime.DateKey(weekStart)
	resp.Results = results
	return resp, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *timesheetService) GetByID(ctx context.Context, callerID, id string) (*dto.TimesheetResponse, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	ts, err := s.loadDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireSelfOr(actor, ts.UserID, model.RoleSupervisor); err != nil {
		return nil, err
	}
	return toTimesheetResponse(ts, true), nil
}

// ────────────────────── List ──────────────────────

func (s *timesheetService) List(ctx context.Context, callerID string, req *dto.TimesheetListRequest) ([]dto.TimesheetResponse, int64, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, 0, err
	}

	filter := repository.TimesheetFilter{
		UserID: req.UserID,
		Status: model.TimesheetStatus(req.Status),
	}
	if !actor.Role.AtLeast(model.RoleSupervisor) {
		filter.UserID = actor.UserID
	}
	if filter.WeekFrom, filter.WeekTo, err = s.weekRange(req.WeekFrom, req.WeekTo); err != nil {
		return nil, 0, err
	}

	list, total, err := s.repo.Timesheet.List(ctx, filter,
		repository.Page{Offset: req.GetOffset(), Limit: req.GetPageSize()})
	if err != nil {
		s.logger.Error("list timesheets", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.TimesheetResponse, 0, len(list))
	for i := range list {
		result = append(result, *toTimesheetResponse(&list[i], false))
	}
	return result, total, nil
}

// ────────────────────── Submit ──────────────────────

func (s *timesheetService) Submit(ctx context.Context, callerID, id string) (*dto.TimesheetResponse, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	var submitted *model.Timesheet
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		ts, err := s.lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := requireSelfOr(actor, ts.UserID, model.RoleSupervisor); err != nil {
			return err
		}
		if !ts.CanSubmit() {
			return ErrTimesheetNotDraft
		}

		now := s.now().UTC()
		ts.Status = model.TimesheetPending
		ts.SubmittedAt = &now
		ts.SubmittedBy = &actor.UserID
		ts.UpdatedBy = &actor.UserID
		submitted = ts
		return tx.Timesheet.Update(ctx, ts)
	})
	if err != nil {
		return nil, s.txError("submit", id, err)
	}

	s.notifySubmitted(ctx, submitted)
	return s.detail(ctx, id)
}

// ────────────────────── Approve / Reject ──────────────────────

func (s *timesheetService) Approve(ctx context.Context, callerID, id string) (*dto.TimesheetResponse, error) {
	actor, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor)
	if err != nil {
		return nil, err
	}
	if err := s.approve(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.detail(ctx, id)
}

func (s *timesheetService) approve(ctx context.Context, actor *model.User, id string) error {
	var approved *model.Timesheet
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		ts, err := s.lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if !ts.CanApprove() {
			return ErrTimesheetNotPending
		}

		now := s.now().UTC()
		ts.Status = model.TimesheetApproved
		ts.ReviewedAt = &now
		ts.ReviewedBy = &actor.UserID
		ts.UpdatedBy = &actor.UserID
		approved = ts
		return tx.Timesheet.Update(ctx, ts)
	})
	if err != nil {
		return s.txError("approve", id, err)
	}

	s.notifyReviewed(ctx, approved, actor, mq.EventTimesheetApproved)
	return nil
}

func (s *timesheetService) Reject(ctx context.Context, callerID, id string, req *dto.RejectTimesheetRequest) (*dto.TimesheetResponse, error) {
	actor, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor)
	if err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, ErrRejectReasonRequired
	}

	var rejected *model.Timesheet
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		ts, err := s.lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if !ts.CanReject() {
			return ErrTimesheetNotPending
		}

		now := s.now().UTC()
		ts.Status = model.TimesheetRejected
		ts.ReviewedAt = &now
		ts.ReviewedBy = &actor.UserID
		ts.RejectionReason = reason
		ts.UpdatedBy = &actor.UserID
		rejected = ts
		return tx.Timesheet.Update(ctx, ts)
	})
	if err != nil {
		return nil, s.txError("reject", id, err)
	}

	s.notifyReviewed(ctx, rejected, actor, mq.EventTimesheetRejected)
	return s.detail(ctx, id)
}

// ────────────────────── BulkApprove ──────────────────────

// BulkApprove applies the single-approve check to each id independently
func (s *timesheetService) BulkApprove(ctx context.Context, callerID string, req *dto.BulkApproveRequest) (*dto.BulkApproveResponse, error) {
	actor, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor)
	if err != nil {
		return nil, err
	}

	resp := &dto.BulkApproveResponse{Errors: []string{}}
	for _, id := range req.TimesheetIDs {
		if err := s.approve(ctx, actor, id); err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %s", id, publicMessage(err)))
			continue
		}
		resp.Approved++
	}

	s.logger.Info("bulk approve",
		zap.Int("approved", resp.Approved), zap.Int("failed", resp.Failed), zap.String("by", callerID))
	return resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *timesheetService) Delete(ctx context.Context, callerID, id string) error {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		ts, err := s.lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := requireSelfOr(actor, ts.UserID, model.RoleSupervisor); err != nil {
			return err
		}
		if !ts.CanDelete() {
			return ErrTimesheetNotDeletable
		}
		return tx.Timesheet.Delete(ctx, id)
	})
	if err != nil {
		return s.txError("delete", id, err)
	}
	return nil
}

// ═══════════════════════════════════════════════════════════
// AdjustEntry
// ═══════════════════════════════════════════════════════════
//
// Entry, audit row and parent total are written in one transaction with the
// timesheet row locked, so the total always matches the entries.

func (s *timesheetService) AdjustEntry(ctx context.Context, callerID, entryID string, req *dto.AdjustEntryRequest) (*dto.TimesheetResponse, error) {
	actor, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor)
	if err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, ErrAdjustReasonRequired
	}
	hours, err := worktime.WorkedHours(req.ClockInTime, req.ClockOutTime)
	if err != nil {
		return nil, ErrEntryInvalidRange
	}

	// parent id only; the entry itself is re-read under lock
	found, err := s.repo.TimesheetEntry.GetByID(ctx, entryID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrEntryNotFound
		}
		s.logger.Error("load entry", zap.String("entry_id", entryID), zap.Error(err))
		return nil, err
	}
	timesheetID := found.TimesheetID

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		// 1. lock the parent, then the entry
		ts, err := s.lock(ctx, tx, timesheetID)
		if err != nil {
			return err
		}
		if !ts.CanAdjust() {
			return ErrTimesheetLocked
		}
		if req.ClockInTime.Before(ts.WeekStart) || req.ClockInTime.After(ts.WeekEnd) {
			return ErrEntryOutsideWeek
		}
		entry, err := tx.TimesheetEntry.LockByID(ctx, entryID)
		if err != nil {
			if isNotFound(err) {
				return ErrEntryNotFound
			}
			return err
		}
		if entry.TimesheetID != ts.TimesheetID {
			return ErrEntryNotFound
		}

		// 2. audit row with the locked current pair
		prevIn, prevOut := entry.ClockInTime, entry.ClockOutTime
		adj := &model.TimesheetAdjustment{
			TimesheetID:      ts.TimesheetID,
			TimesheetEntryID: entry.TimesheetEntryID,
			AdjustedBy:       actor.UserID,
			Reason:           reason,
			PreviousClockIn:  &prevIn,
			PreviousClockOut: &prevOut,
			NewClockIn:       req.ClockInTime,
			NewClockOut:      req.ClockOutTime,
			PreviousHours:    entry.HoursWorked,
			NewHours:         hours,
		}

		// 3. entry
		entry.ClockInTime = req.ClockInTime
		entry.ClockOutTime = req.ClockOutTime
		entry.HoursWorked = hours
		entry.WasAdjusted = true
		entry.UpdatedBy = &actor.UserID
		if err := tx.TimesheetEntry.Update(ctx, entry); err != nil {
			return err
		}
		if err := tx.TimesheetAdjustment.Create(ctx, adj); err != nil {
			return err
		}

		// 4. parent total
		return s.recompute(ctx, tx, ts, actor.UserID)
	})
	if err != nil {
		return nil, s.txError("adjust entry", entryID, err)
	}

	s.logger.Info("entry adjusted",
		zap.String("entry_id", entryID),
		zap.String("timesheet_id", timesheetID),
		zap.Float64("hours", hours),
		zap.String("by", actor.UserID),
	)
	return s.detail(ctx, timesheetID)
}

// ────────────────────── AddEntry ──────────────────────

// AddEntry records hours with no backing duty session
func (s *timesheetService) AddEntry(ctx context.Context, callerID, timesheetID string, req *dto.AddEntryRequest) (*dto.TimesheetResponse, error) {
	actor, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor)
	if err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, ErrAdjustReasonRequired
	}
	hours, err := worktime.WorkedHours(req.ClockInTime, req.ClockOutTime)
	if err != nil {
		return nil, ErrEntryInvalidRange
	}

	var locationID *string
	if req.LocationID != "" {
		if _, err := s.repo.Location.GetByID(ctx, req.LocationID); err != nil {
			if isNotFound(err) {
				return nil, ErrLocationNotFound
			}
			return nil, err
		}
		id := req.LocationID
		locationID = &id
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		ts, err := s.lock(ctx, tx, timesheetID)
		if err != nil {
			return err
		}
		if !ts.CanAdjust() {
			return ErrTimesheetLocked
		}
		if req.ClockInTime.Before(ts.WeekStart) || req.ClockInTime.After(ts.WeekEnd) {
			return ErrEntryOutsideWeek
		}

		entry := &model.TimesheetEntry{
			TimesheetID:      ts.TimesheetID,
			LocationID:       locationID,
			ClockInTime:      req.ClockInTime,
			ClockOutTime:     req.ClockOutTime,
			OriginalClockIn:  req.ClockInTime,
			OriginalClockOut: req.ClockOutTime,
			HoursWorked:      hours,
			WasManuallyAdded: true,
		}
		entry.CreatedBy = &actor.UserID
		entry.UpdatedBy = &actor.UserID
		if err := tx.TimesheetEntry.Create(ctx, entry); err != nil {
			return err
		}

		if err := tx.TimesheetAdjustment.Create(ctx, &model.TimesheetAdjustment{
			TimesheetID:      ts.TimesheetID,
			TimesheetEntryID: entry.TimesheetEntryID,
			AdjustedBy:       actor.UserID,
			Reason:           reason,
			NewClockIn:       req.ClockInTime,
			NewClockOut:      req.ClockOutTime,
			NewHours:         hours,
		}); err != nil {
			return err
		}

		return s.recompute(ctx, tx, ts, actor.UserID)
	})
	if err != nil {
		return nil, s.txError("add entry", timesheetID, err)
	}
	return s.detail(ctx, timesheetID)
}

// ────────────────────── ListAdjustments ──────────────────────

// ListAdjustments the timesheet's audit trail, oldest first
func (s *timesheetService) ListAdjustments(ctx context.Context, callerID, timesheetID string) ([]dto.TimesheetAdjustmentResponse, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	ts, err := s.repo.Timesheet.GetByID(ctx, timesheetID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTimesheetNotFound
		}
		s.logger.Error("load timesheet", zap.String("id", timesheetID), zap.Error(err))
		return nil, err
	}
	if err := requireSelfOr(actor, ts.UserID, model.RoleSupervisor); err != nil {
		return nil, err
	}

	list, err := s.repo.TimesheetAdjustment.ListByTimesheet(ctx, timesheetID)
	if err != nil {
		s.logger.Error("list adjustments", zap.String("id", timesheetID), zap.Error(err))
		return nil, err
	}
	resp := make([]dto.TimesheetAdjustmentResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toAdjustmentResponse(&list[i]))
	}
	return resp, nil
}

// ── helpers ──

// recompute rewrites total hours and entry count from the stored entries
func (s *timesheetService) recompute(ctx context.Context, tx *repository.Repository, ts *model.Timesheet, actorID string) error {
	entries, err := tx.TimesheetEntry.ListByTimesheet(ctx, ts.TimesheetID)
	if err != nil {
		return err
	}
	ts.TotalHours = roster.Total(entries)
	ts.TotalEntries = len(entries)
	ts.UpdatedBy = &actorID
	return tx.Timesheet.Update(ctx, ts)
}

func (s *timesheetService) lock(ctx context.Context, tx *repository.Repository, id string) (*model.Timesheet, error) {
	ts, err := tx.Timesheet.LockByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTimesheetNotFound
		}
		return nil, err
	}
	return ts, nil
}

// txError passes business errors through and logs the rest
func (s *timesheetService) txError(op, id string, err error) error {
	if _, ok := pkgerrors.As(err); ok {
		return err
	}
	s.logger.Error(op, zap.String("id", id), zap.Error(err))
	return err
}

func (s *timesheetService) loadDetail(ctx context.Context, id string) (*model.Timesheet, error) {
	ts, err := s.repo.Timesheet.GetDetail(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTimesheetNotFound
		}
		s.logger.Error("load timesheet", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return ts, nil
}

func (s *timesheetService) detail(ctx context.Context, id string) (*dto.TimesheetResponse, error) {
	ts, err := s.loadDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTimesheetResponse(ts, true), nil
}

// weekRange turns optional YYYY-MM-DD bounds into week-start bounds
func (s *timesheetService) weekRange(from, to string) (time.Time, time.Time, error) {
	var start, end time.Time
	if from != "" {
		d, err := worktime.ParseDate(from, s.loc)
		if err != nil {
			return start, end, ErrTimesheetInvalidDate
		}
		start, _ = worktime.WeekBounds(d)
	}
	if to != "" {
		d, err := worktime.ParseDate(to, s.loc)
		if err != nil {
			return start, end, ErrTimesheetInvalidDate
		}
		end, _ = worktime.WeekBounds(d)
	}
	return start, end, nil
}

func (s *timesheetService) notifySubmitted(ctx context.Context, ts *model.Timesheet) {
	to, err := supervisorEmails(ctx, s.repo)
	if err != nil {
		s.logger.Warn("list supervisors", zap.Error(err))
		return
	}
	employee := ts.UserID
	if owner, err := s.repo.User.GetByID(ctx, ts.UserID); err == nil {
		employee = owner.Name
	}
	publishEvent(ctx, s.notifier, s.logger, mq.Event{
		Type: mq.EventTimesheetSubmitted,
		To:   to,
		Data: map[string]string{
			"employee":    employee,
			"week_start":  worktime.DateKey(ts.WeekStart.In(s.loc)),
			"total_hours": fmt.Sprintf("%.2f", ts.TotalHours),
		},
	})
}

func (s *timesheetService) notifyReviewed(ctx context.Context, ts *model.Timesheet, reviewer *model.User, eventType string) {
	owner, err := s.repo.User.GetByID(ctx, ts.UserID)
	if err != nil {
		s.logger.Warn("load timesheet owner", zap.String("user_id", ts.UserID), zap.Error(err))
		return
	}
	publishEvent(ctx, s.notifier, s.logger, mq.Event{
		Type: eventType,
		To:   []string{owner.Email},
		Data: map[string]string{
			"employee":    owner.Name,
			"reviewer":    reviewer.Name,
			"week_start":  worktime.DateKey(ts.WeekStart.In(s.loc)),
			"total_hours": fmt.Sprintf("%.2f", ts.TotalHours),
			"reason":      ts.RejectionReason,
		},
	})
}

// publicMessage the user-facing text of err; internal errors stay generic
func publicMessage(err error) string {
	if appErr, ok := pkgerrors.As(err); ok {
		return appErr.Message
	}
	return "Internal server error"
}

func toTimesheetResponse(ts *model.Timesheet, withEntries bool) *dto.TimesheetResponse {
	resp := &dto.TimesheetResponse{
		ID:              ts.TimesheetID,
		UserID:          ts.UserID,
		WeekStart:       dto.FormatTime(ts.WeekStart),
		WeekEnd:         dto.FormatTime(ts.WeekEnd),
		TotalHours:      ts.TotalHours,
		TotalEntries:    ts.TotalEntries,
		Status:          string(ts.Status),
		SubmittedAt:     dto.FormatTimePtr(ts.SubmittedAt),
		SubmittedBy:     ts.SubmittedBy,
		ReviewedAt:      dto.FormatTimePtr(ts.ReviewedAt),
		ReviewedBy:      ts.ReviewedBy,
		RejectionReason: ts.RejectionReason,
		Version:         ts.Version,
	}
	if ts.User != nil {
		resp.UserName = ts.User.Name
	}
	if !withEntries {
		return resp
	}
	resp.Entries = make([]dto.TimesheetEntryResponse, 0, len(ts.Entries))
	for i := range ts.Entries {
		resp.Entries = append(resp.Entries, toEntryResponse(&ts.Entries[i]))
	}
	return resp
}

func toEntryResponse(e *model.TimesheetEntry) dto.TimesheetEntryResponse {
	er := dto.TimesheetEntryResponse{
		ID:               e.TimesheetEntryID,
		DutySessionID:    e.DutySessionID,
		LocationID:       e.LocationID,
		ClockInTime:      dto.FormatTime(e.ClockInTime),
		ClockOutTime:     dto.FormatTime(e.ClockOutTime),
		OriginalClockIn:  dto.FormatTime(e.OriginalClockIn),
		OriginalClockOut: dto.FormatTime(e.OriginalClockOut),
		HoursWorked:      e.HoursWorked,
		WasAdjusted:      e.WasAdjusted,
		WasManuallyAdded: e.WasManuallyAdded,
	}
	if e.Location != nil {
		er.LocationName = e.Location.Name
	}
	for i := range e.Adjustments {
		er.Adjustments = append(er.Adjustments, toAdjustmentResponse(&e.Adjustments[i]))
	}
	return er
}

func toAdjustmentResponse(a *model.TimesheetAdjustment) dto.TimesheetAdjustmentResponse {
	return dto.TimesheetAdjustmentResponse{
		ID:               a.AdjustmentID,
		EntryID:          a.TimesheetEntryID,
		AdjustedBy:       a.AdjustedBy,
		Reason:           a.Reason,
		PreviousClockIn:  dto.FormatTimePtr(a.PreviousClockIn),
		PreviousClockOut: dto.FormatTimePtr(a.PreviousClockOut),
		NewClockIn:       dto.FormatTime(a.NewClockIn),
		NewClockOut:      dto.FormatTime(a.NewClockOut),
		PreviousHours:    a.PreviousHours,
		NewHours:         a.NewHours,
		CreatedAt:        dto.FormatTime(a.CreatedAt),
	}
}
