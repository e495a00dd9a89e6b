package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"marina-guard/backend/internal/model"
	pkgerrors "marina-guard/backend/pkg/errors"
)

// TimesheetFilter list filters; zero values are ignored
type TimesheetFilter struct {
	UserID   string
	Status   model.TimesheetStatus
	WeekFrom time.Time
	WeekTo   time.Time
}

// TimesheetRepository timesheet data access
type TimesheetRepository interface {
	Create(ctx context.Context, ts *model.Timesheet) error
	GetByID(ctx context.Context, id string) (*model.Timesheet, error)
	GetDetail(ctx context.Context, id string) (*model.Timesheet, error)
	LockByID(ctx context.Context, id string) (*model.Timesheet, error)
	GetByUserWeek(ctx context.Context, userID string, weekStart time.Time) (*model.Timesheet, error)
	List(ctx context.Context, filter TimesheetFilter, page Page) ([]model.Timesheet, int64, error)
	Update(ctx context.Context, ts *model.Timesheet) error
	Delete(ctx context.Context, id string) error
}

// TimesheetEntryRepository timesheet entry data access
type TimesheetEntryRepository interface {
	Create(ctx context.Context, e *model.TimesheetEntry) error
	GetByID(ctx context.Context, id string) (*model.TimesheetEntry, error)
	LockByID(ctx context.Context, id string) (*model.TimesheetEntry, error)
	ListByTimesheet(ctx context.Context, timesheetID string) ([]model.TimesheetEntry, error)
	Update(ctx context.Context, e *model.TimesheetEntry) error
}

// TimesheetAdjustmentRepository append-only audit trail
type TimesheetAdjustmentRepository interface {
	Create(ctx context.Context, a *model.TimesheetAdjustment) error
	ListByTimesheet(ctx context.Context, timesheetID string) ([]model.TimesheetAdjustment, error)
}

// ── Timesheet ──

type timesheetRepo struct {
	db *gorm.DB
}

// NewTimesheetRepo creates a TimesheetRepository
func NewTimesheetRepo(db *gorm.DB) TimesheetRepository {
	return &timesheetRepo{db: db}
}

// Create inserts the timesheet and its entries
func (r *timesheetRepo) Create(ctx context.Context, ts *model.Timesheet) error {
	return r.db.WithContext(ctx).Create(ts).Error
}

func (r *timesheetRepo) GetByID(ctx context.Context, id string) (*model.Timesheet, error) {
	var ts model.Timesheet
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("timesheet_id = ?", id).
		First(&ts).Error
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

// GetDetail timesheet with entries, entry locations and adjustments
func (r *timesheetRepo) GetDetail(ctx context.Context, id string) (*model.Timesheet, error) {
	var ts model.Timesheet
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("clock_in_time ASC")
		}).
		Preload("Entries.Location").
		Preload("Entries.Adjustments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("timesheet_id = ?", id).
		First(&ts).Error
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func (r *timesheetRepo) LockByID(ctx context.Context, id string) (*model.Timesheet, error) {
	var ts model.Timesheet
	err := forUpdate(r.db.WithContext(ctx)).
		Where("timesheet_id = ?", id).
		First(&ts).Error
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func (r *timesheetRepo) GetByUserWeek(ctx context.Context, userID string, weekStart time.Time) (*model.Timesheet, error) {
	var ts model.Timesheet
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND week_start = ?", userID, weekStart).
		First(&ts).Error
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func (r *timesheetRepo) List(ctx context.Context, filter TimesheetFilter, page Page) ([]model.Timesheet, int64, error) {
	var list []model.Timesheet
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Timesheet{})
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if !filter.WeekFrom.IsZero() {
		db = db.Where("week_start >= ?", filter.WeekFrom)
	}
	if !filter.WeekTo.IsZero() {
		db = db.Where("week_start <= ?", filter.WeekTo)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page.apply(db).
		Preload("User").
		Order("week_start DESC, created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Update optimistic lock on version
func (r *timesheetRepo) Update(ctx context.Context, ts *model.Timesheet) error {
	oldVersion := ts.Version
	result := r.db.WithContext(ctx).
		Model(&model.Timesheet{}).
		Where("timesheet_id = ? AND version = ?", ts.TimesheetID, oldVersion).
		Updates(map[string]interface{}{
			"total_hours":      ts.TotalHours,
			"total_entries":    ts.TotalEntries,
			"status":           ts.Status,
			"submitted_at":     ts.SubmittedAt,
			"submitted_by":     ts.SubmittedBy,
			"reviewed_at":      ts.ReviewedAt,
			"reviewed_by":      ts.ReviewedBy,
			"rejection_reason": ts.RejectionReason,
			"updated_by":       ts.UpdatedBy,
			"updated_at":       gorm.Expr("NOW()"),
			"version":          oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	ts.Version = oldVersion + 1
	return nil
}

// Delete hard delete; entries and adjustments cascade
func (r *timesheetRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Unscoped().
		Where("timesheet_id = ?", id).
		Delete(&model.Timesheet{}).Error
}

// ── TimesheetEntry ──

type timesheetEntryRepo struct {
	db *gorm.DB
}

// NewTimesheetEntryRepo creates a TimesheetEntryRepository
func NewTimesheetEntryRepo(db *gorm.DB) TimesheetEntryRepository {
	return &timesheetEntryRepo{db: db}
}

func (r *timesheetEntryRepo) Create(ctx context.Context, e *model.TimesheetEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *timesheetEntryRepo) GetByID(ctx context.Context, id string) (*model.TimesheetEntry, error) {
	var e model.TimesheetEntry
	err := r.db.WithContext(ctx).
		Where("timesheet_entry_id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// LockByID SELECT ... FOR UPDATE on one entry
func (r *timesheetEntryRepo) LockByID(ctx context.Context, id string) (*model.TimesheetEntry, error) {
	var e model.TimesheetEntry
	err := forUpdate(r.db.WithContext(ctx)).
		Where("timesheet_entry_id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *timesheetEntryRepo) ListByTimesheet(ctx context.Context, timesheetID string) ([]model.TimesheetEntry, error) {
	var entries []model.TimesheetEntry
	err := r.db.WithContext(ctx).
		Preload("Location").
		Where("timesheet_id = ?", timesheetID).
		Order("clock_in_time ASC").
		Find(&entries).Error
	return entries, err
}

// Update writes the current pair and derived hours; originals never change
func (r *timesheetEntryRepo) Update(ctx context.Context, e *model.TimesheetEntry) error {
	return r.db.WithContext(ctx).
		Model(&model.TimesheetEntry{}).
		Where("timesheet_entry_id = ?", e.TimesheetEntryID).
		Updates(map[string]interface{}{
			"clock_in_time":  e.ClockInTime,
			"clock_out_time": e.ClockOutTime,
			"hours_worked":   e.HoursWorked,
			"was_adjusted":   e.WasAdjusted,
			"updated_by":     e.UpdatedBy,
			"updated_at":     gorm.Expr("NOW()"),
		}).Error
}

// ── TimesheetAdjustment ──

type timesheetAdjustmentRepo struct {
	db *gorm.DB
}

// NewTimesheetAdjustmentRepo creates a TimesheetAdjustmentRepository
func NewTimesheetAdjustmentRepo(db *gorm.DB) TimesheetAdjustmentRepository {
	return &timesheetAdjustmentRepo{db: db}
}

func (r *timesheetAdjustmentRepo) Create(ctx context.Context, a *model.TimesheetAdjustment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *timesheetAdjustmentRepo) ListByTimesheet(ctx context.Context, timesheetID string) ([]model.TimesheetAdjustment, error) {
	var list []model.TimesheetAdjustment
	err := r.db.WithContext(ctx).
		Where("timesheet_id = ?", timesheetID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}
