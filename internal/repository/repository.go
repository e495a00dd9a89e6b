package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository aggregates every repository
type Repository struct {
	db *gorm.DB

	User                UserRepository
	Location            LocationRepository
	Pattern             PatternRepository
	Shift               ShiftRepository
	DutySession         DutySessionRepository
	LocationCheckIn     LocationCheckInRepository
	Timesheet           TimesheetRepository
	TimesheetEntry      TimesheetEntryRepository
	TimesheetAdjustment TimesheetAdjustmentRepository
	Equipment           EquipmentRepository
	EquipmentCheckout   EquipmentCheckoutRepository
	Incident            IncidentRepository
}

// NewRepository builds the aggregate on db
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:                  db,
		User:                NewUserRepo(db),
		Location:            NewLocationRepo(db),
		Pattern:             NewPatternRepo(db),
		Shift:               NewShiftRepo(db),
		DutySession:         NewDutySessionRepo(db),
		LocationCheckIn:     NewLocationCheckInRepo(db),
		Timesheet:           NewTimesheetRepo(db),
		TimesheetEntry:      NewTimesheetEntryRepo(db),
		TimesheetAdjustment: NewTimesheetAdjustmentRepo(db),
		Equipment:           NewEquipmentRepo(db),
		EquipmentCheckout:   NewEquipmentCheckoutRepo(db),
		Incident:            NewIncidentRepo(db),
	}
}

// DB underlying connection, nil for mock aggregates
func (r *Repository) DB() *gorm.DB { return r.db }

// BeginTx opens a transaction. Returns nil, nil when the aggregate has no
// database (service tests build it from mocks).
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	return tx, nil
}

// WithTx a copy of the aggregate bound to tx. A nil tx returns r itself.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// Transaction runs fn inside a transaction: commit on nil, rollback on error
// or panic.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	if tx == nil {
		return fn(r)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(r.WithTx(tx)); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// forUpdate SELECT ... FOR UPDATE
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Page offset/limit window
type Page struct {
	Offset int
	Limit  int
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		db = db.Limit(p.Limit)
	}
	if p.Offset > 0 {
		db = db.Offset(p.Offset)
	}
	return db
}
