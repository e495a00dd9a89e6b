package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"marina-guard/backend/internal/model"
)

// ShiftFilter list filters; zero values are ignored
type ShiftFilter struct {
	From       time.Time
	To         time.Time
	LocationID string
	UserID     string
	PatternID  string
}

// ShiftRepository shift data access
type ShiftRepository interface {
	Create(ctx context.Context, shift *model.Shift) error
	BatchCreate(ctx context.Context, shifts []model.Shift) error
	GetByID(ctx context.Context, id string) (*model.Shift, error)
	List(ctx context.Context, filter ShiftFilter) ([]model.Shift, error)
	ExistingPatternStarts(ctx context.Context, from, to time.Time) ([]model.Shift, error)
	Delete(ctx context.Context, id string) error
	AddAssignment(ctx context.Context, a *model.ShiftAssignment) error
	RemoveAssignment(ctx context.Context, shiftID, userID string) (bool, error)
}

type shiftRepo struct {
	db *gorm.DB
}

// NewShiftRepo creates a ShiftRepository
func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

// Create inserts the shift and its assignments
func (r *shiftRepo) Create(ctx context.Context, shift *model.Shift) error {
	return r.db.WithContext(ctx).Create(shift).Error
}

func (r *shiftRepo) BatchCreate(ctx context.Context, shifts []model.Shift) error {
	if len(shifts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&shifts, 100).Error
}

func (r *shiftRepo) GetByID(ctx context.Context, id string) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Preload("Location").
		Preload("Assignments").Preload("Assignments.User").
		Where("shift_id = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

// List shifts overlapping [From, To], earliest first
func (r *shiftRepo) List(ctx context.Context, filter ShiftFilter) ([]model.Shift, error) {
	var shifts []model.Shift
	db := r.db.WithContext(ctx).
		Preload("Location").
		Preload("Assignments").Preload("Assignments.User")

	if !filter.From.IsZero() {
		db = db.Where("end_time > ?", filter.From)
	}
	if !filter.To.IsZero() {
		db = db.Where("start_time < ?", filter.To)
	}
	if filter.LocationID != "" {
		db = db.Where("location_id = ?", filter.LocationID)
	}
	if filter.PatternID != "" {
		db = db.Where("pattern_id = ?", filter.PatternID)
	}
	if filter.UserID != "" {
		db = db.Where("shift_id IN (?)",
			r.db.Model(&model.ShiftAssignment{}).Select("shift_id").Where("user_id = ?", filter.UserID))
	}

	err := db.Order("start_time ASC").Find(&shifts).Error
	return shifts, err
}

// ExistingPatternStarts pattern-generated shifts starting in [from, to)
func (r *shiftRepo) ExistingPatternStarts(ctx context.Context, from, to time.Time) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Select("shift_id", "pattern_id", "start_time").
		Where("pattern_id IS NOT NULL AND start_time >= ? AND start_time < ?", from, to).
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("shift_id = ?", id).
		Delete(&model.Shift{}).Error
}

func (r *shiftRepo) AddAssignment(ctx context.Context, a *model.ShiftAssignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *shiftRepo) RemoveAssignment(ctx context.Context, shiftID, userID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("shift_id = ? AND user_id = ?", shiftID, userID).
		Delete(&model.ShiftAssignment{})
	return result.RowsAffected > 0, result.Error
}
