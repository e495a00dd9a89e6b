package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"marina-guard/backend/internal/model"
)

// DutySessionFilter list filters; zero values are ignored
type DutySessionFilter struct {
	UserID     string
	LocationID string
	From       time.Time
	To         time.Time
	OpenOnly   bool
}

// DutySessionRepository duty session data access
type DutySessionRepository interface {
	Create(ctx context.Context, s *model.DutySession) error
	GetByID(ctx context.Context, id string) (*model.DutySession, error)
	GetOpenByUser(ctx context.Context, userID string) (*model.DutySession, error)
	Close(ctx context.Context, id string, clockOut time.Time, notes string, updatedBy string) (bool, error)
	List(ctx context.Context, filter DutySessionFilter, page Page) ([]model.DutySession, int64, error)
	ListCompleted(ctx context.Context, userID string, from, to time.Time) ([]model.DutySession, error)
}

type dutySessionRepo struct {
	db *gorm.DB
}

// NewDutySessionRepo creates a DutySessionRepository
func NewDutySessionRepo(db *gorm.DB) DutySessionRepository {
	return &dutySessionRepo{db: db}
}

func (r *dutySessionRepo) Create(ctx context.Context, s *model.DutySession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *dutySessionRepo) GetByID(ctx context.Context, id string) (*model.DutySession, error) {
	var s model.DutySession
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Location").
		Preload("CheckIns", func(db *gorm.DB) *gorm.DB {
			return db.Order("checked_in_at ASC")
		}).
		Preload("CheckIns.Location").
		Where("duty_session_id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *dutySessionRepo) GetOpenByUser(ctx context.Context, userID string) (*model.DutySession, error) {
	var s model.DutySession
	err := r.db.WithContext(ctx).
		Preload("Location").
		Where("user_id = ? AND clock_out_time IS NULL", userID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Close sets clock_out_time on a still-open session. Reports false when the
// session was already closed.
func (r *dutySessionRepo) Close(ctx context.Context, id string, clockOut time.Time, notes string, updatedBy string) (bool, error) {
	updates := map[string]interface{}{
		"clock_out_time": clockOut,
		"updated_by":     updatedBy,
		"updated_at":     gorm.Expr("NOW()"),
	}
	if notes != "" {
		updates["notes"] = notes
	}
	result := r.db.WithContext(ctx).
		Model(&model.DutySession{}).
		Where("duty_session_id = ? AND clock_out_time IS NULL", id).
		Updates(updates)
	return result.RowsAffected > 0, result.Error
}

func (r *dutySessionRepo) List(ctx context.Context, filter DutySessionFilter, page Page) ([]model.DutySession, int64, error) {
	var sessions []model.DutySession
	var total int64

	db := r.db.WithContext(ctx).Model(&model.DutySession{})
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.LocationID != "" {
		db = db.Where("location_id = ?", filter.LocationID)
	}
	if !filter.From.IsZero() {
		db = db.Where("clock_in_time >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		db = db.Where("clock_in_time <= ?", filter.To)
	}
	if filter.OpenOnly {
		db = db.Where("clock_out_time IS NULL")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page.apply(db).
		Preload("User").
		Preload("Location").
		Order("clock_in_time DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// ListCompleted closed sessions with clock-in in [from, to]
func (r *dutySessionRepo) ListCompleted(ctx context.Context, userID string, from, to time.Time) ([]model.DutySession, error) {
	var sessions []model.DutySession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND clock_in_time >= ? AND clock_in_time <= ? AND clock_out_time IS NOT NULL",
			userID, from, to).
		Order("clock_in_time ASC").
		Find(&sessions).Error
	return sessions, err
}

// LocationCheckInRepository roaming tour stops
type LocationCheckInRepository interface {
	Create(ctx context.Context, c *model.LocationCheckIn) error
	ListBySession(ctx context.Context, sessionID string) ([]model.LocationCheckIn, error)
}

type locationCheckInRepo struct {
	db *gorm.DB
}

// NewLocationCheckInRepo creates a LocationCheckInRepository
func NewLocationCheckInRepo(db *gorm.DB) LocationCheckInRepository {
	return &locationCheckInRepo{db: db}
}

func (r *locationCheckInRepo) Create(ctx context.Context, c *model.LocationCheckIn) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *locationCheckInRepo) ListBySession(ctx context.Context, sessionID string) ([]model.LocationCheckIn, error) {
	var checkIns []model.LocationCheckIn
	err := r.db.WithContext(ctx).
		Preload("Location").
		Where("duty_session_id = ?", sessionID).
		Order("checked_in_at ASC").
		Find(&checkIns).Error
	return checkIns, err
}
