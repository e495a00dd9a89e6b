package repository

import (
	"context"

	"gorm.io/gorm"

	"marina-guard/backend/internal/model"
	pkgerrors "marina-guard/backend/pkg/errors"
)

// PatternRepository recurring shift pattern data access
type PatternRepository interface {
	Create(ctx context.Context, p *model.RecurringShiftPattern) error
	GetByID(ctx context.Context, id string) (*model.RecurringShiftPattern, error)
	List(ctx context.Context, locationID string, activeOnly bool) ([]model.RecurringShiftPattern, error)
	ListActive(ctx context.Context) ([]model.RecurringShiftPattern, error)
	Update(ctx context.Context, p *model.RecurringShiftPattern) error
	ReplaceAssignments(ctx context.Context, patternID string, assignments []model.PatternAssignment) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type patternRepo struct {
	db *gorm.DB
}

// NewPatternRepo creates a PatternRepository
func NewPatternRepo(db *gorm.DB) PatternRepository {
	return &patternRepo{db: db}
}

// Create inserts the pattern and its default assignments
func (r *patternRepo) Create(ctx context.Context, p *model.RecurringShiftPattern) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *patternRepo) GetByID(ctx context.Context, id string) (*model.RecurringShiftPattern, error) {
	var p model.RecurringShiftPattern
	err := r.db.WithContext(ctx).
		Preload("Location").
		Preload("Assignments").Preload("Assignments.User").
		Where("pattern_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *patternRepo) List(ctx context.Context, locationID string, activeOnly bool) ([]model.RecurringShiftPattern, error) {
	var patterns []model.RecurringShiftPattern
	db := r.db.WithContext(ctx).
		Preload("Location").
		Preload("Assignments")

	if locationID != "" {
		db = db.Where("location_id = ?", locationID)
	}
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}

	err := db.Order("created_at ASC").Find(&patterns).Error
	return patterns, err
}

// ListActive active patterns with assignments, in creation order
func (r *patternRepo) ListActive(ctx context.Context) ([]model.RecurringShiftPattern, error) {
	var patterns []model.RecurringShiftPattern
	err := r.db.WithContext(ctx).
		Preload("Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&patterns).Error
	return patterns, err
}

// Update optimistic lock on version; assignments are replaced separately
func (r *patternRepo) Update(ctx context.Context, p *model.RecurringShiftPattern) error {
	oldVersion := p.Version
	result := r.db.WithContext(ctx).
		Model(&model.RecurringShiftPattern{}).
		Where("pattern_id = ? AND version = ?", p.PatternID, oldVersion).
		Updates(map[string]interface{}{
			"name":         p.Name,
			"location_id":  p.LocationID,
			"start_time":   p.StartTime,
			"end_time":     p.EndTime,
			"days_of_week": p.DaysOfWeek,
			"start_date":   p.StartDate,
			"end_date":     p.EndDate,
			"is_active":    p.IsActive,
			"updated_by":   p.UpdatedBy,
			"updated_at":   gorm.Expr("NOW()"),
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	p.Version = oldVersion + 1
	return nil
}

func (r *patternRepo) ReplaceAssignments(ctx context.Context, patternID string, assignments []model.PatternAssignment) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("pattern_id = ?", patternID).Delete(&model.PatternAssignment{}).Error; err != nil {
		return err
	}
	if len(assignments) == 0 {
		return nil
	}
	for i := range assignments {
		assignments[i].PatternID = patternID
	}
	return db.Create(&assignments).Error
}

func (r *patternRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.RecurringShiftPattern{}).
		Where("pattern_id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
