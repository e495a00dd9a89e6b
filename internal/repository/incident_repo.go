package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"marina-guard/backend/internal/model"
)

// IncidentFilter list filters; zero values are ignored
type IncidentFilter struct {
	ReportedBy string
	LocationID string
	Severity   model.IncidentSeverity
	Unsigned   bool
	From       time.Time
	To         time.Time
}

// IncidentRepository incident report data access
type IncidentRepository interface {
	Create(ctx context.Context, r *model.IncidentReport) error
	GetByID(ctx context.Context, id string) (*model.IncidentReport, error)
	List(ctx context.Context, filter IncidentFilter, page Page) ([]model.IncidentReport, int64, error)
	Sign(ctx context.Context, id, signerID, signatureName string, at time.Time) (bool, error)
}

type incidentRepo struct {
	db *gorm.DB
}

// NewIncidentRepo creates an IncidentRepository
func NewIncidentRepo(db *gorm.DB) IncidentRepository {
	return &incidentRepo{db: db}
}

func (r *incidentRepo) Create(ctx context.Context, report *model.IncidentReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *incidentRepo) GetByID(ctx context.Context, id string) (*model.IncidentReport, error) {
	var report model.IncidentReport
	err := r.db.WithContext(ctx).
		Preload("Reporter").
		Preload("Location").
		Where("incident_id = ?", id).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *incidentRepo) List(ctx context.Context, filter IncidentFilter, page Page) ([]model.IncidentReport, int64, error) {
	var list []model.IncidentReport
	var total int64

	db := r.db.WithContext(ctx).Model(&model.IncidentReport{})
	if filter.ReportedBy != "" {
		db = db.Where("reported_by = ?", filter.ReportedBy)
	}
	if filter.LocationID != "" {
		db = db.Where("location_id = ?", filter.LocationID)
	}
	if filter.Severity != "" {
		db = db.Where("severity = ?", filter.Severity)
	}
	if filter.Unsigned {
		db = db.Where("signed_at IS NULL")
	}
	if !filter.From.IsZero() {
		db = db.Where("occurred_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		db = db.Where("occurred_at <= ?", filter.To)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page.apply(db).
		Preload("Reporter").
		Preload("Location").
		Order("occurred_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Sign records the signature once; false when already signed
func (r *incidentRepo) Sign(ctx context.Context, id, signerID, signatureName string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.IncidentReport{}).
		Where("incident_id = ? AND signed_at IS NULL", id).
		Updates(map[string]interface{}{
			"signed_by":      signerID,
			"signature_name": signatureName,
			"signed_at":      at,
			"updated_by":     signerID,
			"updated_at":     gorm.Expr("NOW()"),
		})
	return result.RowsAffected > 0, result.Error
}
