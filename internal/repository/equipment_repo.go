package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"marina-guard/backend/internal/model"
)

// EquipmentRepository car and radio data access
type EquipmentRepository interface {
	Create(ctx context.Context, e *model.Equipment) error
	GetByID(ctx context.Context, id string) (*model.Equipment, error)
	LockByID(ctx context.Context, id string) (*model.Equipment, error)
	List(ctx context.Context, kind model.EquipmentKind, availableOnly bool) ([]model.Equipment, error)
	SetAvailable(ctx context.Context, id string, available bool, updatedBy string) error
}

// EquipmentCheckoutRepository checkout interval data access
type EquipmentCheckoutRepository interface {
	Create(ctx context.Context, c *model.EquipmentCheckout) error
	GetOpenByEquipment(ctx context.Context, equipmentID string) (*model.EquipmentCheckout, error)
	ListOpenByUser(ctx context.Context, userID string) ([]model.EquipmentCheckout, error)
	ListByEquipment(ctx context.Context, equipmentID string, page Page) ([]model.EquipmentCheckout, error)
	Close(ctx context.Context, c *model.EquipmentCheckout) error
}

// ── Equipment ──

type equipmentRepo struct {
	db *gorm.DB
}

// NewEquipmentRepo creates an EquipmentRepository
func NewEquipmentRepo(db *gorm.DB) EquipmentRepository {
	return &equipmentRepo{db: db}
}

func (r *equipmentRepo) Create(ctx context.Context, e *model.Equipment) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *equipmentRepo) GetByID(ctx context.Context, id string) (*model.Equipment, error) {
	var e model.Equipment
	err := r.db.WithContext(ctx).
		Where("equipment_id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *equipmentRepo) LockByID(ctx context.Context, id string) (*model.Equipment, error) {
	var e model.Equipment
	err := forUpdate(r.db.WithContext(ctx)).
		Where("equipment_id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *equipmentRepo) List(ctx context.Context, kind model.EquipmentKind, availableOnly bool) ([]model.Equipment, error) {
	var list []model.Equipment
	db := r.db.WithContext(ctx).Where("is_active = ?", true)
	if kind != "" {
		db = db.Where("kind = ?", kind)
	}
	if availableOnly {
		db = db.Where("is_available = ?", true)
	}
	err := db.Order("kind ASC, identifier ASC").Find(&list).Error
	return list, err
}

func (r *equipmentRepo) SetAvailable(ctx context.Context, id string, available bool, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Equipment{}).
		Where("equipment_id = ?", id).
		Updates(map[string]interface{}{
			"is_available": available,
			"updated_by":   updatedBy,
			"updated_at":   gorm.Expr("NOW()"),
			"version":      gorm.Expr("version + 1"),
		}).Error
}

// ── EquipmentCheckout ──

type equipmentCheckoutRepo struct {
	db *gorm.DB
}

// NewEquipmentCheckoutRepo creates an EquipmentCheckoutRepository
func NewEquipmentCheckoutRepo(db *gorm.DB) EquipmentCheckoutRepository {
	return &equipmentCheckoutRepo{db: db}
}

func (r *equipmentCheckoutRepo) Create(ctx context.Context, c *model.EquipmentCheckout) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *equipmentCheckoutRepo) GetOpenByEquipment(ctx context.Context, equipmentID string) (*model.EquipmentCheckout, error) {
	var c model.EquipmentCheckout
	err := r.db.WithContext(ctx).
		Where("equipment_id = ? AND checked_in_at IS NULL", equipmentID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *equipmentCheckoutRepo) ListOpenByUser(ctx context.Context, userID string) ([]model.EquipmentCheckout, error) {
	var list []model.EquipmentCheckout
	err := r.db.WithContext(ctx).
		Preload("Equipment").
		Where("user_id = ? AND checked_in_at IS NULL", userID).
		Order("checked_out_at ASC").
		Find(&list).Error
	return list, err
}

func (r *equipmentCheckoutRepo) ListByEquipment(ctx context.Context, equipmentID string, page Page) ([]model.EquipmentCheckout, error) {
	var list []model.EquipmentCheckout
	err := page.apply(r.db.WithContext(ctx)).
		Preload("User").
		Where("equipment_id = ?", equipmentID).
		Order("checked_out_at DESC").
		Find(&list).Error
	return list, err
}

func (r *equipmentCheckoutRepo) Close(ctx context.Context, c *model.EquipmentCheckout) error {
	checkedIn := c.CheckedInAt
	if checkedIn == nil {
		now := time.Now()
		checkedIn = &now
	}
	return r.db.WithContext(ctx).
		Model(&model.EquipmentCheckout{}).
		Where("checkout_id = ?", c.CheckoutID).
		Updates(map[string]interface{}{
			"checked_in_at": checkedIn,
			"end_mileage":   c.EndMileage,
			"notes":         c.Notes,
			"updated_by":    c.UpdatedBy,
			"updated_at":    gorm.Expr("NOW()"),
		}).Error
}
