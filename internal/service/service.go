package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"marina-guard/backend/config"
	"marina-guard/backend/internal/repository"
	"marina-guard/backend/pkg/jwt"
	"marina-guard/backend/pkg/mq"
	"marina-guard/backend/pkg/redis"
)

// TokenBlacklist revoked token ids
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Locker short-lived distributed lock
type Locker interface {
	AcquireLock(ctx context.Context, name string, ttl time.Duration) (*redis.Lock, error)
}

// Cache the Redis-backed collaborators
type Cache interface {
	TokenBlacklist
	Locker
}

// Service aggregates every service
type Service struct {
	Auth      AuthService
	User      UserService
	Location  LocationService
	Pattern   PatternService
	Shift     ShiftService
	Duty      DutyService
	Timesheet TimesheetService
	Export    ExportService
	Equipment EquipmentService
	Incident  IncidentService
}

// NewService wires every service
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	cache Cache,
	notifier mq.Notifier,
	logger *zap.Logger,
) *Service {
	if notifier == nil {
		notifier = mq.Nop{}
	}
	loc := cfg.Schedule.Location()
	return &Service{
		Auth:      NewAuthService(repo, jwtMgr, cache, logger),
		User:      NewUserService(repo, notifier, logger),
		Location:  NewLocationService(repo, logger),
		Pattern:   NewPatternService(repo, &cfg.Schedule, cache, logger),
		Shift:     NewShiftService(repo, loc, logger),
		Duty:      NewDutyService(repo, loc, logger),
		Timesheet: NewTimesheetService(repo, loc, notifier, logger),
		Export:    NewExportService(repo, loc, logger),
		Equipment: NewEquipmentService(repo, logger),
		Incident:  NewIncidentService(repo, loc, notifier, logger),
	}
}
