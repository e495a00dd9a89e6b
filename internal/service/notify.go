package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"marina-guard/backend/internal/model"
	"marina-guard/backend/internal/repository"
	"marina-guard/backend/pkg/mq"
)

// publishEvent fire-and-forget; a failed publish never fails the request
func publishEvent(ctx context.Context, notifier mq.Notifier, logger *zap.Logger, e mq.Event) {
	if len(e.To) == 0 {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if err := notifier.Publish(ctx, e); err != nil {
		logger.Warn("publish event", zap.String("type", e.Type), zap.Error(err))
	}
}

// supervisorEmails mailboxes of every active supervisor-tier user
func supervisorEmails(ctx context.Context, repo *repository.Repository) ([]string, error) {
	users, err := repo.User.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	var to []string
	for _, u := range users {
		if u.Role.AtLeast(model.RoleSupervisor) {
			to = append(to, u.Email)
		}
	}
	return to, nil
}
