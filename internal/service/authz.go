package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"marina-guard/backend/internal/model"
	"marina-guard/backend/internal/repository"
	pkgerrors "marina-guard/backend/pkg/errors"
)

// ErrForbidden the caller's role is below the tier the operation needs
var ErrForbidden = pkgerrors.Forbidden("You do not have permission to perform this action")

// resolveActor loads the caller. Missing or deactivated users are
// Unauthorized; the role always comes from the stored record, never the token.
func resolveActor(ctx context.Context, repo *repository.Repository, callerID string) (*model.User, error) {
	if callerID == "" {
		return nil, pkgerrors.ErrUnauthorized
	}
	user, err := repo.User.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, pkgerrors.ErrUnauthorized
	}
	return user, nil
}

// requireRole the single capability check: actor's tier must be at least min
func requireRole(actor *model.User, min model.Role) error {
	if actor == nil {
		return pkgerrors.ErrUnauthorized
	}
	if !actor.Role.AtLeast(min) {
		return ErrForbidden
	}
	return nil
}

// authorize resolves the caller and checks the tier in one step
func authorize(ctx context.Context, repo *repository.Repository, callerID string, min model.Role) (*model.User, error) {
	actor, err := resolveActor(ctx, repo, callerID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(actor, min); err != nil {
		return nil, err
	}
	return actor, nil
}

// requireSelfOr passes when actor owns the record or has at least min
func requireSelfOr(actor *model.User, ownerID string, min model.Role) error {
	if actor != nil && actor.UserID == ownerID {
		return nil
	}
	return requireRole(actor, min)
}

func isNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

func isDuplicate(err error) bool { return errors.Is(err, gorm.ErrDuplicatedKey) }
