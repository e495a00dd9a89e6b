package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/model"
	"marina-guard/backend/internal/repository"
	pkgerrors "marina-guard/backend/pkg/errors"
	"marina-guard/backend/pkg/mq"
)

// ── User errors ──

var (
	ErrUserNotFound      = pkgerrors.NotFound(11001, "User not found")
	ErrEmailTaken        = pkgerrors.Conflict(11002, "Email is already registered")
	ErrCannotChangeSelf  = pkgerrors.Conflict(11003, "You cannot change your own role or status")
	ErrInvalidRole       = pkgerrors.Validation(11004, "Unknown role")
	ErrElevatedRoleGrant = pkgerrors.Forbidden("Only a super admin can grant or revoke admin roles")
)

// UserService account management
type UserService interface {
	Create(ctx context.Context, callerID string, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	GetByID(ctx context.Context, callerID, id string) (*dto.UserResponse, error)
	List(ctx context.Context, callerID string, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, callerID, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	AssignRole(ctx context.Context, callerID, id string, req *dto.AssignRoleRequest) (*dto.UserResponse, error)
	SetActive(ctx context.Context, callerID, id string, active bool) error
}

type userService struct {
	repo     *repository.Repository
	notifier mq.Notifier
	logger   *zap.Logger
}

// NewUserService creates a UserService
func NewUserService(repo *repository.Repository, notifier mq.Notifier, logger *zap.Logger) UserService {
	return &userService{repo: repo, notifier: notifier, logger: logger.Named("user")}
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, callerID string, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	actor, err := authorize(ctx, s.repo, callerID, model.RoleAdmin)
	if err != nil {
		return nil, err
	}

	role := model.Role(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if role.AtLeast(model.RoleAdmin) {
		if err := requireRole(actor, model.RoleSuperAdmin); err != nil {
			return nil, ErrElevatedRoleGrant
		}
	}

	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !isNotFound(err) {
		s.logger.Error("check email", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	user.CreatedBy = &callerID
	user.UpdatedBy = &callerID

	if err := s.repo.User.Create(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("create user", zap.Error(err))
		return nil, err
	}

	publishEvent(ctx, s.notifier, s.logger, mq.Event{
		Type: mq.EventAccountCreated,
		To:   []string{user.Email},
		Data: map[string]string{"name": user.Name, "email": user.Email, "role": string(user.Role)},
	})

	return toUserResponse(user), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, callerID, id string) (*dto.UserResponse, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if err := requireSelfOr(actor, id, model.RoleSupervisor); err != nil {
		return nil, err
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, callerID string, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	if _, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor); err != nil {
		return nil, 0, err
	}

	users, total, err := s.repo.User.List(ctx, repository.UserFilter{
		Role:       model.Role(req.Role),
		ActiveOnly: req.ActiveOnly,
		Keyword:    req.Keyword,
	}, repository.Page{Offset: req.GetOffset(), Limit: req.GetPageSize()})
	if err != nil {
		s.logger.Error("list users", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, callerID, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if err := requireSelfOr(actor, id, model.RoleAdmin); err != nil {
		return nil, err
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("update user", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── AssignRole ──────────────────────

func (s *userService) AssignRole(ctx context.Context, callerID, id string, req *dto.AssignRoleRequest) (*dto.UserResponse, error) {
	actor, err := authorize(ctx, s.repo, callerID, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if actor.UserID == id {
		return nil, ErrCannotChangeSelf
	}

	role := model.Role(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	// admin tiers are granted and revoked by super admins only
	if role.AtLeast(model.RoleAdmin) || user.Role.AtLeast(model.RoleAdmin) {
		if err := requireRole(actor, model.RoleSuperAdmin); err != nil {
			return nil, ErrElevatedRoleGrant
		}
	}

	user.Role = role
	user.UpdatedBy = &callerID
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("assign role", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("role changed",
		zap.String("user_id", id), zap.String("role", string(role)), zap.String("by", callerID))
	return toUserResponse(user), nil
}

// ────────────────────── SetActive ──────────────────────

func (s *userService) SetActive(ctx context.Context, callerID, id string, active bool) error {
	actor, err := authorize(ctx, s.repo, callerID, model.RoleAdmin)
	if err != nil {
		return err
	}
	if actor.UserID == id {
		return ErrCannotChangeSelf
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if user.Role.AtLeast(model.RoleAdmin) {
		if err := requireRole(actor, model.RoleSuperAdmin); err != nil {
			return ErrElevatedRoleGrant
		}
	}

	user.IsActive = active
	user.UpdatedBy = &callerID
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("set active", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── helpers ──

func (s *userService) load(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func toUserResponse(u *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: dto.FormatTime(u.CreatedAt),
	}
}
