package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/model"
	"marina-guard/backend/internal/repository"
	pkgerrors "marina-guard/backend/pkg/errors"
	"marina-guard/backend/pkg/jwt"
)

// ── Auth errors ──

var (
	ErrInvalidCredentials = pkgerrors.Unauthorized("Incorrect email or password")
	ErrInvalidToken       = pkgerrors.Unauthorized("Session expired, please sign in again")
	ErrWrongPassword      = pkgerrors.Validation(10004, "Current password is incorrect")
)

// AuthService authentication
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, access *jwt.Claims, refreshToken string) error
	Me(ctx context.Context, callerID string) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, callerID string, req *dto.ChangePasswordRequest) error
}

type authService struct {
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates an AuthService
func NewAuthService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger.Named("auth"),
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. look up the user
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("load user", zap.Error(err))
		return nil, err
	}

	// 2. deactivated accounts look like bad credentials
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	// 3. bcrypt
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 4. token pair
	return s.issue(user)
}

// ────────────────────── Refresh ──────────────────────

// Refresh rotates the pair; the presented refresh token is revoked
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenRefresh {
		return nil, ErrInvalidToken
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error("check blacklist", zap.Error(err))
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	user, err := resolveActor(ctx, s.repo, claims.UserID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrUnauthorized) {
			return nil, ErrInvalidToken
		}
		s.logger.Error("load user", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, err
	}

	if err := s.blacklist.BlacklistToken(ctx, claims.ID, claims.Remaining()); err != nil {
		s.logger.Error("revoke refresh token", zap.Error(err))
		return nil, err
	}

	return s.issue(user)
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, access *jwt.Claims, refreshToken string) error {
	if access != nil {
		if err := s.blacklist.BlacklistToken(ctx, access.ID, access.Remaining()); err != nil {
			s.logger.Error("revoke access token", zap.Error(err))
			return err
		}
	}
	if refreshToken == "" {
		return nil
	}
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil {
		return nil // already unusable
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, claims.Remaining()); err != nil {
		s.logger.Error("revoke refresh token", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Me ──────────────────────

func (s *authService) Me(ctx context.Context, callerID string) (*dto.UserResponse, error) {
	user, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── ChangePassword ──────────────────────

func (s *authService) ChangePassword(ctx context.Context, callerID string, req *dto.ChangePasswordRequest) error {
	user, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password", zap.Error(err))
		return err
	}

	user.PasswordHash = string(hash)
	user.UpdatedBy = &callerID
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("update password", zap.String("user_id", callerID), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) issue(user *model.User) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, string(user.Role))
	if err != nil {
		s.logger.Error("sign access token", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, string(user.Role))
	if err != nil {
		s.logger.Error("sign refresh token", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         *toUserResponse(user),
	}, nil
}
