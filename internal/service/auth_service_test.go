package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"marina-guard/backend/config"
	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/model"
	pkgerrors "marina-guard/backend/pkg/errors"
	"marina-guard/backend/pkg/jwt"
)

func setupTestAuthService() (AuthService, *testRepos, *mockCache, *jwt.Manager) {
	repos := newTestRepos()
	cache := newMockCache()
	jwtMgr := jwt.NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-tests",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	svc := NewAuthService(repos.repo, jwtMgr, cache, zap.NewNop())
	return svc, repos, cache, jwtMgr
}

func createTestUser(repos *testRepos, id, email, password string, role model.Role) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := repos.addUser(id, role)
	u.Email = email
	u.PasswordHash = string(hash)
	return u
}

// ════════════════════════════════════════════════════════════
// Login
// ════════════════════════════════════════════════════════════

func TestLogin_Success(t *testing.T) {
	svc, repos, _, _ := setupTestAuthService()
	createTestUser(repos, "u-1", "guard@marina.test", "password123", model.RoleGuard)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "guard@marina.test", Password: "password123"})
	if err != nil {
		t.Fatalf("expected login to succeed, got: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if resp.ExpiresIn != 900 {
		t.Errorf("expected expires_in=900, got %d", resp.ExpiresIn)
	}
	if resp.User.Role != string(model.RoleGuard) {
		t.Errorf("expected role GUARD, got %s", resp.User.Role)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, repos, _, _ := setupTestAuthService()
	createTestUser(repos, "u-1", "guard@marina.test", "password123", model.RoleGuard)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "guard@marina.test", Password: "nope"})
	if err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "ghost@marina.test", Password: "x"})
	if err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestLogin_InactiveUser(t *testing.T) {
	svc, repos, _, _ := setupTestAuthService()
	u := createTestUser(repos, "u-1", "guard@marina.test", "password123", model.RoleGuard)
	u.IsActive = false

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "guard@marina.test", Password: "password123"})
	if err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for a deactivated account, got: %v", err)
	}
}

// ════════════════════════════════════════════════════════════
// Refresh / Logout
// ════════════════════════════════════════════════════════════

func TestRefresh_RotatesAndRevokes(t *testing.T) {
	svc, repos, cache, jwtMgr := setupTestAuthService()
	createTestUser(repos, "u-1", "guard@marina.test", "password123", model.RoleGuard)
	ctx := context.Background()

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "guard@marina.test", Password: "password123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("expected refresh to succeed, got: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("expected a new refresh token")
	}

	old, _ := jwtMgr.ParseToken(login.RefreshToken)
	if revoked, _ := cache.IsBlacklisted(ctx, old.ID); !revoked {
		t.Error("expected the presented refresh token to be blacklisted")
	}

	if _, err := svc.Refresh(ctx, login.RefreshToken); err != ErrInvalidToken {
		t.Fatalf("expected reuse to fail with ErrInvalidToken, got: %v", err)
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, repos, _, _ := setupTestAuthService()
	createTestUser(repos, "u-1", "guard@marina.test", "password123", model.RoleGuard)

	login, _ := svc.Login(context.Background(), &dto.LoginRequest{Email: "guard@marina.test", Password: "password123"})
	if _, err := svc.Refresh(context.Background(), login.AccessToken); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got: %v", err)
	}
}

func TestRefresh_DeactivatedUser(t *testing.T) {
	svc, repos, _, _ := setupTestAuthService()
	u := createTestUser(repos, "u-1", "guard@marina.test", "password123", model.RoleGuard)

	login, _ := svc.Login(context.Background(), &dto.LoginRequest{Email: "guard@marina.test", Password: "password123"})
	u.IsActive = false

	if _, err := svc.Refresh(context.Background(), login.RefreshToken); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got: %v", err)
	}
}

func TestLogout_BlacklistsBothTokens(t *testing.T) {
	svc, repos, cache, jwtMgr := setupTestAuthService()
	createTestUser(repos, "u-1", "guard@marina.test", "password123", model.RoleGuard)
	ctx := context.Background()

	login, _ := svc.Login(ctx, &dto.LoginRequest{Email: "guard@marina.test", Password: "password123"})
	access, _ := jwtMgr.ParseToken(login.AccessToken)

	if err := svc.Logout(ctx, access, login.RefreshToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if len(cache.blacklist) != 2 {
		t.Fatalf("expected 2 blacklisted ids, got %d", len(cache.blacklist))
	}
	if _, err := svc.Refresh(ctx, login.RefreshToken); err != ErrInvalidToken {
		t.Errorf("expected refresh after logout to fail, got: %v", err)
	}
}

// ════════════════════════════════════════════════════════════
// Me / ChangePassword
// ════════════════════════════════════════════════════════════

func TestMe_UnknownCaller(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	if _, err := svc.Me(context.Background(), "ghost"); err != pkgerrors.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, repos, _, _ := setupTestAuthService()
	createTestUser(repos, "u-1", "guard@marina.test", "password123", model.RoleGuard)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, "u-1", &dto.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "newpassword1"})
	if err != ErrWrongPassword {
		t.Fatalf("expected ErrWrongPassword, got: %v", err)
	}

	err = svc.ChangePassword(ctx, "u-1", &dto.ChangePasswordRequest{OldPassword: "password123", NewPassword: "newpassword1"})
	if err != nil {
		t.Fatalf("expected change to succeed, got: %v", err)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "guard@marina.test", Password: "newpassword1"}); err != nil {
		t.Errorf("expected login with the new password, got: %v", err)
	}
}
