package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"marina-guard/backend/config"
	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/model"
	pkgerrors "marina-guard/backend/pkg/errors"
	"marina-guard/backend/pkg/redis"
)

func setupTestPatternService() (PatternService, *testRepos, *mockCache) {
	repos := newTestRepos()
	repos.addUser("sup", model.RoleSupervisor)
	repos.addUser("g1", model.RoleGuard)
	repos.addUser("g2", model.RoleGuard)
	repos.addLocation("l1")
	cache := newMockCache()
	cfg := &config.ScheduleConfig{Timezone: "America/New_York", GenerationDays: 14}
	return NewPatternService(repos.repo, cfg, cache, zap.NewNop()), repos, cache
}

func validPatternRequest() *dto.CreatePatternRequest {
	return &dto.CreatePatternRequest{
		Name:       "Weekday nights",
		LocationID: "l1",
		StartTime:  "22:00",
		EndTime:    "06:00",
		DaysOfWeek: []int{1, 3},
		StartDate:  "2026-01-01",
		Assignments: []dto.PatternAssignmentInput{
			{UserID: "g1", Role: "PRIMARY"},
			{UserID: "g2", Role: "BACKUP"},
		},
	}
}

// ════════════════════════════════════════════════════════════
// Create validation
// ════════════════════════════════════════════════════════════

func TestPatternCreate_Success(t *testing.T) {
	svc, _, _ := setupTestPatternService()

	resp, err := svc.Create(context.Background(), "sup", validPatternRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !resp.Overnight {
		t.Error("expected 22:00-06:00 to be reported as overnight")
	}
	if len(resp.Assignments) != 2 {
		t.Errorf("expected 2 assignments, got %d", len(resp.Assignments))
	}
	if resp.Version != 1 {
		t.Errorf("expected version 1, got %d", resp.Version)
	}
}

func TestPatternCreate_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *dto.CreatePatternRequest)
		expectErr error
	}{
		{"zero length", func(r *dto.CreatePatternRequest) { r.EndTime = r.StartTime }, ErrPatternZeroLength},
		{"bad clock", func(r *dto.CreatePatternRequest) { r.StartTime = "24:00" }, ErrPatternBadTime},
		{"empty days", func(r *dto.CreatePatternRequest) { r.DaysOfWeek = nil }, ErrPatternBadDays},
		{"repeated day", func(r *dto.CreatePatternRequest) { r.DaysOfWeek = []int{2, 2} }, ErrPatternBadDays},
		{"day out of range", func(r *dto.CreatePatternRequest) { r.DaysOfWeek = []int{7} }, ErrPatternBadDays},
		{"end before start", func(r *dto.CreatePatternRequest) { r.EndDate = "2025-12-31" }, ErrPatternDateRange},
		{"unknown assignee", func(r *dto.CreatePatternRequest) { r.Assignments[0].UserID = "ghost" }, ErrPatternAssignee},
		{"duplicate assignee", func(r *dto.CreatePatternRequest) { r.Assignments[1].UserID = "g1" }, ErrPatternDupAssignee},
		{"two primaries", func(r *dto.CreatePatternRequest) { r.Assignments[1].Role = "PRIMARY" }, ErrPatternPrimaryCount},
		{"unknown location", func(r *dto.CreatePatternRequest) { r.LocationID = "nowhere" }, ErrLocationNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := setupTestPatternService()
			req := validPatternRequest()
			tt.mutate(req)
			if _, err := svc.Create(context.Background(), "sup", req); err != tt.expectErr {
				t.Errorf("expected %v, got %v", tt.expectErr, err)
			}
		})
	}
}

func TestPatternCreate_GuardForbidden(t *testing.T) {
	svc, _, _ := setupTestPatternService()

	if _, err := svc.Create(context.Background(), "g1", validPatternRequest()); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

// ════════════════════════════════════════════════════════════
// Update
// ════════════════════════════════════════════════════════════

func TestPatternUpdate_StaleVersion(t *testing.T) {
	svc, _, _ := setupTestPatternService()
	ctx := context.Background()
	created, _ := svc.Create(ctx, "sup", validPatternRequest())

	name := "Renamed"
	if _, err := svc.Update(ctx, "sup", created.ID, &dto.UpdatePatternRequest{Name: &name, Version: 1}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	_, err := svc.Update(ctx, "sup", created.ID, &dto.UpdatePatternRequest{Name: &name, Version: 1})
	if err != pkgerrors.ErrOptimisticLock {
		t.Fatalf("expected ErrOptimisticLock, got %v", err)
	}
}

func TestPatternUpdate_ReplacesAssignments(t *testing.T) {
	svc, _, _ := setupTestPatternService()
	ctx := context.Background()
	created, _ := svc.Create(ctx, "sup", validPatternRequest())

	only := []dto.PatternAssignmentInput{{UserID: "g2", Role: "PRIMARY"}}
	resp, err := svc.Update(ctx, "sup", created.ID, &dto.UpdatePatternRequest{Assignments: &only, Version: created.Version})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(resp.Assignments) != 1 || resp.Assignments[0].UserID != "g2" {
		t.Errorf("expected assignments to be replaced, got %+v", resp.Assignments)
	}
}

func TestPatternUpdate_MergedWindowRevalidated(t *testing.T) {
	svc, _, _ := setupTestPatternService()
	ctx := context.Background()
	created, _ := svc.Create(ctx, "sup", validPatternRequest())

	end := "22:00"
	_, err := svc.Update(ctx, "sup", created.ID, &dto.UpdatePatternRequest{EndTime: &end, Version: created.Version})
	if err != ErrPatternZeroLength {
		t.Fatalf("expected ErrPatternZeroLength, got %v", err)
	}
}

// ════════════════════════════════════════════════════════════
// GenerateShifts
// ════════════════════════════════════════════════════════════

func TestGenerateShifts_Idempotent(t *testing.T) {
	svc, repos, _ := setupTestPatternService()
	ctx := context.Background()
	if _, err := svc.Create(ctx, "sup", validPatternRequest()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// 2026-06-01 is a Monday: the window covers one Monday and one Wednesday
	req := &dto.GenerateShiftsRequest{From: "2026-06-01", Days: 7}
	first, err := svc.GenerateShifts(ctx, "sup", req)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if first.Created != 2 || first.Skipped != 0 {
		t.Fatalf("expected 2 created and 0 skipped, got %+v", first)
	}
	if first.From != "2026-06-01" || first.To != "2026-06-07" {
		t.Errorf("unexpected window %s..%s", first.From, first.To)
	}

	second, err := svc.GenerateShifts(ctx, "sup", req)
	if err != nil {
		t.Fatalf("second generate failed: %v", err)
	}
	if second.Created != 0 || second.Skipped != 2 {
		t.Fatalf("expected rerun to skip everything, got %+v", second)
	}
	if len(repos.shifts.shifts) != 2 {
		t.Errorf("expected 2 stored shifts, got %d", len(repos.shifts.shifts))
	}
}

func TestGenerateShifts_OvernightAndAssignments(t *testing.T) {
	svc, repos, _ := setupTestPatternService()
	ctx := context.Background()
	svc.Create(ctx, "sup", validPatternRequest())

	if _, err := svc.GenerateShifts(ctx, "sup", &dto.GenerateShiftsRequest{From: "2026-06-01", Days: 1}); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	ny, _ := time.LoadLocation("America/New_York")
	for _, sh := range repos.shifts.shifts {
		if !sh.StartTime.Equal(time.Date(2026, 6, 1, 22, 0, 0, 0, ny)) {
			t.Errorf("unexpected start %s", sh.StartTime)
		}
		if !sh.EndTime.Equal(time.Date(2026, 6, 2, 6, 0, 0, 0, ny)) {
			t.Errorf("expected the shift to end the next morning, got %s", sh.EndTime)
		}
		if len(sh.Assignments) != 2 {
			t.Errorf("expected pattern assignments to be copied, got %d", len(sh.Assignments))
		}
		if sh.CreatedBy == nil || *sh.CreatedBy != "sup" {
			t.Error("expected created_by to be the caller")
		}
	}
}

func TestGenerateShifts_InactivePatternIgnored(t *testing.T) {
	svc, repos, _ := setupTestPatternService()
	ctx := context.Background()
	created, _ := svc.Create(ctx, "sup", validPatternRequest())
	repos.patterns.patterns[created.ID].IsActive = false

	resp, err := svc.GenerateShifts(ctx, "sup", &dto.GenerateShiftsRequest{From: "2026-06-01", Days: 7})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if resp.Created != 0 {
		t.Errorf("expected nothing from an inactive pattern, got %d", resp.Created)
	}
}

func TestGenerateShifts_LockHeld(t *testing.T) {
	svc, _, cache := setupTestPatternService()
	cache.lockErr = redis.ErrLockHeld

	_, err := svc.GenerateShifts(context.Background(), "sup", &dto.GenerateShiftsRequest{Days: 7})
	if err != ErrGenerationRunning {
		t.Fatalf("expected ErrGenerationRunning, got %v", err)
	}
}

func TestGenerateShifts_Window(t *testing.T) {
	svc, _, _ := setupTestPatternService()

	_, err := svc.GenerateShifts(context.Background(), "sup", &dto.GenerateShiftsRequest{Days: 91})
	if err != ErrGenerationWindow {
		t.Fatalf("expected ErrGenerationWindow, got %v", err)
	}
}
