package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/model"
	"marina-guard/backend/pkg/mq"
)

var incidentTestNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func setupTestIncidentService() (IncidentService, *testRepos, *mockNotifier) {
	repos := newTestRepos()
	repos.addUser("sup", model.RoleSupervisor)
	repos.addUser("g1", model.RoleGuard)
	repos.addUser("g2", model.RoleGuard)
	repos.addLocation("l1")
	notifier := &mockNotifier{}
	loc, _ := time.LoadLocation("America/New_York")
	svc := NewIncidentService(repos.repo, loc, notifier, zap.NewNop())
	svc.(*incidentService).now = func() time.Time { return incidentTestNow }
	return svc, repos, notifier
}

func validIncidentRequest() *dto.CreateIncidentRequest {
	return &dto.CreateIncidentRequest{
		LocationID:  "l1",
		OccurredAt:  incidentTestNow.Add(-2 * time.Hour),
		Severity:    "HIGH",
		Title:       "  Gate left open  ",
		Description: "North gate found unlocked during rounds.",
	}
}

func fileTestIncident(t *testing.T, svc IncidentService, callerID string) *dto.IncidentResponse {
	t.Helper()
	r, err := svc.Create(context.Background(), callerID, validIncidentRequest())
	if err != nil {
		t.Fatalf("create incident failed: %v", err)
	}
	return r
}

// ════════════════════════════════════════════════════════════
//  Create
// ════════════════════════════════════════════════════════════

func TestIncidentCreate_Success(t *testing.T) {
	svc, repos, notifier := setupTestIncidentService()
	loc := "l1"
	repos.sessions.sessions["s-open"] = &model.DutySession{
		DutySessionID: "s-open", UserID: "g1", LocationID: &loc, ClockInTime: incidentTestNow.Add(-4 * time.Hour),
	}

	r := fileTestIncident(t, svc, "g1")
	if r.Title != "Gate left open" {
		t.Errorf("expected trimmed title, got %q", r.Title)
	}
	if r.DutySessionID == nil || *r.DutySessionID != "s-open" {
		t.Errorf("expected link to the open session, got %v", r.DutySessionID)
	}
	if r.LocationName != "Dock l1" || r.ReporterName != "User g1" {
		t.Errorf("unexpected names %q / %q", r.LocationName, r.ReporterName)
	}

	types := notifier.types()
	if len(types) != 1 || types[0] != mq.EventIncidentFiled {
		t.Fatalf("expected incident.filed event, got %v", types)
	}
	ev := notifier.events[0]
	if len(ev.To) != 1 || ev.To[0] != "sup@marina.test" {
		t.Errorf("expected supervisors as recipients, got %v", ev.To)
	}
	if ev.Data["severity"] != "HIGH" {
		t.Errorf("unexpected event data %v", ev.Data)
	}
}

func TestIncidentCreate_Validation(t *testing.T) {
	svc, _, notifier := setupTestIncidentService()
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(r *dto.CreateIncidentRequest)
		wantErr error
	}{
		{"future", func(r *dto.CreateIncidentRequest) { r.OccurredAt = incidentTestNow.Add(time.Hour) }, ErrIncidentInFuture},
		{"bad severity", func(r *dto.CreateIncidentRequest) { r.Severity = "EXTREME" }, ErrIncidentBadSeverity},
		{"unknown location", func(r *dto.CreateIncidentRequest) { r.LocationID = "nope" }, ErrLocationNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validIncidentRequest()
			tt.mutate(req)
			if _, err := svc.Create(ctx, "g1", req); err != tt.wantErr {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	// small clock skew is tolerated
	req := validIncidentRequest()
	req.OccurredAt = incidentTestNow.Add(2 * time.Minute)
	if _, err := svc.Create(ctx, "g1", req); err != nil {
		t.Errorf("expected skew within tolerance to pass, got %v", err)
	}
	if len(notifier.types()) != 1 {
		t.Errorf("expected a single event, got %v", notifier.types())
	}
}

// ════════════════════════════════════════════════════════════
//  Sign
// ════════════════════════════════════════════════════════════

func TestIncidentSign(t *testing.T) {
	svc, _, _ := setupTestIncidentService()
	ctx := context.Background()
	r := fileTestIncident(t, svc, "g1")

	if _, err := svc.Sign(ctx, "g1", r.ID, &dto.SignIncidentRequest{SignatureName: "Dana"}); err != ErrForbidden {
		t.Errorf("expected ErrForbidden for a guard, got %v", err)
	}

	signed, err := svc.Sign(ctx, "sup", r.ID, &dto.SignIncidentRequest{SignatureName: " Sam Ortiz "})
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if signed.SignatureName != "Sam Ortiz" || signed.SignedAt == nil || signed.SignedBy == nil || *signed.SignedBy != "sup" {
		t.Errorf("unexpected signed report %+v", signed)
	}

	if _, err := svc.Sign(ctx, "sup", r.ID, &dto.SignIncidentRequest{SignatureName: "Again"}); err != ErrIncidentSigned {
		t.Errorf("expected ErrIncidentSigned, got %v", err)
	}
	if _, err := svc.Sign(ctx, "sup", "missing", &dto.SignIncidentRequest{SignatureName: "X"}); err != ErrIncidentNotFound {
		t.Errorf("expected ErrIncidentNotFound, got %v", err)
	}
}

// ════════════════════════════════════════════════════════════
//  Visibility
// ════════════════════════════════════════════════════════════

func TestIncidentVisibility(t *testing.T) {
	svc, _, _ := setupTestIncidentService()
	ctx := context.Background()
	mine := fileTestIncident(t, svc, "g1")
	fileTestIncident(t, svc, "g2")

	if _, err := svc.GetByID(ctx, "g2", mine.ID); err != ErrForbidden {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.GetByID(ctx, "sup", mine.ID); err != nil {
		t.Errorf("supervisor should read any report, got %v", err)
	}

	list, total, err := svc.List(ctx, "g1", &dto.IncidentListRequest{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || list[0].ID != mine.ID {
		t.Errorf("guard should only see own reports, got %d", total)
	}
	_, total, _ = svc.List(ctx, "sup", &dto.IncidentListRequest{Unsigned: true})
	if total != 2 {
		t.Errorf("expected 2 unsigned reports, got %d", total)
	}
	if _, _, err := svc.List(ctx, "sup", &dto.IncidentListRequest{From: "June 1"}); err != ErrIncidentBadDate {
		t.Errorf("expected ErrIncidentBadDate, got %v", err)
	}
}

// ════════════════════════════════════════════════════════════
//  PDF
// ════════════════════════════════════════════════════════════

func TestIncidentPDF(t *testing.T) {
	svc, _, _ := setupTestIncidentService()
	ctx := context.Background()
	r := fileTestIncident(t, svc, "g1")

	file, err := svc.PDF(ctx, "g1", r.ID)
	if err != nil {
		t.Fatalf("pdf failed: %v", err)
	}
	if !bytes.HasPrefix(file.Data.Bytes(), []byte("%PDF")) {
		t.Error("expected a PDF document")
	}
	if file.Filename != "incident_2026-06-01.pdf" || file.ContentType != ContentTypePDF {
		t.Errorf("unexpected file %s (%s)", file.Filename, file.ContentType)
	}
	if _, err := svc.PDF(ctx, "g2", r.ID); err != ErrForbidden {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}
