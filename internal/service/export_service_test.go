package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/model"
)

func setupTestExportService() (ExportService, *testRepos) {
	repos := newTestRepos()
	repos.addUser("sup", model.RoleSupervisor)
	g1 := repos.addUser("g1", model.RoleGuard)
	g1.Name = "Reyes, Dana"
	repos.addUser("g2", model.RoleGuard)

	submitted := time.Date(2026, 6, 7, 10, 0, 0, 0, time.UTC)
	repos.timesheets.timesheets["ts-a"] = &model.Timesheet{
		TimesheetID:  "ts-a",
		UserID:       "g1",
		WeekStart:    time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
		WeekEnd:      time.Date(2026, 6, 6, 23, 59, 59, 0, time.UTC),
		TotalHours:   12.08,
		TotalEntries: 2,
		Status:       model.TimesheetPending,
		SubmittedAt:  &submitted,
	}
	repos.timesheets.timesheets["ts-b"] = &model.Timesheet{
		TimesheetID:  "ts-b",
		UserID:       "g2",
		WeekStart:    time.Date(2026, 5, 24, 0, 0, 0, 0, time.UTC),
		WeekEnd:      time.Date(2026, 5, 30, 23, 59, 59, 0, time.UTC),
		TotalHours:   8,
		TotalEntries: 1,
		Status:       model.TimesheetDraft,
	}
	svc := NewExportService(repos.repo, time.UTC, zap.NewNop())
	svc.(*exportService).now = func() time.Time { return time.Date(2026, 6, 8, 9, 30, 0, 0, time.UTC) }
	return svc, repos
}

func TestExportTimesheets_CSV(t *testing.T) {
	svc, _ := setupTestExportService()

	file, err := svc.ExportTimesheets(context.Background(), "sup", &dto.TimesheetExportRequest{})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if file.ContentType != ContentTypeCSV || file.Filename != "timesheets_20260608.csv" {
		t.Errorf("unexpected file %s (%s)", file.Filename, file.ContentType)
	}

	records, err := csv.NewReader(bytes.NewReader(file.Data.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != "Employee,Week Start,Week End,Total Hours,Entries,Status,Submitted" {
		t.Errorf("unexpected header %v", records[0])
	}

	// newest week first
	want := []string{"Reyes, Dana", "5/31/2026", "6/6/2026", "12.08", "2", "PENDING", "6/7/2026"}
	if strings.Join(records[1], "|") != strings.Join(want, "|") {
		t.Errorf("expected %v, got %v", want, records[1])
	}
	if records[2][6] != "" {
		t.Errorf("expected empty submitted column for a draft, got %q", records[2][6])
	}
	if !strings.Contains(file.Data.String(), `"Reyes, Dana"`) {
		t.Error("expected a name containing a comma to be quoted")
	}
}

func TestExportTimesheets_StampInRosterZone(t *testing.T) {
	repos := newTestRepos()
	repos.addUser("sup", model.RoleSupervisor)
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	svc := NewExportService(repos.repo, ny, zap.NewNop())
	// 02:00 UTC on the 9th is still the 8th on the marina's clock
	svc.(*exportService).now = func() time.Time { return time.Date(2026, 6, 9, 2, 0, 0, 0, time.UTC) }

	file, err := svc.ExportTimesheets(context.Background(), "sup", &dto.TimesheetExportRequest{})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if file.Filename != "timesheets_20260608.csv" {
		t.Errorf("unexpected filename %s", file.Filename)
	}
}

func TestExportTimesheets_FilterAndXLSX(t *testing.T) {
	svc, _ := setupTestExportService()

	file, err := svc.ExportTimesheets(context.Background(), "sup", &dto.TimesheetExportRequest{
		Status: "DRAFT",
		Format: "xlsx",
	})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if file.ContentType != ContentTypeXLSX {
		t.Errorf("unexpected content type %s", file.ContentType)
	}
	if file.Filename != "timesheets_20260608.xlsx" {
		t.Errorf("unexpected filename %s", file.Filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(file.Data.Bytes()))
	if err != nil {
		t.Fatalf("output is not a workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Timesheets")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 draft row, got %d", len(rows))
	}
	if rows[1][0] != "User g2" || rows[1][5] != "DRAFT" {
		t.Errorf("unexpected row %v", rows[1])
	}
}

func TestExportTimesheets_GuardForbidden(t *testing.T) {
	svc, _ := setupTestExportService()

	if _, err := svc.ExportTimesheets(context.Background(), "g1", &dto.TimesheetExportRequest{}); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestTimesheetPDF(t *testing.T) {
	svc, _ := setupTestExportService()
	ctx := context.Background()

	file, err := svc.TimesheetPDF(ctx, "g1", "ts-a")
	if err != nil {
		t.Fatalf("pdf failed: %v", err)
	}
	if !bytes.HasPrefix(file.Data.Bytes(), []byte("%PDF")) {
		t.Error("expected PDF output")
	}
	if file.Filename != "timesheet_2026-05-31.pdf" {
		t.Errorf("unexpected filename %s", file.Filename)
	}

	if _, err := svc.TimesheetPDF(ctx, "g2", "ts-a"); err != ErrForbidden {
		t.Errorf("expected ErrForbidden for another guard, got %v", err)
	}
	if _, err := svc.TimesheetPDF(ctx, "sup", "missing"); err != ErrTimesheetNotFound {
		t.Errorf("expected ErrTimesheetNotFound, got %v", err)
	}
}
