package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/model"
	"marina-guard/backend/internal/repository"
	"marina-guard/backend/internal/worktime"
	pkgerrors "marina-guard/backend/pkg/errors"
)

// ── Export errors ──

var (
	ErrExportGenerateFail = pkgerrors.New(pkgerrors.KindInternal, 16101, "Failed to generate the export file")
)

const (
	// exportDateLayout US locale short date
	exportDateLayout = "1/2/2006"
	exportMaxRows    = 10000

	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

var exportHeader = []string{"Employee", "Week Start", "Week End", "Total Hours", "Entries", "Status", "Submitted"}

// ExportFile a rendered download
type ExportFile struct {
	Data        *bytes.Buffer
	Filename    string
	ContentType string
}

// ExportService timesheet downloads
type ExportService interface {
	// ExportTimesheets listing as CSV (default) or xlsx
	ExportTimesheets(ctx context.Context, callerID string, req *dto.TimesheetExportRequest) (*ExportFile, error)
	// TimesheetPDF printable single timesheet with its entries
	TimesheetPDF(ctx context.Context, callerID, id string) (*ExportFile, error)
}

type exportService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService creates an ExportService
func NewExportService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, loc: loc, logger: logger.Named("export"), now: time.Now}
}

// ════════════════════════════════════════════════════════════
// ExportTimesheets
// ════════════════════════════════════════════════════════════
//
// One row per timesheet:
//   Employee | Week Start | Week End | Total Hours | Entries | Status | Submitted
// Dates are local short dates; Submitted is empty until submitted.

func (s *exportService) ExportTimesheets(ctx context.Context, callerID string, req *dto.TimesheetExportRequest) (*ExportFile, error) {
	if _, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor); err != nil {
		return nil, err
	}

	// 1. filters
	filter := repository.TimesheetFilter{
		UserID: req.UserID,
		Status: model.TimesheetStatus(req.Status),
	}
	if req.WeekFrom != "" {
		d, err := worktime.ParseDate(req.WeekFrom, s.loc)
		if err != nil {
			return nil, ErrTimesheetInvalidDate
		}
		filter.WeekFrom, _ = worktime.WeekBounds(d)
	}
	if req.WeekTo != "" {
		d, err := worktime.ParseDate(req.WeekTo, s.loc)
		if err != nil {
			return nil, ErrTimesheetInvalidDate
		}
		filter.WeekTo, _ = worktime.WeekBounds(d)
	}

	// 2. rows
	list, _, err := s.repo.Timesheet.List(ctx, filter, repository.Page{Limit: exportMaxRows})
	if err != nil {
		s.logger.Error("list timesheets", zap.Error(err))
		return nil, err
	}
	rows := make([][]string, 0, len(list))
	for i := range list {
		rows = append(rows, s.exportRow(&list[i]))
	}

	// 3. render
	stamp := s.now().In(s.loc).Format("20060102")
	if req.Format == "xlsx" {
		buf, err := s.renderXLSX(rows)
		if err != nil {
			return nil, err
		}
		return &ExportFile{Data: buf, Filename: "timesheets_" + stamp + ".xlsx", ContentType: ContentTypeXLSX}, nil
	}

	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		s.logger.Error("write csv", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return &ExportFile{Data: buf, Filename: "timesheets_" + stamp + ".csv", ContentType: ContentTypeCSV}, nil
}

func (s *exportService) exportRow(ts *model.Timesheet) []string {
	employee := ts.UserID
	if ts.User != nil {
		employee = ts.User.Name
	}
	submitted := ""
	if ts.SubmittedAt != nil {
		submitted = ts.SubmittedAt.In(s.loc).Format(exportDateLayout)
	}
	return []string{
		employee,
		ts.WeekStart.In(s.loc).Format(exportDateLayout),
		ts.WeekEnd.In(s.loc).Format(exportDateLayout),
		fmt.Sprintf("%.2f", ts.TotalHours),
		fmt.Sprintf("%d", ts.TotalEntries),
		string(ts.Status),
		submitted,
	}
}

func (s *exportService) renderXLSX(rows [][]string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Timesheets"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 24)
	f.SetColWidth(sheetName, "B", "G", 14)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F4E79"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range exportHeader {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(exportHeader)-1), 1), headerStyle)

	for r, row := range rows {
		for c, v := range row {
			f.SetCellValue(sheetName, cell(colName(c), r+2), v)
		}
	}
	f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write xlsx", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return buf, nil
}

// ────────────────────── TimesheetPDF ──────────────────────

func (s *exportService) TimesheetPDF(ctx context.Context, callerID, id string) (*ExportFile, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	ts, err := s.repo.Timesheet.GetDetail(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTimesheetNotFound
		}
		s.logger.Error("load timesheet", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if err := requireSelfOr(actor, ts.UserID, model.RoleSupervisor); err != nil {
		return nil, err
	}

	employee := ts.UserID
	if ts.User != nil {
		employee = ts.User.Name
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Timesheet "+employee, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Weekly Timesheet", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, "Employee: "+employee, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Week: %s - %s",
		ts.WeekStart.In(s.loc).Format(exportDateLayout),
		ts.WeekEnd.In(s.loc).Format(exportDateLayout)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Status: "+string(ts.Status), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := []float64{40, 40, 40, 25, 35}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(220, 230, 241)
	for i, h := range []string{"Date", "Clock In", "Clock Out", "Hours", "Notes"} {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, e := range ts.Entries {
		in, out := e.ClockInTime.In(s.loc), e.ClockOutTime.In(s.loc)
		flag := ""
		switch {
		case e.WasManuallyAdded:
			flag = "manual"
		case e.WasAdjusted:
			flag = "adjusted"
		}
		pdf.CellFormat(widths[0], 7, in.Format("Mon 1/2/2006"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, in.Format("3:04 PM"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 7, out.Format("1/2 3:04 PM"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprintf("%.2f", e.HoursWorked), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, flag, "1", 1, "C", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 8, fmt.Sprintf("%.2f", ts.TotalHours), "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[4], 8, "", "1", 1, "C", false, 0, "")

	if ts.Status == model.TimesheetRejected && ts.RejectionReason != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, "Rejected: "+ts.RejectionReason, "", "L", false)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		s.logger.Error("render timesheet pdf", zap.String("id", id), zap.Error(err))
		return nil, ErrExportGenerateFail
	}

	filename := fmt.Sprintf("timesheet_%s.pdf", ts.WeekStart.In(s.loc).Format("2006-01-02"))
	return &ExportFile{Data: buf, Filename: filename, ContentType: ContentTypePDF}, nil
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
