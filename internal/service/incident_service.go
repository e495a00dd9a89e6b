package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf/v2"
	"go.uber.org/zap"

	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/model"
	"marina-guard/backend/internal/repository"
	"marina-guard/backend/internal/worktime"
	pkgerrors "marina-guard/backend/pkg/errors"
	"marina-guard/backend/pkg/mq"
)

// ── Incident errors ──

var (
	ErrIncidentNotFound    = pkgerrors.NotFound(18001, "Incident report not found")
	ErrIncidentSigned      = pkgerrors.Conflict(18002, "Incident report is already signed")
	ErrIncidentInFuture    = pkgerrors.Validation(18003, "Occurred-at cannot be in the future")
	ErrIncidentBadDate     = pkgerrors.Validation(18004, "Dates must be YYYY-MM-DD")
	ErrIncidentBadSeverity = pkgerrors.Validation(18005, "Severity must be LOW, MEDIUM or HIGH")
)

// clock skew tolerated on OccurredAt
const incidentClockSkew = 5 * time.Minute

// IncidentService incident reports
type IncidentService interface {
	Create(ctx context.Context, callerID string, req *dto.CreateIncidentRequest) (*dto.IncidentResponse, error)
	GetByID(ctx context.Context, callerID, id string) (*dto.IncidentResponse, error)
	List(ctx context.Context, callerID string, req *dto.IncidentListRequest) ([]dto.IncidentResponse, int64, error)
	Sign(ctx context.Context, callerID, id string, req *dto.SignIncidentRequest) (*dto.IncidentResponse, error)
	PDF(ctx context.Context, callerID, id string) (*ExportFile, error)
}

type incidentService struct {
	repo     *repository.Repository
	loc      *time.Location
	notifier mq.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewIncidentService creates an IncidentService
func NewIncidentService(
	repo *repository.Repository,
	loc *time.Location,
	notifier mq.Notifier,
	logger *zap.Logger,
) IncidentService {
	return &incidentService{
		repo:     repo,
		loc:      loc,
		notifier: notifier,
		logger:   logger.Named("incident"),
		now:      time.Now,
	}
}

// ────────────────────── Create ──────────────────────

func (s *incidentService) Create(ctx context.Context, callerID string, req *dto.CreateIncidentRequest) (*dto.IncidentResponse, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	severity := model.IncidentSeverity(req.Severity)
	if !severity.Valid() {
		return nil, ErrIncidentBadSeverity
	}
	if req.OccurredAt.After(s.now().Add(incidentClockSkew)) {
		return nil, ErrIncidentInFuture
	}
	loc, err := s.repo.Location.GetByID(ctx, req.LocationID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrLocationNotFound
		}
		s.logger.Error("load location", zap.String("location_id", req.LocationID), zap.Error(err))
		return nil, err
	}

	report := &model.IncidentReport{
		ReportedBy:   actor.UserID,
		LocationID:   loc.LocationID,
		OccurredAt:   req.OccurredAt.UTC(),
		Severity:     severity,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		ActionsTaken: req.ActionsTaken,
	}
	report.CreatedBy = &callerID
	report.UpdatedBy = &callerID

	if open, err := s.repo.DutySession.GetOpenByUser(ctx, actor.UserID); err == nil {
		report.DutySessionID = &open.DutySessionID
	} else if !isNotFound(err) {
		s.logger.Error("load open session", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}

	if err := s.repo.Incident.Create(ctx, report); err != nil {
		s.logger.Error("create incident", zap.Error(err))
		return nil, err
	}
	report.Reporter = actor
	report.Location = loc

	s.logger.Info("incident filed",
		zap.String("incident_id", report.IncidentID),
		zap.String("severity", string(severity)),
		zap.String("location_id", loc.LocationID),
	)
	s.notifyFiled(ctx, report)
	return toIncidentResponse(report), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *incidentService) GetByID(ctx context.Context, callerID, id string) (*dto.IncidentResponse, error) {
	report, err := s.loadVisible(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	return toIncidentResponse(report), nil
}

// ────────────────────── List ──────────────────────

func (s *incidentService) List(ctx context.Context, callerID string, req *dto.IncidentListRequest) ([]dto.IncidentResponse, int64, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, 0, err
	}

	filter := repository.IncidentFilter{
		LocationID: req.LocationID,
		Severity:   model.IncidentSeverity(req.Severity),
		Unsigned:   req.Unsigned,
	}
	if !actor.Role.AtLeast(model.RoleSupervisor) {
		filter.ReportedBy = actor.UserID
	}
	if req.From != "" {
		d, err := worktime.ParseDate(req.From, s.loc)
		if err != nil {
			return nil, 0, ErrIncidentBadDate
		}
		filter.From = d
	}
	if req.To != "" {
		d, err := worktime.ParseDate(req.To, s.loc)
		if err != nil {
			return nil, 0, ErrIncidentBadDate
		}
		filter.To = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	list, total, err := s.repo.Incident.List(ctx, filter,
		repository.Page{Offset: req.GetOffset(), Limit: req.GetPageSize()})
	if err != nil {
		s.logger.Error("list incidents", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.IncidentResponse, 0, len(list))
	for i := range list {
		result = append(result, *toIncidentResponse(&list[i]))
	}
	return result, total, nil
}

// ────────────────────── Sign ──────────────────────

// Sign a supervisor's typed signature; a report is signed exactly once
func (s *incidentService) Sign(ctx context.Context, callerID, id string, req *dto.SignIncidentRequest) (*dto.IncidentResponse, error) {
	actor, err := authorize(ctx, s.repo, callerID, model.RoleSupervisor)
	if err != nil {
		return nil, err
	}
	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.IsSigned() {
		return nil, ErrIncidentSigned
	}

	at := s.now().UTC()
	signed, err := s.repo.Incident.Sign(ctx, id, actor.UserID, strings.TrimSpace(req.SignatureName), at)
	if err != nil {
		s.logger.Error("sign incident", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if !signed {
		return nil, ErrIncidentSigned
	}

	report, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toIncidentResponse(report), nil
}

// ────────────────────── PDF ──────────────────────

func (s *incidentService) PDF(ctx context.Context, callerID, id string) (*ExportFile, error) {
	report, err := s.loadVisible(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	reporter, location := report.ReportedBy, report.LocationID
	if report.Reporter != nil {
		reporter = report.Reporter.Name
	}
	if report.Location != nil {
		location = report.Location.Name
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Incident report "+report.Title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Incident Report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.MultiCell(0, 7, report.Title, "", "L", false)
	pdf.Ln(2)

	field := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 7, value, "", "L", false)
	}
	field("Severity", string(report.Severity))
	field("Location", location)
	field("Occurred", report.OccurredAt.In(s.loc).Format("Mon Jan 2, 2006 3:04 PM MST"))
	field("Reported by", reporter)
	field("Filed", report.CreatedAt.In(s.loc).Format("Jan 2, 2006 3:04 PM"))
	pdf.Ln(3)

	section := func(title, body string) {
		if body == "" {
			return
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, body, "", "L", false)
		pdf.Ln(2)
	}
	section("Description", report.Description)
	section("Actions taken", report.ActionsTaken)

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 8, "Supervisor signature", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if report.IsSigned() {
		pdf.CellFormat(0, 7, fmt.Sprintf("Signed by %s on %s", report.SignatureName,
			report.SignedAt.In(s.loc).Format("Jan 2, 2006 3:04 PM")), "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(0, 7, "Not yet signed", "", 1, "L", false, 0, "")
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		s.logger.Error("render incident pdf", zap.String("id", id), zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	filename := fmt.Sprintf("incident_%s.pdf", report.OccurredAt.In(s.loc).Format("2006-01-02"))
	return &ExportFile{Data: buf, Filename: filename, ContentType: ContentTypePDF}, nil
}

// ── helpers ──

func (s *incidentService) load(ctx context.Context, id string) (*model.IncidentReport, error) {
	report, err := s.repo.Incident.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrIncidentNotFound
		}
		s.logger.Error("load incident", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return report, nil
}

// loadVisible guards see only their own reports
func (s *incidentService) loadVisible(ctx context.Context, callerID, id string) (*model.IncidentReport, error) {
	actor, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireSelfOr(actor, report.ReportedBy, model.RoleSupervisor); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *incidentService) notifyFiled(ctx context.Context, report *model.IncidentReport) {
	to, err := supervisorEmails(ctx, s.repo)
	if err != nil {
		s.logger.Warn("list supervisors", zap.Error(err))
		return
	}
	reporter, location := report.ReportedBy, report.LocationID
	if report.Reporter != nil {
		reporter = report.Reporter.Name
	}
	if report.Location != nil {
		location = report.Location.Name
	}
	publishEvent(ctx, s.notifier, s.logger, mq.Event{
		Type: mq.EventIncidentFiled,
		To:   to,
		Data: map[string]string{
			"title":       report.Title,
			"severity":    string(report.Severity),
			"location":    location,
			"reporter":    reporter,
			"occurred_at": report.OccurredAt.In(s.loc).Format("Jan 2, 2006 3:04 PM"),
		},
	})
}

func toIncidentResponse(r *model.IncidentReport) *dto.IncidentResponse {
	resp := &dto.IncidentResponse{
		ID:            r.IncidentID,
		ReportedBy:    r.ReportedBy,
		LocationID:    r.LocationID,
		DutySessionID: r.DutySessionID,
		OccurredAt:    dto.FormatTime(r.OccurredAt),
		Severity:      string(r.Severity),
		Title:         r.Title,
		Description:   r.Description,
		ActionsTaken:  r.ActionsTaken,
		SignedBy:      r.SignedBy,
		SignatureName: r.SignatureName,
		SignedAt:      dto.FormatTimePtr(r.SignedAt),
		CreatedAt:     dto.FormatTime(r.CreatedAt),
	}
	if r.Reporter != nil {
		resp.ReporterName = r.Reporter.Name
	}
	if r.Location != nil {
		resp.LocationName = r.Location.Name
	}
	return resp
}
