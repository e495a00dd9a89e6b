package handler

import "marina-guard/backend/internal/service"

// Handler aggregates every HTTP handler
type Handler struct {
	Auth      *AuthHandler
	User      *UserHandler
	Location  *LocationHandler
	Pattern   *PatternHandler
	Shift     *ShiftHandler
	Duty      *DutyHandler
	Timesheet *TimesheetHandler
	Export    *ExportHandler
	Equipment *EquipmentHandler
	Incident  *IncidentHandler
}

// NewHandler wires handlers to their services
func NewHandler(svc *service.Service, cookie *CookieConfig) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth, cookie),
		User:      NewUserHandler(svc.User),
		Location:  NewLocationHandler(svc.Location),
		Pattern:   NewPatternHandler(svc.Pattern),
		Shift:     NewShiftHandler(svc.Shift),
		Duty:      NewDutyHandler(svc.Duty),
		Timesheet: NewTimesheetHandler(svc.Timesheet),
		Export:    NewExportHandler(svc.Export),
		Equipment: NewEquipmentHandler(svc.Equipment),
		Incident:  NewIncidentHandler(svc.Incident),
	}
}
