package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marina-guard/backend/config"
	"marina-guard/backend/internal/api/handler"
	"marina-guard/backend/internal/api/middleware"
	"marina-guard/backend/internal/model"
	"marina-guard/backend/pkg/jwt"
)

// Deps optional collaborators. Nil values disable the feature.
type Deps struct {
	Blacklist middleware.Blacklist
	Limiter   middleware.Limiter
	// Ready reports whether backing stores are reachable
	Ready func() error
}

// Setup builds the Gin engine
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, deps Deps, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID(cfg.Server.RequestIDHeader))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders(cfg.Server.Secure()))
	r.Use(middleware.CORS(cfg.Server.CORS, cfg.Server.RequestIDHeader))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if deps.Ready != nil {
			if err := deps.Ready(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	supervisor := middleware.RequireRole(model.RoleSupervisor)
	admin := middleware.RequireRole(model.RoleAdmin)

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(deps.Limiter, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", middleware.RateLimit(deps.Limiter, 30, time.Minute), h.Auth.RefreshToken)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, deps.Blacklist, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			users := authorized.Group("/users")
			{
				users.GET("", supervisor, h.User.ListUsers)
				users.POST("", admin, h.User.CreateUser)
				users.GET("/:id", h.User.GetUser) // self or supervisor, checked in the service
				users.PUT("/:id", h.User.UpdateUser)
				users.PUT("/:id/role", admin, h.User.AssignRole)
				users.POST("/:id/activate", admin, h.User.Activate)
				users.POST("/:id/deactivate", admin, h.User.Deactivate)
			}

			locations := authorized.Group("/locations")
			{
				locations.GET("", h.Location.ListLocations)
				locations.GET("/:id", h.Location.GetLocation)
				locations.GET("/:id/qrcode", supervisor, h.Location.QRCode)
				locations.POST("", admin, h.Location.CreateLocation)
				locations.PUT("/:id", admin, h.Location.UpdateLocation)
				locations.DELETE("/:id", admin, h.Location.DeleteLocation)
			}

			patterns := authorized.Group("/patterns")
			patterns.Use(supervisor)
			{
				patterns.GET("", h.Pattern.ListPatterns)
				patterns.GET("/:id", h.Pattern.GetPattern)
				patterns.POST("", h.Pattern.CreatePattern)
				patterns.PUT("/:id", h.Pattern.UpdatePattern)
				patterns.DELETE("/:id", h.Pattern.DeletePattern)
				patterns.POST("/generate", h.Pattern.GenerateShifts)
			}

			shifts := authorized.Group("/shifts")
			{
				shifts.GET("", h.Shift.ListShifts) // guards are narrowed to their own shifts
				shifts.GET("/my", h.Shift.MyShifts)
				shifts.GET("/my/calendar.ics", h.Shift.Calendar)
				shifts.GET("/:id", h.Shift.GetShift)
				shifts.POST("", supervisor, h.Shift.CreateShift)
				shifts.DELETE("/:id", supervisor, h.Shift.DeleteShift)
				shifts.POST("/:id/assignments", supervisor, h.Shift.Assign)
				shifts.DELETE("/:id/assignments/:user_id", supervisor, h.Shift.Unassign)
			}

			duty := authorized.Group("/duty")
			{
				duty.POST("/clock-in", h.Duty.ClockIn)
				duty.POST("/clock-out", h.Duty.ClockOut)
				duty.GET("/current", h.Duty.Current)
				duty.POST("/check-ins", supervisor, h.Duty.CheckIn)
				duty.GET("/sessions/my", h.Duty.ListMine)
				duty.GET("/sessions", supervisor, h.Duty.ListSessions)
				duty.GET("/sessions/:id", h.Duty.GetSession)
				duty.POST("/sessions/:id/force-clock-out", supervisor, h.Duty.ForceClockOut)
			}

			timesheets := authorized.Group("/timesheets")
			{
				timesheets.GET("", h.Timesheet.ListTimesheets)
				timesheets.POST("/generate", h.Timesheet.Generate)
				timesheets.POST("/bulk-generate", supervisor, h.Timesheet.BulkGenerate)
				timesheets.POST("/bulk-approve", supervisor, h.Timesheet.BulkApprove)
				timesheets.PUT("/entries/:entry_id", supervisor, h.Timesheet.AdjustEntry)
				timesheets.GET("/:id", h.Timesheet.GetTimesheet)
				timesheets.GET("/:id/adjustments", h.Timesheet.ListAdjustments)
				timesheets.DELETE("/:id", h.Timesheet.DeleteTimesheet)
				timesheets.POST("/:id/submit", h.Timesheet.Submit)
				timesheets.POST("/:id/approve", supervisor, h.Timesheet.Approve)
				timesheets.POST("/:id/reject", supervisor, h.Timesheet.Reject)
				timesheets.POST("/:id/entries", supervisor, h.Timesheet.AddEntry)
			}

			export := authorized.Group("/export")
			{
				export.GET("/timesheets", supervisor, h.Export.ExportTimesheets)
				export.GET("/timesheets/:id/pdf", h.Export.TimesheetPDF)
			}

			equipment := authorized.Group("/equipment")
			{
				equipment.GET("", h.Equipment.ListEquipment)
				equipment.GET("/my", h.Equipment.MyCheckouts)
				equipment.POST("", admin, h.Equipment.CreateEquipment)
				equipment.POST("/:id/checkout", h.Equipment.Checkout)
				equipment.POST("/:id/checkin", h.Equipment.Checkin)
				equipment.GET("/:id/history", supervisor, h.Equipment.History)
			}

			incidents := authorized.Group("/incidents")
			{
				incidents.GET("", h.Incident.ListIncidents)
				incidents.POST("", h.Incident.CreateIncident)
				incidents.GET("/:id", h.Incident.GetIncident)
				incidents.GET("/:id/pdf", h.Incident.IncidentPDF)
				incidents.POST("/:id/sign", supervisor, h.Incident.SignIncident)
			}
		}
	}

	return r
}
