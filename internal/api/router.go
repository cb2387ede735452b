package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/Sam-D-04/access-control-building/internal/app"
	"github.com/Sam-D-04/access-control-building/internal/handlers"
	"github.com/Sam-D-04/access-control-building/internal/middleware"
	"github.com/Sam-D-04/access-control-building/internal/realtime"
	"github.com/Sam-D-04/access-control-building/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
// The hub may be nil when realtime monitoring is disabled.
func NewRouter(db *gorm.DB, cfg *app.Config, hub *realtime.Hub) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	if cfg.Server.RateLimitPerMinute > 0 {
		r.Use(middleware.RateLimit(cfg.Server.RateLimitPerMinute, time.Minute))
	}
	r.NoRoute(middleware.NotFoundHandler)

	// Health and metrics (public)
	r.GET("/health", handlers.Health(db))
	if cfg.Monitoring.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	var notifier *realtime.Notifier
	if hub != nil {
		notifier = realtime.NewNotifier(hub)
	}

	api := r.Group("/api")

	// Access decisions
	accessHandler, err := handlers.NewAccessHandler(db, notifierOrNil(notifier), handlers.AccessOptions{
		Diagnostics: cfg.Access.Diagnostics,
		QRFreshness: cfg.Access.QRFreshness,
	})
	if err != nil {
		return nil, err
	}
	access := api.Group("/access")
	{
		access.POST("/check", accessHandler.CheckCard)
		access.POST("/qr", accessHandler.CheckQR)
	}

	// Users
	userHandler, err := handlers.NewUserHandler(db)
	if err != nil {
		return nil, err
	}
	passHandler, err := handlers.NewPassHandler(db)
	if err != nil {
		return nil, err
	}
	users := api.Group("/users")
	{
		users.GET("", userHandler.List)
		users.GET("/:id", userHandler.Get)
		users.POST("", userHandler.Create)
		users.PATCH("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)
		users.POST("/:id/qr-pass", passHandler.Issue)
		users.GET("/:id/qr-pass.png", passHandler.RenderPNG)
	}

	// Departments
	deptHandler, err := handlers.NewDepartmentHandler(db)
	if err != nil {
		return nil, err
	}
	departments := api.Group("/departments")
	{
		departments.GET("", deptHandler.List)
		departments.GET("/:id", deptHandler.Get)
		departments.POST("", deptHandler.Create)
		departments.PATCH("/:id", deptHandler.Update)
		departments.DELETE("/:id", deptHandler.Delete)
	}

	// Cards
	cardHandler, err := handlers.NewCardHandler(db)
	if err != nil {
		return nil, err
	}
	cards := api.Group("/cards")
	{
		cards.GET("", cardHandler.List)
		cards.GET("/:id", cardHandler.Get)
		cards.POST("", cardHandler.Issue)
		cards.PATCH("/:id", cardHandler.Update)
		cards.POST("/:id/deactivate", cardHandler.Deactivate)
		cards.POST("/:id/reactivate", cardHandler.Reactivate)
		cards.DELETE("/:id", cardHandler.Delete)
	}

	// Doors
	doorHandler, err := handlers.NewDoorHandler(db, notifierOrNil(notifier))
	if err != nil {
		return nil, err
	}
	doors := api.Group("/doors")
	{
		doors.GET("", doorHandler.List)
		doors.GET("/:id", doorHandler.Get)
		doors.POST("", doorHandler.Create)
		doors.PATCH("/:id", doorHandler.Update)
		doors.POST("/:id/lock", doorHandler.Lock)
		doors.POST("/:id/unlock", doorHandler.Unlock)
		doors.DELETE("/:id", doorHandler.Delete)
	}

	// Permissions
	permHandler, err := handlers.NewPermissionHandler(db)
	if err != nil {
		return nil, err
	}
	permissions := api.Group("/permissions")
	{
		permissions.GET("", permHandler.List)
		permissions.GET("/:id", permHandler.Get)
		permissions.POST("", permHandler.Create)
		permissions.PATCH("/:id", permHandler.Update)
		permissions.DELETE("/:id", permHandler.Delete)
	}

	// Card permission assignments
	assignmentHandler, err := handlers.NewAssignmentHandler(db)
	if err != nil {
		return nil, err
	}
	assignments := api.Group("/assignments")
	{
		assignments.GET("", assignmentHandler.ListByCard)
		assignments.GET("/:id", assignmentHandler.Get)
		assignments.POST("", assignmentHandler.Assign)
		assignments.PATCH("/:id", assignmentHandler.Update)
		assignments.DELETE("/:id", assignmentHandler.Revoke)
	}

	// Access logs
	auditHandler, err := handlers.NewAuditHandler(db)
	if err != nil {
		return nil, err
	}
	logs := api.Group("/access-logs")
	{
		logs.GET("", auditHandler.List)
		logs.GET("/export", auditHandler.ExportCSV)
	}

	// Realtime monitoring stream
	if hub != nil {
		realtimeHandler := handlers.NewRealtimeHandler(hub)
		api.GET("/ws", realtimeHandler.Serve)
	}

	return r, nil
}

// notifierOrNil avoids handing services a typed-nil interface value.
func notifierOrNil(n *realtime.Notifier) services.AccessNotifier {
	if n == nil {
		return nil
	}
	return n
}
