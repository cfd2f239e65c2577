package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	internalmiddleware "github.com/noah-isme/hemo-scheduler-api/internal/middleware"
	"github.com/noah-isme/hemo-scheduler-api/internal/models"
	"github.com/noah-isme/hemo-scheduler-api/internal/service"
	"github.com/noah-isme/hemo-scheduler-api/pkg/config"
	"github.com/noah-isme/hemo-scheduler-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/hemo-scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/hemo-scheduler-api/pkg/middleware/requestid"
)

// RouterConfig collects what the HTTP surface needs.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	// Auth validates bearer tokens. When nil every caller acts as admin.
	Auth    internalmiddleware.TokenValidator
	Docs    bool
	Logger  *zap.Logger
	Metrics *service.MetricsService

	Schedule  *ScheduleHandler
	Analytics *AnalyticsHandler
	Imports   *ImportHandler
	Exports   *ExportHandler
	Data      *DataHandler
	Health    *HealthHandler
}

// BackupDownloadPath is the route serving signed backup downloads, relative to the API prefix.
const BackupDownloadPath = "/data/backups/download"

// NewRouter wires middleware and routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(corsmiddleware.New(config.CORSConfig{AllowedOrigins: cfg.AllowedOrigins}))
	r.Use(internalmiddleware.Metrics(cfg.Metrics))

	r.GET("/health", cfg.Health.Health)
	r.GET("/ready", cfg.Health.Ready)
	r.GET("/metrics", cfg.Health.Prometheus)
	if cfg.Docs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET(BackupDownloadPath, cfg.Data.DownloadBackup)

	auth := internalmiddleware.Anonymous()
	if cfg.Auth != nil {
		auth = internalmiddleware.JWT(cfg.Auth)
	}
	staff := api.Group("", auth, internalmiddleware.RequireRoles(models.RoleStaff, models.RoleAdmin))
	admin := api.Group("", auth, internalmiddleware.RequireRoles(models.RoleAdmin))

	sched := staff.Group("/schedule")
	sched.GET("", cfg.Schedule.Get)
	sched.GET("/records", cfg.Schedule.Records)
	sched.PUT("/records", cfg.Schedule.ReplaceRecords)
	sched.GET("/matrix", cfg.Schedule.Matrix)
	sched.GET("/time-slots", cfg.Schedule.TimeSlots)
	sched.POST("/patients", cfg.Schedule.SavePatient)
	sched.GET("/patients/lookup", cfg.Schedule.Lookup)
	sched.POST("/patients/move", cfg.Schedule.MovePatient)
	sched.POST("/patients/drop", cfg.Schedule.DropPatient)
	sched.PATCH("/patients/:id", cfg.Schedule.UpdatePatient)
	sched.DELETE("/patients/:id", cfg.Schedule.DeletePatient)
	sched.GET("/enrollments", cfg.Schedule.Enrollments)
	sched.PUT("/enrollments/:id", cfg.Schedule.ApplyEnrollment)
	sched.GET("/drift", cfg.Schedule.Drift)

	analytics := staff.Group("/analytics")
	analytics.GET("/report", cfg.Analytics.Report)
	analytics.GET("/stats", cfg.Analytics.Stats)
	analytics.POST("/simulate", cfg.Analytics.Simulate)
	admin.GET("/analytics/system", cfg.Analytics.System)

	staff.POST("/imports", cfg.Imports.Import)
	staff.GET("/exports/:kind", cfg.Exports.Export)

	staff.GET("/data/status", cfg.Data.Status)
	data := admin.Group("/data")
	data.GET("/backup", cfg.Data.Backup)
	data.POST("/restore", internalmiddleware.Audit(cfg.Logger, "restore"), cfg.Data.Restore)
	data.POST("/reload", internalmiddleware.Audit(cfg.Logger, "reload"), cfg.Data.Reload)
	data.POST("/wipe", internalmiddleware.Audit(cfg.Logger, "wipe"), cfg.Data.Wipe)
	data.GET("/backups", cfg.Data.ListBackups)

	return r
}
