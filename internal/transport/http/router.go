package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lighthouse/backend/internal/config"
	"github.com/lighthouse/backend/internal/core/ports"
	"github.com/lighthouse/backend/internal/core/services"
	"github.com/lighthouse/backend/internal/infrastructure/db"
	"github.com/lighthouse/backend/internal/infrastructure/logger"
	"github.com/lighthouse/backend/internal/transport/http/handlers"
	httpmw "github.com/lighthouse/backend/internal/transport/http/middleware"
	"gorm.io/gorm"
)

type RouterConfig struct {
	DB      *gorm.DB
	Logger  *logger.Logger
	Config  *config.Config
	Queue   ports.WorkQueue
	Metrics ports.TaskMetrics
}

// Handlers groups the API handlers mounted by RegisterRoutes.
type Handlers struct {
	Task     *handlers.TaskHandler
	Scope    *handlers.ScopeHandler
	Result   *handlers.ResultHandler
	Policy   *handlers.PolicyHandler
	Timeline *handlers.TimelineHandler
}

// SetupRoutes builds the repositories and services on cfg.DB and mounts
// the API on app.
func SetupRoutes(app *fiber.App, cfg RouterConfig) {
	taskRepo := db.NewTaskRepository(cfg.DB, cfg.Logger)
	scopeRepo := db.NewAssetScopeRepository(cfg.DB, cfg.Logger)
	resultRepo := db.NewResultRepository(cfg.DB, cfg.Logger)
	timelineRepo := db.NewTimelineRepository(cfg.DB, cfg.Logger)
	settingRepo := db.NewSystemSettingRepository(cfg.DB, cfg.Logger)

	policyService := services.NewPolicyService(services.PolicyServiceConfig{
		SettingRepo:     settingRepo,
		TimelineRepo:    timelineRepo,
		DefaultBlackIPs: cfg.Config.Policy.BlackIPs,
		Logger:          cfg.Logger,
		EnableLocks:     cfg.Config.Features.EnableLocks,
	})

	taskService := services.NewTaskService(services.TaskServiceConfig{
		TaskRepo:     taskRepo,
		ScopeRepo:    scopeRepo,
		Queue:        cfg.Queue,
		Policy:       policyService,
		TimelineRepo: timelineRepo,
		Metrics:      cfg.Metrics,
		Logger:       cfg.Logger,
		EnableLocks:  cfg.Config.Features.EnableLocks,
	})
	scopeService := services.NewScopeService(scopeRepo, cfg.Logger)
	resultService := services.NewResultService(resultRepo)

	RegisterRoutes(app, cfg.Config, Handlers{
		Task:     handlers.NewTaskHandler(taskService, cfg.Logger),
		Scope:    handlers.NewScopeHandler(scopeService, cfg.Logger),
		Result:   handlers.NewResultHandler(resultService, cfg.Logger),
		Policy:   handlers.NewPolicyHandler(policyService, cfg.Logger),
		Timeline: handlers.NewTimelineHandler(timelineRepo, cfg.Logger),
	})
}

func RegisterRoutes(app *fiber.App, cfg *config.Config, h Handlers) {
	api := app.Group("/api", httpmw.AdminAuth(cfg))

	submitLimiter := httpmw.PerMinute(cfg.RateLimit.SubmitPerMinute, cfg.RateLimit.SubmitBurst)

	// Task routes
	tasks := api.Group("/task")
	tasks.Get("/", h.Task.ListTasks)
	tasks.Post("/", submitLimiter.Handler(), h.Task.SubmitTask)
	tasks.Get("/stop/:id", h.Task.StopTask)
	tasks.Post("/delete/", h.Task.DeleteTasks)
	tasks.Post("/sync/", h.Task.SyncTask)
	tasks.Get("/sync_scope/", h.Task.SyncScopes)
	tasks.Get("/:id", h.Task.GetTask)

	// Asset scope routes
	scopes := api.Group("/asset_scope")
	scopes.Get("/", h.Scope.ListScopes)
	scopes.Post("/", h.Scope.CreateScope)
	scopes.Delete("/:id", h.Scope.DeleteScope)

	api.Get("/result/:collection/", h.Result.ListResults)

	policy := api.Group("/policy")
	policy.Get("/black_ips", h.Policy.GetBlackIPs)
	policy.Put("/black_ips", h.Policy.UpdateBlackIPs)
	policy.Delete("/black_ips", h.Policy.ClearBlackIPs)

	api.Get("/timeline/", h.Timeline.GetEvents)
}
