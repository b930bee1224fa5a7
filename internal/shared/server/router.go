package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ayalaw/clickjob/internal/applications"
	"github.com/ayalaw/clickjob/internal/candidates"
	"github.com/ayalaw/clickjob/internal/extract"
	"github.com/ayalaw/clickjob/internal/jobs"
	"github.com/ayalaw/clickjob/internal/search"
	"github.com/ayalaw/clickjob/internal/services/health"
	"github.com/ayalaw/clickjob/internal/shared/config"
	"github.com/ayalaw/clickjob/internal/shared/metrics"
	"github.com/ayalaw/clickjob/internal/shared/server/middleware"
	"github.com/ayalaw/clickjob/internal/shared/server/respond"
	"github.com/ayalaw/clickjob/internal/shared/storage/db"
	localstore "github.com/ayalaw/clickjob/internal/shared/storage/object/local"
)

// App bundles the router with the services background workers need.
type App struct {
	Router     *gin.Engine
	Candidates *candidates.Service
	Jobs       *jobs.Service
	Apps       *applications.Service
}

// NewApp constructs the Gin engine with middleware and routes registered,
// plus the service graph. A missing or unreachable database falls back to
// in-memory stores so local development needs no Postgres.
func NewApp(cfg config.Config) *App {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	// Dependencies
	store := localstore.New(cfg.UploadsDir)
	extractor := extract.New(cfg.PdfToTextPath, cfg.ExtractTimeout)
	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, opts)
		if err != nil {
			log.Printf("failed to connect database, falling back to memory: %v", err)
		} else {
			if err := db.RunMigrations(context.Background(), dbConn); err != nil {
				log.Printf("failed to run migrations, falling back to memory: %v", err)
				dbConn = nil
			}
		}
		sqlDB = dbConn
	}

	var candidateRepo candidates.Repo
	if sqlDB != nil {
		candidateRepo = &candidates.PGRepo{DB: sqlDB}
	} else {
		candidateRepo = candidates.NewMemoryRepo()
	}
	candidateSvc := candidates.NewService(candidateRepo, store, extractor)
	candidateHandler := candidates.NewHandler(candidateSvc)

	var jobRepo jobs.Repo
	if sqlDB != nil {
		jobRepo = &jobs.PGRepo{DB: sqlDB}
	} else {
		jobRepo = jobs.NewMemoryRepo()
	}
	jobSvc := jobs.NewService(jobRepo)
	jobHandler := jobs.NewHandler(jobSvc)

	var appRepo applications.Repo
	if sqlDB != nil {
		appRepo = &applications.PGRepo{DB: sqlDB}
	} else {
		appRepo = applications.NewMemoryRepo()
	}
	appSvc := applications.NewService(appRepo)
	appHandler := applications.NewHandler(appSvc)

	searchSvc := search.NewService(candidateSvc, cfg.NaiveSearchLimit)
	searchHandler := search.NewHandler(searchSvc)

	healthSvc := health.NewService(sqlDB)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status(c.Request.Context()))
	})
	candidateHandler.RegisterRoutes(api)
	jobHandler.RegisterRoutes(api)
	appHandler.RegisterRoutes(api)
	searchHandler.RegisterRoutes(api)

	r.GET("/metrics", metrics.Handler())

	return &App{
		Router:     r,
		Candidates: candidateSvc,
		Jobs:       jobSvc,
		Apps:       appSvc,
	}
}

// NewRouter constructs just the engine. Convenience for tests and callers
// that do not run background workers.
func NewRouter(cfg config.Config) *gin.Engine {
	return NewApp(cfg).Router
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
