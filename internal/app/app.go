package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/hockey-projections/internal/config"
	"github.com/riskibarqy/hockey-projections/internal/domain/feature"
	"github.com/riskibarqy/hockey-projections/internal/domain/gamestat"
	"github.com/riskibarqy/hockey-projections/internal/domain/projection"
	"github.com/riskibarqy/hockey-projections/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/hockey-projections/internal/infrastructure/repository/filestore"
	"github.com/riskibarqy/hockey-projections/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/hockey-projections/internal/interfaces/httpapi"
	"github.com/riskibarqy/hockey-projections/internal/platform/dburl"
	"github.com/riskibarqy/hockey-projections/internal/platform/logging"
	"github.com/riskibarqy/hockey-projections/internal/scheduler"
	"github.com/riskibarqy/hockey-projections/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

// App holds the wired pipeline services shared by the API and the CLI.
type App struct {
	Config      config.Config
	Logger      *logging.Logger
	Stats       *usecase.StatsService
	Features    *usecase.FeatureService
	Projections *usecase.ProjectionService
	Daily       *usecase.DailyService

	db *sqlx.DB
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	kind, err := projection.ParseKind(cfg.Model.Kind)
	if err != nil {
		return nil, fmt.Errorf("model kind: %w", err)
	}

	var (
		sources gamestat.SourceRepository = filestore.NewSourceRepository(filestore.SourceDirs{
			Even:        cfg.Data.EvDir,
			PowerPlay:   cfg.Data.PPDir,
			PenaltyKill: cfg.Data.PKDir,
			Goalie:      cfg.Data.GoalieDir,
			ResultsHome: cfg.Data.ResultsHomeDir,
			ResultsAway: cfg.Data.ResultsAwayDir,
			TeamMapFile: cfg.Data.TeamMapFile,
		})
		stats       gamestat.SnapshotRepository = filestore.NewStatsRepository(cfg.Data.StatsDir, cfg.Data.StatsFile, cfg.Data.SnapshotReadWorkers)
		features    feature.Repository          = filestore.NewFeatureRepository(cfg.Data.FeaturesDir, cfg.Data.FeaturesFile, cfg.Data.SnapshotReadWorkers)
		projections projection.Repository       = filestore.NewProjectionRepository(cfg.Data.ProjectionsDir)
	)
	if cfg.CacheEnabled {
		stats = cache.NewStatsRepository(stats, cfg.CacheTTL)
		features = cache.NewFeatureRepository(features, cfg.CacheTTL)
		projections = cache.NewProjectionRepository(projections, cfg.CacheTTL)
	}

	a := &App{Config: cfg, Logger: logger}

	var archive projection.Archive
	if cfg.ArchiveDBEnabled {
		db, err := openArchiveDB(cfg)
		if err != nil {
			return nil, err
		}
		a.db = db
		archive = postgres.NewGuardedProjectionArchive(postgres.NewProjectionArchiveRepository(db), cfg.ArchiveCircuit, logger)
		logger.Info("projection archive enabled", "db", dburl.Name(cfg.DBURL))
	}

	builder := feature.NewBuilder(feature.NewEstimator(cfg.Model.SampleSize, cfg.Model.RegressionScalar), cfg.Model.NameMatchThreshold)

	a.Stats = usecase.NewStatsService(sources, stats, gamestat.DefaultScoringRules(), logger)
	a.Features = usecase.NewFeatureService(stats, filestore.NewPoolRepository(cfg.Data.PlayerPoolDir), features, builder, logger)
	a.Projections = usecase.NewProjectionService(features, projections, archive, projection.Config{
		Kind:            kind,
		Alpha:           cfg.Model.RidgeAlpha,
		ForwardFeatures: cfg.Model.ForwardFeatures,
		DefenseFeatures: cfg.Model.DefenseFeatures,
	}, logger)
	a.Daily = usecase.NewDailyService(a.Stats, a.Features, a.Projections, logger)

	return a, nil
}

func openArchiveDB(cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Open(
		"postgres",
		dburl.Normalize(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBName(dburl.Name(cfg.DBURL)),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithQueryFormatter(dburl.TraceQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("open archive db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// Location is where "today" is evaluated for scheduled and defaulted runs.
func (a *App) Location() *time.Location {
	loc, err := time.LoadLocation(a.Config.SchedulerTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (a *App) NewHTTPServer() (*http.Server, error) {
	handler := httpapi.NewHandler(a.Projections, a.Features, a.Daily, a.Location(), a.Logger)
	router := httpapi.NewRouter(handler, a.Logger, httpapi.RouterConfig{
		SwaggerEnabled:     a.Config.SwaggerEnabled,
		CORSAllowedOrigins: a.Config.CORSAllowedOrigins,
		InternalJobToken:   a.Config.InternalJobToken,
	})

	server := &http.Server{
		Addr:         a.Config.HTTPAddr,
		Handler:      router,
		ReadTimeout:  a.Config.ReadTimeout,
		WriteTimeout: a.Config.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

// NewScheduler returns nil when SCHEDULER_ENABLED is off.
func (a *App) NewScheduler() (*scheduler.Scheduler, error) {
	if !a.Config.SchedulerEnabled {
		a.Logger.Info("scheduler disabled", "reason", "SCHEDULER_ENABLED=false")
		return nil, nil
	}
	hour, minute, err := config.ParseClock(a.Config.SchedulerDailyAt)
	if err != nil {
		return nil, fmt.Errorf("parse scheduler time: %w", err)
	}
	return scheduler.NewScheduler(a.Daily, a.Location(), hour, minute, a.Logger)
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
