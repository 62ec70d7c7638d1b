package app

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-pool/internal/config"
	"github.com/riskibarqy/prediction-pool/internal/domain/competition"
	"github.com/riskibarqy/prediction-pool/internal/domain/jobscheduler"
	"github.com/riskibarqy/prediction-pool/internal/domain/pool"
	"github.com/riskibarqy/prediction-pool/internal/domain/prediction"
	"github.com/riskibarqy/prediction-pool/internal/domain/tournament"
	cacherepo "github.com/riskibarqy/prediction-pool/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/prediction-pool/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prediction-pool/internal/infrastructure/repository/mongodb"
	"github.com/riskibarqy/prediction-pool/internal/infrastructure/repository/postgres"
	idgen "github.com/riskibarqy/prediction-pool/internal/platform/id"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
	"github.com/riskibarqy/prediction-pool/internal/platform/resilience"
	"github.com/riskibarqy/prediction-pool/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const startupTimeout = 10 * time.Second

// App holds the wired services of one process.
type App struct {
	Config       config.Config
	Logger       *logging.Logger
	Competitions *usecase.CompetitionService
	Pools        *usecase.PoolService
	Predictions  *usecase.PredictionService
	Results      *usecase.ResultService
	Scoring      *usecase.ScoringService
	Scheduler    *usecase.JobScheduler

	closers []func(context.Context) error
}

type stores struct {
	groups      pool.Repository
	predictions prediction.Repository
	jobRuns     jobscheduler.Repository
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (_ *App, err error) {
	if logger == nil {
		logger = logging.Default()
	}
	a := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close(context.WithoutCancel(ctx))
		}
	}()

	st, err := a.openStores(ctx)
	if err != nil {
		return nil, err
	}
	catalog, err := a.openCatalog(ctx)
	if err != nil {
		return nil, err
	}

	breaker := resilience.New(resilience.Settings{
		Name:                "competition-catalog",
		Enabled:             cfg.CompetitionCircuitEnabled,
		MaxFailures:         cfg.CompetitionCircuitFailureCount,
		Cooldown:            cfg.CompetitionCircuitOpenTimeout,
		HalfOpenMaxRequests: cfg.CompetitionCircuitHalfOpenMaxReq,
	}, resilience.WithStateChange(func(name string, from, to resilience.CircuitState) {
		logger.Warn("circuit state changed", "breaker", name, "from", from, "to", to)
	}))

	ids := idgen.NewUUIDGenerator()
	rules := prediction.DefaultRules()

	a.Competitions = usecase.NewCompetitionService(catalog, breaker)
	a.Scoring = usecase.NewScoringService(st.groups, st.predictions, rules, cfg.JobMaxWorkers, logger)
	a.Pools = usecase.NewPoolService(
		st.groups,
		st.predictions,
		a.Competitions,
		ids,
		idgen.NewInviteCodeGenerator(),
		poolSettings(cfg),
		logger,
	)
	a.Predictions = usecase.NewPredictionService(st.groups, st.predictions)
	a.Results = usecase.NewResultService(st.groups, a.Scoring, logger)

	a.Scheduler, err = usecase.NewJobScheduler(usecase.JobSchedulerConfig{
		RecomputeSchedule: cfg.JobRecomputeSchedule,
		CleanupSchedule:   cfg.JobCleanupSchedule,
		JobTimeout:        cfg.JobTimeout,
	}, a.Scoring, a.Pools, st.jobRuns, ids, logger)
	if err != nil {
		return nil, fmt.Errorf("build job scheduler: %w", err)
	}

	logger.Info("app initialized",
		"store_driver", cfg.StoreDriver,
		"competition_store", cfg.CompetitionStore,
		"cache_enabled", cfg.CacheEnabled,
		"circuit_enabled", breaker != nil,
	)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = crerr.CombineErrors(errs, err)
		}
	}
	a.closers = nil
	return errs
}

func (a *App) openStores(ctx context.Context) (stores, error) {
	if a.Config.StoreDriver != config.StorePostgres {
		return stores{
			groups:      memory.NewGroupRepository(),
			predictions: memory.NewPredictionRepository(),
			jobRuns:     memory.NewJobRunRepository(),
		}, nil
	}

	db, err := openPostgres(ctx, a.Config)
	if err != nil {
		return stores{}, err
	}
	a.closers = append(a.closers, func(context.Context) error { return db.Close() })

	return stores{
		groups:      postgres.NewGroupRepository(db),
		predictions: postgres.NewPredictionRepository(db),
		jobRuns:     postgres.NewJobRunRepository(db),
	}, nil
}

func openPostgres(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres", cfg.DBURL,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func (a *App) openCatalog(ctx context.Context) (competition.Repository, error) {
	var repo competition.Repository
	switch a.Config.CompetitionStore {
	case config.StoreMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(a.Config.MongoURI).SetTimeout(a.Config.MongoTimeout))
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		a.closers = append(a.closers, client.Disconnect)

		pingCtx, cancel := context.WithTimeout(ctx, startupTimeout)
		defer cancel()
		if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
			return nil, fmt.Errorf("ping mongo: %w", err)
		}

		mongoRepo := mongodb.NewCompetitionRepository(client.Database(a.Config.MongoDatabase), a.Config.MongoTimeout)
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		if err := seedCatalog(ctx, mongoRepo, a.Logger); err != nil {
			return nil, err
		}
		repo = mongoRepo
	default:
		repo = memory.NewCompetitionRepository(memory.SeedCompetitions())
	}

	if a.Config.CacheEnabled {
		repo = cacherepo.NewCompetitionRepository(repo, a.Config.CacheTTL)
	}
	return repo, nil
}

// seedCatalog writes the built-in competitions into an empty catalog.
func seedCatalog(ctx context.Context, repo competition.Repository, logger *logging.Logger) error {
	existing, err := repo.ListByCategory(ctx, memory.CategoryFootball)
	if err != nil {
		return fmt.Errorf("inspect competition catalog: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, c := range memory.SeedCompetitions() {
		if err := repo.Upsert(ctx, c); err != nil {
			return fmt.Errorf("seed competition %s: %w", c.Key(), err)
		}
	}
	logger.Info("competition catalog seeded", "category", memory.CategoryFootball)
	return nil
}

func poolSettings(cfg config.Config) usecase.PoolSettings {
	return usecase.PoolSettings{
		MinTotalBetAmount: cfg.PoolMinTotalBetAmount,
		InviteTTL:         cfg.PoolInviteTTL,
		InviteCodeLength:  cfg.PoolInviteCodeLength,
		Currency:          cfg.PoolCurrency,
		Build: tournament.BuildConfig{
			TeamsPerGroup:        cfg.PoolTeamsPerGroup,
			TeamsQualifyPerGroup: cfg.PoolTeamsQualifyPerGroup,
		},
	}
}
