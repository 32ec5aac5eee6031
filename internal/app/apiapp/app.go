package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Jayce162/Petpals/internal/config"
	"github.com/Jayce162/Petpals/internal/jobs/sweeper"
	"github.com/Jayce162/Petpals/internal/pkg/validate"
	pgrepo "github.com/Jayce162/Petpals/internal/repo/postgres"
	redrepo "github.com/Jayce162/Petpals/internal/repo/redis"
	candsvc "github.com/Jayce162/Petpals/internal/services/candidates"
	entsvc "github.com/Jayce162/Petpals/internal/services/entitlements"
	"github.com/Jayce162/Petpals/internal/services/lifecycle"
	ratesvc "github.com/Jayce162/Petpals/internal/services/rate"
	sessionsvc "github.com/Jayce162/Petpals/internal/services/sessions"
	"github.com/Jayce162/Petpals/internal/transport/http/handlers"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	sessions   *sessionsvc.Service
	sweeper    *sweeper.Job
	httpRouter http.Handler

	jobsMu   sync.Mutex
	jobsCtx  context.Context
	stopJobs context.CancelFunc
	closed   bool
	jobsWG   sync.WaitGroup
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if validate.Required(cfg.Postgres.DSN) {
		p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			if cfg.Candidates.Source == config.CandidateSourcePostgres {
				return nil, fmt.Errorf("init postgres: %w", err)
			}
			log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
		} else {
			pool = p
		}
	}

	var redisClient *goredis.Client
	if validate.Required(cfg.Redis.Addr) {
		redisClient = redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := redrepo.Ping(ctx, redisClient); err != nil {
			log.Warn("redis unavailable, swipe throttle will fail open", zap.Error(err))
		}
	}

	source, err := newCandidateSource(cfg, pool)
	if err != nil {
		closeClients(pool, redisClient)
		return nil, err
	}

	candidateService := candsvc.NewService(source, candsvc.Config{
		FreePoolSize: cfg.Premium.FreePoolSize,
	})
	var entitlementStore entsvc.Store
	if pool != nil {
		entitlementStore = pgrepo.NewEntitlementRepo(pool)
	}
	entitlementService := entsvc.NewService(entitlementStore, entsvc.Config{
		DefaultIsPremium: cfg.Premium.DefaultIsPremium,
		FreeUndo:         cfg.Premium.FreeUndo,
		FreeExtend:       cfg.Premium.FreeExtend,
		FreeFullPool:     cfg.Premium.FreeFullPool,
	})

	sessionService := sessionsvc.NewService(sessionsvc.Dependencies{
		Candidates:   candidateService,
		Entitlements: entitlementService,
		NewResolver:  resolverFactory(cfg.Match),
		Logger:       log,
	}, sessionsvc.Config{
		IdleTTL:     cfg.Sessions.IdleTTL,
		MaxSessions: cfg.Sessions.MaxSessions,
		Engine: lifecycle.Config{
			CommitDelay:        cfg.Match.CommitDelay,
			RetractMatchOnUndo: cfg.Match.RetractOnUndo,
		},
	})

	var limiter handlers.SwipeLimiter
	if redisClient != nil {
		limiter = ratesvc.NewLimiter(
			redrepo.NewRateRepo(redisClient),
			cfg.SwipeRate.PerMinute,
			cfg.SwipeRate.Per10Seconds,
		)
	}

	RegisterRoutes(r, Dependencies{
		SessionService: sessionService,
		SwipeLimiter:   limiter,
		Logger:         log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	jobsCtx, stopJobs := context.WithCancel(context.Background())
	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		sessions:   sessionService,
		sweeper:    sweeper.New(sessionService, log),
		httpRouter: r,
		jobsCtx:    jobsCtx,
		stopJobs:   stopJobs,
	}, nil
}

func newCandidateSource(cfg config.Config, pool *pgxpool.Pool) (candsvc.Source, error) {
	if cfg.Candidates.Source == config.CandidateSourcePostgres {
		return pgrepo.NewCandidateRepo(pool, cfg.Candidates.Limit), nil
	}

	entries := make([]candsvc.StaticEntry, 0, len(cfg.Candidates.Static))
	for _, c := range cfg.Candidates.Static {
		entries = append(entries, candsvc.StaticEntry{
			ID:         c.ID,
			Gender:     c.Gender,
			Name:       c.Name,
			Species:    c.Species,
			Breed:      c.Breed,
			DistanceKM: c.DistanceKM,
		})
	}
	source, err := candsvc.NewStaticSource(entries)
	if err != nil {
		return nil, fmt.Errorf("build static candidates: %w", err)
	}
	return source, nil
}

// resolverFactory gives each session its own random stream. With a fixed
// seed, the n-th session always draws from seed+n.
func resolverFactory(cfg config.MatchConfig) func() lifecycle.MatchResolver {
	base := cfg.RandomSeed
	if base == 0 {
		base = time.Now().UnixNano()
	}
	var n atomic.Int64
	return func() lifecycle.MatchResolver {
		return lifecycle.NewRandomResolver(cfg.Probability, base+n.Add(1))
	}
}

func (a *App) Run() error {
	a.startJobs()

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// startJobs launches background jobs unless Shutdown already ran. Jobs are
// only added under jobsMu, so Shutdown's Wait sees every one of them.
func (a *App) startJobs() {
	a.jobsMu.Lock()
	defer a.jobsMu.Unlock()
	if a.closed || a.cfg.Sessions.IdleTTL <= 0 {
		return
	}

	a.jobsWG.Add(1)
	go func() {
		defer a.jobsWG.Done()
		a.sweeper.Loop(a.jobsCtx, a.cfg.Sessions.SweepInterval)
	}()
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	a.jobsMu.Lock()
	a.closed = true
	a.stopJobs()
	a.jobsMu.Unlock()
	a.jobsWG.Wait()

	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

func closeClients(pool *pgxpool.Pool, redisClient *goredis.Client) {
	if pool != nil {
		pool.Close()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
