package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/studyace/internal/api"
	"github.com/phrazzld/studyace/internal/config"
	"github.com/phrazzld/studyace/internal/events"
	"github.com/phrazzld/studyace/internal/platform/memory"
	"github.com/phrazzld/studyace/internal/platform/postgres"
	"github.com/phrazzld/studyace/internal/platform/redis"
	"github.com/phrazzld/studyace/internal/service"
	"github.com/phrazzld/studyace/internal/service/account"
	"github.com/phrazzld/studyace/internal/service/auth"
	"github.com/phrazzld/studyace/internal/service/practice"
	"github.com/phrazzld/studyace/internal/store"
)

// janitorInterval is how often expired in-memory session entries are swept.
const janitorInterval = 5 * time.Minute

// storage holds the persistence backends chosen from configuration.
type storage struct {
	users    store.UserStore
	sets     store.SetStore
	tx       store.Transactor
	sessions store.SessionStore

	// janitor is set when sessions live in process memory.
	janitor *memory.SessionStore

	db  *sql.DB
	rdb *goredis.Client
}

// openStorage connects to the configured database and session backends.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	if cfg.Database.Backend == "memory" {
		logger.Warn("using in-memory storage; data is lost on restart")
		return memoryStorage(cfg, logger), nil
	}

	db, err := postgres.Open(ctx, cfg.Database.URL, postgres.PoolConfig{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	users := postgres.NewPostgresUserStore(db, logger, cfg.Auth.BCryptCost)
	sets := postgres.NewPostgresSetStore(db, logger)
	st := &storage{
		users: users,
		sets:  sets,
		tx:    store.NewSQLTransactor(db, users, sets),
		db:    db,
	}

	ttl := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	switch cfg.Session.Backend {
	case "redis":
		rdb, err := redis.Connect(ctx, cfg.Session.RedisAddr)
		if err != nil {
			st.close(logger)
			return nil, err
		}
		st.rdb = rdb
		st.sessions = redis.NewSessionStore(rdb, ttl, logger)
		logger.Info("redis session store connected", slog.String("addr", cfg.Session.RedisAddr))
	default:
		st.useMemorySessions(ttl, logger)
	}
	return st, nil
}

// memoryStorage keeps users, sets and sessions in process memory.
func memoryStorage(cfg *config.Config, logger *slog.Logger) *storage {
	db := memory.NewDB()
	users := memory.NewUserStore(db, cfg.Auth.BCryptCost)
	sets := memory.NewSetStore(db)
	st := &storage{
		users: users,
		sets:  sets,
		tx:    memory.NewTransactor(db, users, sets),
	}
	st.useMemorySessions(time.Duration(cfg.Session.TTLMinutes)*time.Minute, logger)
	return st
}

func (s *storage) useMemorySessions(ttl time.Duration, logger *slog.Logger) {
	sessions := memory.NewSessionStore(ttl, logger)
	s.sessions = sessions
	s.janitor = sessions
}

func (s *storage) close(logger *slog.Logger) {
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			logger.Error("error closing redis connection", slog.String("error", err.Error()))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
}

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	storage *storage

	jwtService auth.JWTService
	accounts   account.Service
	sets       service.SetService
	practice   practice.Service

	eventEmitter *events.InMemoryEventEmitter
}

// newApplication creates the services over st.
func newApplication(cfg *config.Config, logger *slog.Logger, st *storage) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		storage: st,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewAuditLogHandler(logger))

	app.accounts = account.NewService(st.users, st.tx, st.sessions,
		auth.NewBcryptVerifier(), app.eventEmitter, logger)

	app.sets, err = service.NewSetService(st.sets, st.tx, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create set service: %w", err)
	}

	app.practice = practice.NewService(st.sets, st.tx, st.sessions, app.eventEmitter, logger)

	logger.Info("application initialized")
	return app, nil
}

func (app *application) handlers() api.Handlers {
	return api.Handlers{
		Auth: api.NewAuthHandler(app.accounts, app.jwtService,
			time.Duration(app.config.Auth.TokenLifetimeMinutes)*time.Minute),
		Account:  api.NewAccountHandler(app.accounts),
		Sets:     api.NewSetHandler(app.sets),
		Practice: api.NewPracticeHandler(app.practice),
	}
}

// cleanup releases storage connections.
func (app *application) cleanup() {
	app.storage.close(app.logger)
	app.logger.Info("application shutdown completed")
}
