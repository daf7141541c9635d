package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/auth"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/audit"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/db/mongo"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/email"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/memory"
	rabbitmq_pub "github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/redis"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/security"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
	http_handlers "github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/handlers"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/response"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	OpenStore func(ctx context.Context, cfg *config.Config) (Store, error)

	NewMailer func(cfg *config.Config) (Mailer, error)

	NewRedis func(addr, password string, db int) RedisClient

	NewRouter func(router.Deps) (http.Handler, error)
}

// Store is the persistence backend selected by STORE_DRIVER.
type Store struct {
	Users  auth.UserStore
	Tokens auth.RefreshTokenStore
	Health http_handlers.Pinger
	Close  func()
}

type Mailer interface {
	auth.EmailSender
}

type RedisClient interface {
	Ping(ctx context.Context) error
	Close() error
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	// 1) store
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := deps.OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Logger.Info().Str("driver", cfg.StoreDriver).Msg("store connected")

	cleanupFns := []func(){}
	if store.Close != nil {
		cleanupFns = append(cleanupFns, store.Close)
	}

	// 2) mailer
	mailer, err := deps.NewMailer(cfg)
	if err != nil {
		if cfg.IsDev() {
			logger.Logger.Warn().Err(err).Str("transport", cfg.EmailTransport).Msg("mailer unavailable; logging emails instead")
			mailer = memory.NewLogMailer(logger.Logger)
		} else {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
	}
	if c, ok := mailer.(interface{ Close() error }); ok {
		cleanupFns = append(cleanupFns, func() { _ = c.Close() })
	}

	// 3) redis (best-effort, rate limiting only)
	var limiter *redis.FixedWindowLimiter
	if deps.NewRedis != nil && cfg.RedisAddr != "" {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := c.Ping(pingCtx)
		pingCancel()

		if err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; rate limiting disabled")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
			if rc, ok := c.(*redis.Client); ok {
				limiter = redis.NewFixedWindowLimiter(rc)
			}
		}
	}

	// 4) security
	logger.Logger.Info().Str("issuer", cfg.JWTIssuer).Msg("initializing jwt signer")
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	signer := security.NewJWTSigner(cfg.JWTSecret, cfg.JWTIssuer)
	cookies := security.NewCookieAttacher(signer, cfg.AccessCookieTTL, cfg.RefreshCookieTTL, !cfg.IsDev())

	// 5) service
	authSvc := auth.NewService(
		store.Users,
		store.Tokens,
		mailer,
		hasher,
		security.NewSHA256TokenHasher(),
		auth.Config{
			Origin:           cfg.AppOrigin,
			PasswordResetTTL: cfg.PasswordResetTokenTTL,
		},
	).WithAudit(audit.New(logger.Logger).Record)

	// 6) handlers + middleware
	writeErr := response.NewErrorWriter(cfg.IsDev())

	authH := http_handlers.NewAuthHandler(authSvc, cookies, writeErr)
	healthH := http_handlers.NewHealthHandler(store.Health)

	authMW := middleware.Authenticate(cookies, authSvc, middleware.WriteErrFunc(writeErr))
	adminMW := middleware.RequireAtLeast(string(domain.RoleAdmin), middleware.WriteErrFunc(writeErr))

	// rate limit (fail-open)
	var rl func(route string) func(http.Handler) http.Handler
	if limiter != nil {
		rl = func(route string) func(http.Handler) http.Handler {
			return middleware.RateLimitFixedWindow(
				limiter,
				middleware.FixedWindowConfig{
					RouteKey: "auth." + route,
					Limit:    cfg.RLLimit,
					Window:   cfg.RLWindow,
				},
				middleware.WriteErrFunc(writeErr),
			)
		}
	}

	// 7) router
	global := []func(http.Handler) http.Handler{
		middleware.RequestID,
		chimw.Recoverer,
		middleware.Metrics,
		middleware.AccessLog,
	}
	if cfg.TrustProxy {
		global = append([]func(http.Handler) http.Handler{chimw.RealIP}, global...)
	}

	mux, err := deps.NewRouter(router.Deps{
		Health: healthH,
		Auth:   authH,
		Global: global,
		AuthMW:    authMW,
		AdminMW:   adminMW,
		RateLimit: rl,
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 8) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		OpenStore:  openStore,
		NewMailer:  newMailer,
		NewRedis: func(addr, password string, db int) RedisClient {
			return redis.New(addr, password, db)
		},
		NewRouter: func(d router.Deps) (http.Handler, error) {
			return router.New(d)
		},
	}
}

func openStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		s, err := mongo.Open(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return Store{}, err
		}
		return Store{
			Users:  s.Users(),
			Tokens: s.RefreshTokens(),
			Health: s,
			Close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = s.Close(ctx)
			},
		}, nil

	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.DBAddr)
		if err != nil {
			return Store{}, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return Store{}, err
		}
		return Store{
			Users:  postgres.NewUserRepo(db),
			Tokens: postgres.NewRefreshTokenRepo(db),
			Health: pingFunc(db.PingContext),
			Close:  func() { _ = db.Close() },
		}, nil

	default:
		return Store{}, fmt.Errorf("bootstrap: unknown store driver %q", cfg.StoreDriver)
	}
}

func newMailer(cfg *config.Config) (Mailer, error) {
	switch cfg.EmailTransport {
	case config.EmailRabbitMQ:
		pub, err := rabbitmq_pub.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange, logger.Logger)
		if err != nil {
			return nil, err
		}
		return pub, nil

	case config.EmailSMTP:
		return email.NewSMTPMailer(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
			FromName: cfg.EmailFromName,
			Timeout:  cfg.SMTPTimeout,
			Insecure: cfg.SMTPInsecure,
		}, logger.Logger), nil

	default:
		return memory.NewLogMailer(logger.Logger), nil
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
