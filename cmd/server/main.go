package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	exhandler "landregistry/internal/exchange/handler"
	exservice "landregistry/internal/exchange/service"
	exstore "landregistry/internal/exchange/store"
	"landregistry/internal/exchange/sweeper"
	"landregistry/internal/platform/config"
	"landregistry/internal/platform/httpserver"
	"landregistry/internal/platform/kafka"
	"landregistry/internal/platform/logger"
	"landregistry/internal/platform/metrics"
	"landregistry/internal/platform/middleware"
	"landregistry/internal/platform/postgres"
	"landregistry/internal/platform/redis"
	prophandler "landregistry/internal/property/handler"
	propservice "landregistry/internal/property/service"
	propstore "landregistry/internal/property/store"
	routinghandler "landregistry/internal/routing/handler"
	routingservice "landregistry/internal/routing/service"
	httptransport "landregistry/internal/transport/http"
	userhandler "landregistry/internal/users/handler"
	userservice "landregistry/internal/users/service"
	userstore "landregistry/internal/users/store"
	wallethandler "landregistry/internal/wallet/handler"
	"landregistry/internal/wallet/lockout"
	walletservice "landregistry/internal/wallet/service"
	"landregistry/internal/wallet/session"
	walletstore "landregistry/internal/wallet/store"
	"landregistry/internal/wallet/store/revocation"
	"landregistry/pkg/platform/audit"
	auditmemory "landregistry/pkg/platform/audit/store/memory"
	auditpostgres "landregistry/pkg/platform/audit/store/postgres"
	"landregistry/pkg/platform/audit/worker"
	"landregistry/pkg/platform/circuit"
	"landregistry/pkg/platform/tx"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Logger)
	if cfg.UsesDevSigningKey() {
		log.Warn("JWT_SIGNING_KEY not set; using the development key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}

// stores groups the persistence chosen at startup.
type stores struct {
	db          *sql.DB
	runner      tx.Runner
	users       userservice.UserStore
	admins      userservice.AdminStore
	accounts    walletservice.AccountStore
	properties  propservice.Store
	exchange    exservice.Store
	audit       audit.Store
	outbox      *auditpostgres.Store
	revocations walletservice.RevocationList
	lockouts    lockout.Store
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	st, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	if st.db != nil {
		defer st.db.Close()
	}

	health := map[string]httptransport.HealthCheck{}
	if st.db != nil {
		health["postgres"] = st.db.PingContext
	}

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		st.revocations = revocation.NewRedis(rdb.Client)
		st.lockouts = lockout.NewRedis(rdb.Client)
		health["redis"] = rdb.Health
		log.Info("wallet session revocations and connection lockouts stored in redis")
	}

	producer, err := kafka.New(cfg.Kafka)
	if err != nil {
		return err
	}
	if producer != nil {
		defer producer.Close()
		health["kafka"] = producer.Health
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	publisher := audit.NewPublisher(st.audit, audit.WithLogger(log))

	users := userservice.New(st.users, st.admins, st.runner, cfg.Chain.MainAdmin,
		userservice.WithLogger(log), userservice.WithAuditPublisher(publisher), userservice.WithMetrics(m))

	guard, err := lockout.New(st.lockouts, lockout.WithLogger(log), lockout.WithConfig(lockout.Config{
		MaxFailures:  cfg.Auth.Lockout.MaxFailures,
		Window:       cfg.Auth.Lockout.Window,
		LockDuration: cfg.Auth.Lockout.LockDuration,
	}))
	if err != nil {
		return err
	}

	tokens := session.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Chain.ChainID)
	wallets := walletservice.New(st.accounts, tokens, st.revocations, st.runner,
		walletservice.Config{
			ChainID:        cfg.Chain.ChainID,
			InitialBalance: cfg.Chain.InitialBalance,
			FaucetEnabled:  cfg.Chain.FaucetEnabled,
			TokenTTL:       cfg.Auth.TokenTTL,
		},
		walletservice.WithLogger(log), walletservice.WithAuditPublisher(publisher), walletservice.WithMetrics(m),
		walletservice.WithLockout(guard))
	if err := wallets.EnsureEscrow(ctx); err != nil {
		return err
	}

	properties := propservice.New(st.properties, users, st.runner,
		propservice.WithLogger(log), propservice.WithAuditPublisher(publisher), propservice.WithMetrics(m))
	exchange := exservice.New(st.exchange, properties, users, wallets, st.runner,
		exservice.WithLogger(log), exservice.WithAuditPublisher(publisher), exservice.WithMetrics(m),
		exservice.WithPaymentWindow(cfg.Market.PaymentWindow))
	routing := routingservice.New(users, wallets, properties, exchange, routingservice.WithLogger(log))

	auth := middleware.RequireWallet(tokens, st.revocations, log)
	router := httptransport.NewRouter(httptransport.Config{
		Logger:         log,
		Metrics:        m,
		Gatherer:       reg,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Health:         health,
		Modules: []httptransport.Module{
			wallethandler.New(wallets, log, auth),
			userhandler.New(users, log, auth),
			prophandler.New(properties, log, auth),
			exhandler.New(exchange, log, auth),
			routinghandler.New(routing, log, auth),
		},
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return ignoreCancel(sweeper.New(exchange,
			sweeper.WithLogger(log), sweeper.WithInterval(cfg.Market.ExpirySweepInterval)).Run(gctx))
	})

	if producer != nil {
		if st.outbox == nil {
			log.Warn("KAFKA_BROKERS set without DATABASE_URL; audit events stay in memory")
		} else {
			if err := producer.EnsureTopic(ctx, 3, 1); err != nil {
				log.Warn("could not ensure audit topic", "topic", cfg.Kafka.AuditTopic, "err", err)
			}
			relay := worker.NewWorker(st.outbox, producer, st.runner,
				worker.WithLogger(log), worker.WithInterval(cfg.Kafka.OutboxInterval), worker.WithBatchSize(cfg.Kafka.OutboxBatch),
				worker.WithBreaker(circuit.New("audit-kafka", circuit.WithCooldown(30*time.Second))))
			g.Go(func() error { return ignoreCancel(relay.Run(gctx)) })
		}
	}

	srv := httpserver.New(cfg.Addr, router)
	g.Go(func() error {
		log.Info("starting land registry", "addr", cfg.Addr, "chain_id", cfg.Chain.ChainID, "postgres", st.db != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func buildStores(ctx context.Context, cfg config.Server, log *slog.Logger) (*stores, error) {
	if cfg.DatabaseURL == "" {
		log.Info("using in-memory stores (DATABASE_URL not set)")
		return &stores{
			runner:      tx.NewMemoryRunner(),
			users:       userstore.NewInMemoryUsers(),
			admins:      userstore.NewInMemoryAdmins(),
			accounts:    walletstore.NewInMemory(),
			properties:  propstore.NewInMemory(),
			exchange:    exstore.NewInMemory(),
			audit:       auditmemory.NewInMemoryStore(),
			revocations: revocation.NewMemory(),
			lockouts:    lockout.NewMemory(),
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("using postgres stores")
	outbox := auditpostgres.New(db)
	return &stores{
		db:          db,
		runner:      tx.NewPostgresRunner(db),
		users:       userstore.NewPostgresUsers(db),
		admins:      userstore.NewPostgresAdmins(db),
		accounts:    walletstore.NewPostgres(db),
		properties:  propstore.NewPostgres(db),
		exchange:    exstore.NewPostgres(db),
		audit:       outbox,
		outbox:      outbox,
		revocations: revocation.NewMemory(),
		lockouts:    lockout.NewMemory(),
	}, nil
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
