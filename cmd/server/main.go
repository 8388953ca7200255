package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"authd/internal/audit"
	"authd/internal/authz/service"
	"authd/internal/authz/store"
	clientstore "authd/internal/authz/store/client"
	codestore "authd/internal/authz/store/code"
	"authd/internal/authz/sweep"
	"authd/internal/directory"
	"authd/internal/platform/config"
	"authd/internal/platform/httpserver"
	"authd/internal/platform/logger"
	"authd/internal/platform/metrics"
	platformredis "authd/internal/platform/redis"
	"authd/internal/session"
	httptransport "authd/internal/transport/http"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.SessionSecret == config.DevSessionSecret {
		log.Warn("running with the built-in dev session secret")
	}

	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.PostgresDSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres open failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("postgres ping failed", "error", err)
			os.Exit(1)
		}
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	clients, codes := buildStores(log, db, redisClient)

	users := directory.NewInMemory()
	if db == nil {
		users.Put("admin", "Administrator")
	}

	sessions := session.NewCookieProvider(cfg.SessionSecret, cfg.SessionTTL,
		session.WithSecureCookies(strings.HasPrefix(cfg.BaseURL, "https://")))

	auditSink := audit.NewInMemoryStore()
	auditInbox := make(chan audit.Event, 256)
	auditWorker := audit.NewWorker(auditSink, auditInbox, log)
	auditor := audit.NewChannelEmitter(auditInbox)

	endpoints := service.Endpoints{
		BaseURL:           cfg.BaseURL,
		DefaultLandingURL: cfg.DefaultLandingURL,
		LoginURL:          cfg.LoginURL,
	}
	svc := service.New(log, m, clients, codes, users, auditor, endpoints, cfg.CodeTTL)

	sweeper := sweep.New(codes, log, auditor, cfg.SweepInterval)

	authorizeHandler := httptransport.NewAuthorizeHandler(log, svc, sessions, endpoints)
	loginHandler := httptransport.NewLoginHandler(log, sessions, users, cfg.BaseURL, cfg.DefaultLandingURL)
	router := httptransport.NewRouter(log, m, authorizeHandler, loginHandler)

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting authd", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return auditWorker.Run(ctx)
	})

	g.Go(func() error {
		return sweeper.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// buildStores selects backends from what is configured: Postgres for clients
// and codes when a DSN is set, Redis for codes when a URL is set, in-memory
// (with a dev seed) otherwise.
func buildStores(log *slog.Logger, db *sql.DB, redisClient *platformredis.Client) (store.ClientRegistry, store.CodeStore) {
	var clients store.ClientRegistry
	var codes store.CodeStore

	if db != nil {
		clients = clientstore.NewPostgres(db)
		codes = codestore.NewPostgres(db)
	} else {
		mem := clientstore.NewInMemory()
		seeded := clientstore.SeedDevClient(mem)
		log.Info("seeded dev client", "client_id", seeded.OAuthClientID)
		clients = mem
		codes = codestore.NewInMemory()
	}

	if redisClient != nil {
		codes = codestore.NewRedis(redisClient.Client)
	}

	return clients, codes
}
