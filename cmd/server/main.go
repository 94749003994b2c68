package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arbiter/internal/assets"
	"arbiter/internal/audit"
	authhandler "arbiter/internal/auth/handler"
	authservice "arbiter/internal/auth/service"
	revocationstore "arbiter/internal/auth/store/revocation"
	userstore "arbiter/internal/auth/store/user"
	"arbiter/internal/confirmation/adapters"
	confirmationhandler "arbiter/internal/confirmation/handler"
	confirmationmetrics "arbiter/internal/confirmation/metrics"
	confirmationservice "arbiter/internal/confirmation/service"
	confirmationstore "arbiter/internal/confirmation/store"
	gamestore "arbiter/internal/fixture/store/games"
	httpapi "arbiter/internal/http"
	linkstore "arbiter/internal/identity/store/link"
	"arbiter/internal/platform/config"
	"arbiter/internal/platform/httpserver"
	"arbiter/internal/platform/logger"
	"arbiter/internal/platform/postgres"
	platformredis "arbiter/internal/platform/redis"
)

// main wires stores, services, and the HTTP surface. Each backing resource
// falls back to its in-memory twin when unconfigured so the binary runs
// standalone in development.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Identity database: users, referee links, confirmations.
	var identityDB *sql.DB
	if cfg.IdentityDSN != "" {
		db, err := postgres.Open(ctx, cfg.IdentityDSN)
		if err != nil {
			log.Error("identity database unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		identityDB = db
	}

	// Fixture database: games, teams, tournaments, assignments.
	var fixtureDB *sql.DB
	if cfg.FixtureDSN != "" {
		db, err := postgres.Open(ctx, cfg.FixtureDSN)
		if err != nil {
			log.Error("fixture database unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		fixtureDB = db
	}

	var (
		users         authservice.UserStore
		links         confirmationservice.LinkStore
		linkResolver  adapters.LinkResolver
		confirmations confirmationservice.ConfirmationStore
	)
	if identityDB != nil {
		users = userstore.NewPostgres(identityDB)
		pgLinks := linkstore.NewPostgres(identityDB)
		links = pgLinks
		linkResolver = pgLinks
		confirmations = confirmationstore.NewPostgres(identityDB)
	} else {
		log.Warn("identity database not configured, using in-memory stores")
		users = userstore.NewInMemory()
		memLinks := linkstore.NewInMemory()
		links = memLinks
		linkResolver = memLinks
		confirmations = confirmationstore.NewInMemory()
	}

	var games confirmationservice.GameStore
	if fixtureDB != nil {
		games = gamestore.NewPostgres(fixtureDB)
	} else {
		log.Warn("fixture database not configured, using in-memory store")
		games = gamestore.NewInMemory()
	}

	var revocations authservice.RevocationList
	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		revocations = revocationstore.NewRedis(redisClient.Client)
	} else {
		log.Warn("redis not configured, using in-memory revocation list")
		revocations = revocationstore.NewInMemory()
	}

	var publisher audit.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := audit.NewKafkaPublisher(cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			log.Error("kafka unavailable", "error", err)
			os.Exit(1)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := kafka.Close(flushCtx); err != nil {
				log.Warn("audit flush on shutdown failed", "error", err)
			}
		}()
		publisher = kafka
	} else {
		log.Warn("kafka not configured, audit events kept in memory")
		publisher = audit.NewMemoryPublisher()
	}

	authSvc := authservice.New(users, revocations, cfg.JWTSigningKey, cfg.JWTTTL,
		authservice.WithLogger(log),
		authservice.WithAuditPublisher(publisher),
	)

	locator := assets.NewLocator(cfg.CDNBaseURL)
	contacts := adapters.NewContactAdapter(linkResolver, users)

	confirmationSvc := confirmationservice.New(links, games, confirmations, locator,
		confirmationservice.WithLogger(log),
		confirmationservice.WithMetrics(confirmationmetrics.New()),
		confirmationservice.WithAuditPublisher(publisher),
		confirmationservice.WithContactDirectory(contacts),
	)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Auth:         authhandler.New(authSvc, log),
		Confirmation: confirmationhandler.New(confirmationSvc, log),
		Validator:    authSvc,
		Logger:       log,
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
