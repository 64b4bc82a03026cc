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

	"golang.org/x/sync/errgroup"

	"gatepass/internal/authz"
	formhandler "gatepass/internal/form/handler"
	formmetrics "gatepass/internal/form/metrics"
	formservice "gatepass/internal/form/service"
	formstore "gatepass/internal/form/store/form"
	qrstore "gatepass/internal/form/store/qrcode"
	intakehandler "gatepass/internal/intake/handler"
	intakemetrics "gatepass/internal/intake/metrics"
	intakeservice "gatepass/internal/intake/service"
	"gatepass/internal/platform/config"
	"gatepass/internal/platform/httpserver"
	"gatepass/internal/platform/logger"
	"gatepass/internal/platform/metrics"
	"gatepass/internal/platform/postgres"
	redisclient "gatepass/internal/platform/redis"
	premisehandler "gatepass/internal/premise/handler"
	premiseservice "gatepass/internal/premise/service"
	premisestore "gatepass/internal/premise/store"
	"gatepass/internal/ratelimit"
	"gatepass/internal/session"
	"gatepass/internal/session/revocation"
	httptransport "gatepass/internal/transport/http"
	visithandler "gatepass/internal/visit/handler"
	visitmetrics "gatepass/internal/visit/metrics"
	visitservice "gatepass/internal/visit/service"
	visitstore "gatepass/internal/visit/store"
	visitorservice "gatepass/internal/visitor/service"
	visitorstore "gatepass/internal/visitor/store"
	audit "gatepass/pkg/platform/audit"
	auditmemory "gatepass/pkg/platform/audit/store/memory"
	auditpostgres "gatepass/pkg/platform/audit/store/postgres"
	auditworker "gatepass/pkg/platform/audit/worker"
	authmw "gatepass/pkg/platform/middleware/auth"
)

// main wires the stores, services, transport and background workers. With no
// DATABASE_URL the whole stack runs on in-memory stores for development.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	rdb, err := redisclient.New(cfg.RedisURL)
	if err != nil {
		return err
	}

	// stores: postgres when configured, memory otherwise
	var (
		premises  premiseservice.Store
		forms     formservice.FormStore
		qrcodes   formservice.QRStore
		visits    visitservice.Store
		visitors  visitorservice.Store
		auditSink audit.Store
		outbox    *auditpostgres.Store
	)
	if db != nil {
		premises = premisestore.NewPostgres(db)
		forms = formstore.NewPostgres(db)
		qrcodes = qrstore.NewPostgres(db)
		visits = visitstore.NewPostgres(db)
		visitors = visitorstore.NewPostgres(db)
		outbox = auditpostgres.New(db)
		auditSink = outbox
	} else {
		log.Warn("no database configured, using in-memory stores")
		premises = premisestore.NewInMemory()
		forms = formstore.NewInMemory()
		qrcodes = qrstore.NewInMemory()
		visits = visitstore.NewInMemory()
		visitors = visitorstore.NewInMemory()
		auditSink = auditmemory.New()
	}
	auditPub := audit.NewPublisher(auditSink)

	// services
	premiseSvc := premiseservice.New(premises, log,
		premiseservice.WithAuditPublisher(auditPub))
	guard := authz.NewGuard(premiseSvc)
	formSvc := formservice.New(forms, qrcodes, premises, guard, log,
		formservice.WithAuditPublisher(auditPub))
	visitSvc := visitservice.New(visits, premises, guard, log,
		visitservice.WithAuditPublisher(auditPub),
		visitservice.WithMetrics(visitmetrics.New()))
	resolver := visitorservice.NewResolver(visitors, log)
	intakeSvc := intakeservice.New(qrcodes, forms, visits, resolver, log,
		intakeservice.WithAuditPublisher(auditPub),
		intakeservice.WithMetrics(intakemetrics.New()))

	// sessions
	tokenSvc := session.NewTokenService(cfg.JWTSigningKey, "gatepass")
	var trl authmw.TokenRevocationChecker
	if rdb != nil {
		trl = revocation.NewRedisTRL(rdb.Client)
	} else {
		trl = revocation.NewMemoryTRL()
	}

	// check-in throttling: shared via redis when available
	var limiterStore ratelimit.Store
	if rdb != nil {
		limiterStore = ratelimit.NewRedis(rdb.Client)
	} else {
		limiterStore = ratelimit.NewInMemory()
	}
	limiter := ratelimit.New(limiterStore, cfg.CheckinRateLimit, cfg.CheckinRateWindow, log,
		ratelimit.WithMetrics(ratelimit.NewMetrics()))

	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:            log,
		HTTPMetrics:       metrics.New(),
		SessionValidator:  tokenSvc,
		RevocationChecker: trl,
		CheckinLimiter:    limiter,
		Premises:          premisehandler.New(premiseSvc, log),
		Forms:             formhandler.New(formSvc, log, formmetrics.New()),
		Visits:            visithandler.New(visitSvc, log),
		Intake:            intakehandler.New(intakeSvc, log),
		Health:            healthCheck(ctx, db, rdb),
	})

	srv := httpserver.New(cfg.Addr, router)
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting gatepass", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if outbox != nil && len(cfg.KafkaBrokers) > 0 {
		worker, err := auditworker.New(cfg.KafkaBrokers, cfg.AuditTopic, outbox, log)
		if err != nil {
			return err
		}
		group.Go(func() error {
			return worker.Run(gctx)
		})
	}

	return group.Wait()
}

func healthCheck(ctx context.Context, db *sql.DB, rdb *redisclient.Client) func() error {
	return func() error {
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				return err
			}
		}
		if rdb != nil {
			if err := rdb.Health(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}
