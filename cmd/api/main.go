package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"taskdeck/internal/audit"
	"taskdeck/internal/config"
	"taskdeck/internal/httpapi"
	"taskdeck/internal/identity"
	"taskdeck/internal/obs"
	"taskdeck/internal/task"
	"taskdeck/internal/team"
	"taskdeck/internal/token"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := obs.NewLogger(cfg.Logging.Level, cfg.Logging.Format)

	obs.Init()
	obs.InitBuildInfo(version, commit)

	tokens, err := token.NewService(cfg.Auth.Secret, cfg.Auth.Issuer,
		cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	if err != nil {
		log.WithError(err).Fatal("token service")
	}

	// Stores: Postgres when a DSN is configured, in-memory otherwise. The
	// in-memory mode exists for local development; nothing survives a
	// restart.
	var (
		db         *sql.DB
		userStore  identity.Store
		taskStore  task.Store
		teamStore  team.Store
		auditStore audit.Store
		ready      func(context.Context) error
	)
	if cfg.Database.DSN != "" {
		db, err = sql.Open("pgx", cfg.Database.DSN)
		if err != nil {
			log.WithError(err).Fatal("open database")
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

		userStore = identity.NewPGStore(db)
		taskStore = task.NewPGStore(db)
		teamStore = team.NewPGStore(db)
		auditStore = audit.NewPGStore(db)
		ready = db.PingContext
	} else {
		log.Warn("no database DSN configured; using in-memory stores")
		userStore = identity.NewMemoryStore()
		taskStore = task.NewMemoryStore()
		teamStore = team.NewMemoryStore()
		auditStore = audit.NewMemoryStore()
	}

	auditLog := audit.WithLogging(auditStore, log)

	identitySvc, err := identity.NewService(userStore, tokens, auditLog)
	if err != nil {
		log.WithError(err).Fatal("identity service")
	}
	taskSvc, err := task.NewService(taskStore, auditLog, cfg.Pagination.DefaultPageSize, cfg.Pagination.MaxPageSize)
	if err != nil {
		log.WithError(err).Fatal("task service")
	}
	teamSvc, err := team.NewService(teamStore, userStore, auditLog)
	if err != nil {
		log.WithError(err).Fatal("team service")
	}

	api := httpapi.NewServer(cfg, log, httpapi.Deps{
		Tokens:   tokens,
		Identity: identitySvc,
		Tasks:    taskSvc,
		Teams:    teamSvc,
		AuditLog: auditLog,
		Ready:    ready,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.WithField("addr", srv.Addr).Infof("starting taskdeck-api %s", version)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Info("stopped")
}
