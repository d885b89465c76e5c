package app

import (
	"fmt"

	"github.com/arnavshah/trip-roster-api/pkg/auth"
	"github.com/arnavshah/trip-roster-api/pkg/config"
	"github.com/arnavshah/trip-roster-api/pkg/database"
	"github.com/arnavshah/trip-roster-api/pkg/handlers"
	"github.com/arnavshah/trip-roster-api/pkg/ledger"
	"github.com/arnavshah/trip-roster-api/pkg/metrics"
	"github.com/arnavshah/trip-roster-api/pkg/roster"
	"github.com/arnavshah/trip-roster-api/pkg/service"
	"github.com/arnavshah/trip-roster-api/pkg/store"
	"github.com/arnavshah/trip-roster-api/pkg/store/airtable"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the assembled server
type App struct {
	Router *gin.Engine
	Ledger *ledger.Ledger
	DB     *gorm.DB
}

// New wires the store, ledger, service and routes described by cfg
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.InitDB(cfg.DatabaseURL, cfg.DataPath)
	if err != nil {
		return nil, err
	}

	st, err := newStore(cfg, db, logger)
	if err != nil {
		closeDB(db)
		return nil, err
	}

	authn, err := auth.NewAuthenticator(cfg.JWTSecret, cfg.AdminPassword, cfg.AdminPasswordHash, cfg.TokenTTL)
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("configure auth: %w", err)
	}

	m := metrics.New("roster")
	l := ledger.New(
		ledger.WithTTL(cfg.ProposalTTL),
		ledger.WithLogger(logger.Named("ledger")),
		ledger.WithMetrics(m),
	)
	svc := service.New(st, roster.NewAllocator(nil), l,
		service.WithEvents(database.NewEventLog(db)),
		service.WithMetrics(m),
		service.WithLogger(logger.Named("roster")),
		service.WithConcurrency(cfg.UpdateConcurrency),
	)

	h := &handlers.Handler{Service: svc, Auth: authn, Metrics: m, Logger: logger.Named("http")}
	return &App{Router: handlers.NewRouter(h), Ledger: l, DB: db}, nil
}

func newStore(cfg config.Config, db *gorm.DB, logger *zap.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendAirtable:
		return airtable.New(airtable.Config{
			APIKey:       cfg.Airtable.APIKey,
			BaseID:       cfg.Airtable.BaseID,
			TripsTable:   cfg.Airtable.TripsTable,
			SignupsTable: cfg.Airtable.SignupsTable,
			BaseURL:      cfg.Airtable.BaseURL,
			MaxRetries:   cfg.Airtable.MaxRetries,
		}, airtable.WithLogger(logger.Named("airtable"))), nil
	case config.BackendSQL:
		return database.NewSQLStore(db), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// Close releases the database connection
func (a *App) Close() {
	closeDB(a.DB)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
