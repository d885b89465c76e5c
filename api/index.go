package handler

import (
	"net/http"
	"time"

	"github.com/arnavshah/trip-roster-api/pkg/app"
	"github.com/arnavshah/trip-roster-api/pkg/config"
	"github.com/arnavshah/trip-roster-api/pkg/logging"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	a             *app.App
	sweepInterval time.Duration
)

func init() {
	// Load .env if it exists (for local testing with vercel dev)
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	a, err = app.New(cfg, logger)
	if err != nil {
		logger.Fatal("could not build server", zap.Error(err))
	}
	sweepInterval = cfg.ProposalSweepInterval
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	// expired proposals are swept on the request path here
	a.Ledger.SweepIfDue(sweepInterval)
	a.Router.ServeHTTP(w, req)
}
