package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/wonny/scamdunk/internal/external/alerts"
	"github.com/wonny/scamdunk/internal/external/inference"
	"github.com/wonny/scamdunk/internal/fusion"
	"github.com/wonny/scamdunk/internal/marketdata"
	"github.com/wonny/scamdunk/internal/policy"
	"github.com/wonny/scamdunk/internal/promoters"
	"github.com/wonny/scamdunk/internal/schemes"
	"github.com/wonny/scamdunk/internal/scoring"
	"github.com/wonny/scamdunk/pkg/config"
	"github.com/wonny/scamdunk/pkg/database"
	"github.com/wonny/scamdunk/pkg/httputil"
	"github.com/wonny/scamdunk/pkg/logger"
	"github.com/wonny/scamdunk/pkg/redis"
)

// app holds the wired components shared by every command
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	policy *policy.Policy

	redis *redis.Client
	db    *database.DB // nil unless SCHEME_STORE=postgres

	store     schemes.Store
	tracking  *schemes.Service
	promoters *promoters.Service

	alertList *alerts.List
	alerts    *alerts.Service

	inference  *inference.Client
	strategy   fusion.Strategy
	normalizer *marketdata.Normalizer
}

// loadConfig loads config and applies global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newApp wires every component. Logs go to logOut so that command output
// on stdout stays machine readable.
func newApp(ctx context.Context, logOut io.Writer, notifiers ...schemes.Notifier) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return buildApp(ctx, cfg, logger.NewWithWriter(cfg, logOut), notifiers...)
}

func buildApp(ctx context.Context, cfg *config.Config, log *logger.Logger, notifiers ...schemes.Notifier) (*app, error) {
	a := &app{cfg: cfg, log: log}

	pol, _, err := policy.Load(cfg.PolicyPath)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	a.policy = pol
	if hash, err := policy.Hash(pol); err == nil {
		log.WithFields(map[string]interface{}{
			"path": cfg.PolicyPath,
			"hash": hash,
		}).Debug("Detection policy loaded")
	}

	a.redis, err = redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		a.redis = redis.Disabled()
	}

	switch cfg.Schemes.Store {
	case "postgres":
		a.db, err = database.New(cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := a.db.Migrate(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		a.store = schemes.NewPostgresStore(a.db)
	default:
		a.store = schemes.NewFileStore(cfg.Schemes.DatabasePath)
	}

	tracker := schemes.NewTracker(pol.Tracker, log.Component("tracker"))
	a.tracking = schemes.NewService(a.store, tracker, log.Component("schemes"), notifiers...)
	a.promoters = promoters.NewService(a.store, redis.NewCache(a.redis, "promoters"), cfg.Schemes.PromoterPath, cfg.Schemes.PromoterTTL, log)

	var limiter *redis.RateLimiter
	if a.redis.Enabled() {
		limiter = redis.NewRateLimiter(a.redis, "scamdunk")
	}

	a.alertList = alerts.NewList(cfg.Alerts.SeedTickers)
	secClient := httputil.New(cfg, log).WithUserAgent(cfg.Alerts.UserAgent)
	if limiter != nil {
		secClient.WithRateLimiter(limiter, redis.SECRateLimit)
	}
	scraper := alerts.NewScraper(secClient, cfg.Alerts.SuspensionsURL, log)
	a.alerts = alerts.NewService(a.alertList, scraper, redis.NewCache(a.redis, "alerts"), log)
	a.alerts.Warm(ctx)

	a.inference = inference.NewClient(cfg, log, limiter)
	a.strategy = fusion.New(scoring.New(pol), a.inference, pol.Fusion.ScoreScale, log.Component("fusion"))
	a.normalizer = marketdata.NewNormalizer(pol.Stock.OTCExchanges)

	return a, nil
}

// healthClient returns the inference client when a backend is configured
func (a *app) healthClient() *inference.Client {
	if !a.cfg.AI.Enabled() {
		return nil
	}
	return a.inference
}

// Close releases connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// stderrApp is the common case for one-shot commands
func stderrApp(ctx context.Context) (*app, error) {
	return newApp(ctx, os.Stderr)
}
