package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/metrics"
	"github.com/wonny/scamdunk/pkg/config"
	"github.com/wonny/scamdunk/pkg/httputil"
	"github.com/wonny/scamdunk/pkg/logger"
	"github.com/wonny/scamdunk/pkg/redis"
)

// Sentinel errors. Callers compare with errors.Is.
var (
	ErrNotConfigured       = errors.New("inference backend not configured")
	ErrUpstreamTimeout     = errors.New("inference backend timed out")
	ErrUpstreamBadResponse = errors.New("inference backend returned a malformed response")
	ErrUpstreamUnavailable = errors.New("inference backend unavailable")
	ErrCircuitOpen         = errors.New("inference circuit breaker open")
	ErrRateLimited         = fmt.Errorf("%w: rate limited", ErrUpstreamUnavailable)
)

// Limiter admits or rejects one call. *redis.RateLimiter satisfies it.
type Limiter interface {
	Allow(ctx context.Context, cfg redis.RateLimitConfig) (bool, int, error)
}

const breakerName = "inference"

// Client talks to the remote inference service
// ⭐ SSOT: POST /analyze and GET /health are only called from here
type Client struct {
	analyze     *httputil.Client
	health      *httputil.Client
	breaker     *gobreaker.CircuitBreaker
	limiter     Limiter
	limit       redis.RateLimitConfig
	timeout     time.Duration
	logger      *logger.Logger
	baseURL     string
	useLiveData bool
	historyDays int
}

// NewClient creates a client from config. limiter may be nil.
// Retries are disabled: a failed call falls back instead of being repeated.
// A full rate window is reported as ErrRateLimited rather than waited out.
func NewClient(cfg *config.Config, log *logger.Logger, limiter *redis.RateLimiter) *Client {
	analyze := httputil.NewWithTimeout(cfg, log, cfg.AI.Timeout).DisableRetry()
	health := httputil.NewWithTimeout(cfg, log, cfg.AI.HealthTimeout).DisableRetry()

	failures := uint32(cfg.AI.BreakerFailures)
	if failures == 0 {
		failures = 5
	}

	settings := gobreaker.Settings{
		Name:    breakerName,
		Timeout: cfg.AI.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Inference circuit breaker state changed")
			metrics.SetBreakerState(name, int(to))
		},
	}

	c := &Client{
		analyze:     analyze,
		health:      health,
		breaker:     gobreaker.NewCircuitBreaker(settings),
		limit:       redis.InferenceRateLimit(cfg.AI.RateLimit, cfg.AI.RateWindow),
		timeout:     cfg.AI.Timeout,
		logger:      log,
		baseURL:     strings.TrimRight(cfg.AI.BaseURL, "/"),
		useLiveData: cfg.AI.UseLiveData,
		historyDays: cfg.AI.HistoryDays,
	}
	if limiter != nil {
		c.limiter = limiter
	}
	return c
}

// Enabled reports whether a backend URL is configured
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// Health probes GET /health
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	var out HealthResponse
	if err := c.health.GetJSON(ctx, c.baseURL+"/health", &out); err != nil {
		err = classify(err)
		metrics.RecordInference("health", outcome(err))
		return nil, err
	}
	metrics.RecordInference("health", "ok")
	return &out, nil
}

// Analyze submits req to POST /analyze. The crypto path probes /health
// first and treats an unhealthy backend as unavailable. The health probe
// and the analyze call share one AI timeout.
func (c *Client) Analyze(ctx context.Context, req *contracts.ScanRequest) (*AnalysisResponse, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	if err := c.admit(ctx); err != nil {
		metrics.RecordInference("analyze", outcome(err))
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		if req.AssetType == contracts.AssetCrypto {
			h, err := c.Health(ctx)
			if err != nil {
				return nil, err
			}
			if !h.Healthy() {
				return nil, fmt.Errorf("%w: health status %q", ErrUpstreamUnavailable, h.Status)
			}
		}
		return c.post(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		metrics.RecordInference("analyze", outcome(err))
		return nil, err
	}

	metrics.RecordInference("analyze", "ok")
	return result.(*AnalysisResponse), nil
}

// admit checks the shared rate window without waiting. A limiter error
// admits the call.
func (c *Client) admit(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	allowed, _, err := c.limiter.Allow(ctx, c.limit)
	if err != nil {
		c.logger.WithError(err).Warn("Inference rate limit check failed")
		return nil
	}
	if !allowed {
		return ErrRateLimited
	}
	return nil
}

func (c *Client) post(ctx context.Context, req *contracts.ScanRequest) (*AnalysisResponse, error) {
	payload := NewAnalysisRequest(req, c.useLiveData, c.historyDays)

	var out AnalysisResponse
	if err := c.analyze.PostJSONInto(ctx, c.baseURL+"/analyze", payload, &out); err != nil {
		return nil, classify(err)
	}
	if err := out.validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

// validate rejects responses the fusion layer cannot map
func (r *AnalysisResponse) validate() error {
	if _, ok := contracts.ParseRiskLevel(r.RiskLevel); !ok || r.RiskLevel == string(contracts.RiskInsufficient) {
		return fmt.Errorf("%w: risk_level %q", ErrUpstreamBadResponse, r.RiskLevel)
	}
	if r.RiskProbability == nil {
		return fmt.Errorf("%w: missing risk_probability", ErrUpstreamBadResponse)
	}
	if p := *r.RiskProbability; p < 0 || p > 1 {
		return fmt.Errorf("%w: risk_probability %v out of range", ErrUpstreamBadResponse, p)
	}
	for i, s := range r.Signals {
		if strings.TrimSpace(s.Code) == "" {
			return fmt.Errorf("%w: signals[%d] has no code", ErrUpstreamBadResponse, i)
		}
	}
	return nil
}

// classify maps transport errors onto the package sentinels
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUpstreamBadResponse) || errors.Is(err, ErrUpstreamTimeout) ||
		errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, ErrCircuitOpen) {
		return err
	}
	if httputil.IsTimeout(err) {
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	}

	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode >= http.StatusInternalServerError || statusErr.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
		return fmt.Errorf("%w: %v", ErrUpstreamBadResponse, err)
	}
	if strings.Contains(err.Error(), "failed to decode JSON") {
		return fmt.Errorf("%w: %v", ErrUpstreamBadResponse, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
}

// Reason returns a short label for err, used for fallbackReason and metrics
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrUpstreamTimeout):
		return "timeout"
	case errors.Is(err, ErrUpstreamBadResponse):
		return "bad_response"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "unavailable"
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return Reason(err)
}
