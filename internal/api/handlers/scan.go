package handlers

import (
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/external/alerts"
	"github.com/wonny/scamdunk/internal/fusion"
	"github.com/wonny/scamdunk/internal/marketdata"
	"github.com/wonny/scamdunk/pkg/logger"
)

// ScanHandler serves interactive risk scans
// ⭐ SSOT: the HTTP entry point of the scoring pipeline
type ScanHandler struct {
	normalizer *marketdata.Normalizer
	alerts     *alerts.List
	strategy   fusion.Strategy
	limiter    *rate.Limiter
	logger     *logger.Logger
}

// NewScanHandler creates a scan handler. A nil limiter disables throttling.
func NewScanHandler(normalizer *marketdata.Normalizer, alertList *alerts.List, strategy fusion.Strategy, limiter *rate.Limiter, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		normalizer: normalizer,
		alerts:     alertList,
		strategy:   strategy,
		limiter:    limiter,
		logger:     log,
	}
}

// ScanBody is the POST /api/scan payload. Quote and PriceHistory are raw
// vendor maps; field names are resolved by the market data normalizer.
type ScanBody struct {
	Ticker            string                `json:"ticker" validate:"required,max=16"`
	AssetType         string                `json:"assetType" default:"stock" validate:"oneof=stock crypto"`
	Quote             map[string]any        `json:"quote"`
	PriceHistory      []map[string]any      `json:"priceHistory"`
	IsOTC             bool                  `json:"isOTC"`
	SevenDayReturnPct *float64              `json:"sevenDayReturnPct"`
	VolumeRatioVsAvg  *float64              `json:"volumeRatioVsAvg"`
	PitchText         string                `json:"pitchText" validate:"max=20000"`
	Flags             contracts.ScanFlags   `json:"flags"`
	Crypto            *contracts.CryptoData `json:"crypto"`
}

// Request converts the body into a scan request
func (h *ScanHandler) Request(body *ScanBody) *contracts.ScanRequest {
	raw := body.Quote
	if raw == nil {
		raw = map[string]any{}
	}
	quote, isOTC := h.normalizer.Normalize(raw)
	if quote.Symbol == "" {
		quote.Symbol = strings.ToUpper(strings.TrimSpace(body.Ticker))
	}

	market := marketdata.Build(quote, marketdata.NormalizeHistory(body.PriceHistory), isOTC || body.IsOTC)
	market = marketdata.WithSnapshot(market, body.SevenDayReturnPct, body.VolumeRatioVsAvg)

	req := &contracts.ScanRequest{
		Ticker:    body.Ticker,
		AssetType: contracts.ParseAssetType(body.AssetType),
		Market:    market,
		PitchText: body.PitchText,
		Flags:     body.Flags,
		Crypto:    body.Crypto,
	}
	req.AlertHit = h.alerts.Contains(req.Symbol())
	return req
}

// Scan scores one ticker
// POST /api/scan
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow() {
		respondError(w, http.StatusTooManyRequests, "Too many scan requests")
		return
	}

	var body ScanBody
	if errs := decodeAndValidate(r, &body); errs != nil {
		respondValidation(w, errs)
		return
	}

	req := h.Request(&body)
	resp, err := h.strategy.Score(r.Context(), req)
	if err != nil {
		h.logger.WithError(err).WithScan(req.Symbol(), string(req.AssetType)).Error("Scan failed")
		respondError(w, http.StatusInternalServerError, "Failed to score ticker")
		return
	}

	h.logger.WithScan(resp.Ticker, string(resp.AssetType)).WithFields(map[string]interface{}{
		"risk_level":  resp.RiskLevel,
		"total_score": resp.TotalScore,
		"ai":          resp.UsedAIBackend,
	}).Debug("Scan completed")

	respondJSON(w, http.StatusOK, resp)
}
