package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/wonny/scamdunk/internal/api/handlers"
	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/external/alerts"
	"github.com/wonny/scamdunk/internal/fusion"
	"github.com/wonny/scamdunk/internal/marketdata"
	"github.com/wonny/scamdunk/internal/policy"
	"github.com/wonny/scamdunk/internal/promoters"
	"github.com/wonny/scamdunk/internal/realtime"
	"github.com/wonny/scamdunk/internal/schemes"
	"github.com/wonny/scamdunk/internal/scoring"
	"github.com/wonny/scamdunk/pkg/logger"
	"github.com/wonny/scamdunk/pkg/redis"
)

type testEnv struct {
	router http.Handler
	hub    *realtime.Hub
}

func newTestEnv(t *testing.T, limiter *rate.Limiter) *testEnv {
	t.Helper()
	log := logger.Nop()
	pol := policy.Default()

	strategy := fusion.New(scoring.New(pol), nil, pol.Fusion.ScoreScale, zerolog.Nop())
	alertList := alerts.NewList([]string{"SCAM"})

	store := schemes.NewMemoryStore()
	hub := realtime.NewHub(log)
	t.Cleanup(hub.Close)
	tracking := schemes.NewService(store, schemes.NewTracker(pol.Tracker, zerolog.Nop()), zerolog.Nop(), hub)
	promoterSvc := promoters.NewService(store, redis.NewCache(redis.Disabled(), "test"), "", 0, log)

	router := NewRouter(Handlers{
		Health:    handlers.NewHealthHandler(nil, alertList, "test"),
		Scan:      handlers.NewScanHandler(marketdata.NewNormalizer(pol.Stock.OTCExchanges), alertList, strategy, limiter, log),
		Schemes:   handlers.NewSchemesHandler(tracking, log),
		Promoters: handlers.NewPromotersHandler(promoterSvc, log),
		Hub:       hub,
	}, log)

	return &testEnv{router: router, hub: hub}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(v))
}

const pumpScan = `{
	"ticker": "acme",
	"quote": {"regularMarketPrice": "0.80", "marketCap": 40000000, "fullExchangeName": "OTC Markets"},
	"priceHistory": [{"date": "2024-03-08", "close": 0.8}, {"date": "2024-03-01", "close": 0.36}],
	"sevenDayReturnPct": 120,
	"volumeRatioVsAvg": 12
}`

const batch = `{
	"date": "2024-03-01",
	"observations": [{
		"symbol": "ACME",
		"riskLevel": "HIGH",
		"riskScore": 14,
		"promotionScore": 60,
		"price": 0.8,
		"promoterAccounts": [{"platform": "twitter", "identifier": "PumpKing", "postCount": 4}]
	}]
}`

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, "GET", "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.HealthResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "healthy", resp.Status)
	assert.False(t, resp.Inference.Enabled)
	assert.Equal(t, 1, resp.AlertTickers)
}

func TestScan_EndToEndPump(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, "POST", "/api/scan", pumpScan)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp contracts.RiskResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "ACME", resp.Ticker)
	assert.Equal(t, contracts.AssetStock, resp.AssetType)
	assert.Equal(t, contracts.RiskHigh, resp.RiskLevel)
	assert.Equal(t, 14, resp.TotalScore)
	assert.False(t, resp.UsedAIBackend)
	assert.Empty(t, resp.FallbackReason)

	codes := make([]string, len(resp.Signals))
	for i, s := range resp.Signals {
		codes[i] = s.Code
	}
	assert.ElementsMatch(t, []string{
		"MICROCAP_PRICE", "SMALL_MARKET_CAP", "OTC_EXCHANGE", "SPIKE_7D_HIGH", "VOLUME_EXPLOSION_HIGH",
	}, codes)
}

func TestScan_SnapshotWithoutHistory(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, "POST", "/api/scan", `{
		"ticker": "ACME",
		"quote": {"price": 0.80, "marketCap": 40000000},
		"isOTC": true,
		"sevenDayReturnPct": 120,
		"volumeRatioVsAvg": 12
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp contracts.RiskResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, contracts.RiskHigh, resp.RiskLevel)
	assert.Equal(t, 14, resp.TotalScore)
	assert.Len(t, resp.Signals, 5)
}

func TestScan_AlertListOverride(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, "POST", "/api/scan", `{
		"ticker": "scam",
		"quote": {"price": 25, "marketCap": 5000000000, "exchange": "NASDAQ", "averageDollarVolume": 90000000},
		"priceHistory": [{"date": "2024-03-01", "close": 25}, {"date": "2024-03-02", "close": 25}]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp contracts.RiskResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, contracts.RiskHigh, resp.RiskLevel)
	assert.Equal(t, 5, resp.TotalScore)
	require.Len(t, resp.Signals, 1)
	assert.Equal(t, "ALERT_LIST_HIT", resp.Signals[0].Code)
}

func TestScan_InsufficientData(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, "POST", "/api/scan", `{"ticker": "GHOST"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp contracts.RiskResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, contracts.RiskInsufficient, resp.RiskLevel)
}

func TestScan_Validation(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"missing ticker and bad asset", `{"assetType": "bond"}`, []string{"ticker", "assetType"}},
		{"ticker too long", `{"ticker": "ABCDEFGHIJKLMNOPQ"}`, []string{"ticker"}},
		{"malformed", `{"ticker": `, []string{""}},
		{"empty", ``, []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, "POST", "/api/scan", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp struct {
				Fields []handlers.ValidationError `json:"fields"`
			}
			decodeBody(t, rec, &resp)
			got := make([]string, len(resp.Fields))
			for i, f := range resp.Fields {
				got[i] = f.Field
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}

func TestScan_Throttled(t *testing.T) {
	env := newTestEnv(t, rate.NewLimiter(0, 1))

	assert.Equal(t, http.StatusOK, env.do(t, "POST", "/api/scan", pumpScan).Code)
	assert.Equal(t, http.StatusTooManyRequests, env.do(t, "POST", "/api/scan", pumpScan).Code)
}

func TestSchemes_IngestListGet(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, "POST", "/api/schemes/ingest", batch)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var summary schemes.RunSummary
	decodeBody(t, rec, &summary)
	assert.Equal(t, []string{"SCH-ACME-s9n6o0"}, summary.Created)

	rec = env.do(t, "GET", "/api/schemes?status=new", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list handlers.SchemeListResponse
	decodeBody(t, rec, &list)
	assert.Equal(t, 1, list.ActiveSchemes)
	require.Len(t, list.Schemes, 1)
	assert.Equal(t, "acme-penny-stock-promotion-scheme", list.Schemes[0].Slug)

	rec = env.do(t, "GET", "/api/schemes?status=ONGOING", "")
	decodeBody(t, rec, &list)
	assert.Empty(t, list.Schemes)

	rec = env.do(t, "GET", "/api/schemes/SCH-ACME-s9n6o0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		SchemeID string                 `json:"schemeId"`
		Status   contracts.SchemeStatus `json:"status"`
		Slug     string                 `json:"slug"`
	}
	decodeBody(t, rec, &view)
	assert.Equal(t, "SCH-ACME-s9n6o0", view.SchemeID)
	assert.Equal(t, contracts.StatusNew, view.Status)
	assert.Equal(t, "acme-penny-stock-promotion-scheme", view.Slug)
}

func TestSchemes_Errors(t *testing.T) {
	env := newTestEnv(t, nil)

	assert.Equal(t, http.StatusBadRequest, env.do(t, "GET", "/api/schemes?status=bogus", "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, "GET", "/api/schemes/SCH-NOPE-1", "").Code)

	rec := env.do(t, "POST", "/api/schemes/ingest", `{
		"date": "03/01/2024",
		"observations": [{"symbol": "", "riskLevel": "EXTREME"}]
	}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error  string                     `json:"error"`
		Fields []handlers.ValidationError `json:"fields"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "validation failed", resp.Error)
	got := make([]string, len(resp.Fields))
	for i, f := range resp.Fields {
		got[i] = f.Field
	}
	assert.ElementsMatch(t, []string{"date", "observations[0].symbol", "observations[0].riskLevel"}, got)
}

func TestPromoters(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusOK, env.do(t, "POST", "/api/schemes/ingest", batch).Code)

	rec := env.do(t, "GET", "/api/promoters", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var pdb contracts.PromoterDatabase
	decodeBody(t, rec, &pdb)
	assert.Equal(t, 1, pdb.TotalPromoters)
	require.Len(t, pdb.Promoters, 1)
	assert.Equal(t, "PRM_TWITTER_pumpking", pdb.Promoters[0].PromoterID)
	assert.Equal(t, 4, pdb.Promoters[0].TotalPosts)

	rec = env.do(t, "GET", "/api/promoters?risk=high", "")
	decodeBody(t, rec, &pdb)
	assert.Empty(t, pdb.Promoters)

	rec = env.do(t, "GET", "/api/promoters?risk=LOW&active=true", "")
	decodeBody(t, rec, &pdb)
	assert.Len(t, pdb.Promoters, 1)

	assert.Equal(t, http.StatusBadRequest, env.do(t, "GET", "/api/promoters?active=maybe", "").Code)
	assert.Equal(t, http.StatusOK, env.do(t, "GET", "/api/promoters/PRM_TWITTER_pumpking", "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, "GET", "/api/promoters/PRM_TWITTER_nobody", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, "GET", "/health", "")

	rec := env.do(t, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "scamdunk_http_requests_total")
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, "GET", "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
}

func TestSchemeStream(t *testing.T) {
	env := newTestEnv(t, nil)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/schemes", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return env.hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Post(srv.URL+"/api/schemes/ingest", "application/json", strings.NewReader(batch))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first realtime.Event
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, realtime.EventSchemeCreated, first.Type)

	var second realtime.Event
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, realtime.EventTrackingRun, second.Type)
}
