package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	dashboardhttp "github.com/webpos/posdash/internal/dashboard/http"
	"github.com/webpos/posdash/internal/observability"
	"github.com/webpos/posdash/internal/state"
	"github.com/webpos/posdash/jobs"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, "https://web-pos-back-end.vercel.app/api", cfg.POSAPIBaseURL)
	assert.Zero(t, cfg.POSAPITimeout)
	assert.Equal(t, 10*time.Minute, cfg.AnalyticsCacheTTL)
	assert.Equal(t, 512, cfg.SessionCapacity)
	assert.Equal(t, "*/15 * * * *", cfg.WarmupCron)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, language.English, cfg.LocaleTag())
	assert.Equal(t, state.LastResolvedWins, cfg.Policy())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DASHBOARD_TIMEZONE", "Asia/Tokyo")
	t.Setenv("DASHBOARD_LOCALE", "de")
	t.Setenv("STATE_RACE_POLICY", "sequenced")
	t.Setenv("SESSION_TTL", "5m")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "Asia/Tokyo", cfg.Location().String())
	assert.Equal(t, language.German, cfg.LocaleTag())
	assert.Equal(t, state.Sequenced, cfg.Policy())
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	for key, value := range map[string]string{
		"DASHBOARD_TIMEZONE":  "Mars/Olympus",
		"STATE_RACE_POLICY":   "first-wins",
		"SESSION_CAPACITY":    "0",
		"ANALYTICS_CACHE_TTL": "soon",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg, err := LoadConfig()
	require.NoError(t, err)
	registry := state.NewRegistry(4, time.Minute, func(id string) *state.AppState {
		return state.New(id, nil, state.Options{})
	})
	return NewRouter(RouterParams{
		Config:           cfg,
		DashboardHandler: dashboardhttp.NewHandler(nil, registry, nil, nil, nil),
		JobHandler:       jobs.NewHandler(nil, nil),
		Metrics:          observability.NewMetrics(),
	})
}

func TestRouterHealthAndHeaders(t *testing.T) {
	router := newTestRouter(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rr.Header().Get(dashboardhttp.SessionHeader))
}

func TestRouterMountsJobsAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"queue":"default"`)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "posdash_http_requests_total")
}

func TestInTestMode(t *testing.T) {
	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	assert.True(t, InTestMode())
	t.Setenv(testModeEnv, "")
	RefreshTestMode()
	assert.False(t, InTestMode())
	t.Setenv(testModeEnv, "true")
	RefreshTestMode()
	assert.True(t, InTestMode())
	t.Setenv(testModeEnv, "sometimes")
	RefreshTestMode()
	assert.False(t, InTestMode(), "unparseable values leave test mode off")
}
