package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsExposure(t *testing.T) {
	SyncRuns.Inc()
	SyncErrors.Inc()
	IncAPIRetry("statuses.get")
	ObserveAPIRequest("statuses.get", http.StatusOK, time.Now().Add(-200*time.Millisecond))
	ObserveSyncDuration(time.Now().Add(-1500 * time.Millisecond))
	IncTranslation("user")
	IncNotFound("user")
	IncUnimplementedParam("update_status", "lat")
	IncCommandRun("whoami")
	IncCommandError("whoami")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, m := range []string{
		"tweepydon_api_requests_total",
		"tweepydon_api_request_duration_seconds",
		"tweepydon_api_retries_total",
		"tweepydon_translations_total",
		"tweepydon_not_found_total",
		"tweepydon_unimplemented_params_total",
		"tweepydon_command_runs_total",
		"tweepydon_command_errors_total",
		"tweepydon_sync_runs_total",
		"tweepydon_sync_errors_total",
		"tweepydon_sync_duration_seconds",
	} {
		if !strings.Contains(body, m) {
			t.Fatalf("expected metric %s in body", m)
		}
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health status: %d", rec.Code)
	}
}
