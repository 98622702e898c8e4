package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_RecordsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordExportAllowed("csv")
	c.RecordExportAllowed("csv")
	c.RecordExportAllowed("xlsx")
	c.RecordExportDenied("PAYMENT_REQUIRED")
	c.RecordDemoFallback("provider_error")
	c.RecordProviderFailure()
	c.RecordRenderLatency("csv", 50*time.Millisecond)

	if got := testutil.ToFloat64(c.exportsAllowed.WithLabelValues("csv")); got != 2 {
		t.Errorf("expected 2 csv exports allowed, got %v", got)
	}
	if got := testutil.ToFloat64(c.exportsAllowed.WithLabelValues("xlsx")); got != 1 {
		t.Errorf("expected 1 xlsx export allowed, got %v", got)
	}
	if got := testutil.ToFloat64(c.exportsDenied.WithLabelValues("PAYMENT_REQUIRED")); got != 1 {
		t.Errorf("expected 1 denied export, got %v", got)
	}
	if got := testutil.ToFloat64(c.demoFallback.WithLabelValues("provider_error")); got != 1 {
		t.Errorf("expected 1 demo fallback, got %v", got)
	}
	if got := testutil.ToFloat64(c.providerFailures); got != 1 {
		t.Errorf("expected 1 provider failure, got %v", got)
	}
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordExportAllowed("csv")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "exportman_exports_allowed_total") {
		t.Error("expected exportman_exports_allowed_total in scrape output")
	}
}
