package httpapi

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func scrape(t *testing.T) []byte {
	t.Helper()
	rr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", rr.Code)
	}
	return rr.Body.Bytes()
}

func TestMetricsMiddleware_EmitsRequestCounters(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	rr := httptest.NewRecorder()
	MetricsMiddleware(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))
	if rr.Code != http.StatusTeapot {
		t.Fatalf("status=%d", rr.Code)
	}
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/test", "GET", "418")); got < 1 {
		t.Fatalf("requests_total=%v", got)
	}
	if !bytes.Contains(scrape(t), []byte("detectd_http_requests_total")) {
		t.Fatalf("expected detectd_http_requests_total in metrics")
	}
}

func TestMetrics_RoutePatternLabel(t *testing.T) {
	r := NewMux(&mockService{ready: true}, &mockSource{})
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/readyz", "GET", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/readyz", nil))
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/readyz", "GET", "200"))
	if after != before+1 {
		t.Fatalf("before=%v after=%v", before, after)
	}
}

func TestMetrics_FailureKindCounted(t *testing.T) {
	before := testutil.ToFloat64(requestFailures.WithLabelValues("fetch"))
	r := NewMux(&mockService{}, &mockSource{fetchErr: errors.New("no such host")})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/?url=http://nope.invalid/", nil))
	if got := testutil.ToFloat64(requestFailures.WithLabelValues("fetch")); got != before+1 {
		t.Fatalf("fetch failures=%v want %v", got, before+1)
	}
}

func TestMetricsEndpointMounted(t *testing.T) {
	r := NewMux(&mockService{}, &mockSource{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}
