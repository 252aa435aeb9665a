// ABOUTME: Tests for comparison metrics and the exposition handler.
// ABOUTME: Reads counter values back with prometheus testutil.
package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserve(t *testing.T) {
	m := New(false)
	m.Observe("urls", "success", 250*time.Millisecond)
	m.Observe("urls", "success", time.Second)
	m.Observe("urls", "retrieval_failure", time.Second)

	if got := testutil.ToFloat64(m.Comparisons.WithLabelValues("urls", "success")); got != 2 {
		t.Errorf("expected 2 successful comparisons, got %v", got)
	}
	if got := testutil.CollectAndCount(m.Duration); got != 1 {
		t.Errorf("expected 1 duration series, got %d", got)
	}
}

func TestObserveNil(t *testing.T) {
	var m *Metrics
	m.Observe("headings", "success", time.Millisecond)
}

func TestHandler(t *testing.T) {
	m := New(true)
	m.Records.WithLabelValues("Matched").Add(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	if !strings.Contains(string(body), `sectiondiff_records_total{status="Matched"} 3`) {
		t.Errorf("expected records counter in output, got:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("expected default Go collectors in output")
	}
}
