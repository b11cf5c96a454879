package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tspbb/solver/internal/search"
)

func TestRecordSearchExposesCounters(t *testing.T) {
	r := NewRegistry()
	r.RecordSearch(0, search.Stats{
		NodesPopped:        10,
		NodesPrunedByBound: 3,
		NodesPrunedByCost:  2,
		ToursCompleted:     1,
		StackHighWater:     7,
	}, 42, 50*time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "tspsolve_nodes_popped_total") {
		t.Error("exposition missing tspsolve_nodes_popped_total")
	}
	if !strings.Contains(body, `rank="0"`) {
		t.Error("exposition missing rank label")
	}
	if !strings.Contains(body, "tspsolve_best_cost") {
		t.Error("exposition missing tspsolve_best_cost")
	}
}

func TestRecordReductionIncrementsOutcomeCounter(t *testing.T) {
	r := NewRegistry()
	r.RecordReduction("optimal")
	r.RecordReduction("optimal")
	r.RecordReduction("no_solution")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, `tspsolve_coordinator_reduction_rounds_total{outcome="optimal"} 2`) {
		t.Errorf("exposition missing optimal=2 counter, got:\n%s", body)
	}
}
