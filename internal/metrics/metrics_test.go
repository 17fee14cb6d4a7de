package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveRPC("/travelsplit.v1.TripService/CreateTrip", "ok", 20*time.Millisecond)
	m.ObserveRPC("/travelsplit.v1.TripService/CreateTrip", "ok", 10*time.Millisecond)
	m.ObserveRPC("/travelsplit.v1.TripService/GetTrip", "not_found", time.Millisecond)
	m.Mutation("add_expense")
	m.Backup("success")
	m.Backup("failure")
	m.Backup("failure")

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"create ok", testutil.ToFloat64(m.rpcRequests.WithLabelValues("/travelsplit.v1.TripService/CreateTrip", "ok")), 2},
		{"get not_found", testutil.ToFloat64(m.rpcRequests.WithLabelValues("/travelsplit.v1.TripService/GetTrip", "not_found")), 1},
		{"add_expense", testutil.ToFloat64(m.mutations.WithLabelValues("add_expense")), 1},
		{"backup success", testutil.ToFloat64(m.backups.WithLabelValues("success")), 1},
		{"backup failure", testutil.ToFloat64(m.backups.WithLabelValues("failure")), 2},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	if n := testutil.CollectAndCount(m.rpcDuration); n != 2 {
		t.Errorf("duration series = %d, want 2", n)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRPC("p", "ok", time.Second)
	m.Mutation("create_trip")
	m.Backup("success")
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.Mutation("create_trip")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `travelsplit_ledger_mutations_total{operation="create_trip"} 1`) {
		t.Errorf("metrics output missing mutation counter:\n%s", body)
	}
}
