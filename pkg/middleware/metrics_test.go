package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/navcore/pkg/nav"
	"github.com/vango-dev/navcore/pkg/routepath"
	"github.com/vango-dev/navcore/pkg/router"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	if m.Gauge == nil {
		t.Fatal("expected gauge metric to have Gauge field")
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestPrometheusRecordsOutcomes(t *testing.T) {
	m := Prometheus(WithRegistry(prometheus.NewRegistry()))
	ctx := context.Background()

	to := &router.ResolvedRoute{ViewID: "HomePage", Path: "/"}
	m.NavigationStart(ctx, nav.Request{Path: "/"})
	if got := metricGaugeValue(t, m.inFlight); got != 1 {
		t.Fatalf("in flight = %v, want 1", got)
	}
	m.NavigationEnd(ctx, nav.Transition{
		Request:  nav.Request{Path: "/", Trigger: nav.TriggerProgrammatic},
		To:       to,
		Outcome:  nav.OutcomeCommitted,
		Duration: 3 * time.Millisecond,
	})

	m.NavigationStart(ctx, nav.Request{Path: "/nowhere"})
	m.NavigationEnd(ctx, nav.Transition{
		Request: nav.Request{Path: "/nowhere", Trigger: nav.TriggerPop},
		Outcome: nav.OutcomeFailed,
		Err:     &router.NoMatchError{Path: "/nowhere"},
	})

	if got := metricGaugeValue(t, m.inFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if got := metricCounterValue(t, m.navigationsTotal.WithLabelValues("committed", "programmatic")); got != 1 {
		t.Errorf("navigations_total(committed) = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.navigationsTotal.WithLabelValues("failed", "pop")); got != 1 {
		t.Errorf("navigations_total(failed) = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.notFoundTotal); got != 1 {
		t.Errorf("not_found_total = %v, want 1", got)
	}
	if got := metricHistogramCount(t, m.navigationDuration.WithLabelValues("committed")); got != 1 {
		t.Errorf("duration samples = %d, want 1", got)
	}
}

func TestPrometheusCancellationReasons(t *testing.T) {
	m := Prometheus(WithRegistry(prometheus.NewRegistry()))
	ctx := context.Background()

	causes := map[string]error{
		"superseded":     nav.ErrSuperseded,
		"rejected":       &nav.GuardRejection{ViewID: "UserManagePage"},
		"redirected":     &nav.RedirectError{To: "/user/login"},
		"redirect_limit": nav.ErrRedirectLimit,
		"closed":         nav.ErrClosed,
		"context":        context.Canceled,
		"invalid_path":   routepath.ErrInvalidPath,
		"guard_error":    errTest,
	}
	for reason, cause := range causes {
		m.NavigationStart(ctx, nav.Request{})
		m.NavigationEnd(ctx, nav.Transition{
			Outcome: nav.OutcomeCancelled,
			Err:     &nav.CancelledError{Path: "/x", Cause: cause},
		})
		if got := metricCounterValue(t, m.cancellationsTotal.WithLabelValues(reason)); got != 1 {
			t.Errorf("cancellations_total(%s) = %v, want 1", reason, got)
		}
	}
}

func TestPrometheusBridgeGauge(t *testing.T) {
	m := Prometheus(WithRegistry(prometheus.NewRegistry()))

	m.BridgeConnected()
	m.BridgeConnected()
	m.BridgeDisconnected()

	if got := metricGaugeValue(t, m.bridgeConnections); got != 1 {
		t.Errorf("bridge_connections = %v, want 1", got)
	}
}

func TestPrometheusNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := Prometheus(WithRegistry(reg), WithNamespace("console"), WithSubsystem("nav"))
	m.NavigationStart(context.Background(), nav.Request{})

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "console_nav_navigations_in_flight" {
			found = true
		}
	}
	if !found {
		t.Error("expected console_nav_navigations_in_flight to be registered")
	}
}

func TestPrometheusWithController(t *testing.T) {
	m := Prometheus(WithRegistry(prometheus.NewRegistry()))
	table := router.MustTable([]router.Definition{{Path: "/", ViewID: "HomePage"}})

	ctrl, err := nav.New(table, nil, nav.WithObserver(m))
	if err != nil {
		t.Fatalf("nav.New: %v", err)
	}
	defer ctrl.Close()
	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ctrl.Navigate(context.Background(), "/missing")

	if got := metricCounterValue(t, m.navigationsTotal.WithLabelValues("committed", "initial")); got != 1 {
		t.Errorf("initial commits = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.notFoundTotal); got != 1 {
		t.Errorf("not_found_total = %v, want 1", got)
	}
}
