// Package middleware provides observability observers for the navigation
// controller.
//
// # Prometheus Metrics
//
// Prometheus returns a nav.Observer that counts navigations by outcome and
// trigger, times them, and classifies cancellations:
//
//	metrics := middleware.Prometheus(middleware.WithNamespace("console"))
//	ctrl, _ := nav.New(table, hist, nav.WithObserver(metrics))
//	http.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry
//
// OpenTelemetry returns a nav.Observer that opens one span per navigation.
// The span context travels on the context passed to guards:
//
//	guard := nav.GuardFunc(func(ctx context.Context, to router.ResolvedRoute, _ *router.ResolvedRoute) (nav.Decision, error) {
//	    req, _ := http.NewRequestWithContext(ctx, "GET", authURL, nil)
//	    ...
//	})
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracerProvider is given. Configure it in main() before starting the
// controller.
package middleware
