package middleware

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/navcore/pkg/nav"
)

// Default tracer name for navcore.
const defaultTracerName = "navcore"

// OTelConfig configures the OpenTelemetry navigation observer.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "navcore").
	TracerName string

	// TracerProvider supplies the tracer.
	// Default: the global provider from otel.GetTracerProvider.
	TracerProvider trace.TracerProvider

	// IncludeParams adds resolved route params as span attributes.
	// Params may carry identifiers, so this is disabled by default.
	IncludeParams bool

	// Filter determines which navigations to trace.
	// Return true to trace, false to skip. If nil, all are traced.
	Filter func(req nav.Request) bool

	// AttributeExtractor adds custom attributes when the span starts.
	AttributeExtractor func(req nav.Request) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry navigation observer.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithIncludeParams enables route params as span attributes.
func WithIncludeParams(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeParams = include
	}
}

// WithNavigationFilter sets a filter function for navigations.
func WithNavigationFilter(filter func(req nav.Request) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(req nav.Request) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// Tracer is a nav.Observer that traces each navigation as one span.
type Tracer struct {
	config OTelConfig
	tracer trace.Tracer
}

// OpenTelemetry creates an observer that opens a span when a navigation
// starts and ends it at the terminal state.
//
// The span context is carried on the context the controller hands to
// guards, so a guard's outbound calls join the navigation trace.
//
// Example:
//
//	ctrl, _ := nav.New(table, hist, nav.WithObserver(
//	    middleware.OpenTelemetry(middleware.WithTracerName("console")),
//	))
func OpenTelemetry(opts ...OTelOption) *Tracer {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.TracerProvider == nil {
		config.TracerProvider = otel.GetTracerProvider()
	}
	return &Tracer{
		config: config,
		tracer: config.TracerProvider.Tracer(config.TracerName),
	}
}

type spanKey struct{}

// NavigationStart implements nav.Observer.
func (t *Tracer) NavigationStart(ctx context.Context, req nav.Request) context.Context {
	if t.config.Filter != nil && !t.config.Filter(req) {
		return ctx
	}

	attrs := []attribute.KeyValue{
		attribute.String("nav.path", req.Path),
		attribute.String("nav.trigger", req.Trigger.String()),
		attribute.String("nav.request_id", req.ID),
		attribute.String("nav.seq", strconv.FormatUint(req.Seq, 10)),
		attribute.Bool("nav.replace", req.Replace),
		attribute.Int("nav.redirects", req.Redirects),
	}
	if t.config.AttributeExtractor != nil {
		attrs = append(attrs, t.config.AttributeExtractor(req)...)
	}

	ctx, span := t.tracer.Start(ctx, fmt.Sprintf("navigate %s", req.Trigger),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return context.WithValue(ctx, spanKey{}, span)
}

// NavigationEnd implements nav.Observer.
func (t *Tracer) NavigationEnd(ctx context.Context, tr nav.Transition) {
	span, ok := ctx.Value(spanKey{}).(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	span.SetAttributes(attribute.String("nav.outcome", tr.Outcome.String()))
	if tr.To != nil {
		span.SetAttributes(attribute.String("nav.view", tr.To.ViewID))
		if tr.To.Name != "" {
			span.SetAttributes(attribute.String("nav.route", tr.To.Name))
		}
		if t.config.IncludeParams {
			for k, v := range tr.To.Params {
				span.SetAttributes(attribute.String("nav.param."+k, v))
			}
		}
	}

	switch tr.Outcome {
	case nav.OutcomeCommitted:
		span.SetStatus(codes.Ok, "")
	case nav.OutcomeFailed:
		span.SetStatus(codes.Error, "no route matched")
	default:
		// Cancellation is a normal outcome; the cause is recorded, not
		// reported as a span error.
		if tr.Err != nil {
			span.RecordError(tr.Err)
		}
	}
}

// SpanFromContext returns the navigation span carried by ctx, or nil.
// Guards receive such a context.
func SpanFromContext(ctx context.Context) trace.Span {
	if span, ok := ctx.Value(spanKey{}).(trace.Span); ok {
		return span
	}
	return nil
}
