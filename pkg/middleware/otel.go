package middleware

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/navguard-dev/navguard/pkg/nav"
)

// Default tracer name for navguard spans.
const defaultTracerName = "navguard"

// OTelConfig configures the OpenTelemetry observer.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "navguard").
	TracerName string

	// IncludeReason includes reject reasons as span attributes.
	// Reasons may carry user-facing text - disabled by default.
	IncludeReason bool

	// Filter determines which navigations to trace.
	// Return true to trace, false to skip. Nil traces everything.
	Filter func(op nav.EventType, from, to string) bool

	// AttributeExtractor extracts custom attributes per navigation.
	AttributeExtractor func(op nav.EventType, from, to string) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry observer.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithIncludeReason enables recording reject reasons in spans.
func WithIncludeReason(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeReason = include
	}
}

// WithNavigationFilter sets a filter for which navigations are traced.
func WithNavigationFilter(filter func(op nav.EventType, from, to string) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(op nav.EventType, from, to string) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// otelObserver implements nav.Observer, opening a span in BeforeNavigate
// and closing it when the transition is recorded. Navigation on one
// machine is serialized, so at most one span is open at a time.
type otelObserver struct {
	nav.Hooks

	config OTelConfig

	mu   sync.Mutex
	span trace.Span
}

// OpenTelemetry creates a navigation observer that traces every
// navigation attempt.
//
// The observer:
//   - Creates a span per go/push/replace attempt
//   - Records from/to locations and the resolved transition type
//   - Sets error status on rejections and hard navigation errors
//
// The tracer uses the global OpenTelemetry tracer provider; configure it
// in main() before constructing the machine:
//
//	otel.SetTracerProvider(tp)
//	m := nav.New("/", nav.WithObserver(middleware.OpenTelemetry()))
func OpenTelemetry(opts ...OTelOption) nav.Observer {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)
	return &otelObserver{config: config}
}

func (o *otelObserver) BeforeNavigate(op nav.EventType, from, to string) {
	if o.config.Filter != nil && !o.config.Filter(op, from, to) {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("navguard.op", string(op)),
		attribute.String("navguard.from", from),
		attribute.String("navguard.to", to),
	}
	if o.config.AttributeExtractor != nil {
		attrs = append(attrs, o.config.AttributeExtractor(op, from, to)...)
	}

	_, span := o.config.tracer.Start(
		context.Background(),
		"navguard."+string(op),
		trace.WithAttributes(attrs...),
	)

	o.mu.Lock()
	o.span = span
	o.mu.Unlock()
}

func (o *otelObserver) AfterNavigate(e nav.Event) {
	o.mu.Lock()
	span := o.span
	o.span = nil
	o.mu.Unlock()
	if span == nil {
		return
	}

	span.SetAttributes(attribute.String("navguard.result", string(e.Type)))
	switch e.Type {
	case nav.EventRejected:
		span.SetStatus(codes.Error, "navigation rejected")
		if o.config.IncludeReason && e.Reason != "" {
			span.SetAttributes(attribute.String("navguard.reason", e.Reason))
		}
	case nav.EventRedirected:
		span.SetAttributes(attribute.String("navguard.redirected_from", e.RedirectedFrom))
		span.SetStatus(codes.Ok, "")
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func (o *otelObserver) OnNavigationError(requested string, err error) {
	o.mu.Lock()
	span := o.span
	o.span = nil
	o.mu.Unlock()
	if span == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}
