// Package telemetry provides tracing for the easel client as an
// explicitly constructed, dependency-injected service. There is no
// module-level global: callers build a Service, pass it where spans are
// needed, and own its lifecycle through Configure and Shutdown.
package telemetry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Service owns a tracer provider with an explicit lifecycle. A service
// from NewService traces nothing until Configure is called.
type Service struct {
	mu       sync.Mutex
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewService returns an unconfigured service whose tracer is a no-op.
func NewService() *Service {
	return &Service{tracer: noop.NewTracerProvider().Tracer("easel")}
}

// Configure installs a stdout span exporter. Calling Configure on an
// already configured service shuts the previous provider down first.
func (s *Service) Configure(ctx context.Context) error {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("create trace exporter: %w", err)
	}
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)

	s.mu.Lock()
	previous := s.provider
	s.provider = provider
	s.tracer = provider.Tracer("easel")
	s.mu.Unlock()

	if previous != nil {
		return previous.Shutdown(ctx)
	}
	return nil
}

// Tracer returns the current tracer. Safe to call concurrently with
// Configure and Reset.
func (s *Service) Tracer() trace.Tracer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracer
}

// Start opens a span on the current tracer.
func (s *Service) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return s.Tracer().Start(ctx, name, opts...)
}

// Reset returns the service to its unconfigured, no-op state, shutting
// down any installed provider.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	previous := s.provider
	s.provider = nil
	s.tracer = noop.NewTracerProvider().Tracer("easel")
	s.mu.Unlock()

	if previous != nil {
		return previous.Shutdown(ctx)
	}
	return nil
}

// Shutdown flushes and stops the provider. The service remains usable as
// a no-op tracer afterwards.
func (s *Service) Shutdown(ctx context.Context) error {
	return s.Reset(ctx)
}
