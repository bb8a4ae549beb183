package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/PratikDhanave/trapwatch-service/internal/escalation"
	"github.com/PratikDhanave/trapwatch-service/internal/integrity"
	"github.com/PratikDhanave/trapwatch-service/internal/observability"
	"github.com/PratikDhanave/trapwatch-service/internal/store"
)

// ValidationError is a user-correctable problem with a submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

// Submission is one reading as sent by a trap scanner.
type Submission struct {
	TrapID   string
	TrapType string
	GPS      string
	EggCount int
	Barangay string
	Digest   string
}

// SubmitResult reports the stored record and its integrity flag.
type SubmitResult struct {
	ID             int64
	Timestamp      time.Time
	IntegrityValid bool
}

// Escalator runs one escalation.
type Escalator interface {
	Escalate(ctx context.Context) escalation.Outcome
}

// Service orchestrates verification, persistence and escalation.
type Service struct {
	store     store.Store
	verifier  *integrity.Verifier
	escalator Escalator
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	tracer    trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock sets the clock used to stamp records.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithMetrics sets the collectors. Without it metrics go to a private
// registry that nothing scrapes.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New validates dependencies and returns a Service.
func New(st store.Store, verifier *integrity.Verifier, escalator Escalator, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("record store is required")
	}
	if verifier == nil {
		return nil, errors.New("verifier is required")
	}
	if escalator == nil {
		return nil, errors.New("escalator is required")
	}
	s := &Service{
		store:     st,
		verifier:  verifier,
		escalator: escalator,
		clock:     clockwork.NewRealClock(),
		logger:    slog.Default(),
		metrics:   observability.NewMetricsWith(prometheus.NewRegistry()),
		tracer:    otel.Tracer("github.com/PratikDhanave/trapwatch-service/internal/ingest"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func validate(sub Submission) error {
	switch {
	case strings.TrimSpace(sub.TrapID) == "":
		return &ValidationError{Field: "trap_id", Message: "required"}
	case strings.TrimSpace(sub.TrapType) == "":
		return &ValidationError{Field: "trap_type", Message: "required"}
	case strings.TrimSpace(sub.GPS) == "":
		return &ValidationError{Field: "gps", Message: "required"}
	case sub.EggCount < 0:
		return &ValidationError{Field: "egg_count", Message: "must be non-negative"}
	}
	// Identifiers end up in log lines and mail headers.
	for _, f := range []struct{ name, value string }{
		{"trap_id", sub.TrapID},
		{"trap_type", sub.TrapType},
		{"gps", sub.GPS},
		{"barangay", sub.Barangay},
	} {
		if strings.ContainsFunc(f.value, unicode.IsControl) {
			return &ValidationError{Field: f.name, Message: "must not contain control characters"}
		}
	}
	return nil
}

// Submit verifies and stores one reading. An integrity mismatch is recorded,
// not rejected; every valid submission produces a new record.
func (s *Service) Submit(ctx context.Context, sub Submission) (SubmitResult, error) {
	ctx, span := s.tracer.Start(ctx, "ingest.Submit", trace.WithAttributes(
		attribute.String("trap.id", sub.TrapID),
		attribute.Int("trap.egg_count", sub.EggCount),
	))
	defer span.End()

	if err := validate(sub); err != nil {
		s.metrics.SubmissionErrors.WithLabelValues("validation").Inc()
		span.SetStatus(codes.Error, err.Error())
		return SubmitResult{}, err
	}

	valid := s.verifier.Verify(sub.TrapID, sub.TrapType, sub.GPS, sub.EggCount, sub.Digest)
	rec := store.Record{
		Timestamp:      s.clock.Now().UTC(),
		TrapID:         sub.TrapID,
		TrapType:       sub.TrapType,
		GPS:            sub.GPS,
		EggCount:       sub.EggCount,
		Barangay:       sub.Barangay,
		IntegrityValid: valid,
	}

	id, err := s.store.Insert(ctx, rec)
	if err != nil {
		s.metrics.SubmissionErrors.WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		s.logger.ErrorContext(ctx, "store submission failed", "trap_id", sub.TrapID, "error", err)
		return SubmitResult{}, fmt.Errorf("store submission: %w", err)
	}

	span.SetAttributes(attribute.Int64("record.id", id), attribute.Bool("integrity.valid", valid))
	if valid {
		s.metrics.Submissions.WithLabelValues("valid").Inc()
		s.logger.InfoContext(ctx, "submission stored",
			"record_id", id, "trap_id", sub.TrapID, "egg_count", sub.EggCount, "integrity_valid", true)
	} else {
		s.metrics.Submissions.WithLabelValues("invalid").Inc()
		s.logger.WarnContext(ctx, "submission stored with invalid digest",
			"record_id", id, "trap_id", sub.TrapID, "egg_count", sub.EggCount, "integrity_valid", false)
	}

	return SubmitResult{ID: id, Timestamp: rec.Timestamp, IntegrityValid: valid}, nil
}

// Recent returns up to limit records, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]store.Record, error) {
	recs, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "list records failed", "error", err)
		return nil, fmt.Errorf("list records: %w", err)
	}
	s.metrics.RecordsListed.Add(float64(len(recs)))
	return recs, nil
}

// Escalate runs one escalation and records its outcome.
func (s *Service) Escalate(ctx context.Context) escalation.Outcome {
	ctx, span := s.tracer.Start(ctx, "ingest.Escalate")
	defer span.End()

	start := s.clock.Now()
	out := s.escalator.Escalate(ctx)
	s.metrics.EscalationDuration.Observe(s.clock.Since(start).Seconds())
	s.metrics.Escalations.WithLabelValues(string(out.Status)).Inc()

	span.SetAttributes(attribute.String("escalation.status", string(out.Status)))
	if out.Contact != "" {
		span.SetAttributes(attribute.String("escalation.contact", out.Contact))
	}
	if out.Err != nil {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, string(out.Status))
	}
	return out
}
