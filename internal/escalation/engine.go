package escalation

//go:generate mockgen -source=engine.go -destination=mocks/mocks.go -package=mocks RecordSource,Notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/PratikDhanave/trapwatch-service/internal/geofence"
	"github.com/PratikDhanave/trapwatch-service/internal/store"
)

var (
	// ErrNoData means there is nothing to escalate.
	ErrNoData = errors.New("no ingestion data")
	// ErrNotify wraps transport failures from the Notifier.
	ErrNotify = errors.New("notification failed")
)

// DefaultNotifyTimeout bounds a single notifier call.
const DefaultNotifyTimeout = 5 * time.Second

// RecordSource is the read side of the record store needed here.
type RecordSource interface {
	HighestEggCount(ctx context.Context) (store.Record, bool, error)
}

// Notifier delivers an alert to a contact endpoint. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, contact string, alert Alert) error
}

// Alert is the message handed to a Notifier.
type Alert struct {
	ID         string    `json:"id"`
	TrapID     string    `json:"trap_id"`
	TrapType   string    `json:"trap_type"`
	GPS        string    `json:"gps"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	EggCount   int       `json:"egg_count"`
	Barangay   string    `json:"barangay,omitempty"`
	Zone       string    `json:"zone,omitempty"`
	Threshold  int       `json:"threshold"`
	RecordID   int64     `json:"record_id"`
	RecordedAt time.Time `json:"recorded_at"`
	RaisedAt   time.Time `json:"raised_at"`
}

// Subject is a one-line summary suitable for a mail subject or log line.
func (a Alert) Subject() string {
	return fmt.Sprintf("Egg count alert: trap %s reported %d eggs", a.TrapID, a.EggCount)
}

// Body is the plain text alert.
func (a Alert) Body() string {
	zone := a.Zone
	if zone == "" {
		zone = "unzoned"
	}
	return fmt.Sprintf(
		"Trap %s (%s) at %s reported %d eggs, above the threshold of %d.\nZone: %s\nBarangay: %s\nRecorded: %s\nAlert ID: %s\n",
		a.TrapID, a.TrapType, a.GPS, a.EggCount, a.Threshold,
		zone, a.Barangay, a.RecordedAt.Format(time.RFC3339), a.ID,
	)
}

// Status is the terminal state of one escalation run.
type Status string

const (
	StatusSent          Status = "sent"
	StatusSkipped       Status = "skipped"
	StatusNoData        Status = "no_data"
	StatusRoutingFailed Status = "routing_failed"
	StatusNotifyFailed  Status = "notify_failed"
	StatusStorageFailed Status = "storage_failed"
)

// Outcome describes what an escalation run did. Err is set for every
// failure status and nil for sent and skipped.
type Outcome struct {
	Status  Status
	Record  store.Record
	Zone    string
	Contact string
	Reason  string
	AlertID string
	Err     error
}

// Engine selects the riskiest record and notifies the responsible contact
// when it crosses the threshold. It keeps no state between runs.
type Engine struct {
	source        RecordSource
	router        *geofence.Router
	notifier      Notifier
	threshold     int
	notifyTimeout time.Duration
	clock         clockwork.Clock
	logger        *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithNotifyTimeout bounds each notifier call. Non-positive values are ignored.
func WithNotifyTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.notifyTimeout = d
		}
	}
}

// WithClock sets the clock used to stamp alerts.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// New validates dependencies and returns an Engine.
func New(source RecordSource, router *geofence.Router, notifier Notifier, threshold int, opts ...Option) (*Engine, error) {
	if source == nil {
		return nil, errors.New("record source is required")
	}
	if router == nil {
		return nil, errors.New("geofence router is required")
	}
	if notifier == nil {
		return nil, errors.New("notifier is required")
	}
	if threshold < 0 {
		return nil, errors.New("threshold must be non-negative")
	}
	e := &Engine{
		source:        source,
		router:        router,
		notifier:      notifier,
		threshold:     threshold,
		notifyTimeout: DefaultNotifyTimeout,
		clock:         clockwork.NewRealClock(),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Threshold returns the configured egg count threshold.
func (e *Engine) Threshold() int { return e.threshold }

// Escalate runs one escalation. Counts strictly above the threshold notify.
func (e *Engine) Escalate(ctx context.Context) Outcome {
	rec, ok, err := e.source.HighestEggCount(ctx)
	if err != nil {
		return Outcome{Status: StatusStorageFailed, Err: fmt.Errorf("load highest record: %w", err)}
	}
	if !ok {
		return Outcome{Status: StatusNoData, Reason: "no data", Err: ErrNoData}
	}

	if rec.EggCount <= e.threshold {
		e.logger.Info("escalation skipped",
			"trap_id", rec.TrapID, "egg_count", rec.EggCount, "threshold", e.threshold)
		return Outcome{
			Status: StatusSkipped,
			Record: rec,
			Reason: "below threshold",
		}
	}

	match, coord, err := e.router.ResolveGPS(rec.GPS)
	if err != nil {
		e.logger.Warn("escalation routing failed", "trap_id", rec.TrapID, "gps", rec.GPS, "error", err)
		return Outcome{
			Status: StatusRoutingFailed,
			Record: rec,
			Reason: "routing failed",
			Err:    fmt.Errorf("route record %d: %w", rec.ID, err),
		}
	}

	alert := Alert{
		ID:         uuid.NewString(),
		TrapID:     rec.TrapID,
		TrapType:   rec.TrapType,
		GPS:        rec.GPS,
		Lat:        coord.Lat,
		Lng:        coord.Lng,
		EggCount:   rec.EggCount,
		Barangay:   rec.Barangay,
		Zone:       match.Zone,
		Threshold:  e.threshold,
		RecordID:   rec.ID,
		RecordedAt: rec.Timestamp,
		RaisedAt:   e.clock.Now().UTC(),
	}

	out := Outcome{
		Record:  rec,
		Zone:    match.Zone,
		Contact: match.Contact,
		AlertID: alert.ID,
	}

	notifyCtx, cancel := context.WithTimeout(ctx, e.notifyTimeout)
	defer cancel()

	if err := e.notifier.Notify(notifyCtx, match.Contact, alert); err != nil {
		e.logger.Error("escalation notify failed",
			"trap_id", rec.TrapID, "contact", match.Contact, "alert_id", alert.ID, "error", err)
		out.Status = StatusNotifyFailed
		out.Reason = "notification failed"
		out.Err = fmt.Errorf("%w: %w", ErrNotify, err)
		return out
	}

	e.logger.Info("escalation sent",
		"trap_id", rec.TrapID, "egg_count", rec.EggCount, "zone", match.Zone,
		"contact", match.Contact, "alert_id", alert.ID)
	out.Status = StatusSent
	out.Reason = "alert sent"
	return out
}
