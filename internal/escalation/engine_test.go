package escalation_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/PratikDhanave/trapwatch-service/internal/escalation"
	"github.com/PratikDhanave/trapwatch-service/internal/escalation/mocks"
	"github.com/PratikDhanave/trapwatch-service/internal/geofence"
	"github.com/PratikDhanave/trapwatch-service/internal/store"
)

const (
	lunaContact    = "luna@lgu.example"
	defaultContact = "cho@province.example"
)

var recordedAt = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

type EngineSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	source   *mocks.MockRecordSource
	notifier *mocks.MockNotifier
	router   *geofence.Router
	clock    *clockwork.FakeClock
	logger   *slog.Logger
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.source = mocks.NewMockRecordSource(s.ctrl)
	s.notifier = mocks.NewMockNotifier(s.ctrl)
	s.router = geofence.NewRouter([]geofence.Zone{
		{Name: "Luna", LatMin: 14.60, LatMax: 14.62, LngMin: 121.00, LngMax: 121.03, Contact: lunaContact},
	}, defaultContact)
	s.clock = clockwork.NewFakeClockAt(time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC))
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *EngineSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *EngineSuite) newEngine(src escalation.RecordSource, threshold int, opts ...escalation.Option) *escalation.Engine {
	opts = append([]escalation.Option{escalation.WithLogger(s.logger), escalation.WithClock(s.clock)}, opts...)
	e, err := escalation.New(src, s.router, s.notifier, threshold, opts...)
	s.Require().NoError(err)
	return e
}

func record(id int64, trap string, eggs int, gps string) store.Record {
	return store.Record{
		ID: id, Timestamp: recordedAt, TrapID: trap, TrapType: "ovitrap",
		GPS: gps, EggCount: eggs, Barangay: "Luna", IntegrityValid: true,
	}
}

func (s *EngineSuite) seed(counts ...int) *store.MemoryStore {
	st := store.NewMemoryStore()
	for i, c := range counts {
		r := record(0, string(rune('A'+i)), c, "14.61,121.02")
		_, err := st.Insert(context.Background(), r)
		s.Require().NoError(err)
	}
	return st
}

func (s *EngineSuite) TestNew() {
	s.Run("nil source returns error", func() {
		_, err := escalation.New(nil, s.router, s.notifier, 50)
		s.ErrorContains(err, "record source is required")
	})
	s.Run("nil router returns error", func() {
		_, err := escalation.New(s.source, nil, s.notifier, 50)
		s.ErrorContains(err, "geofence router is required")
	})
	s.Run("nil notifier returns error", func() {
		_, err := escalation.New(s.source, s.router, nil, 50)
		s.ErrorContains(err, "notifier is required")
	})
	s.Run("negative threshold returns error", func() {
		_, err := escalation.New(s.source, s.router, s.notifier, -1)
		s.ErrorContains(err, "threshold")
	})
	s.Run("valid dependencies", func() {
		e, err := escalation.New(s.source, s.router, s.notifier, 50)
		s.NoError(err)
		s.Equal(50, e.Threshold())
	})
}

func (s *EngineSuite) TestSelectsHighestAndNotifies() {
	e := s.newEngine(s.seed(10, 75, 40), 50)

	var got escalation.Alert
	s.notifier.EXPECT().
		Notify(gomock.Any(), lunaContact, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, a escalation.Alert) error {
			got = a
			return nil
		})

	out := e.Escalate(context.Background())

	s.Equal(escalation.StatusSent, out.Status)
	s.NoError(out.Err)
	s.Equal(lunaContact, out.Contact)
	s.Equal("Luna", out.Zone)
	s.Equal(75, out.Record.EggCount)
	s.Equal("B", got.TrapID)
	s.Equal(75, got.EggCount)
	s.Equal("14.61,121.02", got.GPS)
	s.InDelta(14.61, got.Lat, 1e-9)
	s.InDelta(121.02, got.Lng, 1e-9)
	s.Equal(50, got.Threshold)
	s.Equal(out.AlertID, got.ID)
	s.NotEmpty(got.ID)
	s.Equal(s.clock.Now().UTC(), got.RaisedAt)
	s.Contains(got.Subject(), "B")
	s.Contains(got.Body(), "75 eggs")
}

func (s *EngineSuite) TestAllAtOrBelowThresholdSkips() {
	e := s.newEngine(s.seed(10, 50, 40), 50)
	s.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	out := e.Escalate(context.Background())

	s.Equal(escalation.StatusSkipped, out.Status)
	s.Equal("below threshold", out.Reason)
	s.Equal(50, out.Record.EggCount)
	s.NoError(out.Err)
}

func (s *EngineSuite) TestNoData() {
	e := s.newEngine(store.NewMemoryStore(), 50)

	out := e.Escalate(context.Background())

	s.Equal(escalation.StatusNoData, out.Status)
	s.ErrorIs(out.Err, escalation.ErrNoData)
}

func (s *EngineSuite) TestStorageFailure() {
	e := s.newEngine(s.source, 50)
	s.source.EXPECT().HighestEggCount(gomock.Any()).Return(store.Record{}, false, store.ErrStorage)

	out := e.Escalate(context.Background())

	s.Equal(escalation.StatusStorageFailed, out.Status)
	s.ErrorIs(out.Err, store.ErrStorage)
}

func (s *EngineSuite) TestMalformedCoordinateIsRoutingFailure() {
	e := s.newEngine(s.source, 50)
	s.source.EXPECT().HighestEggCount(gomock.Any()).Return(record(3, "T9", 90, "abc"), true, nil)
	s.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	out := e.Escalate(context.Background())

	s.Equal(escalation.StatusRoutingFailed, out.Status)
	s.ErrorIs(out.Err, geofence.ErrMalformedCoordinate)
	s.Equal("T9", out.Record.TrapID)
}

func (s *EngineSuite) TestUnzonedPointUsesDefaultContact() {
	e := s.newEngine(s.source, 50)
	s.source.EXPECT().HighestEggCount(gomock.Any()).Return(record(4, "T4", 51, "0,0"), true, nil)
	s.notifier.EXPECT().Notify(gomock.Any(), defaultContact, gomock.Any()).Return(nil)

	out := e.Escalate(context.Background())

	s.Equal(escalation.StatusSent, out.Status)
	s.Equal(defaultContact, out.Contact)
	s.Empty(out.Zone)
}

func (s *EngineSuite) TestNotifierFailureIsDistinct() {
	e := s.newEngine(s.source, 50)
	s.source.EXPECT().HighestEggCount(gomock.Any()).Return(record(5, "T5", 80, "14.61,121.02"), true, nil)
	transport := errors.New("connection refused")
	s.notifier.EXPECT().Notify(gomock.Any(), lunaContact, gomock.Any()).Return(transport).Times(1)

	out := e.Escalate(context.Background())

	s.Equal(escalation.StatusNotifyFailed, out.Status)
	s.ErrorIs(out.Err, escalation.ErrNotify)
	s.ErrorIs(out.Err, transport)
	s.Equal(lunaContact, out.Contact)
}

func (s *EngineSuite) TestNotifyCallIsBounded() {
	e := s.newEngine(s.source, 50, escalation.WithNotifyTimeout(20*time.Millisecond))
	s.source.EXPECT().HighestEggCount(gomock.Any()).Return(record(6, "T6", 80, "14.61,121.02"), true, nil)
	s.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ escalation.Alert) error {
			_, ok := ctx.Deadline()
			s.True(ok)
			<-ctx.Done()
			return ctx.Err()
		})

	out := e.Escalate(context.Background())

	s.Equal(escalation.StatusNotifyFailed, out.Status)
	s.ErrorIs(out.Err, context.DeadlineExceeded)
}

func (s *EngineSuite) TestRepeatedRunsNotifyAgain() {
	e := s.newEngine(s.seed(60), 50)
	s.notifier.EXPECT().Notify(gomock.Any(), lunaContact, gomock.Any()).Return(nil).Times(2)

	first := e.Escalate(context.Background())
	second := e.Escalate(context.Background())

	s.Equal(escalation.StatusSent, first.Status)
	s.Equal(escalation.StatusSent, second.Status)
	s.NotEqual(first.AlertID, second.AlertID)
}
