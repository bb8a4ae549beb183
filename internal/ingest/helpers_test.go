package ingest

import (
	"context"

	"github.com/PratikDhanave/trapwatch-service/internal/escalation"
	"github.com/PratikDhanave/trapwatch-service/internal/geofence"
)

type recordingNotifier struct {
	contacts []string
	alerts   []escalation.Alert
}

func (r *recordingNotifier) Notify(_ context.Context, contact string, alert escalation.Alert) error {
	r.contacts = append(r.contacts, contact)
	r.alerts = append(r.alerts, alert)
	return nil
}

func geofenceForTest() *geofence.Router {
	return geofence.NewRouter([]geofence.Zone{
		{Name: "Luna", LatMin: 14.60, LatMax: 14.62, LngMin: 121.00, LngMax: 121.03, Contact: "luna@lgu.example"},
	}, "cho@province.example")
}
