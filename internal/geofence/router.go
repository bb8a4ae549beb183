package geofence

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedCoordinate is returned when a "lat,lng" string cannot be parsed.
var ErrMalformedCoordinate = errors.New("malformed coordinate")

// Zone is an inclusive lat/lng bounding box owned by one jurisdiction.
type Zone struct {
	Name    string  `json:"name" yaml:"name"`
	LatMin  float64 `json:"lat_min" yaml:"lat_min"`
	LatMax  float64 `json:"lat_max" yaml:"lat_max"`
	LngMin  float64 `json:"lng_min" yaml:"lng_min"`
	LngMax  float64 `json:"lng_max" yaml:"lng_max"`
	Contact string  `json:"contact" yaml:"contact"`
}

// Contains reports whether the point lies inside the box, edges included.
func (z Zone) Contains(lat, lng float64) bool {
	return lat >= z.LatMin && lat <= z.LatMax && lng >= z.LngMin && lng <= z.LngMax
}

// Validate checks that the zone is usable for routing.
func (z Zone) Validate() error {
	if strings.TrimSpace(z.Name) == "" {
		return errors.New("zone name required")
	}
	if strings.TrimSpace(z.Contact) == "" {
		return fmt.Errorf("zone %q: contact required", z.Name)
	}
	if z.LatMin > z.LatMax {
		return fmt.Errorf("zone %q: lat_min must be <= lat_max", z.Name)
	}
	if z.LngMin > z.LngMax {
		return fmt.Errorf("zone %q: lng_min must be <= lng_max", z.Name)
	}
	return nil
}

// Coordinate is a parsed latitude/longitude pair.
type Coordinate struct {
	Lat float64
	Lng float64
}

// ParseCoordinate parses "lat,lng". Components past the second are ignored.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return Coordinate{}, fmt.Errorf("%w: %q needs lat,lng", ErrMalformedCoordinate, s)
	}
	lat, err := parseComponent(parts[0])
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: latitude %q", ErrMalformedCoordinate, parts[0])
	}
	lng, err := parseComponent(parts[1])
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: longitude %q", ErrMalformedCoordinate, parts[1])
	}
	return Coordinate{Lat: lat, Lng: lng}, nil
}

func parseComponent(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not finite")
	}
	return f, nil
}

// Match is the outcome of routing a point.
// Zone is empty and Default is true when the fallback contact was used.
type Match struct {
	Zone    string
	Contact string
	Default bool
}

// Router maps coordinates to contacts using an ordered zone list.
// Declaration order is significant: the first containing zone wins.
type Router struct {
	zones          []Zone
	defaultContact string
}

// NewRouter copies zones so later mutation by the caller has no effect.
func NewRouter(zones []Zone, defaultContact string) *Router {
	cp := make([]Zone, len(zones))
	copy(cp, zones)
	return &Router{zones: cp, defaultContact: defaultContact}
}

// Resolve returns the first zone containing (lat, lng), or the default contact.
func (r *Router) Resolve(lat, lng float64) Match {
	for _, z := range r.zones {
		if z.Contains(lat, lng) {
			return Match{Zone: z.Name, Contact: z.Contact}
		}
	}
	return Match{Contact: r.defaultContact, Default: true}
}

// ResolveGPS parses a "lat,lng" string and resolves it.
func (r *Router) ResolveGPS(gps string) (Match, Coordinate, error) {
	c, err := ParseCoordinate(gps)
	if err != nil {
		return Match{}, Coordinate{}, err
	}
	return r.Resolve(c.Lat, c.Lng), c, nil
}

// Zones returns a copy of the configured zones in declaration order.
func (r *Router) Zones() []Zone {
	cp := make([]Zone, len(r.zones))
	copy(cp, r.zones)
	return cp
}
