package aprsmover

import (
	"fmt"
)

// Waypoint is a single geographic point on a route.
type Waypoint struct {
	Lat float64
	Lon float64
}

// Route is an ordered, immutable sequence of waypoints with precomputed
// cumulative great-circle distances.  Build it once at startup with
// NewRoute; it is never mutated afterwards.
type Route struct {
	waypoints  []Waypoint
	cumulative []float64 // cumulative[i] = distance from start to waypoints[i], km
}

// NewRoute validates the waypoints and precomputes cumulative distances.
// At least two waypoints are required and every coordinate must be within
// its valid range.
func NewRoute(waypoints []Waypoint) (*Route, error) {
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 waypoints, got %d", ErrInvalidRoute, len(waypoints))
	}

	for i, wp := range waypoints {
		if wp.Lat < -90 || wp.Lat > 90 {
			return nil, fmt.Errorf("%w: waypoint %d latitude %v out of range", ErrInvalidRoute, i, wp.Lat)
		}
		if wp.Lon < -180 || wp.Lon > 180 {
			return nil, fmt.Errorf("%w: waypoint %d longitude %v out of range", ErrInvalidRoute, i, wp.Lon)
		}
	}

	var r = &Route{
		waypoints:  append([]Waypoint(nil), waypoints...),
		cumulative: make([]float64, len(waypoints)),
	}

	for i := 1; i < len(waypoints); i++ {
		var seg = DistanceKm(waypoints[i-1].Lat, waypoints[i-1].Lon, waypoints[i].Lat, waypoints[i].Lon)
		r.cumulative[i] = r.cumulative[i-1] + seg
	}

	return r, nil
}

// TotalLength returns the route length in km.
func (r *Route) TotalLength() float64 {
	return r.cumulative[len(r.cumulative)-1]
}

// Len returns the number of waypoints.
func (r *Route) Len() int {
	return len(r.waypoints)
}

// Waypoint returns waypoint i.
func (r *Route) Waypoint(i int) Waypoint {
	return r.waypoints[i]
}

// PointAtDistance returns the position the given number of km along the
// route.  The distance is clamped to [0, TotalLength].  Positions within a
// segment follow the great-circle path between its endpoints.
func (r *Route) PointAtDistance(km float64) Waypoint {
	if km <= 0 {
		return r.waypoints[0]
	}
	if km >= r.TotalLength() {
		return r.waypoints[len(r.waypoints)-1]
	}

	for i := 1; i < len(r.cumulative); i++ {
		if km > r.cumulative[i] {
			continue
		}

		var segStart = r.cumulative[i-1]
		var segLen = r.cumulative[i] - segStart
		if segLen < 1e-12 {
			// Duplicate waypoint, zero-length segment.
			return r.waypoints[i]
		}

		var frac = (km - segStart) / segLen
		var a = r.waypoints[i-1]
		var b = r.waypoints[i]
		var lat, lon = IntermediatePoint(a.Lat, a.Lon, b.Lat, b.Lon, frac)
		return Waypoint{Lat: lat, Lon: lon}
	}

	return r.waypoints[len(r.waypoints)-1]
}
