package aprsmover

import "time"

// Resolver composes a Route and a Clock into "where is the object right
// now".  It has no state of its own.
type Resolver struct {
	Route *Route
	Clock *Clock
}

// CurrentPosition advances the clock to now and returns the corresponding
// point on the route.
func (r *Resolver) CurrentPosition(now time.Time, speedKmh float64, loop bool) Waypoint {
	var km = r.Clock.Advance(now, speedKmh, loop, r.Route.TotalLength())
	return r.Route.PointAtDistance(km)
}
