package aprsmover

import (
	"math"
	"time"
)

// Clock maps wallclock time to distance along the route.  It does not know
// about positions; the Resolver pairs it with a Route.
//
// The clock only measures time that actually elapses between Advance
// calls, so a connection outage simply shows up as a larger jump on the
// next beacon rather than a backlog of missed ones.
type Clock struct {
	DistanceKm float64
	LastUpdate time.Time
	Complete   bool // non-looping route reached the final waypoint
}

// Advance moves the clock to now and returns the updated distance in km.
//
// With loop set, distance past totalKm wraps modulo totalKm.  Without it,
// distance clamps at totalKm and Complete is set; whether beaconing
// continues at the final waypoint is the scheduler's policy, not the
// clock's.
func (c *Clock) Advance(now time.Time, speedKmh float64, loop bool, totalKm float64) float64 {
	if !c.LastUpdate.IsZero() {
		var elapsed = now.Sub(c.LastUpdate).Seconds()
		if elapsed > 0 {
			c.DistanceKm += speedKmh * elapsed / 3600
		}
	}
	c.LastUpdate = now

	if loop {
		if totalKm > 0 && c.DistanceKm > totalKm {
			c.DistanceKm = math.Mod(c.DistanceKm, totalKm)
		}
	} else if c.DistanceKm >= totalKm {
		c.DistanceKm = totalKm
		c.Complete = true
	}

	return c.DistanceKm
}

// Snapshot emits the persistable state.
func (c *Clock) Snapshot() TraversalState {
	return TraversalState{
		DistanceKm: c.DistanceKm,
		LastUpdate: c.LastUpdate,
	}
}

// Restore loads persisted state.  A distance outside [0, totalKm] (the
// route may have been edited since the state was written) is clamped into
// range rather than treated as fatal.
func (c *Clock) Restore(s TraversalState, totalKm float64) {
	c.DistanceKm = s.DistanceKm
	if c.DistanceKm < 0 {
		c.DistanceKm = 0
	}
	if c.DistanceKm > totalKm {
		c.DistanceKm = totalKm
	}
	c.LastUpdate = s.LastUpdate
	c.Complete = false
}
