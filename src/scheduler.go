package aprsmover

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// CompletionPolicy decides what happens when a non-looping route reaches
// its final waypoint.
type CompletionPolicy string

const (
	// CompleteHold keeps beaconing the final waypoint until the process
	// is stopped.  The object stays on the map where it parked.
	CompleteHold CompletionPolicy = "hold"

	// CompleteStop sends the kill packet and exits cleanly.
	CompleteStop CompletionPolicy = "stop"
)

var errRouteComplete = errors.New("route complete")

// Scheduler drives the whole thing: every Interval it resolves the
// current position, encodes an object report, hands it to the sink, and
// persists progress.  On cancellation it sends a kill report at the last
// known position before exiting.
type Scheduler struct {
	Route    *Route
	Clock    *Clock
	Object   ObjectDescriptor
	Callsign string

	// Comments, when non-empty, rotate through the beacon comments one
	// per tick.  Otherwise every beacon carries Object.Comment.
	Comments []string

	Sink PacketSink

	// Reconnect re-establishes the sink after a transmission failure.
	// Nil for sinks that cannot disconnect (dry-run).
	Reconnect func(context.Context) error

	States     StateStore
	Interval   time.Duration
	SpeedKmh   float64
	Loop       bool
	OnComplete CompletionPolicy

	now        func() time.Time // test hook
	commentIdx int
	last       Waypoint
	haveLast   bool
}

// Run beacons until the context is cancelled, the route completes under
// the stop policy, or something unrecoverable happens.  The kill report
// and final state write happen on every exit path.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.now == nil {
		s.now = time.Now
	}
	if s.OnComplete == "" {
		s.OnComplete = CompleteHold
	}

	if state, ok, err := s.States.Load(); err != nil {
		Logger.Warn("Could not read state, starting fresh", "err", err)
	} else if ok {
		s.Clock.Restore(state, s.Route.TotalLength())
		Logger.Info("Resumed route progress", "distance_km", fmt.Sprintf("%.2f", s.Clock.DistanceKm))
	}

	Logger.Info("Route loaded",
		"waypoints", s.Route.Len(),
		"total_km", fmt.Sprintf("%.2f", s.Route.TotalLength()),
		"speed_kmh", s.SpeedKmh,
		"interval", s.Interval)

	var ticker = time.NewTicker(s.Interval)
	defer ticker.Stop()

	// First beacon right away rather than waiting out a full interval.
	if err := s.tick(ctx); err != nil {
		return s.shutdown(err)
	}

	for {
		select {
		case <-ctx.Done():
			Logger.Info("Shutdown requested, sending kill packet")
			return s.shutdown(nil)
		case <-ticker.C:
			if err := s.tick(ctx); err != nil {
				return s.shutdown(err)
			}
		}
	}
}

// tick performs one beacon cycle.  A nil return means carry on; the
// errRouteComplete sentinel requests a clean stop; anything else is
// fatal.
func (s *Scheduler) tick(ctx context.Context) error {
	var now = s.now()
	var km = s.Clock.Advance(now, s.SpeedKmh, s.Loop, s.Route.TotalLength())
	var pos = s.Route.PointAtDistance(km)
	s.last = pos
	s.haveLast = true

	var obj = s.Object
	obj.Comment = s.nextComment()

	var packet, err = ObjectReport(s.Callsign, obj, now, pos.Lat, pos.Lon)
	if err != nil {
		// Encoding failures are configuration or programming defects; no
		// later tick could do any better.
		return fmt.Errorf("encoding beacon: %w", err)
	}

	Logger.Debug("Beaconing", "packet", packet)

	if err := s.Sink.Send(packet); err != nil {
		// The beacon is not made up later; the clock keeps honest
		// wallclock time across the outage.
		Logger.Error("Beacon transmission failed", "err", err)
		if s.Reconnect != nil {
			if rerr := s.Reconnect(ctx); rerr != nil {
				if ctx.Err() != nil {
					return nil // cancelled mid-backoff, Run will shut down
				}
				return fmt.Errorf("reconnecting: %w", rerr)
			}
		}
	} else {
		Logger.Info("Beacon sent",
			"distance_km", fmt.Sprintf("%.2f/%.2f", km, s.Route.TotalLength()),
			"lat", fmt.Sprintf("%.5f", pos.Lat),
			"lon", fmt.Sprintf("%.5f", pos.Lon))
	}

	if err := s.States.Save(s.Clock.Snapshot()); err != nil {
		Logger.Warn("Could not persist state", "err", err)
	}

	if s.Clock.Complete && !s.Loop && s.OnComplete == CompleteStop {
		Logger.Info("Route complete, stopping")
		return errRouteComplete
	}

	return nil
}

// shutdown sends the kill report at the last known position (best
// effort), persists final state, and closes the sink.  runErr, if any, is
// passed through; a clean route completion is not an error.
func (s *Scheduler) shutdown(runErr error) error {
	if s.haveLast {
		if kill, err := KillReport(s.Callsign, s.Object, s.now(), s.last.Lat, s.last.Lon); err != nil {
			Logger.Warn("Could not encode kill packet", "err", err)
		} else if err := s.Sink.Send(kill); err != nil {
			Logger.Warn("Could not send kill packet", "err", err)
		} else {
			Logger.Info("Kill packet sent, object removed from map")
		}
	}

	if err := s.States.Save(s.Clock.Snapshot()); err != nil {
		Logger.Warn("Could not persist final state", "err", err)
	}

	if err := s.Sink.Close(); err != nil {
		Logger.Warn("Error closing connection", "err", err)
	}

	if errors.Is(runErr, errRouteComplete) {
		return nil
	}
	return runErr
}

func (s *Scheduler) nextComment() string {
	if len(s.Comments) == 0 {
		return s.Object.Comment
	}
	var comment = s.Comments[s.commentIdx%len(s.Comments)]
	s.commentIdx++
	return comment
}
