package aprsmover

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureSink records sent packets, optionally failing the first few.
type captureSink struct {
	mu       sync.Mutex
	lines    []string
	failures int
	closed   bool
}

func (s *captureSink) Send(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return ErrTransmission
	}
	s.lines = append(s.lines, line)
	return nil
}

func (s *captureSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *captureSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func (s *captureSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func equatorRoute(t *testing.T) *Route {
	t.Helper()
	var route, err = NewRoute([]Waypoint{{0, 0}, {0, 1}, {0, 2}})
	require.NoError(t, err)
	return route
}

// newTestScheduler wires a scheduler with a fake time source that steps
// the wallclock forward by step on every call.
func newTestScheduler(t *testing.T, sink *captureSink, step time.Duration) *Scheduler {
	t.Helper()

	var now = t0
	var s = &Scheduler{
		Route:    equatorRoute(t),
		Clock:    &Clock{},
		Object:   testObject,
		Callsign: "N0CALL",
		Sink:     sink,
		States:   NullStateStore{},
		Interval: 5 * time.Millisecond,
		SpeedKmh: 25,
		Loop:     true,
	}
	s.now = func() time.Time {
		now = now.Add(step)
		return now
	}
	return s
}

func runUntil(t *testing.T, s *Scheduler, sink *captureSink, wantLines int) error {
	t.Helper()

	var ctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	var done = make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	var deadline = time.After(5 * time.Second)
	for {
		select {
		case err := <-done:
			return err
		case <-deadline:
			cancel()
			t.Fatal("scheduler did not produce enough beacons in time")
		case <-time.After(time.Millisecond):
			if len(sink.Lines()) >= wantLines {
				cancel()
				return <-done
			}
		}
	}
}

// TestSchedulerBeaconsAndKills tests the normal lifecycle: beacons on a
// cadence, then a kill packet at the last known position on shutdown
func TestSchedulerBeaconsAndKills(t *testing.T) {
	var sink = &captureSink{}
	var s = newTestScheduler(t, sink, time.Minute)

	require.NoError(t, runUntil(t, s, sink, 3))

	var lines = sink.Lines()
	require.GreaterOrEqual(t, len(lines), 4, "beacons plus the kill packet")

	var kill = lines[len(lines)-1]
	assert.Contains(t, kill, ";DOG      _", "last packet is the kill report")

	// Every earlier packet is a live report.
	for _, line := range lines[:len(lines)-1] {
		assert.Contains(t, line, ";DOG      *")
	}

	// The kill is at the last beaconed position, not the route origin.
	var lastLive = lines[len(lines)-2]
	assert.Equal(t, positionField(lastLive), positionField(kill))
	assert.NotEqual(t, "0000.00N/00000.00E", positionField(kill))

	assert.True(t, sink.Closed())
}

// positionField extracts the lat/symtable/lon part of an object report.
func positionField(packet string) string {
	// ...;NAME_____*DDHHMMz<lat>T<lon>S...
	var idx = strings.Index(packet, "z")
	if idx < 0 || len(packet) < idx+19 {
		return ""
	}
	return packet[idx+1 : idx+19]
}

// TestSchedulerObjectMoves tests that successive beacons advance along
// the route
func TestSchedulerObjectMoves(t *testing.T) {
	var sink = &captureSink{}
	var s = newTestScheduler(t, sink, 30*time.Minute)

	require.NoError(t, runUntil(t, s, sink, 3))

	var lines = sink.Lines()
	var first = positionField(lines[0])
	var second = positionField(lines[1])
	assert.NotEqual(t, first, second, "object should move between beacons")
}

// TestSchedulerReconnects tests that a transmission failure triggers
// exactly one reconnect and beaconing resumes without resetting progress
func TestSchedulerReconnects(t *testing.T) {
	var sink = &captureSink{failures: 1}
	var s = newTestScheduler(t, sink, time.Minute)
	s.Clock.DistanceKm = 50 // partway along a looping route

	var reconnects = 0
	s.Reconnect = func(context.Context) error {
		reconnects++
		return nil
	}

	require.NoError(t, runUntil(t, s, sink, 2))

	assert.Equal(t, 1, reconnects)
	assert.GreaterOrEqual(t, s.Clock.DistanceKm, 50.0, "progress survives the reconnect")
	assert.NotEmpty(t, sink.Lines(), "beaconing resumed after reconnect")
}

// TestSchedulerCompleteStop tests the stop policy on a non-looping route
func TestSchedulerCompleteStop(t *testing.T) {
	var sink = &captureSink{}
	var s = newTestScheduler(t, sink, 12*time.Hour) // way past the end each tick
	s.Loop = false
	s.OnComplete = CompleteStop

	var ctx = context.Background()
	var done = make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after route completion")
	}

	var lines = sink.Lines()
	var kill = lines[len(lines)-1]
	assert.Contains(t, kill, ";DOG      _")

	// Parked at the final waypoint when it was killed.
	assert.Contains(t, kill, LatitudeToString(0))
	assert.Contains(t, kill, LongitudeToString(2))
}

// TestSchedulerCompleteHold tests the default policy: keep beaconing the
// final waypoint
func TestSchedulerCompleteHold(t *testing.T) {
	var sink = &captureSink{}
	var s = newTestScheduler(t, sink, 12*time.Hour)
	s.Loop = false
	s.OnComplete = CompleteHold

	require.NoError(t, runUntil(t, s, sink, 4))

	// After completion every beacon is at the final waypoint.
	var lines = sink.Lines()
	var last = positionField(lines[len(lines)-2])
	var prev = positionField(lines[len(lines)-3])
	assert.Equal(t, prev, last)
	assert.Contains(t, last, LongitudeToString(2))
}

// TestSchedulerPersistsState tests that progress is written after ticks
// and restored on the next run
func TestSchedulerPersistsState(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "state.json")
	var store = &FileStateStore{Path: path}

	var sink = &captureSink{}
	var s = newTestScheduler(t, sink, time.Minute)
	s.States = store

	require.NoError(t, runUntil(t, s, sink, 2))

	var state, found, err = store.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Positive(t, state.DistanceKm)

	// A second run resumes from the stored distance.
	var sink2 = &captureSink{}
	var s2 = newTestScheduler(t, sink2, time.Minute)
	s2.States = store

	require.NoError(t, runUntil(t, s2, sink2, 1))
	assert.GreaterOrEqual(t, s2.Clock.DistanceKm, state.DistanceKm)
}

// TestSchedulerEquatorScenario tests the end to end movement numbers:
// one degree per hour at the equator
func TestSchedulerEquatorScenario(t *testing.T) {
	var route = equatorRoute(t)
	var clock = &Clock{LastUpdate: t0}
	var resolver = &Resolver{Route: route, Clock: clock}

	var pos = resolver.CurrentPosition(t0.Add(time.Hour), 111.19, true)
	assert.InDelta(t, 0.0, pos.Lat, 1e-6)
	assert.InDelta(t, 1.0, pos.Lon, 1e-3)
}

// TestSchedulerCommentRotation tests the per-beacon comment rotation
func TestSchedulerCommentRotation(t *testing.T) {
	var sink = &captureSink{}
	var s = newTestScheduler(t, sink, time.Minute)
	s.Comments = []string{"first", "second"}

	require.NoError(t, runUntil(t, s, sink, 4))

	var lines = sink.Lines()
	assert.True(t, strings.HasSuffix(lines[0], "first"))
	assert.True(t, strings.HasSuffix(lines[1], "second"))
	assert.True(t, strings.HasSuffix(lines[2], "first"))
}
