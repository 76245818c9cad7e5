package aprsmover

import "errors"

// Sentinel errors.  Network and configuration failures are wrapped with
// fmt.Errorf("...: %w", ...) so callers can still match with errors.Is.
var (
	// ErrInvalidRoute means the waypoint list cannot form a usable route:
	// fewer than two points, or a coordinate outside its valid range.
	ErrInvalidRoute = errors.New("invalid route")

	// ErrMissingCredentials means the callsign or passcode was empty when
	// building the APRS-IS login line.
	ErrMissingCredentials = errors.New("missing callsign or passcode")

	// ErrInvalidObjectName means the object name is empty or longer than
	// the 9 characters the object report format allows.
	ErrInvalidObjectName = errors.New("invalid object name")

	// ErrEncoding means a packet could not be encoded without violating
	// the protocol (bad symbol, over-length line).  Fatal: transmitting a
	// malformed packet would just get it silently dropped by the server.
	ErrEncoding = errors.New("packet encoding error")

	// ErrAuthentication means the server rejected our login.
	ErrAuthentication = errors.New("APRS-IS authentication rejected")

	// ErrTransmission means a send on an established connection failed.
	// The connection is considered dead afterwards.
	ErrTransmission = errors.New("transmission failed")

	// ErrNotConnected means Send was called with no connection up.
	ErrNotConnected = errors.New("not connected")
)
