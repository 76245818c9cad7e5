package aprsmover

import "strings"

// Passcode computes the standard APRS-IS passcode for a callsign.  Any
// SSID suffix is ignored and case does not matter.
//
// This is the well known 15 bit hash every APRS-IS client and server
// uses; it proves nothing beyond "the user ran a passcode generator",
// which is exactly the level of authentication the network expects.
func Passcode(callsign string) int {
	var call, _, _ = strings.Cut(strings.ToUpper(callsign), "-")

	var hash = 0x73e2
	for i := 0; i < len(call); i += 2 {
		hash ^= int(call[i]) << 8
		if i+1 < len(call) {
			hash ^= int(call[i+1])
		}
	}

	return hash & 0x7fff
}
