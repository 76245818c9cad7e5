package aprsmover

// Utilities for working with https://github.com/tzneal/coordconv

import (
	"github.com/tzneal/coordconv"
)

func HemisphereToRune(h coordconv.Hemisphere) rune {
	switch h {
	case coordconv.HemisphereNorth:
		return 'N'
	case coordconv.HemisphereSouth:
		return 'S'
	case coordconv.HemisphereInvalid:
		return '!'
	default:
		return '?'
	}
}
