package aprsmover

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Logger is the package logger.  Info level logs state transitions and
// errors; verbose mode adds every connect attempt, backoff duration, and
// packet sent.
var Logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      time.TimeOnly,
})

// SetupLogging applies the --verbose flag.
func SetupLogging(verbose bool) {
	if verbose {
		Logger.SetLevel(log.DebugLevel)
	} else {
		Logger.SetLevel(log.InfoLevel)
	}
}
