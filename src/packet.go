package aprsmover

// APRS packet construction.
//
// Everything here is a pure function of its inputs: identical arguments
// always produce byte-identical packets.  Time is passed in, never
// sampled, which is what makes dry-run output comparable and the codec
// testable.
//
// References: APRS Protocol Reference chapter 11 (object reports),
// http://www.aprs-is.net/Connecting.aspx (login line).

import (
	"fmt"
	"time"
	"unicode"

	"github.com/lestrrat-go/strftime"
)

// Software name and version for the APRS-IS login line.
// Neither may contain spaces.
const (
	SoftwareName    = "aprsmover"
	SoftwareVersion = "1.0"
)

// MaxPacketLen is the longest line APRS-IS accepts, including the
// terminating CR/LF.
const MaxPacketLen = 512

// objectTimestampFormat is day-of-month, hour, minute, zulu.
const objectTimestampFormat = "%d%H%Mz"

// ObjectDescriptor identifies the reported object: its name (9 characters
// max), map symbol, and comment text.
type ObjectDescriptor struct {
	Name        string
	SymbolTable byte
	Symbol      byte
	Comment     string
}

// LoginLine builds the APRS-IS login: "user CALL pass PASS vers NAME VER".
// The passcode is precomputed by configuration; here we only require that
// both credentials are present.
func LoginLine(callsign, passcode string) (string, error) {
	if callsign == "" || passcode == "" {
		return "", ErrMissingCredentials
	}
	return fmt.Sprintf("user %s pass %s vers %s %s", callsign, passcode, SoftwareName, SoftwareVersion), nil
}

// ObjectReport builds a live object report sent by owner on behalf of the
// named object:
//
//	OWNER>APRS,TCPIP*:;NAME_____*DDHHMMzDDMM.mmN/DDDMM.mmE$comment
//
// The name is space padded to exactly 9 characters and the '*' marks the
// object as live.
func ObjectReport(owner string, obj ObjectDescriptor, at time.Time, lat, lon float64) (string, error) {
	return encodeObject(owner, obj, at, lat, lon, '*', obj.Comment)
}

// KillReport builds the same report with the '_' deleted marker.  It must
// carry the object's last known position so map clients remove the marker
// where it stands instead of leaving a stale one.
func KillReport(owner string, obj ObjectDescriptor, at time.Time, lat, lon float64) (string, error) {
	return encodeObject(owner, obj, at, lat, lon, '_', "")
}

func encodeObject(owner string, obj ObjectDescriptor, at time.Time, lat, lon float64, liveKilled byte, comment string) (string, error) {
	if owner == "" {
		return "", ErrMissingCredentials
	}
	if obj.Name == "" || len(obj.Name) > 9 {
		return "", fmt.Errorf("%w: %q must be 1 to 9 characters", ErrInvalidObjectName, obj.Name)
	}
	if err := checkSymbol(obj.SymbolTable, obj.Symbol); err != nil {
		return "", err
	}

	var timestamp, err = strftime.Format(objectTimestampFormat, at.UTC())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	var packet = fmt.Sprintf("%s>APRS,TCPIP*:;%-9s%c%s%s%c%s%c%s",
		owner, obj.Name, liveKilled, timestamp,
		LatitudeToString(lat), obj.SymbolTable,
		LongitudeToString(lon), obj.Symbol,
		comment)

	if len(packet)+2 > MaxPacketLen {
		return "", fmt.Errorf("%w: packet is %d bytes, limit is %d including CR/LF", ErrEncoding, len(packet), MaxPacketLen)
	}

	return packet, nil
}

// checkSymbol applies the same constraints the protocol reference puts on
// symbol fields: table is / \ or an overlay 0-9 A-Z, code is printable.
func checkSymbol(table, symbol byte) error {
	if table != '/' && table != '\\' && !unicode.IsDigit(rune(table)) && !unicode.IsUpper(rune(table)) {
		return fmt.Errorf("%w: symbol table identifier %q is not one of / \\ 0-9 A-Z", ErrEncoding, string(table))
	}
	if symbol < '!' || symbol > '~' {
		return fmt.Errorf("%w: symbol code %q is not in range of ! to ~", ErrEncoding, string(symbol))
	}
	return nil
}
