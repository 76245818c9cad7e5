package aprsmover

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var testObject = ObjectDescriptor{
	Name:        "DOG",
	SymbolTable: '/',
	Symbol:      'r',
	Comment:     "out for a walk",
}

var testTime = time.Date(2026, 3, 5, 12, 34, 56, 0, time.UTC)

// TestLoginLine tests the APRS-IS login format
func TestLoginLine(t *testing.T) {
	var line, err = LoginLine("N0CALL", "13023")
	require.NoError(t, err)
	assert.Equal(t, "user N0CALL pass 13023 vers aprsmover 1.0", line)
}

// TestLoginLineMissingCredentials tests credential validation
func TestLoginLineMissingCredentials(t *testing.T) {
	var _, err = LoginLine("", "13023")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = LoginLine("N0CALL", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

// TestObjectReport tests the full object report encoding, including the
// degrees-and-decimal-minutes position fields
func TestObjectReport(t *testing.T) {
	var packet, err = ObjectReport("N0CALL", testObject, testTime, 40.7128, -74.0060)
	require.NoError(t, err)
	assert.Equal(t, "N0CALL>APRS,TCPIP*:;DOG      *051234z4042.77N/07400.36Wrout for a walk", packet)
}

// TestObjectReportNamePadding tests the fixed 9 character name field
func TestObjectReportNamePadding(t *testing.T) {
	var obj = testObject
	obj.Name = "WANDERER9"
	obj.Comment = ""

	var packet, err = ObjectReport("N0CALL", obj, testTime, 0, 0)
	require.NoError(t, err)
	assert.Contains(t, packet, ";WANDERER9*")
}

// TestKillReport tests that a kill report uses the deletion marker but
// keeps the position
func TestKillReport(t *testing.T) {
	var packet, err = KillReport("N0CALL", testObject, testTime, 40.7128, -74.0060)
	require.NoError(t, err)
	assert.Equal(t, "N0CALL>APRS,TCPIP*:;DOG      _051234z4042.77N/07400.36Wr", packet)
	assert.Contains(t, packet, "DOG      _", "kill marker replaces the live marker")
	assert.Contains(t, packet, "4042.77N", "kill report keeps the last position")
}

// TestObjectReportInvalidName tests the defensive name length check
func TestObjectReportInvalidName(t *testing.T) {
	tests := []struct {
		name    string
		objName string
	}{
		{"empty", ""},
		{"ten characters", "WANDERER10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var obj = testObject
			obj.Name = tt.objName
			var _, err = ObjectReport("N0CALL", obj, testTime, 0, 0)
			assert.ErrorIs(t, err, ErrInvalidObjectName)
		})
	}
}

// TestObjectReportBadSymbol tests symbol field validation
func TestObjectReportBadSymbol(t *testing.T) {
	var obj = testObject
	obj.SymbolTable = '!'
	var _, err = ObjectReport("N0CALL", obj, testTime, 0, 0)
	assert.ErrorIs(t, err, ErrEncoding)

	obj = testObject
	obj.Symbol = ' '
	_, err = ObjectReport("N0CALL", obj, testTime, 0, 0)
	assert.ErrorIs(t, err, ErrEncoding)
}

// TestObjectReportTooLong tests the 512 byte line limit
func TestObjectReportTooLong(t *testing.T) {
	var obj = testObject
	for len(obj.Comment) < MaxPacketLen {
		obj.Comment += "padding padding padding "
	}

	var _, err = ObjectReport("N0CALL", obj, testTime, 0, 0)
	assert.ErrorIs(t, err, ErrEncoding)
}

// TestObjectReportMissingOwner tests owner validation
func TestObjectReportMissingOwner(t *testing.T) {
	var _, err = ObjectReport("", testObject, testTime, 0, 0)
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

// TestObjectReportDeterministic checks that identical inputs always
// produce byte-identical packets
func TestObjectReportDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var lat = rapid.Float64Range(-90, 90).Draw(t, "lat")
		var lon = rapid.Float64Range(-180, 180).Draw(t, "lon")

		var first, err1 = ObjectReport("N0CALL", testObject, testTime, lat, lon)
		var second, err2 = ObjectReport("N0CALL", testObject, testTime, lat, lon)

		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, first, second)
	})
}

// TestObjectTimestamp tests the DDHHMMz timestamp field
func TestObjectTimestamp(t *testing.T) {
	var packet, err = ObjectReport("N0CALL", testObject, time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC), 0, 0)
	require.NoError(t, err)
	assert.Contains(t, packet, "*312359z")

	// Local times are converted to zulu.
	var nyc = time.FixedZone("EST", -5*3600)
	packet, err = ObjectReport("N0CALL", testObject, time.Date(2026, 3, 5, 7, 34, 0, 0, nyc), 0, 0)
	require.NoError(t, err)
	assert.Contains(t, packet, "*051234z")
}
