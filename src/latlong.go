package aprsmover

// Latitude/longitude handling for APRS position reports.
//
// The human-readable APRS position format uses degrees and decimal minutes
// in fixed width fields: ddmm.mm followed by N or S for latitude,
// dddmm.mm followed by E or W for longitude.  Leading zeros are required
// because the fields are fixed width.
//
// Reference: APRS Protocol Reference, chapter 6.

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used for all great-circle math.
const EarthRadiusKm = 6371.0

// LatitudeToString converts latitude in degrees to the fixed width
// ddmm.mm[NS] form, exactly 8 characters.  Input outside [-90, 90] is
// clamped; the route model rejects such values long before they get here.
func LatitudeToString(dlat float64) string {
	if dlat < -90 {
		dlat = -90
	}
	if dlat > 90 {
		dlat = 90
	}

	var hemi byte = 'N'
	if dlat < 0 {
		dlat = -dlat
		hemi = 'S'
	}

	var ideg = int(dlat)
	var dmin = (dlat - float64(ideg)) * 60

	var smin = fmt.Sprintf("%05.2f", dmin)
	// Due to roundoff, 59.9999 could come out as "60.00".
	if smin[0] == '6' {
		smin = "00.00"
		ideg++
	}

	return fmt.Sprintf("%02d%s%c", ideg, smin, hemi)
}

// LongitudeToString converts longitude in degrees to the fixed width
// dddmm.mm[EW] form, exactly 9 characters.
func LongitudeToString(dlon float64) string {
	if dlon < -180 {
		dlon = -180
	}
	if dlon > 180 {
		dlon = 180
	}

	var hemi byte = 'E'
	if dlon < 0 {
		dlon = -dlon
		hemi = 'W'
	}

	var ideg = int(dlon)
	var dmin = (dlon - float64(ideg)) * 60

	var smin = fmt.Sprintf("%05.2f", dmin)
	// Due to roundoff, 59.9999 could come out as "60.00".
	if smin[0] == '6' {
		smin = "00.00"
		ideg++
	}

	return fmt.Sprintf("%03d%s%c", ideg, smin, hemi)
}

// DistanceKm returns the great-circle distance in km between two points.
// The Ubiquitous Haversine formula.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1 *= math.Pi / 180
	lon1 *= math.Pi / 180
	lat2 *= math.Pi / 180
	lon2 *= math.Pi / 180

	var a = math.Pow(math.Sin((lat2-lat1)/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin((lon2-lon1)/2), 2)

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// IntermediatePoint returns the point the given fraction of the way along
// the great-circle path from (lat1, lon1) to (lat2, lon2).  fraction 0 is
// the start, 1 the end.  Coincident endpoints return the start.
func IntermediatePoint(lat1, lon1, lat2, lon2, fraction float64) (float64, float64) {
	lat1 *= math.Pi / 180
	lon1 *= math.Pi / 180
	lat2 *= math.Pi / 180
	lon2 *= math.Pi / 180

	var d = 2 * math.Asin(math.Sqrt(
		math.Pow(math.Sin((lat2-lat1)/2), 2)+
			math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin((lon2-lon1)/2), 2)))

	if d < 1e-12 {
		return lat1 * 180 / math.Pi, lon1 * 180 / math.Pi
	}

	var a = math.Sin((1-fraction)*d) / math.Sin(d)
	var b = math.Sin(fraction*d) / math.Sin(d)

	var x = a*math.Cos(lat1)*math.Cos(lon1) + b*math.Cos(lat2)*math.Cos(lon2)
	var y = a*math.Cos(lat1)*math.Sin(lon1) + b*math.Cos(lat2)*math.Sin(lon2)
	var z = a*math.Sin(lat1) + b*math.Sin(lat2)

	var lat = math.Atan2(z, math.Sqrt(x*x+y*y))
	var lon = math.Atan2(y, x)

	return lat * 180 / math.Pi, lon * 180 / math.Pi
}
