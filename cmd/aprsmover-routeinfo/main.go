/* Inspect a configured route: waypoints, length, interpolated positions */
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/spf13/pflag"
	"github.com/tzneal/coordconv"

	aprsmover "github.com/doismellburning/aprsmover/src"
)

func main() {
	var configPath = pflag.StringP("config", "c", "config.yaml", "Path to config YAML file")
	var atDistance = pflag.Float64P("distance", "d", -1, "Also show the interpolated position this many km along the route")
	var utm = pflag.Bool("utm", false, "Show UTM and MGRS coordinates for each point")

	pflag.Parse()

	var _, waypoints, err = aprsmover.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %s\n", err)
		os.Exit(1)
	}

	route, routeErr := aprsmover.NewRoute(waypoints)
	if routeErr != nil {
		fmt.Fprintf(os.Stderr, "Route error: %s\n", routeErr)
		os.Exit(1)
	}

	fmt.Printf("Route: %d waypoints, %.2f km total\n", route.Len(), route.TotalLength())
	fmt.Printf("\n")

	var cumulative = 0.0
	for i := 0; i < route.Len(); i++ {
		var wp = route.Waypoint(i)
		if i > 0 {
			var prev = route.Waypoint(i - 1)
			cumulative += aprsmover.DistanceKm(prev.Lat, prev.Lon, wp.Lat, wp.Lon)
		}
		fmt.Printf("%3d  %10.5f %11.5f  %8.2f km  %s %s\n",
			i, wp.Lat, wp.Lon, cumulative,
			aprsmover.LatitudeToString(wp.Lat), aprsmover.LongitudeToString(wp.Lon))
		if *utm {
			printUTM(wp.Lat, wp.Lon)
		}
	}

	if *atDistance >= 0 {
		var pos = route.PointAtDistance(*atDistance)
		fmt.Printf("\n")
		fmt.Printf("At %.2f km: %.5f %.5f  %s %s\n",
			*atDistance, pos.Lat, pos.Lon,
			aprsmover.LatitudeToString(pos.Lat), aprsmover.LongitudeToString(pos.Lon))
		if *utm {
			printUTM(pos.Lat, pos.Lon)
		}
	}
}

func printUTM(lat, lon float64) {
	var latlng = s2.LatLng{
		Lat: s1.Angle(lat * math.Pi / 180),
		Lng: s1.Angle(lon * math.Pi / 180),
	}

	var utmCoord, utmErr = coordconv.DefaultUTMConverter.ConvertFromGeodetic(latlng, 0)
	if utmErr == nil {
		fmt.Printf("     UTM zone = %d, hemisphere = %c, easting = %.0f, northing = %.0f\n",
			utmCoord.Zone, aprsmover.HemisphereToRune(utmCoord.Hemisphere), utmCoord.Easting, utmCoord.Northing)
	}

	var mgrsCoord, mgrsErr = coordconv.DefaultMGRSConverter.ConvertFromGeodetic(latlng, 5)
	if mgrsErr == nil {
		fmt.Printf("     MGRS = %s\n", mgrsCoord)
	}
}
