package aprsmover

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tkrajina/gpxgo/gpx"
	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration.  LoadConfig fills in defaults and
// validates, so the rest of the program can assume a sane config.
type Config struct {
	APRSIS   APRSISConfig   `yaml:"aprs_is"`
	Object   ObjectConfig   `yaml:"object"`
	Movement MovementConfig `yaml:"movement"`
	Route    RouteConfig    `yaml:"route"`
}

type APRSISConfig struct {
	Callsign string       `yaml:"callsign"`
	Passcode scalarString `yaml:"passcode"`
	Host     string       `yaml:"host"`
	Port     int          `yaml:"port"`
}

// Passcodes are numeric, so YAML parses an unquoted one as an integer.
// scalarString accepts either form.
type scalarString string

func (s *scalarString) UnmarshalYAML(node *yaml.Node) error {
	*s = scalarString(node.Value)
	return nil
}

type ObjectConfig struct {
	Name        string   `yaml:"name"`
	SymbolTable string   `yaml:"symbol_table"`
	Symbol      string   `yaml:"symbol"`
	Comment     string   `yaml:"comment"`
	Comments    []string `yaml:"comments"`
}

type MovementConfig struct {
	SpeedKmh       float64 `yaml:"speed_kmh"`
	BeaconInterval int     `yaml:"beacon_interval"` // seconds
	Loop           bool    `yaml:"loop"`
	OnComplete     string  `yaml:"on_complete"` // "hold" or "stop", non-looping routes only
}

type RouteConfig struct {
	Waypoints [][]float64 `yaml:"waypoints"` // [lat, lon] pairs
	GPXFile   string      `yaml:"gpx_file"`
}

// DefaultConfig returns the defaults applied underneath the YAML file.
func DefaultConfig() Config {
	return Config{
		APRSIS: APRSISConfig{
			Host: "rotate.aprs2.net",
			Port: 14580,
		},
		Object: ObjectConfig{
			SymbolTable: "/",
			Symbol:      "r",
		},
		Movement: MovementConfig{
			SpeedKmh:       25.0,
			BeaconInterval: 120,
			Loop:           true,
			OnComplete:     string(CompleteHold),
		},
	}
}

// LoadConfig reads, defaults, overrides, and validates the YAML file, and
// resolves the route source down to the final waypoint list.
//
// APRS_CALLSIGN and APRS_PASSCODE environment variables override the file
// so secrets can stay out of it.
func LoadConfig(path string) (*Config, []Waypoint, error) {
	var data, err = os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg = DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if v := os.Getenv("APRS_CALLSIGN"); v != "" {
		cfg.APRSIS.Callsign = v
	}
	if v := os.Getenv("APRS_PASSCODE"); v != "" {
		cfg.APRSIS.Passcode = scalarString(v)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	var waypoints, routeErr = cfg.Route.waypoints(filepath.Dir(path))
	if routeErr != nil {
		return nil, nil, routeErr
	}

	return &cfg, waypoints, nil
}

// Validate checks everything except the route, which gets validated when
// the waypoints are resolved and the Route is built.
func (c *Config) Validate() error {
	if c.APRSIS.Callsign == "" {
		return fmt.Errorf("aprs_is.callsign is required")
	}
	if c.APRSIS.Passcode == "" {
		return fmt.Errorf("aprs_is.passcode is required")
	}
	if c.APRSIS.Port <= 0 || c.APRSIS.Port > 65535 {
		return fmt.Errorf("aprs_is.port %d is not a valid port", c.APRSIS.Port)
	}

	// A wrong passcode gets the login flagged "unverified" and every
	// packet dropped server side.  -1 is legitimate for receive-only
	// servers, so only warn.
	if pass, err := strconv.Atoi(string(c.APRSIS.Passcode)); err == nil && pass != -1 {
		if expected := Passcode(c.APRSIS.Callsign); pass != expected {
			Logger.Warn("Passcode does not match callsign",
				"callsign", c.APRSIS.Callsign, "passcode", pass, "expected", expected)
		}
	}

	if c.Object.Name == "" {
		return fmt.Errorf("object.name is required")
	}
	if len(c.Object.Name) > 9 {
		return fmt.Errorf("object.name %q must be 9 characters or fewer", c.Object.Name)
	}
	if len(c.Object.SymbolTable) != 1 {
		return fmt.Errorf("object.symbol_table %q must be a single character", c.Object.SymbolTable)
	}
	if len(c.Object.Symbol) != 1 {
		return fmt.Errorf("object.symbol %q must be a single character", c.Object.Symbol)
	}
	if err := checkSymbol(c.Object.SymbolTable[0], c.Object.Symbol[0]); err != nil {
		return err
	}

	if c.Movement.SpeedKmh <= 0 {
		return fmt.Errorf("movement.speed_kmh must be positive, got %v", c.Movement.SpeedKmh)
	}
	if c.Movement.BeaconInterval <= 0 {
		return fmt.Errorf("movement.beacon_interval must be positive, got %d", c.Movement.BeaconInterval)
	}
	switch CompletionPolicy(c.Movement.OnComplete) {
	case CompleteHold, CompleteStop:
	default:
		return fmt.Errorf("movement.on_complete %q must be %q or %q", c.Movement.OnComplete, CompleteHold, CompleteStop)
	}

	return nil
}

// ObjectDescriptor converts the validated object section.
func (c *Config) ObjectDescriptor() ObjectDescriptor {
	return ObjectDescriptor{
		Name:        c.Object.Name,
		SymbolTable: c.Object.SymbolTable[0],
		Symbol:      c.Object.Symbol[0],
		Comment:     c.Object.Comment,
	}
}

// waypoints resolves the route section to the ordered waypoint list.
// baseDir is the config file's directory; a relative gpx_file is resolved
// against it.
func (rc *RouteConfig) waypoints(baseDir string) ([]Waypoint, error) {
	switch {
	case rc.GPXFile != "":
		var gpxPath = rc.GPXFile
		if !filepath.IsAbs(gpxPath) {
			gpxPath = filepath.Join(baseDir, gpxPath)
		}
		return LoadGPXWaypoints(gpxPath)

	case len(rc.Waypoints) > 0:
		var waypoints = make([]Waypoint, 0, len(rc.Waypoints))
		for i, pair := range rc.Waypoints {
			if len(pair) != 2 {
				return nil, fmt.Errorf("%w: route.waypoints[%d] must be a [lat, lon] pair", ErrInvalidRoute, i)
			}
			waypoints = append(waypoints, Waypoint{Lat: pair[0], Lon: pair[1]})
		}
		return waypoints, nil

	default:
		return nil, fmt.Errorf("%w: route.waypoints or route.gpx_file is required", ErrInvalidRoute)
	}
}

// LoadGPXWaypoints extracts an ordered waypoint list from a GPX file.
// Routes are preferred, then tracks, then bare waypoints, matching how
// most route planners export.
func LoadGPXWaypoints(path string) ([]Waypoint, error) {
	var doc, err = gpx.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parsing GPX file %s: %w", path, err)
	}

	var points []Waypoint

	for _, route := range doc.Routes {
		for _, p := range route.Points {
			points = append(points, Waypoint{Lat: p.Latitude, Lon: p.Longitude})
		}
	}
	if len(points) > 0 {
		Logger.Info("Loaded GPX route points", "count", len(points), "path", path)
		return points, nil
	}

	for _, track := range doc.Tracks {
		for _, segment := range track.Segments {
			for _, p := range segment.Points {
				points = append(points, Waypoint{Lat: p.Latitude, Lon: p.Longitude})
			}
		}
	}
	if len(points) > 0 {
		Logger.Info("Loaded GPX track points", "count", len(points), "path", path)
		return points, nil
	}

	for _, p := range doc.Waypoints {
		points = append(points, Waypoint{Lat: p.Latitude, Lon: p.Longitude})
	}
	if len(points) > 0 {
		Logger.Info("Loaded GPX waypoints", "count", len(points), "path", path)
		return points, nil
	}

	return nil, fmt.Errorf("%w: no points found in GPX file %s", ErrInvalidRoute, path)
}
