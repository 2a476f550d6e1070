package pointlab

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config carries the tunables read from an optional TOML file. Zero
// values in the file fall back to the defaults; nothing is ever
// written back.
type Config struct {
	Addr             string    `toml:"addr"`
	FrameWidth       int       `toml:"frame_width"`
	FrameHeight      int       `toml:"frame_height"`
	Background       string    `toml:"background"`
	PointSize        int       `toml:"point_size"`
	RotationSpeed    float64   `toml:"rotation_speed"`
	TranslationSpeed float64   `toml:"translation_speed"`
	ZoomSpeed        float64   `toml:"zoom_speed"`
	PoissonDepth     int       `toml:"poisson_depth"`
	RadiusLadder     []float64 `toml:"radius_ladder"`
	ExportDecimate   float64   `toml:"export_decimate"`
	CaptureSteps     int       `toml:"capture_steps"`
	CaptureDegrees   int       `toml:"capture_degrees"`
}

func DefaultConfig() Config {
	return Config{
		Addr:             "localhost:8420",
		FrameWidth:       640,
		FrameHeight:      480,
		Background:       "1a1a1a",
		PointSize:        3,
		RotationSpeed:    DefaultRotationSpeed,
		TranslationSpeed: DefaultTranslationSpeed,
		ZoomSpeed:        DefaultZoomSpeed,
		PoissonDepth:     DefaultPoissonDepth,
		RadiusLadder:     BallPivotLadder,
		ExportDecimate:   0,
		CaptureSteps:     DefaultCaptureSteps,
		CaptureDegrees:   DefaultCaptureDegrees,
	}
}

// LoadConfig reads a TOML file over the defaults. An empty path just
// returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// BackgroundColor parses the configured hex background.
func (c Config) BackgroundColor() Color {
	if c.Background == "" {
		return DefaultBackground
	}
	return HexColor(c.Background)
}
