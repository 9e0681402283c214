package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/olivier-w/coverflow/internal/carousel"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Catalog string  `yaml:"catalog"`
	Volume  float64 `yaml:"volume"`

	Carousel CarouselConfig `yaml:"carousel"`
	Wheel    WheelConfig    `yaml:"wheel"`
	Log      LogConfig      `yaml:"log"`
}

type CarouselConfig struct {
	// Cover height and gap between covers, in terminal rows.
	CoverSize float64 `yaml:"cover_size"`
	Gap       float64 `yaml:"gap"`

	// Easing is "lerp" or "spring".
	Easing          string  `yaml:"easing"`
	LerpFactor      float64 `yaml:"lerp_factor"`
	SpringFrequency float64 `yaml:"spring_frequency"`
	SpringDamping   float64 `yaml:"spring_damping"`
	FPS             int     `yaml:"fps"`

	// SnapPolicy is "target" or "live".
	SnapPolicy string `yaml:"snap_policy"`
}

type WheelConfig struct {
	Scale     float64       `yaml:"scale"`
	Threshold float64       `yaml:"threshold"`
	IdleDelay time.Duration `yaml:"idle_delay"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads a YAML config file over the defaults, so keys left out of the
// file keep their default value and explicit zeros are honored.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if config.Log.Path == "" {
		config.Log.Path = defaultLogPath()
	}

	if config.Catalog != "" && !filepath.IsAbs(config.Catalog) {
		config.Catalog = filepath.Join(filepath.Dir(path), config.Catalog)
	}
	return config, config.Validate()
}

func (c *Config) applyDefaults() {
	if c.Volume == 0 {
		c.Volume = 0.8
	}

	if c.Carousel.CoverSize == 0 {
		c.Carousel.CoverSize = 5
	}
	if c.Carousel.Gap == 0 {
		c.Carousel.Gap = 1
	}
	if c.Carousel.Easing == "" {
		c.Carousel.Easing = "lerp"
	}
	if c.Carousel.LerpFactor == 0 {
		c.Carousel.LerpFactor = 0.1
	}
	if c.Carousel.SpringFrequency == 0 {
		c.Carousel.SpringFrequency = 6
	}
	if c.Carousel.SpringDamping == 0 {
		c.Carousel.SpringDamping = 1
	}
	if c.Carousel.FPS == 0 {
		c.Carousel.FPS = 60
	}
	if c.Carousel.SnapPolicy == "" {
		c.Carousel.SnapPolicy = "target"
	}

	if c.Wheel.Scale == 0 {
		c.Wheel.Scale = 1
	}
	if c.Wheel.Threshold == 0 {
		c.Wheel.Threshold = 5
	}
	if c.Wheel.IdleDelay == 0 {
		c.Wheel.IdleDelay = 250 * time.Millisecond
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Path == "" {
		c.Log.Path = defaultLogPath()
	}
	if c.Log.MaxSize == 0 {
		c.Log.MaxSize = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAge == 0 {
		c.Log.MaxAge = 28
	}
}

func defaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "coverflow", "coverflow.log")
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Volume < 0 || c.Volume > 1 {
		errs = append(errs, fmt.Errorf("volume %v not in [0,1]", c.Volume))
	}
	if c.Carousel.CoverSize+c.Carousel.Gap <= 0 {
		errs = append(errs, fmt.Errorf("carousel item extent must be positive"))
	}
	switch c.Carousel.Easing {
	case "lerp", "spring":
	default:
		errs = append(errs, fmt.Errorf("unknown easing %q (want lerp or spring)", c.Carousel.Easing))
	}
	if c.Carousel.LerpFactor <= 0 || c.Carousel.LerpFactor > 1 {
		errs = append(errs, fmt.Errorf("lerp_factor %v not in (0,1]", c.Carousel.LerpFactor))
	}
	if c.Carousel.FPS < 1 || c.Carousel.FPS > 240 {
		errs = append(errs, fmt.Errorf("fps %d not in [1,240]", c.Carousel.FPS))
	}
	if _, ok := carousel.ParseSnapPolicy(c.Carousel.SnapPolicy); !ok {
		errs = append(errs, fmt.Errorf("unknown snap_policy %q (want target or live)", c.Carousel.SnapPolicy))
	}
	if c.Wheel.Threshold < 0 {
		errs = append(errs, fmt.Errorf("wheel threshold must not be negative"))
	}
	if c.Wheel.IdleDelay < 0 {
		errs = append(errs, fmt.Errorf("wheel idle_delay must not be negative"))
	}
	return errors.Join(errs...)
}
