// Package config loads handfusion settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/handfusion/internal/depth"
	"github.com/ayusman/handfusion/internal/fusion"
	"github.com/ayusman/handfusion/internal/morph"
	"github.com/ayusman/handfusion/internal/sensor"
)

// Config is the complete handfusion configuration.
type Config struct {
	Sensor        SensorConfig    `yaml:"sensor"`
	HandRegion    Size            `yaml:"hand_region"`
	ObjectRegion  Size            `yaml:"object_region"`
	Screen        Size            `yaml:"screen"`
	Thresholds    ThresholdConfig `yaml:"thresholds"`
	Morph         MorphConfig     `yaml:"morph"`
	SkinModelPath string          `yaml:"skin_model_path"`
	Store         StoreConfig     `yaml:"store"`
	Server        ServerConfig    `yaml:"server"`
	MQTT          MQTTConfig      `yaml:"mqtt"`
	Log           LogConfig       `yaml:"log"`
}

// SensorConfig describes the synthetic sensor stream.
type SensorConfig struct {
	FPS         int  `yaml:"fps"`
	IdleFPS     int  `yaml:"idle_fps"`
	DepthWidth  int  `yaml:"depth_width"`
	DepthHeight int  `yaml:"depth_height"`
	ColorWidth  int  `yaml:"color_width"`
	ColorHeight int  `yaml:"color_height"`
	MinDepth    int  `yaml:"min_depth"` // millimetres
	MaxDepth    int  `yaml:"max_depth"` // millimetres
	HoldObject  bool `yaml:"hold_object"`
	DropEvery   int  `yaml:"drop_every"`
}

// Size is a width and height in pixels.
type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// ThresholdConfig holds the classification cutoffs.
type ThresholdConfig struct {
	Near          int     `yaml:"near"`
	Skin          float32 `yaml:"skin"`
	MinSkinArea   int     `yaml:"min_skin_area"`
	MinObjectArea int     `yaml:"min_object_area"`
}

// MorphConfig holds the smoothing and morphology kernel sizes.
type MorphConfig struct {
	SmoothKernel int `yaml:"smooth_kernel"`
	MorphKernel  int `yaml:"morph_kernel"`
}

// StoreConfig locates the SQLite database. An empty path uses ~/.handfusion/handfusion.db.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	StaticDir   string `yaml:"static_dir"`
	JPEGQuality int    `yaml:"jpeg_quality"`
}

// MQTTConfig configures the hand event emitter. An empty broker disables it.
type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         byte   `yaml:"qos"`
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	fc := fusion.DefaultConfig()
	return &Config{
		Sensor: SensorConfig{
			FPS:         sensor.DefaultFPS,
			IdleFPS:     5,
			DepthWidth:  sensor.DefaultWidth,
			DepthHeight: sensor.DefaultHeight,
			ColorWidth:  sensor.DefaultWidth,
			ColorHeight: sensor.DefaultHeight,
			MinDepth:    800,
			MaxDepth:    3000,
			HoldObject:  true,
		},
		HandRegion:   Size{Width: fc.HandWidth, Height: fc.HandHeight},
		ObjectRegion: Size{Width: fc.ObjectWidth, Height: fc.ObjectHeight},
		Screen:       Size{Width: fc.ScreenWidth, Height: fc.ScreenHeight},
		Thresholds: ThresholdConfig{
			Near:          fc.NearThreshold,
			Skin:          fc.SkinThreshold,
			MinSkinArea:   fc.MinSkinArea,
			MinObjectArea: fc.MinObjectArea,
		},
		Morph: MorphConfig{
			SmoothKernel: fc.Morph.SmoothKernel,
			MorphKernel:  fc.Morph.MorphKernel,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			JPEGQuality: 80,
		},
		MQTT: MQTTConfig{
			ClientID:    "handfusion",
			TopicPrefix: "handfusion",
			QoS:         1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML configuration file over the defaults, applies HANDFUSION_*
// environment overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	s := c.Sensor
	if s.FPS <= 0 {
		return errors.New("sensor.fps must be > 0")
	}
	if s.IdleFPS <= 0 || s.IdleFPS > s.FPS {
		return fmt.Errorf("sensor.idle_fps must be in [1,%d]", s.FPS)
	}
	if s.DepthWidth <= 0 || s.DepthHeight <= 0 || s.ColorWidth <= 0 || s.ColorHeight <= 0 {
		return errors.New("sensor frame sizes must be > 0")
	}
	if s.MinDepth < 0 || s.MinDepth >= s.MaxDepth || s.MaxDepth > depth.MaxDepthLimit {
		return fmt.Errorf("sensor depth range [%d,%d] must satisfy 0 <= min < max <= %d",
			s.MinDepth, s.MaxDepth, depth.MaxDepthLimit)
	}
	if c.HandRegion.Width > s.DepthWidth || c.HandRegion.Height > s.DepthHeight ||
		c.HandRegion.Width > s.ColorWidth || c.HandRegion.Height > s.ColorHeight {
		return fmt.Errorf("hand_region %dx%d does not fit the sensor frames", c.HandRegion.Width, c.HandRegion.Height)
	}
	if c.Server.JPEGQuality < 1 || c.Server.JPEGQuality > 100 {
		return errors.New("server.jpeg_quality must be in [1,100]")
	}
	if c.MQTT.QoS > 2 {
		return errors.New("mqtt.qos must be 0, 1 or 2")
	}

	return c.Fusion().Validate()
}

// Fusion returns the orchestrator settings.
func (c *Config) Fusion() fusion.Config {
	return fusion.Config{
		HandWidth:     c.HandRegion.Width,
		HandHeight:    c.HandRegion.Height,
		ObjectWidth:   c.ObjectRegion.Width,
		ObjectHeight:  c.ObjectRegion.Height,
		ScreenWidth:   c.Screen.Width,
		ScreenHeight:  c.Screen.Height,
		NearThreshold: c.Thresholds.Near,
		SkinThreshold: c.Thresholds.Skin,
		MinSkinArea:   c.Thresholds.MinSkinArea,
		MinObjectArea: c.Thresholds.MinObjectArea,
		Morph: morph.Config{
			SmoothKernel: c.Morph.SmoothKernel,
			MorphKernel:  c.Morph.MorphKernel,
		},
	}
}

// Scene returns the synthetic sensor settings.
func (c *Config) Scene() sensor.SceneConfig {
	return sensor.SceneConfig{
		DepthWidth:  c.Sensor.DepthWidth,
		DepthHeight: c.Sensor.DepthHeight,
		ColorWidth:  c.Sensor.ColorWidth,
		ColorHeight: c.Sensor.ColorHeight,
		FPS:         c.Sensor.FPS,
		MinDepth:    c.Sensor.MinDepth,
		MaxDepth:    c.Sensor.MaxDepth,
		HoldObject:  c.Sensor.HoldObject,
		DropEvery:   c.Sensor.DropEvery,
	}
}
