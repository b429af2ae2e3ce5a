package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables overriding file settings.
const (
	EnvSkinModel     = "HANDFUSION_SKIN_MODEL"
	EnvMinDepth      = "HANDFUSION_MIN_DEPTH"
	EnvMaxDepth      = "HANDFUSION_MAX_DEPTH"
	EnvFPS           = "HANDFUSION_FPS"
	EnvNearThreshold = "HANDFUSION_NEAR_THRESHOLD"
	EnvSkinThreshold = "HANDFUSION_SKIN_THRESHOLD"
	EnvStorePath     = "HANDFUSION_STORE_PATH"
	EnvServerAddr    = "HANDFUSION_SERVER_ADDR"
	EnvMQTTBroker    = "HANDFUSION_MQTT_BROKER"
	EnvLogLevel      = "HANDFUSION_LOG_LEVEL"
	EnvLogFormat     = "HANDFUSION_LOG_FORMAT"
)

// LoadDotEnv reads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnv overrides settings from HANDFUSION_* environment variables.
func (c *Config) ApplyEnv() {
	c.SkinModelPath = GetEnv(EnvSkinModel, c.SkinModelPath)
	c.Sensor.MinDepth = GetEnvInt(EnvMinDepth, c.Sensor.MinDepth)
	c.Sensor.MaxDepth = GetEnvInt(EnvMaxDepth, c.Sensor.MaxDepth)
	c.Sensor.FPS = GetEnvInt(EnvFPS, c.Sensor.FPS)
	c.Thresholds.Near = GetEnvInt(EnvNearThreshold, c.Thresholds.Near)
	c.Thresholds.Skin = float32(GetEnvFloat(EnvSkinThreshold, float64(c.Thresholds.Skin)))
	c.Store.Path = GetEnv(EnvStorePath, c.Store.Path)
	c.Server.Addr = GetEnv(EnvServerAddr, c.Server.Addr)
	c.MQTT.Broker = GetEnv(EnvMQTTBroker, c.MQTT.Broker)
	c.Log.Level = GetEnv(EnvLogLevel, c.Log.Level)
	c.Log.Format = GetEnv(EnvLogFormat, c.Log.Format)
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvFloat is GetEnvInt for floating point values.
func GetEnvFloat(key string, fallback float64) float64 {
	if s := os.Getenv(key); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return fallback
}
