package fusion

import (
	"errors"
	"fmt"

	"github.com/ayusman/handfusion/internal/morph"
	"github.com/ayusman/handfusion/internal/skin"
)

// Default region and threshold settings.
const (
	DefaultHandWidth     = 150
	DefaultHandHeight    = 150
	DefaultObjectWidth   = 50
	DefaultObjectHeight  = 50
	DefaultScreenWidth   = 800
	DefaultScreenHeight  = 600
	DefaultNearThreshold = 1
	DefaultMinObjectArea = 200
)

// Config holds the per-session tuning of the orchestrator.
type Config struct {
	HandWidth  int
	HandHeight int

	ObjectWidth  int
	ObjectHeight int

	ScreenWidth  int
	ScreenHeight int

	// NearThreshold is the depth intensity below which hand color pixels are discarded.
	NearThreshold int

	SkinThreshold float32
	MinSkinArea   int
	MinObjectArea int

	Morph morph.Config
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	return Config{
		HandWidth:     DefaultHandWidth,
		HandHeight:    DefaultHandHeight,
		ObjectWidth:   DefaultObjectWidth,
		ObjectHeight:  DefaultObjectHeight,
		ScreenWidth:   DefaultScreenWidth,
		ScreenHeight:  DefaultScreenHeight,
		NearThreshold: DefaultNearThreshold,
		SkinThreshold: skin.DefaultThreshold,
		MinSkinArea:   skin.DefaultMinArea,
		MinObjectArea: DefaultMinObjectArea,
		Morph:         morph.DefaultConfig(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.HandWidth <= 0 || c.HandHeight <= 0 {
		return fmt.Errorf("fusion: invalid hand region %dx%d", c.HandWidth, c.HandHeight)
	}
	if c.ObjectWidth <= 0 || c.ObjectHeight <= 0 || c.ObjectWidth > c.HandWidth || c.ObjectHeight > c.HandHeight {
		return fmt.Errorf("fusion: object region %dx%d must fit in hand region %dx%d",
			c.ObjectWidth, c.ObjectHeight, c.HandWidth, c.HandHeight)
	}
	if c.ScreenWidth <= 0 || c.ScreenHeight <= 0 {
		return fmt.Errorf("fusion: invalid screen %dx%d", c.ScreenWidth, c.ScreenHeight)
	}
	if c.NearThreshold < 1 || c.NearThreshold > 255 {
		return fmt.Errorf("fusion: near threshold must be in [1,255], got %d", c.NearThreshold)
	}
	if c.SkinThreshold <= 0 || c.SkinThreshold > 1 {
		return fmt.Errorf("fusion: skin threshold must be in (0,1], got %v", c.SkinThreshold)
	}
	if c.MinSkinArea < 0 || c.MinObjectArea < 0 {
		return errors.New("fusion: minimum areas must not be negative")
	}
	return c.Morph.Validate()
}
