package config

import (
	"fmt"

	"github.com/ayusman/handfusion/internal/store"
)

// ApplyProfile overrides the depth range and thresholds with those of p and
// revalidates the result.
func (c *Config) ApplyProfile(p *store.Profile) error {
	c.Sensor.MinDepth = p.MinDepth
	c.Sensor.MaxDepth = p.MaxDepth
	c.Thresholds.Near = p.NearThreshold
	c.Thresholds.Skin = float32(p.SkinThreshold)
	c.Thresholds.MinSkinArea = p.MinSkinArea

	if err := c.Validate(); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return nil
}
