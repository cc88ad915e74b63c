package world

// SunAt is the sunlight falling on row y: full at the top, fading one unit
// every SUN_LEVEL_HEIGHT rows.
func (c *WorldConfig) SunAt(y int) int {
	s := c.SunAmount - y/c.SunLevelHeight
	if s < 0 {
		return 0
	}
	return s
}

// MineralAt mirrors SunAt from the bottom row up.
func (c *WorldConfig) MineralAt(y int) int {
	m := c.MineralAmount - (c.H-1-y)/c.MineralLevelHeight
	if m < 0 {
		return 0
	}
	return m
}
