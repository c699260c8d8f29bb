// Package court holds regulation volleyball court and net geometry.
//
// Origin is the centre of the net on the floor. X runs from -9 (attacking
// endline) to +9 (opponent endline), Y from -4.5 to +4.5 between the
// sidelines, Z is up.
package court

import "fmt"

const (
	Length = 18.0
	Width  = 9.0

	HalfLength = Length / 2
	HalfWidth  = Width / 2

	XMin, XMax = -HalfLength, HalfLength
	YMin, YMax = -HalfWidth, HalfWidth
	ZMin, ZMax = 0.0, 5.0

	// AttackLineX is the distance of each attack line from the net.
	AttackLineX = 3.0

	// AntennaAboveNet is how far the antennas rise above the net top.
	AntennaAboveNet = 0.8

	PoleOffset = 0.5
	PoleHeight = 2.55

	// NetDepth is the vertical extent of the net band below its top tape.
	NetDepth = 1.0

	MinNetHeight = 2.0
	MaxNetHeight = 2.7
)

// NetPreset names a standard net height.
type NetPreset string

const (
	PresetMen    NetPreset = "men"
	PresetWomen  NetPreset = "women"
	PresetCustom NetPreset = "custom"
)

// Net describes the net band.
type Net struct {
	Preset NetPreset `json:"preset" yaml:"preset" mapstructure:"preset"`
	Top    float64   `json:"top" yaml:"top" mapstructure:"top"`
	Bottom float64   `json:"bottom" yaml:"bottom" mapstructure:"bottom"`
}

// Presets lists the standard nets in display order.
func Presets() []Net {
	return []Net{
		{Preset: PresetMen, Top: 2.43, Bottom: 1.43},
		{Preset: PresetWomen, Top: 2.24, Bottom: 1.24},
	}
}

// GetPreset returns the net for a named preset. Custom nets take their top
// from customTop and hang NetDepth below it.
func GetPreset(preset NetPreset, customTop float64) (Net, error) {
	switch preset {
	case PresetMen, "":
		return Presets()[0], nil
	case PresetWomen:
		return Presets()[1], nil
	case PresetCustom:
		if customTop < MinNetHeight || customTop > MaxNetHeight {
			return Net{}, fmt.Errorf("custom net height %.2f outside [%.1f, %.1f]", customTop, MinNetHeight, MaxNetHeight)
		}
		return Net{Preset: PresetCustom, Top: customTop, Bottom: customTop - NetDepth}, nil
	default:
		return Net{}, fmt.Errorf("unknown net preset: %s", preset)
	}
}

// AntennaTop returns the height of the antenna tips above the floor.
func (n Net) AntennaTop() float64 {
	return n.Top + AntennaAboveNet
}

// PoleY returns the lateral position of the two net poles.
func PoleY() (left, right float64) {
	return -(HalfWidth + PoleOffset), HalfWidth + PoleOffset
}

// InLateralSpan reports whether y lies between the antennas, bounds included.
func InLateralSpan(y float64) bool {
	return y >= YMin && y <= YMax
}
