package scene

import (
	"math"

	errorsmod "cosmossdk.io/errors"

	"github.com/oxygene76/vb3d-sim/pkg/court"
	"github.com/oxygene76/vb3d-sim/pkg/envelope"
	"github.com/oxygene76/vb3d-sim/pkg/vecmath"
)

// Mode selects how the ball's launch velocity is specified.
type Mode string

const (
	// ModeLaunch takes speed and angles directly.
	ModeLaunch Mode = "launch"
	// ModeSet solves the velocity that carries a set from the release point
	// to the hitter's contact point in a given time.
	ModeSet Mode = "set"
)

// Control-surface bounds for flight inputs.
const (
	MinTHit      = 0.15
	MaxTHit      = 2.0
	MaxTAfter    = 1.0
	MaxTEnd      = 8.0
	MaxSpeed     = 40.0
	MinDt        = 0.005
	MaxDt        = 0.1
	MinElevation = -20.0
	MaxElevation = 80.0
	MaxAzimuth   = 180.0
)

// Setter release and hitter contact boxes.
var (
	ReleaseMin = vecmath.Vector3{X: -9, Y: -4.5, Z: 1.5}
	ReleaseMax = vecmath.Vector3{X: -0.1, Y: 4.5, Z: 3.5}
	ContactMin = vecmath.Vector3{X: -2.5, Y: -4.5, Z: 2.5}
	ContactMax = vecmath.Vector3{X: 1.0, Y: 4.5, Z: 4.0}
)

type Launch struct {
	Start        vecmath.Vector3 `json:"start" yaml:"start" mapstructure:"start"`
	Speed        float64         `json:"speed" yaml:"speed" mapstructure:"speed"`
	ElevationDeg float64         `json:"elevation_deg" yaml:"elevation_deg" mapstructure:"elevation_deg"`
	AzimuthDeg   float64         `json:"azimuth_deg" yaml:"azimuth_deg" mapstructure:"azimuth_deg"`
	TEnd         float64         `json:"t_end" yaml:"t_end" mapstructure:"t_end"`
}

type Set struct {
	Release vecmath.Vector3 `json:"release" yaml:"release" mapstructure:"release"`
	Contact vecmath.Vector3 `json:"contact" yaml:"contact" mapstructure:"contact"`
	THit    float64         `json:"t_hit" yaml:"t_hit" mapstructure:"t_hit"`
	TAfter  float64         `json:"t_after" yaml:"t_after" mapstructure:"t_after"`
}

// Envelope configures the legal-spike envelope. MaxPaths caps how many
// individual spike paths are drawn as lines.
type Envelope struct {
	Enabled  bool            `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	NX       int             `json:"nx" yaml:"nx" mapstructure:"nx"`
	NY       int             `json:"ny" yaml:"ny" mapstructure:"ny"`
	K        int             `json:"k" yaml:"k" mapstructure:"k"`
	MaxPaths int             `json:"max_paths" yaml:"max_paths" mapstructure:"max_paths"`
	Blockers *envelope.Block `json:"blockers,omitempty" yaml:"blockers,omitempty" mapstructure:"blockers"`
}

// Toggles switch optional layers on and off. They never change metrics.
type Toggles struct {
	Cloud     bool `json:"cloud" yaml:"cloud" mapstructure:"cloud"`
	Crossings bool `json:"crossings" yaml:"crossings" mapstructure:"crossings"`
	Paths     bool `json:"paths" yaml:"paths" mapstructure:"paths"`
	Tail      bool `json:"tail" yaml:"tail" mapstructure:"tail"`
}

// Config is the full input snapshot for one render. It is passed by value
// and never modified.
type Config struct {
	Mode            Mode            `json:"mode" yaml:"mode" mapstructure:"mode"`
	Net             court.NetPreset `json:"net" yaml:"net" mapstructure:"net"`
	CustomNetHeight float64         `json:"custom_net_height,omitempty" yaml:"custom_net_height" mapstructure:"custom_net_height"`
	Dt              float64         `json:"dt" yaml:"dt" mapstructure:"dt"`
	Launch          Launch          `json:"launch" yaml:"launch" mapstructure:"launch"`
	Set             Set             `json:"set" yaml:"set" mapstructure:"set"`
	Envelope        Envelope        `json:"envelope" yaml:"envelope" mapstructure:"envelope"`
	Show            Toggles         `json:"show" yaml:"show" mapstructure:"show"`
}

// DefaultConfig mirrors the initial control positions: an outside hitter in
// position 4 taking a 0.55 s set over a men's net.
func DefaultConfig() Config {
	return Config{
		Mode: ModeSet,
		Net:  court.PresetMen,
		Dt:   0.01,
		Launch: Launch{
			Start:        vecmath.Vector3{X: -6, Y: 0, Z: 2.2},
			Speed:        15,
			ElevationDeg: 25,
			AzimuthDeg:   0,
			TEnd:         3.0,
		},
		Set: Set{
			Release: vecmath.Vector3{X: -3, Y: 0, Z: 2.3},
			Contact: vecmath.Vector3{X: -0.8, Y: 3.8, Z: 3.1},
			THit:    0.55,
			TAfter:  0.3,
		},
		Envelope: Envelope{
			Enabled:  true,
			NX:       60,
			NY:       60,
			K:        10,
			MaxPaths: 800,
		},
		Show: Toggles{Cloud: true, Crossings: true, Paths: false, Tail: true},
	}
}

// Validate range-checks the inputs. A valid config can always be rendered.
func (c Config) Validate() error {
	if !(c.Dt >= MinDt && c.Dt <= MaxDt) {
		return errorsmod.Wrapf(ErrInvalidConfig, "time step %v outside [%.3f, %.1f]", c.Dt, MinDt, MaxDt)
	}
	if _, err := court.GetPreset(c.Net, c.CustomNetHeight); err != nil {
		return errorsmod.Wrap(ErrInvalidConfig, err.Error())
	}

	switch c.Mode {
	case ModeLaunch:
		l := c.Launch
		if !envelope.InScene(l.Start) {
			return errorsmod.Wrapf(ErrInvalidFlight, "launch point %+v outside the court volume", l.Start)
		}
		if !(l.Speed >= 0 && l.Speed <= MaxSpeed) {
			return errorsmod.Wrapf(ErrInvalidFlight, "speed %.2f outside [0, %.0f]", l.Speed, MaxSpeed)
		}
		if !(l.TEnd > 0) || l.TEnd > MaxTEnd {
			return errorsmod.Wrapf(ErrInvalidFlight, "end time %.3f outside (0, %.0f]", l.TEnd, MaxTEnd)
		}
		if !(l.ElevationDeg >= MinElevation && l.ElevationDeg <= MaxElevation) {
			return errorsmod.Wrapf(ErrInvalidFlight, "elevation %v outside [%.0f, %.0f] degrees", l.ElevationDeg, MinElevation, MaxElevation)
		}
		if !(math.Abs(l.AzimuthDeg) <= MaxAzimuth) {
			return errorsmod.Wrapf(ErrInvalidFlight, "azimuth %v outside [-%.0f, %.0f] degrees", l.AzimuthDeg, MaxAzimuth, MaxAzimuth)
		}
	case ModeSet:
		s := c.Set
		if !inBox(s.Release, ReleaseMin, ReleaseMax) {
			return errorsmod.Wrapf(ErrInvalidFlight, "release point %+v outside %+v..%+v", s.Release, ReleaseMin, ReleaseMax)
		}
		if !inBox(s.Contact, ContactMin, ContactMax) {
			return errorsmod.Wrapf(ErrInvalidFlight, "contact point %+v outside %+v..%+v", s.Contact, ContactMin, ContactMax)
		}
		if !(s.THit >= MinTHit && s.THit <= MaxTHit) {
			return errorsmod.Wrapf(ErrInvalidFlight, "time to contact %.3f outside [%.2f, %.1f]", s.THit, MinTHit, MaxTHit)
		}
		if !(s.TAfter >= 0 && s.TAfter <= MaxTAfter) {
			return errorsmod.Wrapf(ErrInvalidFlight, "extra time after contact %.3f outside [0, %.0f]", s.TAfter, MaxTAfter)
		}
	default:
		return errorsmod.Wrapf(ErrInvalidConfig, "unknown mode %q", c.Mode)
	}

	if c.Mode == ModeSet && c.Envelope.Enabled {
		e := c.Envelope
		if e.NX < 1 || e.NY < 1 || e.NX > envelope.MaxGridResolution || e.NY > envelope.MaxGridResolution {
			return errorsmod.Wrapf(ErrInvalidGrid, "nx and ny must be within 1..%d, got %d, %d", envelope.MaxGridResolution, e.NX, e.NY)
		}
		if e.K < 1 || e.K > envelope.MaxDensity {
			return errorsmod.Wrapf(ErrInvalidGrid, "k must be within 1..%d, got %d", envelope.MaxDensity, e.K)
		}
		if e.MaxPaths < 0 {
			return errorsmod.Wrapf(ErrInvalidGrid, "max paths must not be negative, got %d", e.MaxPaths)
		}
		if e.Blockers != nil {
			if err := e.Blockers.Validate(); err != nil {
				return errorsmod.Wrap(ErrInvalidGrid, err.Error())
			}
		}
	}
	return nil
}

// inBox reports whether v lies inside the axis-aligned box [lo, hi].
// NaN coordinates are never inside.
func inBox(v, lo, hi vecmath.Vector3) bool {
	return v.X >= lo.X && v.X <= hi.X &&
		v.Y >= lo.Y && v.Y <= hi.Y &&
		v.Z >= lo.Z && v.Z <= hi.Z
}
