package types

import (
	"github.com/oxygene76/vb3d-sim/pkg/vecmath"
)

// Style carries cosmetic hints for the rendering surface.
type Style struct {
	Color   string  `json:"color,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Size    float64 `json:"size,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
	Dash    string  `json:"dash,omitempty"`
	Symbol  string  `json:"symbol,omitempty"`
}

// LineSet is one or more polylines drawn with the same style.
type LineSet struct {
	Name      string              `json:"name"`
	Polylines [][]vecmath.Vector3 `json:"polylines"`
	Style     Style               `json:"style"`
}

// PointSet is a cloud of markers drawn with the same style.
type PointSet struct {
	Name   string            `json:"name"`
	Points []vecmath.Vector3 `json:"points"`
	Label  string            `json:"label,omitempty"`
	Style  Style             `json:"style"`
}

// Camera is a viewpoint in normalized scene coordinates.
type Camera struct {
	Eye    vecmath.Vector3 `json:"eye"`
	Center vecmath.Vector3 `json:"center"`
	Up     vecmath.Vector3 `json:"up"`
}

// Layout fixes the visible volume of the scene.
type Layout struct {
	XRange      [2]float64      `json:"x_range"`
	YRange      [2]float64      `json:"y_range"`
	ZRange      [2]float64      `json:"z_range"`
	AspectMode  string          `json:"aspect_mode"`
	AspectRatio vecmath.Vector3 `json:"aspect_ratio"`
	Camera      Camera          `json:"camera"`
}

// Advisory is a non-fatal check result shown to the user.
type Advisory struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Metrics are the derived numbers surfaced next to the plot.
type Metrics struct {
	Mode        string          `json:"mode"`
	NetHeight   float64         `json:"net_height"`
	V0          vecmath.Vector3 `json:"v0"`
	LaunchSpeed float64         `json:"launch_speed"`
	SampleCount int             `json:"sample_count"`
	ApexTime    float64         `json:"apex_time"`
	Apex        vecmath.Vector3 `json:"apex"`

	FlightTime     float64          `json:"flight_time,omitempty"`
	BallAtContact  *vecmath.Vector3 `json:"ball_at_contact,omitempty"`
	SpeedAtContact float64          `json:"speed_at_contact,omitempty"`
	SetCrossesNet  bool             `json:"set_crosses_net,omitempty"`

	LegalSpikes    int     `json:"legal_spikes"`
	BlockedSpikes  int     `json:"blocked_spikes"`
	EnvelopePoints int     `json:"envelope_points"`
	MeanCrossingZ  float64 `json:"mean_crossing_z,omitempty"`
	CrossingArea   float64 `json:"crossing_area_m2,omitempty"`
}

// Scene is everything a rendering surface needs to draw one frame.
type Scene struct {
	Lines      []LineSet  `json:"lines"`
	Points     []PointSet `json:"points"`
	Layout     Layout     `json:"layout"`
	Metrics    Metrics    `json:"metrics"`
	Advisories []Advisory `json:"advisories"`
}

// Line returns the named line set, if present.
func (s *Scene) Line(name string) (LineSet, bool) {
	for _, l := range s.Lines {
		if l.Name == name {
			return l, true
		}
	}
	return LineSet{}, false
}

// PointsNamed returns the named point set, if present.
func (s *Scene) PointsNamed(name string) (PointSet, bool) {
	for _, p := range s.Points {
		if p.Name == name {
			return p, true
		}
	}
	return PointSet{}, false
}

// Warnings returns the advisories that did not pass.
func (s *Scene) Warnings() []Advisory {
	var out []Advisory
	for _, a := range s.Advisories {
		if !a.OK {
			out = append(out, a)
		}
	}
	return out
}
