// Package envelope derives the set of straight-line spikes that clear the
// net from a fixed contact point.
package envelope

import (
	"fmt"
	"math"

	"github.com/oxygene76/vb3d-sim/pkg/court"
	"github.com/oxygene76/vb3d-sim/pkg/vecmath"
)

// ParallelEpsilon is the smallest |x_L - x_hit| for which a segment is
// considered to cross the net plane at all.
const ParallelEpsilon = 1e-10

// Limits on the work a single envelope may ask for.
const (
	MaxGridResolution = 90
	MaxDensity        = 16
)

// Grid is the rectangle of candidate landing points on the opponent floor.
type Grid struct {
	XMin float64 `json:"x_min" yaml:"x_min" mapstructure:"x_min"`
	XMax float64 `json:"x_max" yaml:"x_max" mapstructure:"x_max"`
	YMin float64 `json:"y_min" yaml:"y_min" mapstructure:"y_min"`
	YMax float64 `json:"y_max" yaml:"y_max" mapstructure:"y_max"`
}

// Validate checks the grid is ordered and lies on the opponent's floor.
func (g Grid) Validate() error {
	for _, f := range [4]float64{g.XMin, g.XMax, g.YMin, g.YMax} {
		if !finite(f) {
			return fmt.Errorf("grid bounds must be finite, got %+v", g)
		}
	}
	if g.XMin > g.XMax || g.YMin > g.YMax {
		return fmt.Errorf("grid bounds are reversed: %+v", g)
	}
	if g.XMin < 0 || g.XMax > court.XMax || g.YMin < court.YMin || g.YMax > court.YMax {
		return fmt.Errorf("grid %+v leaves the opponent court [0, %.1f] x [%.1f, %.1f]",
			g, court.XMax, court.YMin, court.YMax)
	}
	return nil
}

// OpponentCourt is the landing grid used unless a caller overrides it.
func OpponentCourt() Grid {
	return Grid{XMin: 0.2, XMax: court.XMax, YMin: court.YMin, YMax: court.YMax}
}

// Params are the inputs of one envelope computation.
// K is the number of points synthesized along each legal spike.
type Params struct {
	Contact   vecmath.Vector3 `json:"contact"`
	NetHeight float64         `json:"net_height"`
	NX        int             `json:"nx"`
	NY        int             `json:"ny"`
	K         int             `json:"k"`
	Grid      *Grid           `json:"grid,omitempty"`
	Blockers  *Block          `json:"blockers,omitempty"`
}

// Validate checks the parameters are usable.
func (p Params) Validate() error {
	if p.NX < 1 || p.NY < 1 || p.NX > MaxGridResolution || p.NY > MaxGridResolution {
		return fmt.Errorf("grid resolution must be within 1..%d per axis, got %dx%d", MaxGridResolution, p.NX, p.NY)
	}
	if p.K < 1 || p.K > MaxDensity {
		return fmt.Errorf("envelope density must be within 1..%d, got %d", MaxDensity, p.K)
	}
	if !InScene(p.Contact) {
		return fmt.Errorf("contact point %+v lies outside the court volume", p.Contact)
	}
	if !(p.NetHeight >= court.MinNetHeight && p.NetHeight <= court.MaxNetHeight) {
		return fmt.Errorf("net height %v outside [%.1f, %.1f]", p.NetHeight, court.MinNetHeight, court.MaxNetHeight)
	}
	if p.Grid != nil {
		if err := p.Grid.Validate(); err != nil {
			return err
		}
	}
	if p.Blockers != nil {
		if err := p.Blockers.Validate(); err != nil {
			return fmt.Errorf("invalid blockers: %w", err)
		}
	}
	return nil
}

// Verdict says why a candidate landing point is or is not legal.
type Verdict int

const (
	Legal Verdict = iota
	// Parallel segments never reach the net plane.
	Parallel
	// NoCrossing means the net plane is not crossed strictly between the
	// contact and the landing point.
	NoCrossing
	// BelowNet means the segment passes under the net top.
	BelowNet
	// OutsideAntennas means the segment passes wide of the antennas.
	OutsideAntennas
)

func (v Verdict) String() string {
	switch v {
	case Legal:
		return "legal"
	case Parallel:
		return "parallel"
	case NoCrossing:
		return "no_crossing"
	case BelowNet:
		return "below_net"
	case OutsideAntennas:
		return "outside_antennas"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Crossing is the outcome of testing one straight spike against the net.
type Crossing struct {
	// S is the segment parameter at the net plane; NaN when Parallel.
	S       float64
	Point   vecmath.Vector3
	Verdict Verdict
}

// Classify tests the straight segment contact -> landing against the net
// plane x = 0.
func Classify(contact, landing vecmath.Vector3, netHeight float64) Crossing {
	denom := landing.X - contact.X
	if math.Abs(denom) <= ParallelEpsilon {
		return Crossing{S: math.NaN(), Verdict: Parallel}
	}

	s := (0 - contact.X) / denom
	c := Crossing{
		S: s,
		Point: vecmath.Vector3{
			X: 0,
			Y: contact.Y + s*(landing.Y-contact.Y),
			Z: contact.Z + s*(0-contact.Z),
		},
	}
	switch {
	case !(s > 0 && s < 1):
		c.Verdict = NoCrossing
	case c.Point.Z < netHeight:
		c.Verdict = BelowNet
	case !court.InLateralSpan(c.Point.Y):
		c.Verdict = OutsideAntennas
	default:
		c.Verdict = Legal
	}
	return c
}

// Result holds the derived point sets. Crossings[i] belongs to Landings[i].
// Spikes stopped by a blocker are kept apart and do not feed Cloud.
type Result struct {
	Crossings []vecmath.Vector3 `json:"crossings"`
	Landings  []vecmath.Vector3 `json:"landings"`
	Cloud     []vecmath.Vector3 `json:"cloud"`

	BlockedCrossings []vecmath.Vector3 `json:"blocked_crossings,omitempty"`
	BlockedLandings  []vecmath.Vector3 `json:"blocked_landings,omitempty"`
	BlockerY         []float64         `json:"blocker_y,omitempty"`

	Candidates int            `json:"candidates"`
	Rejected   map[string]int `json:"rejected"`
}

// Generate samples the landing grid, keeps every legal spike and builds the
// envelope cloud of K points per spike. No legal spike is not an error.
func Generate(p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	g := OpponentCourt()
	if p.Grid != nil {
		g = *p.Grid
	}
	xs := vecmath.Linspace(g.XMin, g.XMax, p.NX)
	ys := vecmath.Linspace(g.YMin, g.YMax, p.NY)

	var blockerYs []float64
	if p.Blockers != nil {
		blockerYs = p.Blockers.Positions()
	}

	res := &Result{
		Crossings:  []vecmath.Vector3{},
		Landings:   []vecmath.Vector3{},
		Cloud:      []vecmath.Vector3{},
		BlockerY:   blockerYs,
		Candidates: len(xs) * len(ys),
		Rejected:   map[string]int{},
	}

	// y outer, x inner: row-major over the landing grid.
	for _, y := range ys {
		for _, x := range xs {
			landing := vecmath.Vector3{X: x, Y: y}
			c := Classify(p.Contact, landing, p.NetHeight)
			if c.Verdict != Legal {
				res.Rejected[c.Verdict.String()]++
				continue
			}
			if len(blockerYs) > 0 && p.Blockers.Stops(p.Contact, landing, c.Point, p.NetHeight, blockerYs) {
				res.BlockedCrossings = append(res.BlockedCrossings, c.Point)
				res.BlockedLandings = append(res.BlockedLandings, landing)
				continue
			}
			res.Crossings = append(res.Crossings, c.Point)
			res.Landings = append(res.Landings, landing)
		}
	}

	res.Cloud = Interpolate(p.Contact, res.Landings, p.K)
	return res, nil
}

// Interpolate places k evenly spaced points on each segment from contact to
// a landing point, both ends included.
func Interpolate(contact vecmath.Vector3, landings []vecmath.Vector3, k int) []vecmath.Vector3 {
	s := vecmath.Linspace(0, 1, k)
	out := make([]vecmath.Vector3, 0, len(landings)*len(s))
	for _, l := range landings {
		for _, si := range s {
			out = append(out, contact.Lerp(l, si))
		}
	}
	return out
}

// Path returns the k points of a single spike.
func Path(contact, landing vecmath.Vector3, k int) []vecmath.Vector3 {
	return Interpolate(contact, []vecmath.Vector3{landing}, k)
}

// InScene reports whether v lies inside the court volume, boundary
// included. NaN coordinates are never inside.
func InScene(v vecmath.Vector3) bool {
	return v.X >= court.XMin && v.X <= court.XMax &&
		v.Y >= court.YMin && v.Y <= court.YMax &&
		v.Z >= court.ZMin && v.Z <= court.ZMax
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
