package scene

import (
	"github.com/oxygene76/vb3d-sim/internal/types"
	"github.com/oxygene76/vb3d-sim/pkg/court"
	"github.com/oxygene76/vb3d-sim/pkg/envelope"
	"github.com/oxygene76/vb3d-sim/pkg/vecmath"
)

// Names of the fixed scene layers.
const (
	LayerBoundary     = "Court boundary"
	LayerCenterline   = "Centerline"
	LayerAttackOwn    = "Attack line own"
	LayerAttackOpp    = "Attack line opp"
	LayerNetTop       = "Net top"
	LayerNetBottom    = "Net bottom"
	LayerPoles        = "Poles"
	LayerAntennas     = "Antennas"
	LayerTrajectory   = "Trajectory"
	LayerSet          = "Set trajectory (0..t_hit)"
	LayerTail         = "Post-hit extrapolation"
	LayerSpikePaths   = "Legal spike paths"
	LayerBlockers     = "Blockers"
	LayerStart        = "Start S"
	LayerRelease      = "Setter release S"
	LayerApex         = "Apex"
	LayerContact      = "Contact P_hit"
	LayerBallAtHit    = "Ball at t_hit"
	LayerCrossings    = "Legal net crossings"
	LayerBlockedCross = "Blocked net crossings"
	LayerCloud        = "Legal spike envelope (3D)"
)

func v(x, y, z float64) vecmath.Vector3 { return vecmath.Vector3{X: x, Y: y, Z: z} }

func line(name string, style types.Style, polylines ...[]vecmath.Vector3) types.LineSet {
	return types.LineSet{Name: name, Polylines: polylines, Style: style}
}

// CourtLines returns the floor markings, net band, poles and antennas.
func CourtLines(net court.Net) []types.LineSet {
	poleL, poleR := court.PoleY()
	return []types.LineSet{
		line(LayerBoundary, types.Style{Color: "#1e2a30", Width: 4}, []vecmath.Vector3{
			v(court.XMin, court.YMin, 0),
			v(court.XMin, court.YMax, 0),
			v(court.XMax, court.YMax, 0),
			v(court.XMax, court.YMin, 0),
			v(court.XMin, court.YMin, 0),
		}),
		line(LayerCenterline, types.Style{Color: "#4f616b", Width: 3},
			[]vecmath.Vector3{v(0, court.YMin, 0), v(0, court.YMax, 0)}),
		line(LayerAttackOwn, types.Style{Color: "#6b7f88", Width: 2},
			[]vecmath.Vector3{v(-court.AttackLineX, court.YMin, 0), v(-court.AttackLineX, court.YMax, 0)}),
		line(LayerAttackOpp, types.Style{Color: "#6b7f88", Width: 2},
			[]vecmath.Vector3{v(court.AttackLineX, court.YMin, 0), v(court.AttackLineX, court.YMax, 0)}),
		line(LayerNetTop, types.Style{Color: "#101010", Width: 5},
			[]vecmath.Vector3{v(0, court.YMin, net.Top), v(0, court.YMax, net.Top)}),
		line(LayerNetBottom, types.Style{Color: "#9aa8b0", Width: 2},
			[]vecmath.Vector3{v(0, court.YMin, net.Bottom), v(0, court.YMax, net.Bottom)}),
		line(LayerPoles, types.Style{Color: "#666666", Width: 6},
			[]vecmath.Vector3{v(0, poleL, 0), v(0, poleL, court.PoleHeight)},
			[]vecmath.Vector3{v(0, poleR, 0), v(0, poleR, court.PoleHeight)}),
		line(LayerAntennas, types.Style{Color: "#e53935", Width: 6},
			[]vecmath.Vector3{v(0, court.YMin, net.Top), v(0, court.YMin, net.AntennaTop())},
			[]vecmath.Vector3{v(0, court.YMax, net.Top), v(0, court.YMax, net.AntennaTop())}),
	}
}

// BlockerLines outlines each blocker's hand window in the net plane.
func BlockerLines(b *envelope.Block, blockerYs []float64, netHeight float64) types.LineSet {
	top := netHeight + b.Reach
	half := b.HandsWidth / 2
	ls := line(LayerBlockers, types.Style{Color: "#ff6b5b", Width: 3, Opacity: 0.95})
	for _, yb := range blockerYs {
		ls.Polylines = append(ls.Polylines, []vecmath.Vector3{
			v(0, yb-half, netHeight),
			v(0, yb+half, netHeight),
			v(0, yb+half, top),
			v(0, yb-half, top),
			v(0, yb-half, netHeight),
		})
	}
	return ls
}

// DefaultLayout is the broadcast-style view of the full court.
func DefaultLayout() types.Layout {
	return types.Layout{
		XRange:      [2]float64{court.XMin, court.XMax},
		YRange:      [2]float64{court.YMin, court.YMax},
		ZRange:      [2]float64{court.ZMin, court.ZMax},
		AspectMode:  AspectManual,
		AspectRatio: v(18, 9, 5),
		Camera: types.Camera{
			Eye:    v(1.8, 1.25, 0.85),
			Center: v(0, 0, -0.08),
			Up:     v(0, 0, 1),
		},
	}
}
