package envelope

import (
	"fmt"
	"math"

	"github.com/oxygene76/vb3d-sim/pkg/court"
	"github.com/oxygene76/vb3d-sim/pkg/vecmath"
)

// MaxBlockers is the most blockers a front row can put up.
const MaxBlockers = 3

// Physical limits of a block.
const (
	MaxGap        = 1.0
	MaxHandsWidth = 1.2
	MaxReach      = 1.0
	MaxPressDepth = 0.6
)

// Block describes the defending block at the net.
type Block struct {
	Count   int     `json:"count" yaml:"count" mapstructure:"count"`
	AnchorY float64 `json:"anchor_y" yaml:"anchor_y" mapstructure:"anchor_y"`
	// Gap is the lateral space between neighbouring blockers.
	Gap float64 `json:"gap" yaml:"gap" mapstructure:"gap"`
	// HandsWidth is the span of one blocker's two hands.
	HandsWidth float64 `json:"hands_width" yaml:"hands_width" mapstructure:"hands_width"`
	// HandGap is the opening between a blocker's hands; negative overlaps.
	HandGap float64 `json:"hand_gap" yaml:"hand_gap" mapstructure:"hand_gap"`
	// Reach is how far the hands rise above the net top.
	Reach float64 `json:"reach" yaml:"reach" mapstructure:"reach"`
	// PressDepth is how far the hands penetrate into the attacking side.
	PressDepth float64 `json:"press_depth" yaml:"press_depth" mapstructure:"press_depth"`
}

// DefaultBlock is a two-player block with typical hand geometry.
func DefaultBlock(anchorY float64) Block {
	return Block{
		Count:      2,
		AnchorY:    anchorY,
		Gap:        0.05,
		HandsWidth: 0.6,
		HandGap:    0.03,
		Reach:      0.5,
		PressDepth: 0.15,
	}
}

// AnchorFromHitter shades the block shade metres towards the court centre
// from the hitter's lateral position.
func AnchorFromHitter(hitterY, shade float64) float64 {
	side := 1.0
	if hitterY < 0 {
		side = -1
	}
	return clamp(hitterY-side*shade, court.YMin, court.YMax)
}

func (b *Block) Validate() error {
	if b.Count < 0 || b.Count > MaxBlockers {
		return fmt.Errorf("blocker count must be 0..%d, got %d", MaxBlockers, b.Count)
	}
	if !(b.AnchorY >= court.YMin && b.AnchorY <= court.YMax) {
		return fmt.Errorf("block anchor %v outside [%.1f, %.1f]", b.AnchorY, court.YMin, court.YMax)
	}
	if !(b.Gap >= 0 && b.Gap <= MaxGap) {
		return fmt.Errorf("gap must be within [0, %.1f], got %v", MaxGap, b.Gap)
	}
	if !(b.HandsWidth > 0 && b.HandsWidth <= MaxHandsWidth) {
		return fmt.Errorf("hands width must be within (0, %.1f], got %v", MaxHandsWidth, b.HandsWidth)
	}
	if !(math.Abs(b.HandGap) <= MaxHandsWidth) {
		return fmt.Errorf("hand gap must be within [-%.1f, %.1f], got %v", MaxHandsWidth, MaxHandsWidth, b.HandGap)
	}
	if !(b.Reach >= 0 && b.Reach <= MaxReach) {
		return fmt.Errorf("reach must be within [0, %.1f], got %v", MaxReach, b.Reach)
	}
	if !(b.PressDepth >= 0 && b.PressDepth <= MaxPressDepth) {
		return fmt.Errorf("press depth must be within [0, %.1f], got %v", MaxPressDepth, b.PressDepth)
	}
	return nil
}

// Positions returns the lateral centre of each blocker, shifted as a group
// so nobody stands outside the antennas.
func (b *Block) Positions() []float64 {
	c := b.AnchorY
	step := b.HandsWidth + b.Gap
	var ys []float64
	switch b.Count {
	case 1:
		ys = []float64{c}
	case 2:
		ys = []float64{c - step/2, c + step/2}
	case 3:
		ys = []float64{c - step, c, c + step}
	default:
		return nil
	}

	lo, hi := ys[0], ys[len(ys)-1]
	shift := 0.0
	if lo < court.YMin {
		shift += court.YMin - lo
	}
	if hi+shift > court.YMax {
		shift -= hi + shift - court.YMax
	}
	for i := range ys {
		ys[i] = clamp(ys[i]+shift, court.YMin, court.YMax)
	}
	return ys
}

// HandLayout is the split of one blocker's span into two hands.
type HandLayout struct {
	HandWidth    float64
	CenterOffset float64
}

// Hands computes the hand layout. Widths are floored so a hand never
// vanishes.
func (b *Block) Hands() HandLayout {
	total := math.Max(0.2, b.HandsWidth)
	gap := clamp(b.HandGap, -0.05, 0.15)
	w := math.Max(0.05, (total-gap)/2)
	return HandLayout{HandWidth: w, CenterOffset: gap/2 + w/2}
}

// Covers reports whether a point in the net plane lies inside any hand.
func (b *Block) Covers(y, z, netHeight float64, blockerYs []float64) bool {
	if z < netHeight || z > netHeight+b.Reach {
		return false
	}
	h := b.Hands()
	half := h.HandWidth / 2
	for _, yb := range blockerYs {
		for _, yc := range [2]float64{yb - h.CenterOffset, yb + h.CenterOffset} {
			if y >= yc-half && y <= yc+half {
				return true
			}
		}
	}
	return false
}

// Stops reports whether the block stops a legal spike, either at the net
// plane or where pressing hands reach over onto the attacking side.
func (b *Block) Stops(contact, landing, crossing vecmath.Vector3, netHeight float64, blockerYs []float64) bool {
	if b.Covers(crossing.Y, crossing.Z, netHeight, blockerYs) {
		return true
	}
	if b.PressDepth <= 0 {
		return false
	}
	xPress := -math.Max(0.03, b.PressDepth*0.5)
	s := (xPress - contact.X) / (landing.X - contact.X)
	if !(s > 0 && s < 1) {
		return false
	}
	pressed := contact.Lerp(landing, s)
	return b.Covers(pressed.Y, pressed.Z, netHeight, blockerYs)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
