package scene

import (
	"fmt"
	"strings"

	"github.com/oxygene76/vb3d-sim/internal/types"
	"github.com/oxygene76/vb3d-sim/pkg/kinematics"
)

const AspectManual = "manual"

// Advisory names.
const (
	CheckSceneScale = "scene_scale"
	CheckSetSide    = "set_side"
)

// ValidateLayout confirms the layout keeps real court proportions: fixed
// axis ranges and an 18:9:5 manual aspect ratio.
func ValidateLayout(l types.Layout) types.Advisory {
	want := DefaultLayout()
	var failed []string
	if l.AspectMode != AspectManual {
		failed = append(failed, fmt.Sprintf("aspect mode %q != %q", l.AspectMode, AspectManual))
	}
	if l.XRange != want.XRange {
		failed = append(failed, fmt.Sprintf("x range %v != %v", l.XRange, want.XRange))
	}
	if l.YRange != want.YRange {
		failed = append(failed, fmt.Sprintf("y range %v != %v", l.YRange, want.YRange))
	}
	if l.ZRange != want.ZRange {
		failed = append(failed, fmt.Sprintf("z range %v != %v", l.ZRange, want.ZRange))
	}
	if l.AspectRatio != want.AspectRatio {
		failed = append(failed, fmt.Sprintf("aspect ratio %+v != %+v", l.AspectRatio, want.AspectRatio))
	}
	if len(failed) > 0 {
		return types.Advisory{Name: CheckSceneScale, OK: false, Message: "Scene scale config FAILED: " + strings.Join(failed, "; ")}
	}
	return types.Advisory{Name: CheckSceneScale, OK: true, Message: "Scene scale config OK"}
}

// SetCrossesNet reports whether any sample of the set reaches the net plane.
func SetCrossesNet(set kinematics.Trajectory) bool {
	for _, s := range set {
		if s.Position.X >= 0 {
			return true
		}
	}
	return false
}

// CheckSetStaysOnSide flags a set that reaches the net plane before contact
// when the contact point itself is on the attacking side.
func CheckSetStaysOnSide(set kinematics.Trajectory, contactX float64) types.Advisory {
	if contactX < 0 && SetCrossesNet(set) {
		return types.Advisory{Name: CheckSetSide, OK: false, Message: "Set segment crosses net before t_hit while x_t<0."}
	}
	return types.Advisory{Name: CheckSetSide, OK: true, Message: "Set stays on the attacking side"}
}
