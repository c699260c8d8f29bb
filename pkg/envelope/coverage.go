package envelope

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/oxygene76/vb3d-sim/pkg/court"
	"github.com/oxygene76/vb3d-sim/pkg/vecmath"
)

// Occupancy grid used to estimate the open window above the net.
const (
	CoverageYBins = 90
	CoverageZBins = 80
)

// CrossingArea estimates the area (m²) of the net-plane window that legal
// spikes pass through, by marking occupied cells of a y×z grid spanning the
// antennas and heights from the net top to the scene ceiling.
func CrossingArea(crossings []vecmath.Vector3, netHeight float64) float64 {
	if len(crossings) == 0 || netHeight >= court.ZMax {
		return 0
	}
	dy := (court.YMax - court.YMin) / CoverageYBins
	dz := (court.ZMax - netHeight) / CoverageZBins

	var occ [CoverageYBins][CoverageZBins]bool
	n := 0
	for _, p := range crossings {
		yi := int(math.Floor((p.Y - court.YMin) / dy))
		zi := int(math.Floor((p.Z - netHeight) / dz))
		if yi < 0 || yi >= CoverageYBins || zi < 0 || zi >= CoverageZBins {
			continue
		}
		if !occ[yi][zi] {
			occ[yi][zi] = true
			n++
		}
	}
	return float64(n) * dy * dz
}

// Stats summarizes the legal crossings of one envelope.
type Stats struct {
	Legal          int     `json:"legal"`
	Blocked        int     `json:"blocked"`
	CloudPoints    int     `json:"cloud_points"`
	MeanCrossingZ  float64 `json:"mean_crossing_z"`
	StdCrossingZ   float64 `json:"std_crossing_z"`
	MinClearance   float64 `json:"min_clearance"`
	MaxClearance   float64 `json:"max_clearance"`
	MeanClearance  float64 `json:"mean_clearance"`
	CrossingAreaM2 float64 `json:"crossing_area_m2"`
}

// Summarize computes Stats for a result at the given net height.
func Summarize(r *Result, netHeight float64) Stats {
	st := Stats{
		Legal:       len(r.Landings),
		Blocked:     len(r.BlockedLandings),
		CloudPoints: len(r.Cloud),
	}
	if len(r.Crossings) == 0 {
		return st
	}

	zs := make([]float64, len(r.Crossings))
	clearance := make([]float64, len(r.Crossings))
	for i, c := range r.Crossings {
		zs[i] = c.Z
		clearance[i] = c.Z - netHeight
	}
	st.MeanCrossingZ, st.StdCrossingZ = stat.MeanStdDev(zs, nil)
	if len(zs) < 2 {
		st.StdCrossingZ = 0
	}
	st.MeanClearance = stat.Mean(clearance, nil)
	lo, hi := vecmath.Bounds(r.Crossings)
	st.MinClearance = lo.Z - netHeight
	st.MaxClearance = hi.Z - netHeight
	st.CrossingAreaM2 = CrossingArea(r.Crossings, netHeight)
	return st
}
