// Package scene turns an input snapshot into drawable primitives and
// derived metrics. Render is a pure function of its Config.
package scene

import (
	errorsmod "cosmossdk.io/errors"

	"github.com/oxygene76/vb3d-sim/internal/types"
	"github.com/oxygene76/vb3d-sim/pkg/court"
	"github.com/oxygene76/vb3d-sim/pkg/envelope"
	"github.com/oxygene76/vb3d-sim/pkg/kinematics"
	"github.com/oxygene76/vb3d-sim/pkg/vecmath"
)

// Render builds the scene for cfg.
func Render(cfg Config) (*types.Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	net, err := court.GetPreset(cfg.Net, cfg.CustomNetHeight)
	if err != nil {
		return nil, errorsmod.Wrap(ErrInvalidConfig, err.Error())
	}

	sc := &types.Scene{
		Lines:  CourtLines(net),
		Points: []types.PointSet{},
		Layout: DefaultLayout(),
	}
	sc.Metrics.Mode = string(cfg.Mode)
	sc.Metrics.NetHeight = net.Top

	flight, err := Flight(cfg)
	if err != nil {
		return nil, err
	}
	switch cfg.Mode {
	case ModeLaunch:
		err = renderLaunch(sc, cfg, flight)
	case ModeSet:
		err = renderSet(sc, cfg, net, flight)
	}
	if err != nil {
		return nil, err
	}

	sc.Advisories = append([]types.Advisory{ValidateLayout(sc.Layout)}, sc.Advisories...)
	return sc, nil
}

func renderLaunch(sc *types.Scene, cfg Config, flight *kinematics.Sampler) error {
	l := cfg.Launch
	v0 := flight.V0
	traj := flight.Samples()
	tApex, apex := kinematics.Apex(l.Start, v0)

	sc.Lines = append(sc.Lines,
		line(LayerTrajectory, types.Style{Color: "orange", Width: 8}, traj.Positions()))
	sc.Points = append(sc.Points,
		types.PointSet{Name: LayerStart, Points: []vecmath.Vector3{l.Start}, Style: types.Style{Color: "green", Size: 6}},
		types.PointSet{Name: LayerApex, Points: []vecmath.Vector3{apex}, Style: types.Style{Color: "magenta", Size: 7, Symbol: "diamond"}},
	)

	m := &sc.Metrics
	m.V0 = v0
	m.LaunchSpeed = v0.Magnitude()
	m.SampleCount = len(traj)
	m.ApexTime = tApex
	m.Apex = apex
	return nil
}

func renderSet(sc *types.Scene, cfg Config, net court.Net, flight *kinematics.Sampler) error {
	s := cfg.Set
	v0 := flight.V0
	traj := flight.Samples()
	set, tail := traj.Split(s.THit)
	ballAtHit := kinematics.PositionAt(s.Release, v0, s.THit)
	tApex, apex := kinematics.Apex(s.Release, v0)

	sc.Lines = append(sc.Lines,
		line(LayerSet, types.Style{Color: "#ff8c00", Width: 6}, set.Positions()))
	if cfg.Show.Tail && s.TAfter > 0 && len(tail) > 1 {
		sc.Lines = append(sc.Lines,
			line(LayerTail, types.Style{Color: "#ffb870", Width: 3, Dash: "dot"}, tail.Positions()))
	}
	sc.Points = append(sc.Points,
		types.PointSet{Name: LayerRelease, Points: []vecmath.Vector3{s.Release}, Style: types.Style{Color: "#2ca02c", Size: 6}},
		types.PointSet{Name: LayerContact, Points: []vecmath.Vector3{s.Contact}, Label: "Contact P_hit", Style: types.Style{Color: "#ff1744", Size: 14, Symbol: "diamond"}},
		types.PointSet{Name: LayerBallAtHit, Points: []vecmath.Vector3{ballAtHit}, Style: types.Style{Color: "#ffd54f", Size: 18}},
		types.PointSet{Name: LayerApex, Points: []vecmath.Vector3{apex}, Style: types.Style{Color: "magenta", Size: 7, Symbol: "diamond"}},
	)

	m := &sc.Metrics
	m.V0 = v0
	m.LaunchSpeed = v0.Magnitude()
	m.SampleCount = len(traj)
	m.ApexTime = tApex
	m.Apex = apex
	m.FlightTime = s.THit
	m.BallAtContact = &ballAtHit
	m.SpeedAtContact = kinematics.VelocityAt(v0, s.THit).Magnitude()
	m.SetCrossesNet = SetCrossesNet(set)
	sc.Advisories = append(sc.Advisories, CheckSetStaysOnSide(set, s.Contact.X))

	if !cfg.Envelope.Enabled {
		return nil
	}
	return renderEnvelope(sc, cfg, net)
}

func renderEnvelope(sc *types.Scene, cfg Config, net court.Net) error {
	e := cfg.Envelope
	res, err := envelope.Generate(envelope.Params{
		Contact:   cfg.Set.Contact,
		NetHeight: net.Top,
		NX:        e.NX,
		NY:        e.NY,
		K:         e.K,
		Blockers:  e.Blockers,
	})
	if err != nil {
		return errorsmod.Wrap(ErrInvalidGrid, err.Error())
	}
	st := envelope.Summarize(res, net.Top)

	if cfg.Show.Crossings && len(res.Crossings) > 0 {
		sc.Points = append(sc.Points, types.PointSet{
			Name: LayerCrossings, Points: res.Crossings,
			Style: types.Style{Color: "turbo", Size: 2, Opacity: 0.8},
		})
	}
	if cfg.Show.Crossings && len(res.BlockedCrossings) > 0 {
		sc.Points = append(sc.Points, types.PointSet{
			Name: LayerBlockedCross, Points: res.BlockedCrossings,
			Style: types.Style{Color: "#e74c3c", Size: 2, Opacity: 0.8},
		})
	}
	if cfg.Show.Cloud && len(res.Cloud) > 0 {
		sc.Points = append(sc.Points, types.PointSet{
			Name: LayerCloud, Points: res.Cloud,
			Style: types.Style{Color: "viridis", Size: 1.6, Opacity: 0.08},
		})
	}
	if cfg.Show.Paths && len(res.Landings) > 0 {
		paths := line(LayerSpikePaths, types.Style{Color: "#70c1ff", Width: 1, Opacity: 0.24})
		for _, i := range envelope.SelectBundle(len(res.Landings), e.MaxPaths) {
			paths.Polylines = append(paths.Polylines, res.Cloud[i*e.K:(i+1)*e.K])
		}
		sc.Lines = append(sc.Lines, paths)
	}
	if len(res.BlockerY) > 0 {
		sc.Lines = append(sc.Lines, BlockerLines(e.Blockers, res.BlockerY, net.Top))
	}

	m := &sc.Metrics
	m.LegalSpikes = st.Legal
	m.BlockedSpikes = st.Blocked
	m.EnvelopePoints = st.CloudPoints
	m.MeanCrossingZ = st.MeanCrossingZ
	m.CrossingArea = st.CrossingAreaM2
	return nil
}
