package scene

import (
	errorsmod "cosmossdk.io/errors"

	"github.com/oxygene76/vb3d-sim/pkg/kinematics"
)

// Flight returns the sampler for the ball's whole flight under cfg: the
// launch in launch mode, the set plus its tail in set mode.
func Flight(cfg Config) (*kinematics.Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var sampler *kinematics.Sampler
	var err error
	switch cfg.Mode {
	case ModeLaunch:
		l := cfg.Launch
		v0 := kinematics.VelocityFromAngles(l.Speed, l.ElevationDeg, l.AzimuthDeg)
		sampler, err = kinematics.NewSampler(l.Start, v0, l.TEnd, cfg.Dt)
	default:
		s := cfg.Set
		v0, solveErr := kinematics.SolveV0FromTargetChecked(s.Release, s.Contact, s.THit)
		if solveErr != nil {
			return nil, errorsmod.Wrap(ErrInvalidFlight, solveErr.Error())
		}
		sampler, err = kinematics.NewSampler(s.Release, v0, s.THit+s.TAfter, cfg.Dt)
	}
	if err != nil {
		return nil, errorsmod.Wrap(ErrInvalidFlight, err.Error())
	}
	return sampler, nil
}
