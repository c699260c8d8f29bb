package scene

import (
	errorsmod "cosmossdk.io/errors"
)

// Codespace groups the errors raised while building a scene.
const Codespace = "vb3d"

var (
	ErrInvalidConfig = errorsmod.Register(Codespace, 2, "invalid scene config")
	ErrInvalidFlight = errorsmod.Register(Codespace, 3, "invalid flight parameters")
	ErrInvalidGrid   = errorsmod.Register(Codespace, 4, "invalid envelope grid")
)
