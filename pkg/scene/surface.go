package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/oxygene76/vb3d-sim/internal/types"
)

// Surface is anything that can display a rendered scene.
type Surface interface {
	Draw(sc *types.Scene) error
}

// JSONSurface writes each scene as a JSON document.
type JSONSurface struct {
	W      io.Writer
	Indent bool
}

func (s JSONSurface) Draw(sc *types.Scene) error {
	enc := json.NewEncoder(s.W)
	if s.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(sc)
}

// FileSurface writes the scene to Path. The file is only created once
// there is a scene to write.
type FileSurface struct {
	Path   string
	Indent bool
}

func (s FileSurface) Draw(sc *types.Scene) error {
	f, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := (JSONSurface{W: f, Indent: s.Indent}).Draw(sc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Present renders cfg and hands the result to surface.
func Present(cfg Config, surface Surface) (*types.Scene, error) {
	sc, err := Render(cfg)
	if err != nil {
		return nil, err
	}
	return sc, surface.Draw(sc)
}
