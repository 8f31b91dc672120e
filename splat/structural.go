package splat

import (
	"fmt"

	"github.com/hupe1980/plyshard/ply"
)

// StructuralLoader is the default Loader. It does not decode vertex data;
// it proves the file is structurally sound: parseable header, known
// property widths, and a payload that is exactly vertexCount records long.
type StructuralLoader struct{}

// NewStructuralLoader creates the default structural loader.
func NewStructuralLoader() StructuralLoader { return StructuralLoader{} }

// Load implements Loader.
func (StructuralLoader) Load(data []byte) (Cloud, error) {
	h, payload, err := ply.Parse(data)
	if err != nil {
		return nil, err
	}

	width, err := h.Width()
	if err != nil {
		return nil, err
	}

	if want := h.VertexCount * width; len(payload) != want {
		return nil, fmt.Errorf("splat: payload is %d bytes, want %d (%d vertices x %d bytes)",
			len(payload), want, h.VertexCount, width)
	}

	return structuralCloud{vertices: h.VertexCount}, nil
}

type structuralCloud struct {
	vertices int
}

func (c structuralCloud) VertexCount() int { return c.vertices }
