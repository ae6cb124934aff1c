package software

import (
	"slices"

	"github.com/gogpu/bedrock/gpucore"
	"github.com/gogpu/bedrock/shaders"
)

// Stats is a log of the work a Device executed.
type Stats struct {
	Submits int
	Clears  int
	Copies  int

	// TexturesCreated counts CreateTexture calls, excluding surface frames.
	TexturesCreated int

	// Configures counts surface configurations.
	Configures int

	Passes []PassRecord
}

// PassRecord describes one executed render pass.
type PassRecord struct {
	Label   string
	Load    gpucore.LoadOp
	Target  gpucore.TextureID
	Resolve gpucore.TextureID
	Draws   []DrawRecord
}

// DrawRecord describes one executed draw.
type DrawRecord struct {
	// Kind is the program kind, e.g. "quad".
	Kind          string
	VertexCount   uint32
	InstanceCount uint32

	// Scissor is the scissor rectangle; Scissored is false when none was set.
	Scissor   gpucore.Region
	Scissored bool

	Constants shaders.Constants

	// Instances holds the instance bytes read by the draw.
	Instances []byte
}

// Draws returns every draw of every pass in execution order.
func (s Stats) Draws() []DrawRecord {
	var out []DrawRecord
	for _, p := range s.Passes {
		out = append(out, p.Draws...)
	}
	return out
}

// Quads decodes the instances of a quad draw.
func (r DrawRecord) Quads() []shaders.QuadInstance {
	out := make([]shaders.QuadInstance, 0, len(r.Instances)/shaders.InstanceSize)
	for i := 0; i+shaders.InstanceSize <= len(r.Instances); i += shaders.InstanceSize {
		out = append(out, shaders.DecodeQuad(r.Instances[i:]))
	}
	return out
}

func (s Stats) clone() Stats {
	s.Passes = slices.Clone(s.Passes)
	for i := range s.Passes {
		s.Passes[i].Draws = slices.Clone(s.Passes[i].Draws)
	}
	return s
}
