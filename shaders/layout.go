package shaders

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Binary sizes of the shared layouts.
const (
	ConstantsSize = 32
	InstanceSize  = 48

	// VerticesPerInstance is the vertex count of every instanced draw.
	VerticesPerInstance = 6
)

// Constants is the push-constant block of every draw.
type Constants struct {
	SurfaceSize [2]float32
	AtlasSize   [2]float32

	// Clip is reserved and always zero.
	Clip [4]float32
}

// Bytes encodes c in its 32-byte little-endian layout.
func (c Constants) Bytes() []byte {
	buf := make([]byte, 0, ConstantsSize)
	buf = appendFloats(buf, c.SurfaceSize[:]...)
	buf = appendFloats(buf, c.AtlasSize[:]...)
	return appendFloats(buf, c.Clip[:]...)
}

// DecodeConstants decodes a block written by Constants.Bytes.
func DecodeConstants(b []byte) (Constants, error) {
	if len(b) < ConstantsSize {
		return Constants{}, fmt.Errorf("shaders: constants need %d bytes, got %d", ConstantsSize, len(b))
	}
	var c Constants
	readFloats(b[0:], c.SurfaceSize[:])
	readFloats(b[8:], c.AtlasSize[:])
	readFloats(b[16:], c.Clip[:])
	return c, nil
}

// QuadInstance is a rounded rectangle, optionally blurring the backdrop
// behind it.
type QuadInstance struct {
	Position     [2]float32
	Size         [2]float32
	Color        [4]float32
	CornerRadius float32
	Blur         float32
}

// Append appends the 48-byte encoding of q to dst.
func (q QuadInstance) Append(dst []byte) []byte {
	dst = appendFloats(dst, q.Position[0], q.Position[1], q.Size[0], q.Size[1])
	dst = appendFloats(dst, q.CornerRadius, q.Blur, 0, 0)
	return appendFloats(dst, q.Color[:]...)
}

// DecodeQuad decodes one quad instance.
func DecodeQuad(b []byte) QuadInstance {
	var v [12]float32
	readFloats(b, v[:])
	return QuadInstance{
		Position:     [2]float32{v[0], v[1]},
		Size:         [2]float32{v[2], v[3]},
		CornerRadius: v[4],
		Blur:         v[5],
		Color:        [4]float32{v[8], v[9], v[10], v[11]},
	}
}

// TexturedInstance is an atlas-textured rectangle used for glyphs and
// sprites. UV coordinates are in atlas texels.
type TexturedInstance struct {
	Position [2]float32
	Size     [2]float32
	UVPos    [2]float32
	UVSize   [2]float32
	Color    [4]float32
}

// Append appends the 48-byte encoding of t to dst.
func (t TexturedInstance) Append(dst []byte) []byte {
	dst = appendFloats(dst, t.Position[0], t.Position[1], t.Size[0], t.Size[1])
	dst = appendFloats(dst, t.UVPos[0], t.UVPos[1], t.UVSize[0], t.UVSize[1])
	return appendFloats(dst, t.Color[:]...)
}

// DecodeTextured decodes one textured instance.
func DecodeTextured(b []byte) TexturedInstance {
	var v [12]float32
	readFloats(b, v[:])
	return TexturedInstance{
		Position: [2]float32{v[0], v[1]},
		Size:     [2]float32{v[2], v[3]},
		UVPos:    [2]float32{v[4], v[5]},
		UVSize:   [2]float32{v[6], v[7]},
		Color:    [4]float32{v[8], v[9], v[10], v[11]},
	}
}

// TriangleInstance is one filled triangle of a path.
type TriangleInstance struct {
	P0, P1, P2 [2]float32
	Color      [4]float32
}

// Append appends the 48-byte encoding of t to dst.
func (t TriangleInstance) Append(dst []byte) []byte {
	dst = appendFloats(dst, t.P0[0], t.P0[1], t.P1[0], t.P1[1])
	dst = appendFloats(dst, t.P2[0], t.P2[1], 0, 0)
	return appendFloats(dst, t.Color[:]...)
}

// DecodeTriangle decodes one triangle instance.
func DecodeTriangle(b []byte) TriangleInstance {
	var v [12]float32
	readFloats(b, v[:])
	return TriangleInstance{
		P0:    [2]float32{v[0], v[1]},
		P1:    [2]float32{v[2], v[3]},
		P2:    [2]float32{v[4], v[5]},
		Color: [4]float32{v[8], v[9], v[10], v[11]},
	}
}

func appendFloats(dst []byte, vs ...float32) []byte {
	for _, v := range vs {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

func readFloats(b []byte, dst []float32) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
}
