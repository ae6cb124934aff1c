package quad

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/bedrock/scene"
	"github.com/gogpu/bedrock/shaders"
)

func decode(b []byte) []shaders.QuadInstance {
	var out []shaders.QuadInstance
	for i := 0; i+shaders.InstanceSize <= len(b); i += shaders.InstanceSize {
		out = append(out, shaders.DecodeQuad(b[i:]))
	}
	return out
}

func TestBackdropDefaultLayer(t *testing.T) {
	got := decode(AppendInstances(nil, scene.NewLayer(), scene.V2(800, 600)))
	want := []shaders.QuadInstance{{
		Size:  [2]float32{800, 600},
		Color: [4]float32{1, 1, 1, 1},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("instances mismatch (-want +got):\n%s", diff)
	}
}

func TestBackdropFollowsClip(t *testing.T) {
	layer := scene.NewLayer().
		WithClip(scene.R(100, 100, 200, 150)).
		WithBlur(8).
		WithQuad(scene.NewQuad(scene.V2(110, 110), scene.V2(20, 20), scene.RGB(1, 0, 0))).
		WithQuad(scene.NewQuad(scene.V2(150, 120), scene.V2(30, 10), scene.RGB(0, 0, 1)).WithCornerRadius(4))

	got := decode(AppendInstances(nil, layer, scene.V2(800, 600)))
	want := []shaders.QuadInstance{
		{Position: [2]float32{100, 100}, Size: [2]float32{200, 150}, Color: [4]float32{1, 1, 1, 1}, Blur: 8},
		{Position: [2]float32{110, 110}, Size: [2]float32{20, 20}, Color: [4]float32{1, 0, 0, 1}},
		{Position: [2]float32{150, 120}, Size: [2]float32{30, 10}, Color: [4]float32{0, 0, 1, 1}, CornerRadius: 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("instances mismatch (-want +got):\n%s", diff)
	}
}

func TestBackdropUsesBackground(t *testing.T) {
	layer := scene.NewLayer().WithBackground(scene.RGBA(0, 0.5, 0, 0.25))
	b := Backdrop(layer, scene.V2(10, 20))
	if b.Color != [4]float32{0, 0.5, 0, 0.25} {
		t.Errorf("backdrop color = %v", b.Color)
	}
	if b.Size != [2]float32{10, 20} || b.Position != [2]float32{} {
		t.Errorf("backdrop rect = %v %v, want full surface", b.Position, b.Size)
	}
}
