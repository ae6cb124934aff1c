package bedrock_test

import (
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/bedrock"
	"github.com/gogpu/bedrock/backend/software"
	"github.com/gogpu/bedrock/gpucore"
	"github.com/gogpu/bedrock/quad"
	"github.com/gogpu/bedrock/render"
	"github.com/gogpu/bedrock/scene"
	"github.com/gogpu/bedrock/shaders"
)

type harness struct {
	r   *bedrock.Renderer
	dev *software.Device
	win *software.Window
}

func newHarness(t *testing.T, w, h int, opts ...bedrock.Option) *harness {
	t.Helper()
	dev := software.New()
	t.Cleanup(dev.Close)
	r, err := bedrock.New(dev, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { r.Close() })
	win := software.NewWindow(w, h)
	if err := r.HandleEvent(bedrock.Resumed{Target: win, Width: w, Height: h}); err != nil {
		t.Fatalf("HandleEvent(Resumed) error = %v", err)
	}
	dev.ResetStats()
	return &harness{r: r, dev: dev, win: win}
}

func (h *harness) render(t *testing.T, s *scene.Scene) software.Stats {
	t.Helper()
	if err := h.r.Render(s); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return h.dev.Stats()
}

func quadDraws(st software.Stats) []software.DrawRecord {
	var out []software.DrawRecord
	for _, d := range st.Draws() {
		if d.Kind == shaders.KindQuad {
			out = append(out, d)
		}
	}
	return out
}

func TestDefaultSceneBackdrop(t *testing.T) {
	h := newHarness(t, 800, 600)
	st := h.render(t, scene.New())

	if st.Submits != 1 {
		t.Errorf("Submits = %d, want 1", st.Submits)
	}
	if len(st.Passes) != len(render.Kinds()) {
		t.Fatalf("passes = %d, want %d", len(st.Passes), len(render.Kinds()))
	}
	quads := quadDraws(st)
	if len(quads) != 1 || quads[0].InstanceCount != 1 {
		t.Fatalf("quad draws = %+v, want one draw of 1 instance", quads)
	}
	want := []shaders.QuadInstance{{
		Size:  [2]float32{800, 600},
		Color: [4]float32{1, 1, 1, 1},
	}}
	if diff := cmp.Diff(want, quads[0].Quads()); diff != "" {
		t.Errorf("backdrop mismatch (-want +got):\n%s", diff)
	}
	if h.win.Presents() != 1 {
		t.Errorf("Presents = %d, want 1", h.win.Presents())
	}
	if got := h.win.Image().RGBAAt(400, 300); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("pixel = %v, want white", got)
	}
}

func TestDrawableOrderAndBackdropRefresh(t *testing.T) {
	h := newHarness(t, 64, 64)
	s := scene.New().WithLayer(scene.NewLayer())
	st := h.render(t, s)

	var kinds []string
	for _, d := range st.Draws() {
		kinds = append(kinds, d.Kind)
	}
	order := []string{shaders.KindQuad, shaders.KindGlyph, shaders.KindPath, shaders.KindSprite}
	want := append(append([]string{}, order...), order...)
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("draw order mismatch (-want +got):\n%s", diff)
	}
	if st.Submits != 2 {
		t.Errorf("Submits = %d, want one per layer", st.Submits)
	}
	if st.Clears != 1 || st.Copies != 7 {
		t.Errorf("Clears, Copies = %d, %d, want 1, 7", st.Clears, st.Copies)
	}
	for i, p := range st.Passes {
		want := gpucore.LoadOpLoad
		if i == 0 {
			want = gpucore.LoadOpClear
		}
		if p.Load != want {
			t.Errorf("pass %d load = %v, want %v", i, p.Load, want)
		}
		if p.Target != h.r.Surface().Multisampled() {
			t.Errorf("pass %d target = %d, want the multisampled texture", i, p.Target)
		}
	}
}

func TestClippedLayer(t *testing.T) {
	h := newHarness(t, 800, 600)
	l := scene.NewLayer().
		WithClip(scene.R(100, 100, 200, 150)).
		WithBlur(3).
		WithQuad(scene.NewQuad(scene.V2(110, 110), scene.V2(10, 10), scene.RGB(1, 0, 0))).
		WithQuad(scene.NewQuad(scene.V2(130, 110), scene.V2(10, 10), scene.RGB(0, 1, 0)))
	st := h.render(t, &scene.Scene{Layers: []*scene.Layer{l}})

	quads := quadDraws(st)
	if len(quads) != 1 {
		t.Fatalf("quad draws = %d, want 1", len(quads))
	}
	got := quads[0].Quads()
	if len(got) != 3 {
		t.Fatalf("instances = %d, want 1 + 2 quads", len(got))
	}
	want := shaders.QuadInstance{
		Position: [2]float32{100, 100},
		Size:     [2]float32{200, 150},
		Color:    [4]float32{1, 1, 1, 1},
		Blur:     3,
	}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Errorf("backdrop mismatch (-want +got):\n%s", diff)
	}
	for _, d := range st.Draws() {
		if !d.Scissored {
			t.Errorf("%s draw has no scissor", d.Kind)
			continue
		}
		if d.Scissor != (gpucore.Region{X: 100, Y: 100, Width: 200, Height: 150}) {
			t.Errorf("%s scissor = %+v", d.Kind, d.Scissor)
		}
	}
}

func TestUnclippedLayerCoversSurface(t *testing.T) {
	h := newHarness(t, 320, 200)
	st := h.render(t, scene.New().WithBackground(scene.RGB(0, 0, 1)))

	q := quadDraws(st)[0]
	bd := q.Quads()[0]
	if bd.Size != q.Constants.SurfaceSize {
		t.Errorf("backdrop size = %v, want surface size %v", bd.Size, q.Constants.SurfaceSize)
	}
	if q.Constants.AtlasSize != [2]float32{render.DefaultAtlasSize, render.DefaultAtlasSize} {
		t.Errorf("atlas size = %v", q.Constants.AtlasSize)
	}
	for _, d := range st.Draws() {
		if d.Scissored {
			t.Errorf("%s draw is scissored", d.Kind)
		}
	}
	if got := h.win.Image().RGBAAt(10, 10); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("pixel = %v, want blue background", got)
	}
}

func TestSecondLayerBlursFirst(t *testing.T) {
	h := newHarness(t, 100, 100)
	s := scene.New().
		WithQuad(scene.NewQuad(scene.V2(0, 0), scene.V2(60, 60), scene.RGB(1, 0, 0))).
		WithLayer(scene.NewLayer().
			WithBackground(scene.RGBA(1, 1, 1, 0.2)).
			WithBlur(2).
			WithQuad(scene.NewQuad(scene.V2(40, 40), scene.V2(60, 60), scene.RGB(0, 0, 1))))
	h.render(t, s)
	img := h.win.Image()

	// Red from the first layer shows through the translucent blurred backdrop.
	if got := img.RGBAAt(20, 20); !near(got, color.RGBA{255, 51, 51, 255}, 2) {
		t.Errorf("backdrop pixel = %v, want red tinted white", got)
	}
	if got := img.RGBAAt(50, 50); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("overlap pixel = %v, want the second layer's blue", got)
	}
	if got := img.RGBAAt(90, 10); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("empty pixel = %v, want white", got)
	}
}

// near reports whether every channel of a and b differs by at most tol.
func near(a, b color.RGBA, tol int) bool {
	d := func(x, y uint8) bool { return abs(int(x)-int(y)) <= tol }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestInstanceCounts(t *testing.T) {
	h := newHarness(t, 200, 200, bedrock.WithInstanceCapacity(2))
	s := scene.New()
	for i := range 10 {
		s.AddQuad(scene.NewQuad(scene.V2(float32(i*10), 0), scene.V2(5, 5), scene.Black))
	}
	st := h.render(t, s)

	for _, d := range st.Draws() {
		want := uint32(0)
		if d.Kind == shaders.KindQuad {
			want = 11
		}
		if d.InstanceCount != want {
			t.Errorf("%s instances = %d, want %d", d.Kind, d.InstanceCount, want)
		}
		if d.VertexCount != shaders.VerticesPerInstance {
			t.Errorf("%s vertices = %d, want %d", d.Kind, d.VertexCount, shaders.VerticesPerInstance)
		}
	}
}

func TestRenderBeforeResumed(t *testing.T) {
	dev := software.New()
	defer dev.Close()
	r, err := bedrock.New(dev)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err := r.Render(scene.New()); !errors.Is(err, bedrock.ErrNotReady) {
		t.Errorf("Render() = %v, want ErrNotReady", err)
	}
	if r.DrawScene(scene.New()) {
		t.Error("DrawScene() = true before the surface is ready")
	}
	if err := r.HandleEvent(bedrock.Resized{Width: 10, Height: 10}); err != nil {
		t.Errorf("Resized before Resumed = %v, want nil", err)
	}
	if err := r.HandleEvent("focus"); err != nil {
		t.Errorf("unknown event = %v, want nil", err)
	}
}

func TestResizeRebuildsSurface(t *testing.T) {
	h := newHarness(t, 800, 600)
	if err := h.r.HandleEvent(&bedrock.Resized{Width: 0, Height: 0}); err != nil {
		t.Fatal(err)
	}
	if w, hh := h.r.Surface().Size(); w != 1 || hh != 1 {
		t.Errorf("Size() = %dx%d, want 1x1", w, hh)
	}
	st := h.render(t, scene.New())
	if got := quadDraws(st)[0].Constants.SurfaceSize; got != [2]float32{1, 1} {
		t.Errorf("surface size = %v, want 1x1", got)
	}
}

func TestAcquireFailures(t *testing.T) {
	h := newHarness(t, 32, 32)

	h.win.FailNext(gpucore.ErrSurfaceTimeout)
	if !h.r.DrawScene(scene.New()) {
		t.Error("DrawScene() = false after a single timeout")
	}

	h.win.FailNext(gpucore.ErrSurfaceOutdated)
	if !h.r.DrawScene(scene.New()) {
		t.Error("DrawScene() = false after an outdated surface")
	}

	boom := errors.New("device lost")
	h.win.FailNext(boom)
	if err := h.r.Render(scene.New()); !errors.Is(err, boom) {
		t.Errorf("Render() = %v, want %v", err, boom)
	}
}

func TestEmptyScene(t *testing.T) {
	h := newHarness(t, 16, 16)
	st := h.render(t, &scene.Scene{})
	if st.Submits != 1 {
		t.Errorf("Submits = %d, want 1", st.Submits)
	}
	if err := h.r.Render(nil); !errors.Is(err, bedrock.ErrNilScene) {
		t.Errorf("Render(nil) = %v, want ErrNilScene", err)
	}
}

func TestNilLayer(t *testing.T) {
	h := newHarness(t, 16, 16)
	err := h.r.Render(&scene.Scene{Layers: []*scene.Layer{scene.NewLayer(), nil}})
	if !errors.Is(err, bedrock.ErrNilLayer) {
		t.Fatalf("Render() = %v, want ErrNilLayer", err)
	}
	if !strings.Contains(err.Error(), "layers[1]") {
		t.Errorf("Render() = %q, want it to name layers[1]", err)
	}
	if st := h.dev.Stats(); st.Submits != 0 || len(st.Passes) != 0 {
		t.Errorf("Stats = %+v, want nothing recorded", st)
	}

	// The frame was never acquired, so the next scene renders normally.
	if st := h.render(t, scene.New()); st.Submits != 1 {
		t.Errorf("Submits = %d, want 1", st.Submits)
	}
}

func TestNewErrors(t *testing.T) {
	t.Run("duplicate kind", func(t *testing.T) {
		dev := software.New()
		defer dev.Close()
		_, err := bedrock.New(dev, bedrock.WithDrawables(quad.New, quad.New))
		if !errors.Is(err, render.ErrDuplicateKind) {
			t.Errorf("New() = %v, want ErrDuplicateKind", err)
		}
	})
	t.Run("missing capability", func(t *testing.T) {
		caps := software.DefaultCapabilities
		caps.MaxSampleCount = 1
		dev := software.New(software.WithCapabilities(caps))
		defer dev.Close()
		if _, err := bedrock.New(dev); !errors.Is(err, gpucore.ErrMissingCapability) {
			t.Errorf("New() = %v, want ErrMissingCapability", err)
		}
	})
}

func TestQuadOnlyRenderer(t *testing.T) {
	h := newHarness(t, 16, 16, bedrock.WithDrawables(quad.New))
	st := h.render(t, scene.New())
	if len(st.Passes) != 1 {
		t.Errorf("passes = %d, want 1", len(st.Passes))
	}
}

func TestClose(t *testing.T) {
	h := newHarness(t, 16, 16)
	if err := h.r.Close(); err != nil {
		t.Fatal(err)
	}
	if err := h.r.Render(scene.New()); !errors.Is(err, bedrock.ErrClosed) {
		t.Errorf("Render() after Close = %v, want ErrClosed", err)
	}
	if n := h.dev.LiveTextures(); n != 0 {
		t.Errorf("live textures after Close = %d, want 0", n)
	}
}

func TestClipScissor(t *testing.T) {
	tests := []struct {
		name string
		clip scene.Rect
		want gpucore.Region
	}{
		{"inside", scene.R(100, 100, 200, 150), gpucore.Region{X: 100, Y: 100, Width: 200, Height: 150}},
		{"negative origin", scene.R(-10, -5, 50, 50), gpucore.Region{Width: 50, Height: 50}},
		{"overflow", scene.R(700, 500, 300, 300), gpucore.Region{X: 700, Y: 500, Width: 100, Height: 100}},
		{"outside", scene.R(900, 700, 10, 10), gpucore.Region{X: 800, Y: 600}},
		{"negative extent", scene.R(10, 10, -5, 20), gpucore.Region{X: 10, Y: 10, Height: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bedrock.ClipScissor(tt.clip, 800, 600); got != tt.want {
				t.Errorf("ClipScissor() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
