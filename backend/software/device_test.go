package software

import (
	"errors"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/bedrock/gpucore"
	"github.com/gogpu/bedrock/shaders"
)

// fixture is a device with one pipeline of the given kind.
type fixture struct {
	dev       *Device
	target    gpucore.TextureID
	resolve   gpucore.TextureID
	backdrop  gpucore.TextureID
	pipeline  gpucore.RenderPipelineID
	buffer    gpucore.BufferID
	local     gpucore.BindGroupID
	universal gpucore.BindGroupID
}

func newFixture(t *testing.T, kind string, w, h uint32) *fixture {
	t.Helper()
	f := &fixture{dev: New()}
	d := f.dev
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	var err error
	desc := gpucore.TextureDesc{Width: w, Height: h, Format: gpucore.TextureFormatRGBA8Unorm}
	f.target, err = d.CreateTexture(&gpucore.TextureDesc{Width: w, Height: h, SampleCount: 4})
	must(err)
	f.resolve, err = d.CreateTexture(&desc)
	must(err)
	f.backdrop, err = d.CreateTexture(&desc)
	must(err)
	sampler, err := d.CreateSampler(&gpucore.SamplerDesc{})
	must(err)

	localLayout, err := d.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{Entries: []gpucore.BindGroupLayoutEntry{
		{Binding: 0, Type: gpucore.BindingTypeReadOnlyStorageBuffer},
	}})
	must(err)
	uniLayout, err := d.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{Entries: []gpucore.BindGroupLayoutEntry{
		{Binding: 0, Type: gpucore.BindingTypeSampledTexture},
		{Binding: 1, Type: gpucore.BindingTypeSampler},
	}})
	must(err)
	f.buffer, err = d.CreateBuffer(16*shaders.InstanceSize, gpucore.BufferUsageStorage, "instances")
	must(err)
	f.local, err = d.CreateBindGroup(&gpucore.BindGroupDesc{Layout: localLayout, Entries: []gpucore.BindGroupEntry{{Binding: 0, Buffer: f.buffer}}})
	must(err)
	f.universal, err = d.CreateBindGroup(&gpucore.BindGroupDesc{Layout: uniLayout, Entries: []gpucore.BindGroupEntry{
		{Binding: 0, Texture: f.backdrop},
		{Binding: 1, Sampler: sampler},
	}})
	must(err)
	pl, err := d.CreatePipelineLayout(&gpucore.PipelineLayoutDesc{
		BindGroupLayouts: []gpucore.BindGroupLayoutID{localLayout, uniLayout},
		PushConstantSize: shaders.ConstantsSize,
	})
	must(err)
	mod, err := d.CreateShaderModule(shaders.Builtin().Source(), "test")
	must(err)
	f.pipeline, err = d.CreateRenderPipeline(&gpucore.RenderPipelineDesc{
		Layout:        pl,
		Module:        mod,
		VertexEntry:   shaders.Builtin().EntryPoint(kind, shaders.StageVertex),
		FragmentEntry: shaders.Builtin().EntryPoint(kind, shaders.StageFragment),
		SampleCount:   4,
	})
	must(err)
	return f
}

// run records one pass drawing data and submits it.
func (f *fixture) run(t *testing.T, load gpucore.LoadOp, scissor *gpucore.Region, data []byte) {
	t.Helper()
	if err := f.dev.WriteBuffer(f.buffer, 0, data); err != nil {
		t.Fatal(err)
	}
	enc, err := f.dev.CreateCommandEncoder("test")
	if err != nil {
		t.Fatal(err)
	}
	pass, err := enc.BeginRenderPass(&gpucore.RenderPassDesc{Color: gpucore.ColorAttachment{
		View:          f.target,
		ResolveTarget: f.resolve,
		LoadOp:        load,
		ClearColor:    [4]float64{1, 1, 1, 1},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if scissor != nil {
		pass.SetScissorRect(scissor.X, scissor.Y, scissor.Width, scissor.Height)
	}
	pass.SetPipeline(f.pipeline)
	pass.SetBindGroup(0, f.local)
	pass.SetBindGroup(1, f.universal)
	pass.SetPushConstants(gpucore.ShaderStageAll, 0, shaders.Constants{SurfaceSize: [2]float32{64, 64}}.Bytes())
	pass.Draw(shaders.VerticesPerInstance, uint32(len(data)/shaders.InstanceSize), 0, 0)
	pass.End()
	cb, err := enc.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if err := f.dev.Submit(cb); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) pixel(t *testing.T, x, y int) color.RGBA {
	t.Helper()
	img, err := f.dev.Image(f.resolve)
	if err != nil {
		t.Fatal(err)
	}
	return img.RGBAAt(x, y)
}

func TestQuadProgram(t *testing.T) {
	f := newFixture(t, shaders.KindQuad, 64, 64)
	q := shaders.QuadInstance{Position: [2]float32{8, 8}, Size: [2]float32{16, 16}, Color: [4]float32{1, 0, 0, 1}}
	f.run(t, gpucore.LoadOpClear, nil, q.Append(nil))

	if got, want := f.pixel(t, 16, 16), (color.RGBA{255, 0, 0, 255}); got != want {
		t.Errorf("inside pixel = %v, want %v", got, want)
	}
	if got, want := f.pixel(t, 40, 40), (color.RGBA{255, 255, 255, 255}); got != want {
		t.Errorf("outside pixel = %v, want %v", got, want)
	}

	draws := f.dev.Stats().Draws()
	if len(draws) != 1 {
		t.Fatalf("got %d draws, want 1", len(draws))
	}
	if diff := cmp.Diff([]shaders.QuadInstance{q}, draws[0].Quads()); diff != "" {
		t.Errorf("recorded instances mismatch (-want +got):\n%s", diff)
	}
}

func TestScissorLimitsDrawing(t *testing.T) {
	f := newFixture(t, shaders.KindQuad, 64, 64)
	q := shaders.QuadInstance{Size: [2]float32{64, 64}, Color: [4]float32{0, 0, 1, 1}}
	scissor := gpucore.Region{X: 10, Y: 10, Width: 20, Height: 20}
	f.run(t, gpucore.LoadOpClear, &scissor, q.Append(nil))

	if got := f.pixel(t, 15, 15); got.B != 255 || got.R != 0 {
		t.Errorf("pixel inside scissor = %v, want blue", got)
	}
	if got := f.pixel(t, 5, 5); got.R != 255 {
		t.Errorf("pixel outside scissor = %v, want white", got)
	}
	d := f.dev.Stats().Draws()[0]
	if !d.Scissored || d.Scissor != scissor {
		t.Errorf("recorded scissor = %v (%v), want %v", d.Scissor, d.Scissored, scissor)
	}
}

func TestLoadOpPreservesContent(t *testing.T) {
	f := newFixture(t, shaders.KindQuad, 64, 64)
	red := shaders.QuadInstance{Size: [2]float32{32, 64}, Color: [4]float32{1, 0, 0, 1}}
	f.run(t, gpucore.LoadOpClear, nil, red.Append(nil))
	blue := shaders.QuadInstance{Position: [2]float32{32, 0}, Size: [2]float32{32, 64}, Color: [4]float32{0, 0, 1, 1}}
	f.run(t, gpucore.LoadOpLoad, nil, blue.Append(nil))

	if got := f.pixel(t, 10, 10); got.R != 255 || got.B != 0 {
		t.Errorf("left pixel = %v, want red kept by LoadOpLoad", got)
	}
	if got := f.pixel(t, 50, 10); got.B != 255 || got.R != 0 {
		t.Errorf("right pixel = %v, want blue", got)
	}
}

func TestZeroInstanceDraw(t *testing.T) {
	f := newFixture(t, shaders.KindQuad, 8, 8)
	f.run(t, gpucore.LoadOpClear, nil, nil)
	d := f.dev.Stats().Draws()
	if len(d) != 1 || d[0].InstanceCount != 0 {
		t.Fatalf("draws = %+v, want one draw of 0 instances", d)
	}
}

func TestPathProgramSharedEdge(t *testing.T) {
	f := newFixture(t, shaders.KindPath, 16, 16)
	c := [4]float32{0, 0, 0, 0.5}
	var data []byte
	data = shaders.TriangleInstance{P0: [2]float32{0, 0}, P1: [2]float32{16, 0}, P2: [2]float32{0, 16}, Color: c}.Append(data)
	data = shaders.TriangleInstance{P0: [2]float32{16, 0}, P1: [2]float32{16, 16}, P2: [2]float32{0, 16}, Color: c}.Append(data)
	f.run(t, gpucore.LoadOpClear, nil, data)

	want := f.pixel(t, 2, 2)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if got := f.pixel(t, x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want uniform %v", x, y, got, want)
			}
		}
	}
	if want.R == 255 {
		t.Errorf("square not drawn: %v", want)
	}
}

func TestEncoderState(t *testing.T) {
	d := New()
	tex, _ := d.CreateTexture(&gpucore.TextureDesc{Width: 4, Height: 4})
	enc, _ := d.CreateCommandEncoder("state")
	if _, err := enc.BeginRenderPass(&gpucore.RenderPassDesc{Color: gpucore.ColorAttachment{View: tex}}); err != nil {
		t.Fatal(err)
	}
	if err := enc.ClearTexture(tex); !errors.Is(err, gpucore.ErrPassOpen) {
		t.Errorf("ClearTexture during pass = %v, want ErrPassOpen", err)
	}
	if _, err := enc.Finish(); !errors.Is(err, gpucore.ErrPassOpen) {
		t.Errorf("Finish during pass = %v, want ErrPassOpen", err)
	}

	enc2, _ := d.CreateCommandEncoder("finished")
	cb, err := enc2.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if err := enc2.ClearTexture(tex); !errors.Is(err, gpucore.ErrEncoderFinished) {
		t.Errorf("ClearTexture after Finish = %v, want ErrEncoderFinished", err)
	}
	if err := d.Submit(cb); err != nil {
		t.Fatal(err)
	}
	if err := d.Submit(cb); err == nil {
		t.Error("second Submit of one command buffer succeeded")
	}
}

func TestClearAndCopy(t *testing.T) {
	d := New()
	src, _ := d.CreateTexture(&gpucore.TextureDesc{Width: 4, Height: 4})
	dst, _ := d.CreateTexture(&gpucore.TextureDesc{Width: 4, Height: 4})
	px := make([]byte, 4*4*4)
	for i := range px {
		px[i] = 200
	}
	if err := d.WriteTexture(src, gpucore.Region{Width: 4, Height: 4}, px); err != nil {
		t.Fatal(err)
	}
	enc, _ := d.CreateCommandEncoder("copy")
	_ = enc.CopyTextureToTexture(src, dst, 4, 4)
	_ = enc.ClearTexture(src)
	cb, _ := enc.Finish()
	if err := d.Submit(cb); err != nil {
		t.Fatal(err)
	}
	got, _ := d.ReadTexture(dst)
	if diff := cmp.Diff(px, got); diff != "" {
		t.Errorf("copied texels mismatch (-want +got):\n%s", diff)
	}
	cleared, _ := d.ReadTexture(src)
	if cleared[0] != 0 || cleared[3] != 0 {
		t.Errorf("cleared texel = %v, want transparent", cleared[:4])
	}
	if s := d.Stats(); s.Copies != 1 || s.Clears != 1 {
		t.Errorf("stats copies=%d clears=%d, want 1 and 1", s.Copies, s.Clears)
	}
}

func TestBindGroupValidation(t *testing.T) {
	d := New()
	layout, _ := d.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{Entries: []gpucore.BindGroupLayoutEntry{
		{Binding: 0, Type: gpucore.BindingTypeSampledTexture},
	}})
	if _, err := d.CreateBindGroup(&gpucore.BindGroupDesc{Layout: layout}); err == nil {
		t.Error("CreateBindGroup accepted a missing binding")
	}
	if _, err := d.CreateBindGroup(&gpucore.BindGroupDesc{Layout: layout, Entries: []gpucore.BindGroupEntry{{Binding: 0, Texture: 99}}}); !errors.Is(err, gpucore.ErrResourceNotFound) {
		t.Errorf("CreateBindGroup with dead texture = %v, want ErrResourceNotFound", err)
	}
}

func TestWindowSurface(t *testing.T) {
	d := New()
	win := NewWindow(32, 16)
	if _, err := d.CreateSurface("not a window"); !errors.Is(err, gpucore.ErrUnsupportedTarget) {
		t.Fatalf("CreateSurface(string) = %v, want ErrUnsupportedTarget", err)
	}
	s, err := d.CreateSurface(win)
	if err != nil {
		t.Fatal(err)
	}
	cfg, _ := s.DefaultConfig(32, 16)
	if err := s.Configure(cfg); err != nil {
		t.Fatal(err)
	}

	win.FailNext(gpucore.ErrSurfaceTimeout)
	if _, err := s.Acquire(); !errors.Is(err, gpucore.ErrSurfaceTimeout) {
		t.Fatalf("Acquire() = %v, want injected timeout", err)
	}
	frame, err := s.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	if frame.Width != 32 || frame.Height != 16 {
		t.Errorf("frame size = %dx%d, want 32x16", frame.Width, frame.Height)
	}
	if err := s.Present(frame); err != nil {
		t.Fatal(err)
	}
	if win.Acquires() != 2 || win.Presents() != 1 {
		t.Errorf("acquires=%d presents=%d, want 2 and 1", win.Acquires(), win.Presents())
	}
	if img := win.Image(); img == nil || img.Bounds().Dx() != 32 {
		t.Errorf("presented image = %v", img)
	}
	if err := s.Present(frame); err == nil {
		t.Error("presenting a frame twice succeeded")
	}
}

func TestCreateRenderPipelineRejectsUnknownKind(t *testing.T) {
	d := New()
	if _, err := d.CreateRenderPipeline(&gpucore.RenderPipelineDesc{VertexEntry: "main"}); err == nil {
		t.Error("CreateRenderPipeline accepted entry point \"main\"")
	}
	if _, err := d.CreateRenderPipeline(&gpucore.RenderPipelineDesc{VertexEntry: "mesh_vertex"}); err == nil {
		t.Error("CreateRenderPipeline accepted kind \"mesh\"")
	}
}
