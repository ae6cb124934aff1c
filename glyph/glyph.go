package glyph

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/gogpu/bedrock/internal/atlas"
	"github.com/gogpu/bedrock/internal/cache"
	"github.com/gogpu/bedrock/render"
	"github.com/gogpu/bedrock/scene"
	"github.com/gogpu/bedrock/shaders"
)

// SubpixelBins is the number of horizontal subpixel offsets a glyph is
// rasterized at when subpixel positioning is on.
const SubpixelBins = 4

// shapedRuns bounds the number of shaped text runs kept between frames.
const shapedRuns = 1024

type faceKey struct {
	name  string
	style Style
}

type runKey struct {
	face faceKey
	text string
	size float32
}

type glyphKey struct {
	face faceKey
	id   uint16
	size float32
	bin  uint8
}

// entry is a glyph mask packed in the atlas. Empty glyphs have no region.
type entry struct {
	region    atlas.Region
	left, top int
}

// Drawable is the text-kind drawable.
type Drawable struct {
	fonts     FontSource
	faces     map[faceKey]*Face
	glyphs    map[glyphKey]entry
	runs      *cache.Cache[runKey, []Positioned]
	atlas     *atlas.Atlas
	instances *render.InstanceBuffer
	pipeline  render.Pipeline
	scratch   []byte
	rgba      []byte
}

// NewFactory returns a render.Factory creating text drawables that load
// fonts from src. A nil src uses DefaultFonts.
func NewFactory(src FontSource) render.Factory {
	return func(ctx *render.Context) (render.Drawable, error) {
		return New(ctx, src)
	}
}

// New allocates the glyph atlas and the instance buffer.
func New(ctx *render.Context, src FontSource) (*Drawable, error) {
	if src == nil {
		src = DefaultFonts()
	}
	size := ctx.AtlasSize
	if size == 0 {
		size = render.DefaultAtlasSize
	}
	at, err := atlas.New(ctx.Device, size, "Glyph Atlas")
	if err != nil {
		return nil, err
	}
	buf, err := render.NewInstanceBuffer(ctx, "Glyph", at.Texture())
	if err != nil {
		at.Destroy()
		return nil, err
	}
	return &Drawable{
		fonts:     src,
		faces:     make(map[faceKey]*Face),
		glyphs:    make(map[glyphKey]entry),
		runs:      cache.New[runKey, []Positioned](shapedRuns),
		atlas:     at,
		instances: buf,
	}, nil
}

// Kind implements render.Drawable.
func (d *Drawable) Kind() render.Kind { return render.KindText }

// SurfaceChanged implements render.Drawable.
func (d *Drawable) SurfaceChanged(ctx *render.Context) error {
	return d.pipeline.Rebuild(ctx, render.KindText, d.instances.Layout())
}

// Draw implements render.Drawable.
func (d *Drawable) Draw(pass *render.Pass, layer *scene.Layer) error {
	if !d.pipeline.Ready() {
		return render.ErrNoPipeline
	}
	var err error
	d.scratch, err = d.AppendInstances(d.scratch[:0], layer)
	if errors.Is(err, atlas.ErrFull) {
		// Start over with an empty atlas holding only this layer's glyphs.
		pass.Context.Log().Warn("glyph: atlas full, resetting", "glyphs", len(d.glyphs))
		d.atlas.Reset()
		clear(d.glyphs)
		d.scratch, err = d.AppendInstances(d.scratch[:0], layer)
	}
	if err != nil {
		return err
	}
	n, err := d.instances.Upload(d.scratch)
	if err != nil {
		return err
	}
	pass.DrawInstances(d.pipeline.ID(), d.instances.BindGroup(), n)
	pass.Context.Log().Debug("glyph: draw", "instances", n)
	return nil
}

// AppendInstances appends one instance per visible glyph of the layer
// texts to dst, rasterizing glyphs missing from the atlas.
func (d *Drawable) AppendInstances(dst []byte, layer *scene.Layer) ([]byte, error) {
	name := layer.FontName
	if name == "" {
		name = scene.DefaultFontName()
	}
	for _, t := range layer.Texts {
		size := t.Size
		if size <= 0 {
			size = layer.FontSize
		}
		if size <= 0 {
			size = scene.DefaultFontSize()
		}
		fk := faceKey{name, StyleOf(t.Bold, t.Italic)}
		face, err := d.face(fk)
		if err != nil {
			return dst, err
		}
		for _, g := range d.shape(face, runKey{fk, t.Text, size}) {
			x := t.BottomLeft.X + g.X
			y := math32.Round(t.BottomLeft.Y + g.Y)
			var bin uint8
			if t.Subpixel {
				frac := x - math32.Floor(x)
				bin = uint8(frac * SubpixelBins)
				x = math32.Floor(x)
			} else {
				x = math32.Round(x)
			}
			e, err := d.lookup(face, glyphKey{fk, g.ID, size, bin})
			if err != nil {
				return dst, err
			}
			if !e.region.IsValid() {
				continue
			}
			r := e.region
			inst := shaders.TexturedInstance{
				Position: [2]float32{x + float32(e.left), y + float32(e.top)},
				Size:     [2]float32{float32(r.Width), float32(r.Height)},
				UVPos:    [2]float32{float32(r.X), float32(r.Y)},
				UVSize:   [2]float32{float32(r.Width), float32(r.Height)},
				Color:    t.Color.Array(),
			}
			dst = inst.Append(dst)
		}
	}
	return dst, nil
}

func (d *Drawable) face(k faceKey) (*Face, error) {
	if f, ok := d.faces[k]; ok {
		return f, nil
	}
	data, err := d.fonts.Font(k.name, k.style)
	if err != nil {
		return nil, err
	}
	f, err := ParseFace(data)
	if err != nil {
		return nil, fmt.Errorf("glyph: font %q %s: %w", k.name, k.style, err)
	}
	d.faces[k] = f
	return f, nil
}

// shape returns the shaped glyphs of a run, reusing the result of an
// earlier frame when the same text was drawn with the same face and size.
func (d *Drawable) shape(face *Face, k runKey) []Positioned {
	if run, ok := d.runs.Get(k); ok {
		return run
	}
	run := face.Shape(k.text, k.size)
	d.runs.Set(k, run)
	return run
}

// lookup returns the atlas entry of a glyph, rasterizing it on first use.
func (d *Drawable) lookup(face *Face, k glyphKey) (entry, error) {
	if e, ok := d.glyphs[k]; ok {
		return e, nil
	}
	m, err := face.Rasterize(k.id, k.size, float32(k.bin)/SubpixelBins)
	if err != nil {
		return entry{}, err
	}
	var e entry
	if !m.Empty() {
		w, h := m.Alpha.Rect.Dx(), m.Alpha.Rect.Dy()
		d.rgba = coverageRGBA(d.rgba[:0], m)
		r, err := d.atlas.Add(w, h, d.rgba)
		if err != nil {
			return entry{}, err
		}
		e = entry{region: r, left: m.Left, top: m.Top}
	}
	d.glyphs[k] = e
	return e, nil
}

// coverageRGBA expands a mask to white texels carrying the coverage in alpha.
func coverageRGBA(dst []byte, m Mask) []byte {
	a := m.Alpha
	for y := a.Rect.Min.Y; y < a.Rect.Max.Y; y++ {
		row := a.Pix[a.PixOffset(a.Rect.Min.X, y):][:a.Rect.Dx()]
		for _, c := range row {
			dst = append(dst, 0xff, 0xff, 0xff, c)
		}
	}
	return dst
}

// Cached returns the number of glyphs in the atlas cache.
func (d *Drawable) Cached() int { return len(d.glyphs) }

// ShapeStats reports the shaped-run cache traffic.
func (d *Drawable) ShapeStats() cache.Stats { return d.runs.Stats() }

// Destroy implements render.Drawable.
func (d *Drawable) Destroy() {
	d.pipeline.Destroy()
	d.instances.Destroy()
	d.atlas.Destroy()
}
