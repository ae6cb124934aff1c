// Package sprite draws the tinted images of a layer.
//
// A sprite names its image by a texture identifier. The drawable resolves
// identifiers to files in an fs.FS the first time they are drawn, decodes
// them (PNG, JPEG, GIF, BMP or WebP) and packs them into the sprite atlas.
// Images can also be added directly with [Drawable.Add].
package sprite

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io/fs"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"github.com/gogpu/bedrock/gpucore"
	"github.com/gogpu/bedrock/internal/atlas"
	"github.com/gogpu/bedrock/render"
	"github.com/gogpu/bedrock/scene"
	"github.com/gogpu/bedrock/shaders"
)

// ErrUnknownTexture is returned by Draw for an identifier that names no image.
var ErrUnknownTexture = errors.New("sprite: unknown texture")

// Drawable is the sprite-kind drawable.
type Drawable struct {
	fsys      fs.FS
	atlas     *atlas.Atlas
	images    map[string]texels
	regions   map[string]atlas.Region
	instances *render.InstanceBuffer
	pipeline  render.Pipeline
	scratch   []byte
}

// NewFactory returns a render.Factory creating sprite drawables that load
// images from fsys. With a nil fsys only images added with Add resolve.
func NewFactory(fsys fs.FS) render.Factory {
	return func(ctx *render.Context) (render.Drawable, error) {
		return New(ctx, fsys)
	}
}

// New allocates the sprite atlas and the instance buffer.
func New(ctx *render.Context, fsys fs.FS) (*Drawable, error) {
	size := ctx.AtlasSize
	if size == 0 {
		size = render.DefaultAtlasSize
	}
	at, err := atlas.New(ctx.Device, size, "Sprite Atlas")
	if err != nil {
		return nil, err
	}
	buf, err := render.NewInstanceBuffer(ctx, "Sprite", at.Texture())
	if err != nil {
		at.Destroy()
		return nil, err
	}
	return &Drawable{
		fsys:      fsys,
		atlas:     at,
		images:    make(map[string]texels),
		regions:   make(map[string]atlas.Region),
		instances: buf,
	}, nil
}

// Kind implements render.Drawable.
func (d *Drawable) Kind() render.Kind { return render.KindSprite }

// SurfaceChanged implements render.Drawable.
func (d *Drawable) SurfaceChanged(ctx *render.Context) error {
	return d.pipeline.Rebuild(ctx, render.KindSprite, d.instances.Layout())
}

// Draw implements render.Drawable.
func (d *Drawable) Draw(pass *render.Pass, layer *scene.Layer) error {
	if !d.pipeline.Ready() {
		return render.ErrNoPipeline
	}
	var err error
	d.scratch, err = d.AppendInstances(d.scratch[:0], layer)
	if errors.Is(err, atlas.ErrFull) {
		// Start over with an empty atlas holding only this layer's images.
		pass.Context.Log().Warn("sprite: atlas full, resetting", "images", len(d.regions))
		d.atlas.Reset()
		clear(d.regions)
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
	pass.Context.Log().Debug("sprite: draw", "instances", n)
	return nil
}

// AppendInstances appends one instance per layer sprite to dst, loading
// images that are not in the atlas yet.
func (d *Drawable) AppendInstances(dst []byte, layer *scene.Layer) ([]byte, error) {
	for _, s := range layer.Sprites {
		r, err := d.Region(s.Texture)
		if err != nil {
			return dst, err
		}
		dst = shaders.TexturedInstance{
			Position: [2]float32{s.TopLeft.X, s.TopLeft.Y},
			Size:     [2]float32{s.Size.X, s.Size.Y},
			UVPos:    [2]float32{float32(r.X), float32(r.Y)},
			UVSize:   [2]float32{float32(r.Width), float32(r.Height)},
			Color:    s.Color.Array(),
		}.Append(dst)
	}
	return dst, nil
}

// Region returns the atlas region of a texture, loading it from the file
// system on first use. An image that no longer fits is reported with an
// error wrapping atlas.ErrFull.
func (d *Drawable) Region(name string) (atlas.Region, error) {
	if r, ok := d.regions[name]; ok {
		return r, nil
	}
	if _, ok := d.images[name]; ok {
		return d.pack(name)
	}
	if d.fsys == nil {
		return atlas.Region{}, fmt.Errorf("%w: %q", ErrUnknownTexture, name)
	}
	f, err := d.fsys.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return atlas.Region{}, fmt.Errorf("%w: %q", ErrUnknownTexture, name)
	}
	if err != nil {
		return atlas.Region{}, fmt.Errorf("sprite: open %q: %w", name, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return atlas.Region{}, fmt.Errorf("sprite: decode %q: %w", name, err)
	}
	if err := d.Add(name, img); err != nil {
		return atlas.Region{}, err
	}
	return d.regions[name], nil
}

// Add packs img into the atlas under name. Adding a name that is already
// known is a no-op. Images larger than the atlas are scaled down to fit.
//
// The texels are kept after packing. When the atlas is full Add returns an
// error wrapping atlas.ErrFull, and the image is packed again once Draw
// resets the atlas for a layer that uses it.
func (d *Drawable) Add(name string, img image.Image) error {
	if _, ok := d.images[name]; ok {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("sprite: %q is empty", name)
	}
	if limit := d.atlas.Size() - atlas.Padding; w > limit || h > limit {
		scale := float64(limit) / float64(max(w, h))
		w = max(1, int(float64(w)*scale))
		h = max(1, int(float64(h)*scale))
		img = transform.Resize(img, w, h, transform.Linear)
	}
	d.images[name] = texels{width: w, height: h, rgba: straightRGBA(clone.AsRGBA(img))}
	_, err := d.pack(name)
	return err
}

// texels is a decoded image ready for upload.
type texels struct {
	width, height int
	rgba          []byte
}

func (d *Drawable) pack(name string) (atlas.Region, error) {
	t := d.images[name]
	r, err := d.atlas.Add(t.width, t.height, t.rgba)
	if err != nil {
		return atlas.Region{}, fmt.Errorf("sprite: pack %q: %w", name, err)
	}
	d.regions[name] = r
	return r, nil
}

// straightRGBA returns the tightly packed, non-premultiplied texels of img.
func straightRGBA(img *image.RGBA) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):][:b.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			r, g, bl, a := row[i], row[i+1], row[i+2], row[i+3]
			if a != 0 && a != 0xff {
				r = unpremul(r, a)
				g = unpremul(g, a)
				bl = unpremul(bl, a)
			}
			out = append(out, r, g, bl, a)
		}
	}
	return out
}

func unpremul(c, a uint8) uint8 {
	return uint8(min(255, (int(c)*255+int(a)/2)/int(a)))
}

// Texture returns the atlas texture.
func (d *Drawable) Texture() gpucore.TextureID { return d.atlas.Texture() }

// Loaded returns the number of images currently packed in the atlas.
func (d *Drawable) Loaded() int { return len(d.regions) }

// Destroy implements render.Drawable.
func (d *Drawable) Destroy() {
	d.pipeline.Destroy()
	d.instances.Destroy()
	d.atlas.Destroy()
}
