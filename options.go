package bedrock

import (
	"io/fs"
	"log/slog"

	"github.com/gogpu/bedrock/glyph"
	"github.com/gogpu/bedrock/gpucore"
	"github.com/gogpu/bedrock/path"
	"github.com/gogpu/bedrock/quad"
	"github.com/gogpu/bedrock/render"
	"github.com/gogpu/bedrock/shaders"
	"github.com/gogpu/bedrock/sprite"
)

// Option configures a Renderer during creation.
//
// Example:
//
//	// Defaults: sRGB views, 100000 instances per kind, 2048px atlases
//	r, err := bedrock.New(dev)
//
//	// Linear surface with a smaller initial instance buffer
//	r, err := bedrock.New(dev, bedrock.WithSRGB(false), bedrock.WithInstanceCapacity(1024))
type Option func(*options)

type options struct {
	srgb           bool
	capacity       int
	atlasSize      uint32
	presentMode    gpucore.PresentMode
	hasPresentMode bool
	program        *shaders.Program
	factories      []render.Factory
	logger         *slog.Logger
	fonts          glyph.FontSource
	sprites        fs.FS
}

func defaultOptions() options {
	return options{
		srgb:      true,
		capacity:  render.DefaultCapacity,
		atlasSize: render.DefaultAtlasSize,
	}
}

// WithSRGB selects the surface sRGB policy. Enabled (the default) adds the
// sRGB variant of the surface format as a view format; disabled strips the
// sRGB suffix from the surface format.
func WithSRGB(enabled bool) Option {
	return func(o *options) {
		o.srgb = enabled
	}
}

// WithInstanceCapacity sets the initial instance capacity of each drawable.
// Buffers still grow on demand up to the device limit.
func WithInstanceCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithAtlasSize sets the edge length of the glyph and sprite atlases.
func WithAtlasSize(n uint32) Option {
	return func(o *options) {
		if n > 0 {
			o.atlasSize = n
		}
	}
}

// WithPresentMode overrides the present mode the device prefers.
func WithPresentMode(mode gpucore.PresentMode) Option {
	return func(o *options) {
		o.presentMode = mode
		o.hasPresentMode = true
	}
}

// WithProgram replaces the built-in shader program, for example with a
// binary loaded by shaders.Load.
func WithProgram(p *shaders.Program) Option {
	return func(o *options) {
		o.program = p
	}
}

// WithDrawables replaces the default drawable set. Each kind may appear
// at most once; the renderer orders them by kind.
func WithDrawables(factories ...render.Factory) Option {
	return func(o *options) {
		o.factories = factories
	}
}

// WithLogger sets the renderer logger. Without it the renderer uses the
// package logger (see SetLogger).
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithFonts sets the font source of the default text drawable.
func WithFonts(src glyph.FontSource) Option {
	return func(o *options) {
		o.fonts = src
	}
}

// WithSprites sets the file system the default sprite drawable resolves
// texture identifiers from.
func WithSprites(fsys fs.FS) Option {
	return func(o *options) {
		o.sprites = fsys
	}
}

// drawables returns the configured factories, or one of each kind.
func (o *options) drawables() []render.Factory {
	if o.factories != nil {
		return o.factories
	}
	fonts := o.fonts
	if fonts == nil {
		fonts = glyph.DefaultFonts()
	}
	return []render.Factory{
		quad.New,
		glyph.NewFactory(fonts),
		path.New,
		sprite.NewFactory(o.sprites),
	}
}
