// Package atlas packs small images into one GPU texture.
package atlas

import (
	"errors"
	"fmt"

	"github.com/gogpu/bedrock/gpucore"
)

var (
	// ErrFull is returned when the atlas cannot fit the requested image.
	ErrFull = errors.New("atlas: texture atlas is full")

	// ErrSizeMismatch is returned when pixel data does not match the image size.
	ErrSizeMismatch = errors.New("atlas: pixel data does not match image size")
)

// Padding is the spacing between packed images. It keeps linear filtering
// from bleeding neighbours into a region.
const Padding = 1

// Atlas is a square RGBA8 texture with a shelf allocator.
// It is not safe for concurrent use.
type Atlas struct {
	device  gpucore.Device
	texture gpucore.TextureID
	size    int
	alloc   *Allocator
}

// New creates a size x size atlas texture.
func New(device gpucore.Device, size uint32, label string) (*Atlas, error) {
	if size == 0 {
		return nil, fmt.Errorf("atlas: zero size")
	}
	if limit := device.Capabilities().MaxTextureDimension2D; limit != 0 && size > limit {
		size = limit
	}
	tex, err := device.CreateTexture(&gpucore.TextureDesc{
		Label:  label,
		Width:  size,
		Height: size,
		Format: gpucore.TextureFormatRGBA8Unorm,
		Usage:  gpucore.TextureUsageTextureBinding | gpucore.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("atlas: create texture: %w", err)
	}
	return &Atlas{
		device:  device,
		texture: tex,
		size:    int(size),
		alloc:   NewAllocator(int(size), int(size), Padding),
	}, nil
}

// Texture returns the atlas texture.
func (a *Atlas) Texture() gpucore.TextureID { return a.texture }

// Size returns the edge length in texels.
func (a *Atlas) Size() int { return a.size }

// Allocator returns the region allocator.
func (a *Atlas) Allocator() *Allocator { return a.alloc }

// Add packs a width x height image of tightly packed RGBA8 texels and
// uploads it.
func (a *Atlas) Add(width, height int, rgba []byte) (Region, error) {
	if len(rgba) != width*height*4 {
		return Region{}, fmt.Errorf("%w: %d bytes for %dx%d", ErrSizeMismatch, len(rgba), width, height)
	}
	r := a.alloc.Allocate(width, height)
	if !r.IsValid() {
		return Region{}, fmt.Errorf("%w: no room for %dx%d", ErrFull, width, height)
	}
	err := a.device.WriteTexture(a.texture, gpucore.Region{
		X:      uint32(r.X),
		Y:      uint32(r.Y),
		Width:  uint32(r.Width),
		Height: uint32(r.Height),
	}, rgba)
	if err != nil {
		return Region{}, fmt.Errorf("atlas: upload %v: %w", r, err)
	}
	return r, nil
}

// Reset forgets every packed image. The texture contents are left as is.
func (a *Atlas) Reset() { a.alloc.Reset() }

// Destroy releases the texture.
func (a *Atlas) Destroy() {
	if a.texture != gpucore.InvalidID {
		a.device.DestroyTexture(a.texture)
		a.texture = gpucore.InvalidID
	}
}
