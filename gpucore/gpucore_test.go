package gpucore

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCapabilitiesValidate(t *testing.T) {
	full := Capabilities{
		MaxPushConstantSize:   256,
		VertexWritableStorage: true,
		ClearTexture:          true,
		MaxSampleCount:        4,
	}
	if err := full.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	tests := []struct {
		name   string
		mutate func(*Capabilities)
		want   string
	}{
		{"push constants", func(c *Capabilities) { c.MaxPushConstantSize = 128 }, "push constants 128 < 256"},
		{"vertex storage", func(c *Capabilities) { c.VertexWritableStorage = false }, "vertex-stage storage"},
		{"clear", func(c *Capabilities) { c.ClearTexture = false }, "texture clear"},
		{"msaa", func(c *Capabilities) { c.MaxSampleCount = 1 }, "4x multisampling"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := full
			tt.mutate(&c)
			err := c.Validate()
			if !errors.Is(err, ErrMissingCapability) {
				t.Fatalf("Validate() = %v, want ErrMissingCapability", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %q, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestStorageLimit(t *testing.T) {
	tests := []struct {
		caps Capabilities
		want uint64
	}{
		{Capabilities{MaxStorageBufferBindingSize: 128 << 20, MaxBufferSize: 256 << 20}, 128 << 20},
		{Capabilities{MaxStorageBufferBindingSize: 128 << 20, MaxBufferSize: 64 << 20}, 64 << 20},
		{Capabilities{MaxBufferSize: 64 << 20}, 64 << 20},
		{Capabilities{}, 0},
	}
	for _, tt := range tests {
		if got := tt.caps.StorageLimit(); got != tt.want {
			t.Errorf("StorageLimit(%+v) = %d, want %d", tt.caps, got, tt.want)
		}
	}
}

func TestTextureFormatSRGB(t *testing.T) {
	tests := []struct {
		f      TextureFormat
		srgb   bool
		linear TextureFormat
	}{
		{TextureFormatRGBA8Unorm, false, TextureFormatRGBA8Unorm},
		{TextureFormatRGBA8UnormSRGB, true, TextureFormatRGBA8Unorm},
		{TextureFormatBGRA8Unorm, false, TextureFormatBGRA8Unorm},
		{TextureFormatBGRA8UnormSRGB, true, TextureFormatBGRA8Unorm},
	}
	for _, tt := range tests {
		if tt.f.IsSRGB() != tt.srgb {
			t.Errorf("%v.IsSRGB() = %v", tt.f, !tt.srgb)
		}
		if got := tt.f.Linear(); got != tt.linear {
			t.Errorf("%v.Linear() = %v, want %v", tt.f, got, tt.linear)
		}
		if got := tt.f.Linear().SRGB(); !got.IsSRGB() {
			t.Errorf("%v.Linear().SRGB() = %v, want an sRGB format", tt.f, got)
		}
	}
}

func TestIsRecoverableSurfaceError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrSurfaceOutdated, true},
		{fmt.Errorf("acquire: %w", ErrSurfaceLost), true},
		{ErrSurfaceOutOfMemory, true},
		{ErrSurfaceTimeout, false},
		{errors.New("other"), false},
	}
	for _, tt := range tests {
		if got := IsRecoverableSurfaceError(tt.err); got != tt.want {
			t.Errorf("IsRecoverableSurfaceError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestSurfaceConfigClone(t *testing.T) {
	cfg := SurfaceConfig{ViewFormats: []TextureFormat{TextureFormatRGBA8UnormSRGB}}
	c := cfg.Clone()
	c.ViewFormats[0] = TextureFormatBGRA8Unorm
	if cfg.ViewFormats[0] != TextureFormatRGBA8UnormSRGB {
		t.Error("Clone shares ViewFormats with the original")
	}
}
