// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/bedrock/backend/software"
	"github.com/gogpu/bedrock/gpucore"
	"github.com/gogpu/bedrock/render"
)

func newTestManager(t *testing.T, opts ...Option) (*Manager, *software.Device) {
	t.Helper()
	dev := software.New()
	sampler, err := dev.CreateSampler(&gpucore.SamplerDesc{Label: "Sampler"})
	if err != nil {
		t.Fatal(err)
	}
	layout, err := dev.CreateBindGroupLayout(render.UniversalLayoutDesc())
	if err != nil {
		t.Fatal(err)
	}
	return NewManager(dev, sampler, layout, opts...), dev
}

func TestManagerStartsUninitialized(t *testing.T) {
	m, _ := newTestManager(t)
	if m.State() != StateUninitialized || m.Ready() {
		t.Fatalf("State() = %v, want uninitialized", m.State())
	}
	changed, err := m.HandleResized(10, 10)
	if changed || err != nil {
		t.Errorf("HandleResized before resume = %v, %v; want false, nil", changed, err)
	}

	accessors := map[string]func(){
		"Backdrop":           func() { m.Backdrop() },
		"Multisampled":       func() { m.Multisampled() },
		"UniversalBindGroup": func() { m.UniversalBindGroup() },
		"Format":             func() { m.Format() },
		"AcquireFrame":       func() { _, _ = m.AcquireFrame() },
	}
	for name, fn := range accessors {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if r := recover(); r != ErrNotReady {
					t.Errorf("%s panic = %v, want ErrNotReady", name, r)
				}
			}()
			fn()
		})
	}
}

func TestHandleResumed(t *testing.T) {
	m, dev := newTestManager(t)
	changed, err := m.HandleResumed(software.NewWindow(800, 600), 800, 600)
	if err != nil || !changed {
		t.Fatalf("HandleResumed() = %v, %v", changed, err)
	}
	if m.State() != StateReady {
		t.Fatalf("State() = %v, want ready", m.State())
	}

	cfg := m.Config()
	want := gpucore.SurfaceConfig{
		Format:      software.DefaultSurfaceFormat,
		Width:       800,
		Height:      600,
		Usage:       gpucore.TextureUsageRenderAttachment | gpucore.TextureUsageCopySrc,
		PresentMode: gpucore.PresentModeFifo,
		ViewFormats: []gpucore.TextureFormat{gpucore.TextureFormatRGBA8UnormSRGB},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Config() mismatch (-want +got):\n%s", diff)
	}

	backdrop, ok := dev.TextureDesc(m.Backdrop())
	if !ok || backdrop.Label != BackdropLabel || backdrop.SampleCount != 1 {
		t.Errorf("backdrop = %+v", backdrop)
	}
	if backdrop.Usage != gpucore.TextureUsageTextureBinding|gpucore.TextureUsageCopyDst|gpucore.TextureUsageRenderAttachment {
		t.Errorf("backdrop usage = %b", backdrop.Usage)
	}
	ms, ok := dev.TextureDesc(m.Multisampled())
	if !ok || ms.SampleCount != gpucore.SampleCount || ms.Format != cfg.Format {
		t.Errorf("multisampled = %+v", ms)
	}
}

func TestResumedClampsSize(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.HandleResumed(software.NewWindow(0, 0), 0, -3); err != nil {
		t.Fatal(err)
	}
	if w, h := m.Size(); w != 1 || h != 1 {
		t.Errorf("Size() = %dx%d, want 1x1", w, h)
	}
}

func TestResumedRejectsUnknownTarget(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.HandleResumed(struct{}{}, 10, 10); !errors.Is(err, gpucore.ErrUnsupportedTarget) {
		t.Fatalf("HandleResumed() error = %v, want ErrUnsupportedTarget", err)
	}
	if m.Ready() {
		t.Error("manager ready after failed resume")
	}
}

func TestSRGBPolicy(t *testing.T) {
	tests := []struct {
		name   string
		srgb   bool
		in     gpucore.TextureFormat
		format gpucore.TextureFormat
		views  []gpucore.TextureFormat
	}{
		{"on linear", true, gpucore.TextureFormatBGRA8Unorm, gpucore.TextureFormatBGRA8Unorm, []gpucore.TextureFormat{gpucore.TextureFormatBGRA8UnormSRGB}},
		{"on srgb", true, gpucore.TextureFormatRGBA8UnormSRGB, gpucore.TextureFormatRGBA8UnormSRGB, []gpucore.TextureFormat{gpucore.TextureFormatRGBA8UnormSRGB}},
		{"off srgb", false, gpucore.TextureFormatBGRA8UnormSRGB, gpucore.TextureFormatBGRA8Unorm, []gpucore.TextureFormat{gpucore.TextureFormatBGRA8Unorm}},
		{"off linear", false, gpucore.TextureFormatRGBA8Unorm, gpucore.TextureFormatRGBA8Unorm, []gpucore.TextureFormat{gpucore.TextureFormatRGBA8Unorm}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applySRGBPolicy(gpucore.SurfaceConfig{Format: tt.in}, tt.srgb)
			if got.Format != tt.format {
				t.Errorf("Format = %v, want %v", got.Format, tt.format)
			}
			if diff := cmp.Diff(tt.views, got.ViewFormats); diff != "" {
				t.Errorf("ViewFormats mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWithPresentMode(t *testing.T) {
	m, _ := newTestManager(t, WithPresentMode(gpucore.PresentModeMailbox), WithSRGB(false))
	if _, err := m.HandleResumed(software.NewWindow(4, 4), 4, 4); err != nil {
		t.Fatal(err)
	}
	cfg := m.Config()
	if cfg.PresentMode != gpucore.PresentModeMailbox {
		t.Errorf("PresentMode = %v, want mailbox", cfg.PresentMode)
	}
	if cfg.Format.IsSRGB() {
		t.Errorf("Format = %v, want linear with sRGB disabled", cfg.Format)
	}
}

func TestHandleResizedClampsAndRecreates(t *testing.T) {
	m, dev := newTestManager(t)
	if _, err := m.HandleResumed(software.NewWindow(800, 600), 800, 600); err != nil {
		t.Fatal(err)
	}
	old := [3]uint64{uint64(m.Backdrop()), uint64(m.Multisampled()), uint64(m.UniversalBindGroup())}
	created := dev.Stats().TexturesCreated

	changed, err := m.HandleResized(0, 0)
	if err != nil || !changed {
		t.Fatalf("HandleResized(0, 0) = %v, %v", changed, err)
	}
	if w, h := m.Size(); w != 1 || h != 1 {
		t.Errorf("Size() = %dx%d, want 1x1", w, h)
	}
	now := [3]uint64{uint64(m.Backdrop()), uint64(m.Multisampled()), uint64(m.UniversalBindGroup())}
	for i := range now {
		if now[i] == old[i] {
			t.Errorf("auxiliary resource %d was not recreated", i)
		}
	}
	if got := dev.Stats().TexturesCreated - created; got != 2 {
		t.Errorf("resize created %d textures, want 2", got)
	}
	for _, id := range []gpucore.TextureID{m.Backdrop(), m.Multisampled()} {
		desc, _ := dev.TextureDesc(id)
		if desc.Width != 1 || desc.Height != 1 {
			t.Errorf("texture %q is %dx%d, want 1x1", desc.Label, desc.Width, desc.Height)
		}
	}
	if _, ok := dev.TextureDesc(gpucore.TextureID(old[0])); ok {
		t.Error("old backdrop texture still alive")
	}
}

func TestHandleResizedFailureKeepsState(t *testing.T) {
	m, dev := newTestManager(t)
	if _, err := m.HandleResumed(software.NewWindow(800, 600), 800, 600); err != nil {
		t.Fatal(err)
	}
	backdrop := m.Backdrop()
	configures := dev.Stats().Configures

	// Larger than the device's texture limit.
	changed, err := m.HandleResized(9000, 600)
	if err == nil || changed {
		t.Fatalf("HandleResized(9000, 600) = %v, %v; want an error", changed, err)
	}
	if w, h := m.Size(); w != 800 || h != 600 {
		t.Errorf("Size() = %dx%d, want 800x600", w, h)
	}
	if m.Backdrop() != backdrop {
		t.Error("backdrop texture replaced by a failed resize")
	}
	if _, ok := dev.TextureDesc(backdrop); !ok {
		t.Error("backdrop texture destroyed by a failed resize")
	}
	if got := dev.Stats().Configures; got != configures {
		t.Errorf("Configures = %d, want %d", got, configures)
	}
}

func TestHandleResizedLogsAtInfo(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	m, _ := newTestManager(t, WithLogger(log))
	if _, err := m.HandleResumed(software.NewWindow(8, 8), 8, 8); err != nil {
		t.Fatal(err)
	}
	if _, err := m.HandleResized(16, 4); err != nil {
		t.Fatal(err)
	}
	if want := `level=INFO msg="surface: resized" width=16 height=4`; !strings.Contains(buf.String(), want) {
		t.Errorf("log = %q, want it to contain %q", buf.String(), want)
	}
}

func TestAcquireRetriesTimeoutOnce(t *testing.T) {
	m, dev := newTestManager(t)
	win := software.NewWindow(64, 64)
	if _, err := m.HandleResumed(win, 64, 64); err != nil {
		t.Fatal(err)
	}
	backdrop := m.Backdrop()
	configures := dev.Stats().Configures

	win.FailNext(gpucore.ErrSurfaceTimeout)
	frame, err := m.AcquireFrame()
	if err != nil {
		t.Fatalf("AcquireFrame() error = %v", err)
	}
	if frame == nil || win.Acquires() != 2 {
		t.Errorf("acquires = %d, want 2", win.Acquires())
	}
	if m.Backdrop() != backdrop || dev.Stats().Configures != configures {
		t.Error("timeout triggered resource recreation")
	}
}

func TestAcquireTimeoutTwiceFails(t *testing.T) {
	m, _ := newTestManager(t)
	win := software.NewWindow(64, 64)
	if _, err := m.HandleResumed(win, 64, 64); err != nil {
		t.Fatal(err)
	}
	win.FailNext(gpucore.ErrSurfaceTimeout, gpucore.ErrSurfaceTimeout)
	if _, err := m.AcquireFrame(); !errors.Is(err, gpucore.ErrSurfaceTimeout) {
		t.Errorf("AcquireFrame() error = %v, want timeout", err)
	}
	if win.Acquires() != 2 {
		t.Errorf("acquires = %d, want 2", win.Acquires())
	}
}

func TestAcquireRecoversOutdated(t *testing.T) {
	for _, cause := range []error{gpucore.ErrSurfaceOutdated, gpucore.ErrSurfaceLost, gpucore.ErrSurfaceOutOfMemory} {
		t.Run(cause.Error(), func(t *testing.T) {
			m, dev := newTestManager(t)
			win := software.NewWindow(64, 64)
			if _, err := m.HandleResumed(win, 64, 64); err != nil {
				t.Fatal(err)
			}
			backdrop := m.Backdrop()
			before := dev.Stats()

			win.FailNext(cause)
			frame, err := m.AcquireFrame()
			if err != nil {
				t.Fatalf("AcquireFrame() error = %v", err)
			}
			after := dev.Stats()
			if got := after.Configures - before.Configures; got != 1 {
				t.Errorf("reconfigured %d times, want 1", got)
			}
			if got := after.TexturesCreated - before.TexturesCreated; got != 2 {
				t.Errorf("created %d textures, want 2", got)
			}
			if m.Backdrop() == backdrop {
				t.Error("backdrop was not recreated")
			}
			if win.Acquires() != 2 {
				t.Errorf("acquires = %d, want exactly one retry", win.Acquires())
			}
			if frame.Width != 64 {
				t.Errorf("frame width = %d", frame.Width)
			}
		})
	}
}

func TestAcquireFatalErrors(t *testing.T) {
	m, _ := newTestManager(t)
	win := software.NewWindow(8, 8)
	if _, err := m.HandleResumed(win, 8, 8); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("device removed")
	win.FailNext(boom)
	if _, err := m.AcquireFrame(); !errors.Is(err, boom) {
		t.Errorf("AcquireFrame() error = %v, want %v", err, boom)
	}
	if win.Acquires() != 1 {
		t.Errorf("unknown error was retried: acquires = %d", win.Acquires())
	}

	win.FailNext(gpucore.ErrSurfaceOutdated, gpucore.ErrSurfaceOutdated)
	if _, err := m.AcquireFrame(); !errors.Is(err, gpucore.ErrSurfaceOutdated) {
		t.Errorf("AcquireFrame() after two outdated = %v", err)
	}
}

func TestDestroyReturnsToUninitialized(t *testing.T) {
	m, dev := newTestManager(t)
	if _, err := m.HandleResumed(software.NewWindow(8, 8), 8, 8); err != nil {
		t.Fatal(err)
	}
	m.Destroy()
	if m.Ready() {
		t.Error("manager ready after Destroy")
	}
	if n := dev.LiveTextures(); n != 0 {
		t.Errorf("%d textures alive after Destroy", n)
	}
}
