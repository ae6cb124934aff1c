// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/bedrock/gpucore"
	"github.com/gogpu/bedrock/shaders"
)

// InstanceBuffer owns a drawable's instance storage buffer, its local bind
// group layout and the bind group binding them. The buffer grows by
// doubling when a batch does not fit, up to the device storage limit.
type InstanceBuffer struct {
	device gpucore.Device
	label  string

	// texture is bound at binding 1 when set.
	texture gpucore.TextureID

	layout   gpucore.BindGroupLayoutID
	buffer   gpucore.BufferID
	group    gpucore.BindGroupID
	capacity int
	limit    int
}

// NewInstanceBuffer allocates a buffer for the context capacity. A nonzero
// texture adds a sampled atlas texture to the local group.
func NewInstanceBuffer(ctx *Context, label string, texture gpucore.TextureID) (*InstanceBuffer, error) {
	b := &InstanceBuffer{
		device:  ctx.Device,
		label:   label,
		texture: texture,
		limit:   maxInstances(ctx.Device.Capabilities()),
	}

	entries := []gpucore.BindGroupLayoutEntry{{
		Binding:        0,
		Type:           gpucore.BindingTypeReadOnlyStorageBuffer,
		Visibility:     gpucore.ShaderStageAll,
		MinBindingSize: shaders.InstanceSize,
	}}
	if texture != gpucore.InvalidID {
		entries = append(entries, gpucore.BindGroupLayoutEntry{
			Binding:    1,
			Type:       gpucore.BindingTypeSampledTexture,
			Visibility: gpucore.ShaderStageFragment,
		})
	}
	layout, err := b.device.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{
		Label:   label + " Bind Group Layout",
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("render: %s layout: %w", label, err)
	}
	b.layout = layout

	capacity := ctx.capacity()
	if b.limit > 0 && capacity > b.limit {
		capacity = b.limit
	}
	if err := b.allocate(capacity); err != nil {
		b.device.DestroyBindGroupLayout(layout)
		return nil, err
	}
	return b, nil
}

func maxInstances(caps gpucore.Capabilities) int {
	limit := caps.StorageLimit()
	if limit == 0 {
		return 0
	}
	return int(limit / shaders.InstanceSize)
}

// allocate replaces the buffer and bind group with ones holding capacity instances.
func (b *InstanceBuffer) allocate(capacity int) error {
	buf, err := b.device.CreateBuffer(uint64(capacity)*shaders.InstanceSize,
		gpucore.BufferUsageStorage|gpucore.BufferUsageCopyDst, b.label+" Instance Buffer")
	if err != nil {
		return fmt.Errorf("render: %s buffer: %w", b.label, err)
	}
	entries := []gpucore.BindGroupEntry{{Binding: 0, Buffer: buf}}
	if b.texture != gpucore.InvalidID {
		entries = append(entries, gpucore.BindGroupEntry{Binding: 1, Texture: b.texture})
	}
	group, err := b.device.CreateBindGroup(&gpucore.BindGroupDesc{
		Label:   b.label + " Bind Group",
		Layout:  b.layout,
		Entries: entries,
	})
	if err != nil {
		b.device.DestroyBuffer(buf)
		return fmt.Errorf("render: %s bind group: %w", b.label, err)
	}

	b.release()
	b.buffer, b.group, b.capacity = buf, group, capacity
	return nil
}

// Layout returns the local bind group layout.
func (b *InstanceBuffer) Layout() gpucore.BindGroupLayoutID { return b.layout }

// BindGroup returns the local bind group. It changes when the buffer grows.
func (b *InstanceBuffer) BindGroup() gpucore.BindGroupID { return b.group }

// Buffer returns the storage buffer.
func (b *InstanceBuffer) Buffer() gpucore.BufferID { return b.buffer }

// Capacity returns the number of instances the buffer holds.
func (b *InstanceBuffer) Capacity() int { return b.capacity }

// Upload writes encoded instances from offset 0 and returns their count.
func (b *InstanceBuffer) Upload(data []byte) (uint32, error) {
	if len(data)%shaders.InstanceSize != 0 {
		return 0, fmt.Errorf("render: %s: %d bytes is not a whole number of instances", b.label, len(data))
	}
	n := len(data) / shaders.InstanceSize
	if n > b.capacity {
		if err := b.grow(n); err != nil {
			return 0, err
		}
	}
	if n == 0 {
		return 0, nil
	}
	if err := b.device.WriteBuffer(b.buffer, 0, data); err != nil {
		return 0, fmt.Errorf("render: %s upload: %w", b.label, err)
	}
	return uint32(n), nil
}

func (b *InstanceBuffer) grow(n int) error {
	if b.limit > 0 && n > b.limit {
		return fmt.Errorf("%w: %s needs %d instances, device limit is %d", ErrCapacityExceeded, b.label, n, b.limit)
	}
	capacity := max(b.capacity, 1)
	for capacity < n {
		capacity *= 2
	}
	if b.limit > 0 && capacity > b.limit {
		capacity = b.limit
	}
	return b.allocate(capacity)
}

func (b *InstanceBuffer) release() {
	if b.group != gpucore.InvalidID {
		b.device.DestroyBindGroup(b.group)
		b.group = gpucore.InvalidID
	}
	if b.buffer != gpucore.InvalidID {
		b.device.DestroyBuffer(b.buffer)
		b.buffer = gpucore.InvalidID
	}
}

// Destroy releases the buffer, bind group and layout.
func (b *InstanceBuffer) Destroy() {
	b.release()
	if b.layout != gpucore.InvalidID {
		b.device.DestroyBindGroupLayout(b.layout)
		b.layout = gpucore.InvalidID
	}
}
