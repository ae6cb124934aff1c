// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines the contract between the compositor and the
// content-kind renderers it drives.
//
// # Drawables
//
// A Drawable renders one kind of layer content. It is created by a Factory
// before any surface exists, builds its pipeline in SurfaceChanged, and draws
// one instanced batch per layer:
//
//	factory(ctx)            allocate instance buffer and local bind group
//	d.SurfaceChanged(ctx)   (re)build the render pipeline
//	d.Draw(pass, layer)     upload instances, bind, push constants, draw
//
// Kinds draw in a fixed order within a layer: quads, text, paths, sprites.
//
// # Bindings
//
// Every pipeline uses the same three groups:
//
//	group 0   local: instance storage buffer, optional atlas texture
//	group 1   universal: backdrop texture and sampler
//	push      shaders.Constants
//
// InstanceBuffer and Pipeline implement the shared parts so a drawable only
// needs to produce its instance bytes.
package render
