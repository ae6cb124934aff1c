// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface manages the presentable surface of a window and the
// auxiliary render targets sized to it.
//
// A Manager is in one of two states:
//
//	Uninitialized --Resumed--> Ready --Resized--> Ready
//
// In the Ready state it holds the surface, its configuration, and three
// auxiliary resources created and destroyed as a unit:
//
//   - the backdrop texture, a single-sample copy of everything composited so far
//   - the 4x multisampled render target
//   - the universal bind group exposing the backdrop and the shared sampler
//
// Resizing reuses the surface and recreates the auxiliary resources.
// AcquireFrame retries once after a timeout and once after recreating the
// resources for an outdated, lost or out-of-memory surface.
package surface
