// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "errors"

var (
	// ErrCapacityExceeded is returned by Draw when a batch needs more
	// instances than the largest storage buffer the device can bind.
	ErrCapacityExceeded = errors.New("render: instance capacity exceeded")

	// ErrDuplicateKind is returned when two drawables of one kind are registered.
	ErrDuplicateKind = errors.New("render: duplicate drawable kind")

	// ErrNoPipeline is returned by Draw before SurfaceChanged has succeeded.
	ErrNoPipeline = errors.New("render: pipeline not built")
)
