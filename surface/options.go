// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"log/slog"

	"github.com/gogpu/bedrock/gpucore"
)

// Option configures a Manager.
type Option func(*options)

type options struct {
	srgb           bool
	presentMode    gpucore.PresentMode
	hasPresentMode bool
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		srgb:   true,
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithSRGB selects the sRGB policy. When enabled (the default) the sRGB
// variant of the surface format is added as a view format. When disabled
// the surface format is stripped of its sRGB suffix.
func WithSRGB(enabled bool) Option {
	return func(o *options) {
		o.srgb = enabled
	}
}

// WithPresentMode overrides the present mode of the default configuration.
func WithPresentMode(mode gpucore.PresentMode) Option {
	return func(o *options) {
		o.presentMode = mode
		o.hasPresentMode = true
	}
}

// WithLogger sets the logger for lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
