package bedrock

import "errors"

var (
	// ErrNotReady is returned by Render before a Resumed event has been handled.
	ErrNotReady = errors.New("bedrock: surface not ready")

	// ErrClosed is returned by operations on a closed Renderer.
	ErrClosed = errors.New("bedrock: renderer closed")

	// ErrNilScene is returned by Render when given a nil scene.
	ErrNilScene = errors.New("bedrock: nil scene")

	// ErrNilLayer is returned by Render when a scene holds a nil layer.
	ErrNilLayer = errors.New("bedrock: nil layer")
)
