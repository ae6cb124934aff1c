package bedrock

// Resumed reports that a window became ready for rendering. Target is the
// backend-specific window handle passed to gpucore.Device.CreateSurface,
// such as a *software.Window or a native.Presenter.
type Resumed struct {
	Target        any
	Width, Height int
}

// Resized reports a new window size in physical pixels.
type Resized struct {
	Width, Height int
}
