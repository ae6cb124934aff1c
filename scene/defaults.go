package scene

// DefaultFontName returns the font a layer uses when none is given.
func DefaultFontName() string { return "Courier New" }

// DefaultFontSize returns the font size in pixels a layer uses when none is given.
func DefaultFontSize() float32 { return 16 }

// DefaultBackground returns the color painted behind a layer that does not
// set one.
func DefaultBackground() Color { return White }

// DefaultSubpixel reports whether text is positioned at subpixel precision
// unless asked otherwise.
func DefaultSubpixel() bool { return true }
