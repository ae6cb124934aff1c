package glyph

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// ErrFontNotFound is returned by a FontSource that has no font for a name.
var ErrFontNotFound = errors.New("glyph: font not found")

// Style selects the weight and slant of a font.
type Style uint8

// Font styles.
const (
	StyleRegular Style = iota
	StyleBold
	StyleItalic
	StyleBoldItalic
)

// StyleOf returns the style of a text run.
func StyleOf(bold, italic bool) Style {
	switch {
	case bold && italic:
		return StyleBoldItalic
	case bold:
		return StyleBold
	case italic:
		return StyleItalic
	default:
		return StyleRegular
	}
}

// String returns the style name.
func (s Style) String() string {
	switch s {
	case StyleRegular:
		return "regular"
	case StyleBold:
		return "bold"
	case StyleItalic:
		return "italic"
	case StyleBoldItalic:
		return "bold italic"
	default:
		return fmt.Sprintf("Style(%d)", uint8(s))
	}
}

// FontSource resolves a font family name and style to TrueType or
// OpenType data. Implementations must be safe for concurrent use.
type FontSource interface {
	Font(name string, style Style) ([]byte, error)
}

type goFonts struct{}

// DefaultFonts returns the Go font family source. It never fails.
func DefaultFonts() FontSource { return goFonts{} }

func (goFonts) Font(name string, style Style) ([]byte, error) {
	if isMonospace(name) {
		return [...][]byte{gomono.TTF, gomonobold.TTF, gomonoitalic.TTF, gomonobolditalic.TTF}[style&3], nil
	}
	return [...][]byte{goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF}[style&3], nil
}

func isMonospace(name string) bool {
	n := strings.ToLower(name)
	return n == "courier new" || strings.Contains(n, "mono") || strings.Contains(n, "courier")
}

type fontKey struct {
	name  string
	style Style
}

// Fonts is a FontSource with registered fonts. Names without a
// registration fall back to another source.
type Fonts struct {
	mu       sync.RWMutex
	fonts    map[fontKey][]byte
	fallback FontSource
}

// NewFonts returns an empty registry falling back to fallback. A nil
// fallback makes unregistered names fail with ErrFontNotFound.
func NewFonts(fallback FontSource) *Fonts {
	return &Fonts{fonts: make(map[fontKey][]byte), fallback: fallback}
}

// Register adds font data for a family name and style. Names are
// matched case-insensitively.
func (f *Fonts) Register(name string, style Style, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fonts[fontKey{strings.ToLower(name), style}] = data
}

// Font implements FontSource. A registered regular face serves styles
// that have no registration of their own.
func (f *Fonts) Font(name string, style Style) ([]byte, error) {
	n := strings.ToLower(name)
	f.mu.RLock()
	data, ok := f.fonts[fontKey{n, style}]
	if !ok {
		data, ok = f.fonts[fontKey{n, StyleRegular}]
	}
	f.mu.RUnlock()
	if ok {
		return data, nil
	}
	if f.fallback != nil {
		return f.fallback.Font(name, style)
	}
	return nil, fmt.Errorf("%w: %q %s", ErrFontNotFound, name, style)
}
