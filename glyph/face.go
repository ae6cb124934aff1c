package glyph

import (
	"bytes"
	"fmt"
	"image"

	"github.com/chewxy/math32"
	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"golang.org/x/text/unicode/norm"
)

// Face is a parsed font, shaped with HarfBuzz and rasterized from its
// sfnt outlines. It is not safe for concurrent use.
type Face struct {
	outlines *sfnt.Font
	shaping  *font.Face
	shaper   shaping.HarfbuzzShaper
	buf      sfnt.Buffer
}

// ParseFace parses TrueType or OpenType data.
func ParseFace(data []byte) (*Face, error) {
	outlines, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("glyph: parse outlines: %w", err)
	}
	f, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("glyph: parse font: %w", err)
	}
	return &Face{outlines: outlines, shaping: f}, nil
}

// Positioned is a shaped glyph. X and Y are the pen position relative to
// the run origin on the baseline, in pixels with y pointing down.
type Positioned struct {
	ID   uint16
	X, Y float32
}

// Shape converts text into positioned glyphs at the given pixel size.
// The text is normalized to NFC first.
func (f *Face) Shape(text string, size float32) []Positioned {
	if text == "" || size <= 0 {
		return nil
	}
	runes := []rune(norm.NFC.String(text))
	out := f.shaper.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      f.shaping,
		Size:      fixed.Int26_6(size * 64),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	})

	glyphs := make([]Positioned, 0, len(out.Glyphs))
	var pen float32
	for _, g := range out.Glyphs {
		glyphs = append(glyphs, Positioned{
			ID: uint16(g.GlyphID), //nolint:gosec // sfnt glyph indices are 16-bit
			X:  pen + fromFixed(g.XOffset),
			Y:  -fromFixed(g.YOffset),
		})
		pen += fromFixed(g.Advance)
	}
	return glyphs
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func fromFixed(v fixed.Int26_6) float32 { return float32(v) / 64 }

// Mask is the coverage of one rasterized glyph.
type Mask struct {
	// Left and Top offset the mask from the whole-pixel pen position.
	Left, Top int
	Alpha     *image.Alpha
}

// Empty reports whether the glyph has no visible pixels.
func (m Mask) Empty() bool { return m.Alpha == nil }

// Rasterize renders glyph id at the given pixel size, shifted right by
// offset (a fraction of a pixel in [0, 1)).
func (f *Face) Rasterize(id uint16, size, offset float32) (Mask, error) {
	segs, err := f.outlines.LoadGlyph(&f.buf, sfnt.GlyphIndex(id), fixed.Int26_6(size*64), nil)
	if err != nil {
		return Mask{}, fmt.Errorf("glyph: load glyph %d: %w", id, err)
	}
	if len(segs) == 0 {
		return Mask{}, nil
	}
	b := segs.Bounds()
	minX := int(math32.Floor(fromFixed(b.Min.X) + offset))
	minY := int(math32.Floor(fromFixed(b.Min.Y)))
	maxX := int(math32.Ceil(fromFixed(b.Max.X) + offset))
	maxY := int(math32.Ceil(fromFixed(b.Max.Y)))
	w, h := maxX-minX, maxY-minY
	if w <= 0 || h <= 0 {
		return Mask{}, nil
	}

	dx, dy := offset-float32(minX), -float32(minY)
	pt := func(p fixed.Point26_6) (float32, float32) {
		return fromFixed(p.X) + dx, fromFixed(p.Y) + dy
	}
	z := vector.NewRasterizer(w, h)
	for i, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			if i > 0 {
				z.ClosePath()
			}
			z.MoveTo(pt(s.Args[0]))
		case sfnt.SegmentOpLineTo:
			z.LineTo(pt(s.Args[0]))
		case sfnt.SegmentOpQuadTo:
			bx, by := pt(s.Args[0])
			cx, cy := pt(s.Args[1])
			z.QuadTo(bx, by, cx, cy)
		case sfnt.SegmentOpCubeTo:
			bx, by := pt(s.Args[0])
			cx, cy := pt(s.Args[1])
			ex, ey := pt(s.Args[2])
			z.CubeTo(bx, by, cx, cy, ex, ey)
		}
	}
	z.ClosePath()
	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return Mask{Left: minX, Top: minY, Alpha: dst}, nil
}
