// Package glyph draws the text runs of a layer.
//
// Text is normalized to NFC, shaped with go-text/typesetting and drawn
// glyph by glyph from a coverage atlas. Glyph masks are rasterized from
// sfnt outlines with golang.org/x/image/vector the first time a glyph is
// used at a given size and subpixel offset.
//
// Fonts come from a [FontSource]. [DefaultFonts] serves the Go fonts:
// "Courier New" and monospace names map to Go Mono, everything else to
// Go Regular, each in regular, bold, italic and bold italic.
package glyph
