package scene

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Decoding errors.
var (
	// ErrUnknownFormat is returned for a file extension or Format that has no decoder.
	ErrUnknownFormat = errors.New("scene: unknown document format")

	// ErrInvalidDocument wraps every structural problem found while decoding.
	ErrInvalidDocument = errors.New("scene: invalid document")
)

// Format selects the document syntax.
type Format uint8

// Document formats.
const (
	FormatJSON Format = iota
	FormatYAML
	FormatTOML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "unknown"
	}
}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Load reads and decodes the scene document at path.
func Load(path string) (*Scene, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}
	return Parse(data, format)
}

// Decode reads a whole document from r.
func Decode(r io.Reader, format Format) (*Scene, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("scene: read document: %w", err)
	}
	return Parse(data, format)
}

// Parse decodes a scene document. Keys it does not know are ignored.
//
// All three formats share one schema:
//
//	layers:
//	  - clip: [x, y, width, height]        # optional
//	    background_blur_radius: 0          # optional
//	    background_color: [r, g, b, a]     # optional, or "#rrggbb[aa]"
//	    font_name: Courier New             # optional
//	    font_size: 16                      # optional
//	    quads:   [{position, size, color, corner_radius, blur}]
//	    texts:   [{text, bottom_left, size, color, bold, italic, subpixel}]
//	    paths:   [{fill, stroke: [width, color], start, commands}]
//	    sprites: [{top_left, size, color, texture}]
//
// Path commands carry no tag; the variant follows from the keys present:
// {control1, control2, to}, {control, to} or {to}.
func Parse(data []byte, format Format) (*Scene, error) {
	return parse(data, format, false)
}

// ParseStrict is Parse but rejects keys outside the schema.
func ParseStrict(data []byte, format Format) (*Scene, error) {
	return parse(data, format, true)
}

func parse(data []byte, format Format, strict bool) (*Scene, error) {
	var doc document
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if strict {
			dec.DisallowUnknownFields()
		}
		if err = dec.Decode(&doc); errors.Is(err, io.EOF) {
			err = nil
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(strict)
		if err = dec.Decode(&doc); errors.Is(err, io.EOF) {
			err = nil
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data)).EnableUnmarshalerInterface()
		if strict {
			dec.DisallowUnknownFields()
		}
		err = dec.Decode(&doc)
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			keys := make([]string, len(strictErr.Errors))
			for i := range strictErr.Errors {
				keys[i] = strings.Join(strictErr.Errors[i].Key(), ".")
			}
			err = fmt.Errorf("unknown keys %s: %w", strings.Join(keys, ", "), err)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDocument, format, err)
	}
	return doc.scene()
}

type document struct {
	Layers []layerDoc `json:"layers" yaml:"layers" toml:"layers"`
}

type layerDoc struct {
	Clip       *Rect    `json:"clip" yaml:"clip" toml:"clip"`
	BlurRadius float32  `json:"background_blur_radius" yaml:"background_blur_radius" toml:"background_blur_radius"`
	Background *Color   `json:"background_color" yaml:"background_color" toml:"background_color"`
	FontName   *string  `json:"font_name" yaml:"font_name" toml:"font_name"`
	FontSize   *float32 `json:"font_size" yaml:"font_size" toml:"font_size"`

	Quads   []quadDoc   `json:"quads" yaml:"quads" toml:"quads"`
	Texts   []textDoc   `json:"texts" yaml:"texts" toml:"texts"`
	Paths   []pathDoc   `json:"paths" yaml:"paths" toml:"paths"`
	Sprites []spriteDoc `json:"sprites" yaml:"sprites" toml:"sprites"`
}

type quadDoc struct {
	Position     *Vec2   `json:"position" yaml:"position" toml:"position"`
	Size         *Vec2   `json:"size" yaml:"size" toml:"size"`
	Color        *Color  `json:"color" yaml:"color" toml:"color"`
	CornerRadius float32 `json:"corner_radius" yaml:"corner_radius" toml:"corner_radius"`
	Blur         float32 `json:"blur" yaml:"blur" toml:"blur"`
}

type textDoc struct {
	Text       *string  `json:"text" yaml:"text" toml:"text"`
	BottomLeft *Vec2    `json:"bottom_left" yaml:"bottom_left" toml:"bottom_left"`
	Size       *float32 `json:"size" yaml:"size" toml:"size"`
	Color      *Color   `json:"color" yaml:"color" toml:"color"`
	Bold       bool     `json:"bold" yaml:"bold" toml:"bold"`
	Italic     bool     `json:"italic" yaml:"italic" toml:"italic"`
	Subpixel   *bool    `json:"subpixel" yaml:"subpixel" toml:"subpixel"`
}

type pathDoc struct {
	Fill     *Color        `json:"fill" yaml:"fill" toml:"fill"`
	Stroke   *Stroke       `json:"stroke" yaml:"stroke" toml:"stroke"`
	Start    *Vec2         `json:"start" yaml:"start" toml:"start"`
	Commands []PathCommand `json:"commands" yaml:"commands" toml:"commands"`
}

type spriteDoc struct {
	TopLeft *Vec2   `json:"top_left" yaml:"top_left" toml:"top_left"`
	Size    *Vec2   `json:"size" yaml:"size" toml:"size"`
	Color   *Color  `json:"color" yaml:"color" toml:"color"`
	Texture *string `json:"texture" yaml:"texture" toml:"texture"`
}

func (d *document) scene() (*Scene, error) {
	if len(d.Layers) == 0 {
		return New(), nil
	}
	s := &Scene{}
	for i := range d.Layers {
		l, err := d.Layers[i].layer(fmt.Sprintf("layers[%d]", i))
		if err != nil {
			return nil, err
		}
		s.Layers = append(s.Layers, l)
	}
	return s, nil
}

func (d *layerDoc) layer(where string) (*Layer, error) {
	l := NewLayer()
	l.Clip = d.Clip
	l.BlurRadius = d.BlurRadius
	l.Background = d.Background
	if d.FontName != nil {
		l.FontName = *d.FontName
	}
	if d.FontSize != nil {
		l.FontSize = *d.FontSize
	}
	for i, q := range d.Quads {
		at := fmt.Sprintf("%s.quads[%d]", where, i)
		switch {
		case q.Position == nil:
			return nil, missing(at, "position")
		case q.Size == nil:
			return nil, missing(at, "size")
		case q.Color == nil:
			return nil, missing(at, "color")
		}
		l.AddQuad(Quad{Position: *q.Position, Size: *q.Size, Color: *q.Color, CornerRadius: q.CornerRadius, Blur: q.Blur})
	}
	for i, t := range d.Texts {
		at := fmt.Sprintf("%s.texts[%d]", where, i)
		switch {
		case t.Text == nil:
			return nil, missing(at, "text")
		case t.BottomLeft == nil:
			return nil, missing(at, "bottom_left")
		case t.Size == nil:
			return nil, missing(at, "size")
		case t.Color == nil:
			return nil, missing(at, "color")
		}
		text := NewText(*t.Text, *t.BottomLeft, *t.Size, *t.Color)
		text.Bold, text.Italic = t.Bold, t.Italic
		if t.Subpixel != nil {
			text.Subpixel = *t.Subpixel
		}
		l.AddText(text)
	}
	for i, p := range d.Paths {
		at := fmt.Sprintf("%s.paths[%d]", where, i)
		switch {
		case p.Start == nil:
			return nil, missing(at, "start")
		case p.Commands == nil:
			return nil, missing(at, "commands")
		}
		l.AddPath(Path{Fill: p.Fill, Stroke: p.Stroke, Start: *p.Start, Commands: p.Commands})
	}
	for i, sp := range d.Sprites {
		at := fmt.Sprintf("%s.sprites[%d]", where, i)
		switch {
		case sp.TopLeft == nil:
			return nil, missing(at, "top_left")
		case sp.Size == nil:
			return nil, missing(at, "size")
		case sp.Color == nil:
			return nil, missing(at, "color")
		case sp.Texture == nil:
			return nil, missing(at, "texture")
		}
		l.AddSprite(Sprite{TopLeft: *sp.TopLeft, Size: *sp.Size, Color: *sp.Color, Texture: *sp.Texture})
	}
	return l, nil
}

func missing(where, key string) error {
	return fmt.Errorf("%w: %s: missing %q", ErrInvalidDocument, where, key)
}
