package scene

// Quad is a filled, optionally rounded rectangle.
type Quad struct {
	Position Vec2 // top-left corner
	Size     Vec2
	Color    Color

	// CornerRadius rounds all four corners, in pixels.
	CornerRadius float32
	// Blur blurs the content behind the quad by this radius.
	Blur float32
}

// NewQuad returns a quad with square corners and no blur.
func NewQuad(position, size Vec2, c Color) Quad {
	return Quad{Position: position, Size: size, Color: c}
}

// WithCornerRadius returns a copy of q with rounded corners.
func (q Quad) WithCornerRadius(r float32) Quad {
	q.CornerRadius = r
	return q
}

// WithBlur returns a copy of q that blurs what is behind it.
func (q Quad) WithBlur(radius float32) Quad {
	q.Blur = radius
	return q
}

// Text is a single line of text drawn from its baseline origin.
type Text struct {
	Text       string
	BottomLeft Vec2 // baseline origin
	Size       float32
	Color      Color
	Bold       bool
	Italic     bool
	Subpixel   bool
}

// NewText returns a regular-weight text run with subpixel positioning.
func NewText(text string, bottomLeft Vec2, size float32, c Color) Text {
	return Text{
		Text:       text,
		BottomLeft: bottomLeft,
		Size:       size,
		Color:      c,
		Subpixel:   DefaultSubpixel(),
	}
}

// WithBold returns a bold copy of t.
func (t Text) WithBold() Text {
	t.Bold = true
	return t
}

// WithItalic returns an italic copy of t.
func (t Text) WithItalic() Text {
	t.Italic = true
	return t
}

// WithoutSubpixel returns a copy of t snapped to whole pixels.
func (t Text) WithoutSubpixel() Text {
	t.Subpixel = false
	return t
}

// CommandKind identifies a PathCommand variant.
type CommandKind uint8

// Path command kinds.
const (
	CommandLineTo CommandKind = iota
	CommandQuadraticBezierTo
	CommandCubicBezierTo
)

// String returns the variant name.
func (k CommandKind) String() string {
	switch k {
	case CommandLineTo:
		return "LineTo"
	case CommandQuadraticBezierTo:
		return "QuadraticBezierTo"
	case CommandCubicBezierTo:
		return "CubicBezierTo"
	default:
		return "Unknown"
	}
}

// PathCommand is one segment of a path, starting at the previous segment's
// end point. Only the fields used by Kind are meaningful.
type PathCommand struct {
	Kind     CommandKind
	Control1 Vec2 // quadratic control point, or first cubic control point
	Control2 Vec2 // second cubic control point
	To       Vec2
}

// LineTo returns a straight segment to to.
func LineTo(to Vec2) PathCommand {
	return PathCommand{Kind: CommandLineTo, To: to}
}

// QuadraticBezierTo returns a quadratic curve to to.
func QuadraticBezierTo(control, to Vec2) PathCommand {
	return PathCommand{Kind: CommandQuadraticBezierTo, Control1: control, To: to}
}

// CubicBezierTo returns a cubic curve to to.
func CubicBezierTo(control1, control2, to Vec2) PathCommand {
	return PathCommand{Kind: CommandCubicBezierTo, Control1: control1, Control2: control2, To: to}
}

// Stroke is the outline style of a path.
type Stroke struct {
	Width float32
	Color Color
}

// Path is a vector outline that may be filled, stroked, or both.
type Path struct {
	Fill     *Color
	Stroke   *Stroke
	Start    Vec2
	Commands []PathCommand
}

// NewPath returns a path with neither fill nor stroke.
func NewPath(start Vec2) Path { return Path{Start: start} }

// NewFill returns a filled path.
func NewFill(fill Color, start Vec2) Path {
	return Path{Fill: &fill, Start: start}
}

// NewStroke returns a stroked path.
func NewStroke(width float32, c Color, start Vec2) Path {
	return Path{Stroke: &Stroke{Width: width, Color: c}, Start: start}
}

// WithFill returns a copy of p filled with c.
func (p Path) WithFill(c Color) Path {
	p.Fill = &c
	return p
}

// WithStroke returns a copy of p stroked with the given width and color.
func (p Path) WithStroke(width float32, c Color) Path {
	p.Stroke = &Stroke{Width: width, Color: c}
	return p
}

// LineTo returns a copy of p extended with a straight segment.
func (p Path) LineTo(to Vec2) Path {
	return p.with(LineTo(to))
}

// QuadraticBezierTo returns a copy of p extended with a quadratic curve.
func (p Path) QuadraticBezierTo(control, to Vec2) Path {
	return p.with(QuadraticBezierTo(control, to))
}

// CubicBezierTo returns a copy of p extended with a cubic curve.
func (p Path) CubicBezierTo(control1, control2, to Vec2) Path {
	return p.with(CubicBezierTo(control1, control2, to))
}

func (p Path) with(cmd PathCommand) Path {
	cmds := make([]PathCommand, len(p.Commands), len(p.Commands)+1)
	copy(cmds, p.Commands)
	p.Commands = append(cmds, cmd)
	return p
}

// Sprite is a tinted image from the sprite atlas.
type Sprite struct {
	TopLeft Vec2
	Size    Vec2
	Color   Color  // tint, multiplied with the image
	Texture string // atlas key, resolved by the sprite drawable
}

// NewSprite returns a sprite of the named texture.
func NewSprite(texture string, topLeft, size Vec2, tint Color) Sprite {
	return Sprite{TopLeft: topLeft, Size: size, Color: tint, Texture: texture}
}
