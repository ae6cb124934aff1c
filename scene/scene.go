package scene

// Scene is an ordered list of layers. Layers are painted in slice order,
// each one over everything painted before it.
//
// A Scene built with [New] or decoded with [Decode] always has at least one
// layer. The builder methods below apply to the last layer.
type Scene struct {
	Layers []*Layer
}

// New returns a scene holding one default layer.
func New() *Scene {
	return &Scene{Layers: []*Layer{NewLayer()}}
}

// AddLayer appends a layer. Subsequent builder calls target it.
func (s *Scene) AddLayer(l *Layer) {
	if l == nil {
		l = NewLayer()
	}
	s.Layers = append(s.Layers, l)
}

// WithLayer appends a layer and returns s.
func (s *Scene) WithLayer(l *Layer) *Scene {
	s.AddLayer(l)
	return s
}

// Layer returns the last layer, creating a default one if the scene was
// constructed as a zero value.
func (s *Scene) Layer() *Layer {
	if len(s.Layers) == 0 {
		s.Layers = append(s.Layers, NewLayer())
	}
	return s.Layers[len(s.Layers)-1]
}

// WithClip sets the clip rectangle of the last layer.
func (s *Scene) WithClip(clip Rect) *Scene {
	s.Layer().SetClip(clip)
	return s
}

// WithBlur sets the background blur radius of the last layer.
func (s *Scene) WithBlur(radius float32) *Scene {
	s.Layer().SetBlur(radius)
	return s
}

// WithBackground sets the background color of the last layer.
func (s *Scene) WithBackground(c Color) *Scene {
	s.Layer().SetBackground(c)
	return s
}

// WithFont sets the font name of the last layer.
func (s *Scene) WithFont(name string) *Scene {
	s.Layer().SetFont(name)
	return s
}

// Font returns the font name of the last layer.
func (s *Scene) Font() string { return s.Layer().FontName }

// WithFontSize sets the font size of the last layer.
func (s *Scene) WithFontSize(size float32) *Scene {
	s.Layer().FontSize = size
	return s
}

// FontSize returns the font size of the last layer.
func (s *Scene) FontSize() float32 { return s.Layer().FontSize }

// AddQuad appends a quad to the last layer.
func (s *Scene) AddQuad(q Quad) { s.Layer().AddQuad(q) }

// WithQuad appends a quad to the last layer and returns s.
func (s *Scene) WithQuad(q Quad) *Scene {
	s.AddQuad(q)
	return s
}

// AddText appends a text run to the last layer.
func (s *Scene) AddText(t Text) { s.Layer().AddText(t) }

// WithText appends a text run to the last layer and returns s.
func (s *Scene) WithText(t Text) *Scene {
	s.AddText(t)
	return s
}

// AddPath appends a path to the last layer.
func (s *Scene) AddPath(p Path) { s.Layer().AddPath(p) }

// WithPath appends a path to the last layer and returns s.
func (s *Scene) WithPath(p Path) *Scene {
	s.AddPath(p)
	return s
}

// AddSprite appends a sprite to the last layer.
func (s *Scene) AddSprite(sp Sprite) { s.Layer().AddSprite(sp) }

// WithSprite appends a sprite to the last layer and returns s.
func (s *Scene) WithSprite(sp Sprite) *Scene {
	s.AddSprite(sp)
	return s
}

// Layer is one paint step of a scene.
//
// Every layer paints a backdrop before its content: a rectangle covering the
// clip (or the whole surface) in the background color, blurring whatever is
// behind it by BlurRadius. A nil Background means [DefaultBackground], not
// "no backdrop"; use a transparent color to let earlier layers show through.
type Layer struct {
	Clip       *Rect
	BlurRadius float32
	Background *Color
	FontName   string
	FontSize   float32

	Quads   []Quad
	Texts   []Text
	Paths   []Path
	Sprites []Sprite
}

// NewLayer returns a layer with default settings and no content.
func NewLayer() *Layer {
	return &Layer{
		FontName: DefaultFontName(),
		FontSize: DefaultFontSize(),
	}
}

// BackgroundColor returns the color of the layer's backdrop.
func (l *Layer) BackgroundColor() Color {
	if l.Background == nil {
		return DefaultBackground()
	}
	return *l.Background
}

// SetClip restricts the layer to clip.
func (l *Layer) SetClip(clip Rect) { l.Clip = &clip }

// WithClip restricts the layer to clip and returns l.
func (l *Layer) WithClip(clip Rect) *Layer {
	l.SetClip(clip)
	return l
}

// ClearClip removes the clip rectangle.
func (l *Layer) ClearClip() { l.Clip = nil }

// SetBlur sets the background blur radius.
func (l *Layer) SetBlur(radius float32) { l.BlurRadius = radius }

// WithBlur sets the background blur radius and returns l.
func (l *Layer) WithBlur(radius float32) *Layer {
	l.SetBlur(radius)
	return l
}

// SetBackground sets the backdrop color.
func (l *Layer) SetBackground(c Color) { l.Background = &c }

// WithBackground sets the backdrop color and returns l.
func (l *Layer) WithBackground(c Color) *Layer {
	l.SetBackground(c)
	return l
}

// SetFont sets the font used by the layer's text.
func (l *Layer) SetFont(name string) { l.FontName = name }

// WithFont sets the font used by the layer's text and returns l.
func (l *Layer) WithFont(name string) *Layer {
	l.SetFont(name)
	return l
}

// WithFontSize sets the default text size and returns l.
func (l *Layer) WithFontSize(size float32) *Layer {
	l.FontSize = size
	return l
}

// AddQuad appends a quad.
func (l *Layer) AddQuad(q Quad) { l.Quads = append(l.Quads, q) }

// WithQuad appends a quad and returns l.
func (l *Layer) WithQuad(q Quad) *Layer {
	l.AddQuad(q)
	return l
}

// AddText appends a text run.
func (l *Layer) AddText(t Text) { l.Texts = append(l.Texts, t) }

// WithText appends a text run and returns l.
func (l *Layer) WithText(t Text) *Layer {
	l.AddText(t)
	return l
}

// AddPath appends a path.
func (l *Layer) AddPath(p Path) { l.Paths = append(l.Paths, p) }

// WithPath appends a path and returns l.
func (l *Layer) WithPath(p Path) *Layer {
	l.AddPath(p)
	return l
}

// AddSprite appends a sprite.
func (l *Layer) AddSprite(sp Sprite) { l.Sprites = append(l.Sprites, sp) }

// WithSprite appends a sprite and returns l.
func (l *Layer) WithSprite(sp Sprite) *Layer {
	l.AddSprite(sp)
	return l
}
