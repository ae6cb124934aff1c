package scene

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2/unstable"
	"gopkg.in/yaml.v3"
)

// numbers is a list or a table of numbers, the two shapes vectors,
// rectangles and colors take in a document.
type numbers struct {
	list  []float32
	table map[string]float32
}

func (n *numbers) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		return json.Unmarshal(data, &n.table)
	}
	return json.Unmarshal(data, &n.list)
}

func (n *numbers) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		return node.Decode(&n.table)
	}
	return node.Decode(&n.list)
}

func (n *numbers) UnmarshalTOML(node *unstable.Node) error {
	switch node.Kind {
	case unstable.Array:
		it := node.Children()
		for it.Next() {
			f, err := tomlNumber(it.Node())
			if err != nil {
				return err
			}
			n.list = append(n.list, f)
		}
		return nil
	case unstable.InlineTable:
		n.table = make(map[string]float32)
		return eachTOMLKey(node, func(key string, v *unstable.Node) error {
			f, err := tomlNumber(v)
			n.table[key] = f
			return err
		})
	default:
		return fmt.Errorf("want a list or table of numbers, got %s", tomlKind(node))
	}
}

// pick returns one number per key: the list in order, or the table by key.
func (n numbers) pick(keys ...string) ([]float32, error) {
	if n.table != nil {
		out := make([]float32, len(keys))
		for i, k := range keys {
			v, ok := n.table[k]
			if !ok {
				return nil, fmt.Errorf("missing %q", k)
			}
			out[i] = v
		}
		return out, nil
	}
	if len(n.list) != len(keys) {
		return nil, fmt.Errorf("want %d numbers, got %d", len(keys), len(n.list))
	}
	return n.list, nil
}

// UnmarshalJSON accepts [x, y] or {"x": x, "y": y}.
func (v *Vec2) UnmarshalJSON(data []byte) error {
	var n numbers
	if err := n.UnmarshalJSON(data); err != nil {
		return err
	}
	return v.set(n)
}

// UnmarshalYAML accepts [x, y] or {x: x, y: y}.
func (v *Vec2) UnmarshalYAML(node *yaml.Node) error {
	var n numbers
	if err := n.UnmarshalYAML(node); err != nil {
		return err
	}
	return v.set(n)
}

// UnmarshalTOML accepts [x, y] or {x = x, y = y}.
func (v *Vec2) UnmarshalTOML(node *unstable.Node) error {
	var n numbers
	if err := n.UnmarshalTOML(node); err != nil {
		return err
	}
	return v.set(n)
}

func (v *Vec2) set(n numbers) error {
	f, err := n.pick("x", "y")
	if err != nil {
		return fmt.Errorf("vector: %w", err)
	}
	*v = Vec2{X: f[0], Y: f[1]}
	return nil
}

// UnmarshalJSON accepts [x, y, width, height] or the equivalent object.
func (r *Rect) UnmarshalJSON(data []byte) error {
	var n numbers
	if err := n.UnmarshalJSON(data); err != nil {
		return err
	}
	return r.set(n)
}

// UnmarshalYAML accepts [x, y, width, height] or the equivalent mapping.
func (r *Rect) UnmarshalYAML(node *yaml.Node) error {
	var n numbers
	if err := n.UnmarshalYAML(node); err != nil {
		return err
	}
	return r.set(n)
}

// UnmarshalTOML accepts [x, y, width, height] or the equivalent inline table.
func (r *Rect) UnmarshalTOML(node *unstable.Node) error {
	var n numbers
	if err := n.UnmarshalTOML(node); err != nil {
		return err
	}
	return r.set(n)
}

func (r *Rect) set(n numbers) error {
	f, err := n.pick("x", "y", "width", "height")
	if err != nil {
		return fmt.Errorf("rect: %w", err)
	}
	*r = Rect{X: f[0], Y: f[1], Width: f[2], Height: f[3]}
	return nil
}

// UnmarshalText parses "#rgb", "#rrggbb" or "#rrggbbaa".
func (c *Color) UnmarshalText(text []byte) error {
	s := string(text)
	alpha := float32(1)
	hex := s
	if len(s) == 9 && s[0] == '#' {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return fmt.Errorf("color %q: bad alpha", s)
		}
		alpha = float32(a) / 255
		hex = s[:7]
	}
	rgb, err := colorful.Hex(hex)
	if err != nil {
		return fmt.Errorf("color %q: %w", s, err)
	}
	*c = Color{R: float32(rgb.R), G: float32(rgb.G), B: float32(rgb.B), A: alpha}
	return nil
}

// UnmarshalJSON accepts a hex string, [r, g, b], [r, g, b, a] or an object
// with r, g, b and optional a.
func (c *Color) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return c.UnmarshalText([]byte(s))
	}
	var n numbers
	if err := n.UnmarshalJSON(data); err != nil {
		return err
	}
	return c.set(n)
}

// UnmarshalYAML accepts the same shapes as UnmarshalJSON.
func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return c.UnmarshalText([]byte(node.Value))
	}
	var n numbers
	if err := n.UnmarshalYAML(node); err != nil {
		return err
	}
	return c.set(n)
}

// UnmarshalTOML accepts the same shapes as UnmarshalJSON.
func (c *Color) UnmarshalTOML(node *unstable.Node) error {
	if node.Kind == unstable.String {
		return c.UnmarshalText(node.Data)
	}
	var n numbers
	if err := n.UnmarshalTOML(node); err != nil {
		return err
	}
	return c.set(n)
}

func (c *Color) set(n numbers) error {
	if len(n.list) == 3 {
		n.list = append(n.list[:3:3], 1)
	}
	if n.table != nil {
		if _, ok := n.table["a"]; !ok {
			n.table["a"] = 1
		}
	}
	f, err := n.pick("r", "g", "b", "a")
	if err != nil {
		return fmt.Errorf("color: %w", err)
	}
	*c = Color{R: f[0], G: f[1], B: f[2], A: f[3]}
	return nil
}

type strokeDoc struct {
	Width *float32 `json:"width" yaml:"width"`
	Color *Color   `json:"color" yaml:"color"`
}

func (d strokeDoc) stroke() (Stroke, error) {
	switch {
	case d.Width == nil:
		return Stroke{}, errors.New(`stroke: missing "width"`)
	case d.Color == nil:
		return Stroke{}, errors.New(`stroke: missing "color"`)
	}
	return Stroke{Width: *d.Width, Color: *d.Color}, nil
}

var errStrokePair = errors.New("stroke: want [width, color]")

// UnmarshalJSON accepts [width, color] or {"width": w, "color": c}.
func (s *Stroke) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var d strokeDoc
	if len(data) > 0 && data[0] == '[' {
		var pair []json.RawMessage
		if err := json.Unmarshal(data, &pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return errStrokePair
		}
		d.Width, d.Color = new(float32), new(Color)
		if err := json.Unmarshal(pair[0], d.Width); err != nil {
			return err
		}
		if err := d.Color.UnmarshalJSON(pair[1]); err != nil {
			return err
		}
	} else if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	st, err := d.stroke()
	*s = st
	return err
}

// UnmarshalYAML accepts [width, color] or {width: w, color: c}.
func (s *Stroke) UnmarshalYAML(node *yaml.Node) error {
	var d strokeDoc
	if node.Kind == yaml.SequenceNode {
		if len(node.Content) != 2 {
			return errStrokePair
		}
		d.Width, d.Color = new(float32), new(Color)
		if err := node.Content[0].Decode(d.Width); err != nil {
			return err
		}
		if err := d.Color.UnmarshalYAML(node.Content[1]); err != nil {
			return err
		}
	} else if err := node.Decode(&d); err != nil {
		return err
	}
	st, err := d.stroke()
	*s = st
	return err
}

// UnmarshalTOML accepts [width, color] or {width = w, color = c}.
func (s *Stroke) UnmarshalTOML(node *unstable.Node) error {
	var d strokeDoc
	width := func(v *unstable.Node) error {
		f, err := tomlNumber(v)
		d.Width = &f
		return err
	}
	color := func(v *unstable.Node) error {
		d.Color = new(Color)
		return d.Color.UnmarshalTOML(v)
	}
	switch node.Kind {
	case unstable.Array:
		var items []*unstable.Node
		it := node.Children()
		for it.Next() {
			items = append(items, it.Node())
		}
		if len(items) != 2 {
			return errStrokePair
		}
		if err := width(items[0]); err != nil {
			return err
		}
		if err := color(items[1]); err != nil {
			return err
		}
	default:
		err := eachTOMLKey(node, func(key string, v *unstable.Node) error {
			switch key {
			case "width":
				return width(v)
			case "color":
				return color(v)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	st, err := d.stroke()
	*s = st
	return err
}

type commandDoc struct {
	Control1 *Vec2 `json:"control1" yaml:"control1"`
	Control2 *Vec2 `json:"control2" yaml:"control2"`
	Control  *Vec2 `json:"control" yaml:"control"`
	To       *Vec2 `json:"to" yaml:"to"`
}

// command infers the variant from the keys present, most specific first.
func (d commandDoc) command() (PathCommand, error) {
	switch {
	case d.To == nil:
		return PathCommand{}, errors.New(`path command: missing "to"`)
	case d.Control1 != nil && d.Control2 != nil:
		return CubicBezierTo(*d.Control1, *d.Control2, *d.To), nil
	case d.Control1 != nil || d.Control2 != nil:
		return PathCommand{}, errors.New("path command: cubic command needs both control1 and control2")
	case d.Control != nil:
		return QuadraticBezierTo(*d.Control, *d.To), nil
	default:
		return LineTo(*d.To), nil
	}
}

// UnmarshalJSON decodes {"to"}, {"control", "to"} or
// {"control1", "control2", "to"}.
func (c *PathCommand) UnmarshalJSON(data []byte) error {
	var d commandDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	cmd, err := d.command()
	*c = cmd
	return err
}

// UnmarshalYAML decodes the same keys as UnmarshalJSON.
func (c *PathCommand) UnmarshalYAML(node *yaml.Node) error {
	var d commandDoc
	if err := node.Decode(&d); err != nil {
		return err
	}
	cmd, err := d.command()
	*c = cmd
	return err
}

// UnmarshalTOML decodes an inline table with the same keys as UnmarshalJSON.
func (c *PathCommand) UnmarshalTOML(node *unstable.Node) error {
	var d commandDoc
	err := eachTOMLKey(node, func(key string, v *unstable.Node) error {
		var dst **Vec2
		switch key {
		case "control1":
			dst = &d.Control1
		case "control2":
			dst = &d.Control2
		case "control":
			dst = &d.Control
		case "to":
			dst = &d.To
		default:
			return nil
		}
		*dst = new(Vec2)
		return (*dst).UnmarshalTOML(v)
	})
	if err != nil {
		return err
	}
	cmd, err := d.command()
	*c = cmd
	return err
}

// eachTOMLKey calls fn for every key of an inline table. Dotted keys are
// joined with ".".
func eachTOMLKey(node *unstable.Node, fn func(key string, value *unstable.Node) error) error {
	if node.Kind != unstable.InlineTable {
		return fmt.Errorf("want an inline table, got %s", tomlKind(node))
	}
	it := node.Children()
	for it.Next() {
		kv := it.Node()
		var parts []string
		keys := kv.Key()
		for keys.Next() {
			parts = append(parts, string(keys.Node().Data))
		}
		if err := fn(strings.Join(parts, "."), kv.Value()); err != nil {
			return err
		}
	}
	return nil
}

func tomlNumber(node *unstable.Node) (float32, error) {
	s := strings.ReplaceAll(string(node.Data), "_", "")
	switch node.Kind {
	case unstable.Integer:
		i, err := strconv.ParseInt(s, 0, 64)
		return float32(i), err
	case unstable.Float:
		f, err := strconv.ParseFloat(s, 64)
		return float32(f), err
	default:
		return 0, fmt.Errorf("want a number, got %s", tomlKind(node))
	}
}

func tomlKind(node *unstable.Node) string {
	return strings.ToLower(node.Kind.String())
}
