// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"slices"

	"github.com/gogpu/bedrock/shaders"
)

// Kind identifies a content kind. Kinds are ordered by paint priority.
type Kind uint8

// Content kinds in paint order.
const (
	KindQuad Kind = iota
	KindText
	KindPath
	KindSprite
)

// Kinds lists every kind in paint order.
func Kinds() []Kind {
	return []Kind{KindQuad, KindText, KindPath, KindSprite}
}

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindQuad:
		return "quad"
	case KindText:
		return "text"
	case KindPath:
		return "path"
	case KindSprite:
		return "sprite"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ShaderKind returns the entry-point prefix of the kind's program.
func (k Kind) ShaderKind() string {
	switch k {
	case KindText:
		return shaders.KindGlyph
	case KindPath:
		return shaders.KindPath
	case KindSprite:
		return shaders.KindSprite
	default:
		return shaders.KindQuad
	}
}

// SortByKind orders drawables by kind and rejects duplicate kinds.
func SortByKind(ds []Drawable) error {
	slices.SortStableFunc(ds, func(a, b Drawable) int {
		return int(a.Kind()) - int(b.Kind())
	})
	for i := 1; i < len(ds); i++ {
		if ds[i].Kind() == ds[i-1].Kind() {
			return fmt.Errorf("%w: %s", ErrDuplicateKind, ds[i].Kind())
		}
	}
	return nil
}
