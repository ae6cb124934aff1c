// Package scene describes what bedrock draws.
//
// A [Scene] is an ordered list of [Layer] values painted back to front. Each
// layer carries an optional clip rectangle, a background color and blur
// radius, the font used by its text, and ordered lists of quads, texts, paths
// and sprites.
//
// Scenes are plain data. They can be built in code with the With*/Add*
// helpers, which always operate on the last layer:
//
//	s := scene.New().
//		WithBackground(scene.RGBA(0.1, 0.1, 0.1, 1)).
//		WithQuad(scene.NewQuad(scene.V2(10, 10), scene.V2(100, 40), scene.RGB(1, 0, 0))).
//		WithLayer(scene.NewLayer().WithClip(scene.R(0, 0, 200, 200)).WithBlur(8))
//
// or decoded from JSON, YAML or TOML documents with [Decode] and [Load].
// Decoding fills in the same defaults as [NewLayer]: font "Courier New" at
// size 16, no clip, blur 0, opaque white background, subpixel text.
//
// The renderer borrows a Scene for one frame and never retains it.
package scene
