// Package bedrock is a layered 2D scene compositor.
//
// # Overview
//
// A [scene.Scene] is an ordered list of layers. Each layer holds quads,
// text, vector paths and sprites, plus an optional clip rectangle,
// background color and blur radius. A [Renderer] paints the layers in
// order onto a presentable surface, one GPU submission per layer.
//
// # Quick Start
//
//	dev, name, err := backend.OpenDefault()
//	if err != nil {
//		log.Fatal(err)
//	}
//	r, err := bedrock.New(dev)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer r.Close()
//
//	// Forward window events.
//	r.HandleEvent(bedrock.Resumed{Target: window, Width: 800, Height: 600})
//
//	s := scene.New().
//		WithQuad(scene.NewQuad(scene.V2(10, 10), scene.V2(100, 50), scene.RGB(1, 0, 0)))
//	r.DrawScene(s)
//
// # Compositing
//
// Every layer starts with a synthetic backdrop quad covering its clip (or
// the whole surface) in the layer background color. Before each drawable
// kind runs, everything composited so far is copied into a backdrop
// texture, which the quad shader samples to blur what lies behind a
// translucent layer.
//
// Within a layer the kinds draw in a fixed order: quads, text, paths,
// sprites. There is no depth buffer; stacking follows draw order.
//
// # Backends
//
// Devices implement [gpucore.Device]. backend/native drives a GPU through
// gogpu/wgpu; backend/software executes the same programs on the CPU and
// backs the tests and the bedrock command.
//
// # Logging
//
// bedrock is silent by default. Use [SetLogger] to enable structured
// logging with log/slog.
package bedrock
