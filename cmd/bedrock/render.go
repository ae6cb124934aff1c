package main

import (
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gogpu/bedrock"
	"github.com/gogpu/bedrock/backend"
	"github.com/gogpu/bedrock/backend/software"
	"github.com/gogpu/bedrock/scene"
)

// Render composites the scene document at path and writes the presented
// frame to cfg.Output as PNG.
func Render(cfg Config, path string, log *slog.Logger) error {
	s, err := scene.Load(path)
	if err != nil {
		return err
	}

	dev, err := backend.Open(backend.BackendSoftware)
	if err != nil {
		return err
	}
	defer dev.Close()

	sprites := cfg.Sprites
	if sprites == "" {
		sprites = filepath.Dir(path)
	}
	r, err := bedrock.New(dev,
		bedrock.WithLogger(log),
		bedrock.WithSRGB(cfg.SRGB),
		bedrock.WithAtlasSize(cfg.AtlasSize),
		bedrock.WithSprites(os.DirFS(sprites)),
	)
	if err != nil {
		return err
	}
	defer r.Close()

	win := software.NewWindow(cfg.Width, cfg.Height)
	if err := r.HandleEvent(bedrock.Resumed{Target: win, Width: cfg.Width, Height: cfg.Height}); err != nil {
		return err
	}
	if err := r.Render(s); err != nil {
		return err
	}
	return writePNG(cfg.Output, win)
}

func writePNG(path string, win *software.Window) (err error) {
	img := win.Image()
	if img == nil {
		return fmt.Errorf("no frame was presented")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, img)
}
