// Command bedrock renders a scene document to a PNG image.
//
// Usage:
//
//	bedrock [flags] scene.{json,yaml,toml}
//
// The scene is composited with the software device, exactly as a window
// would show it, and the presented frame is written to the output file.
// With -watch the image is rewritten whenever the scene file changes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "bedrock:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("bedrock", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath = fs.String("config", "", "TOML config `file`")
		output     = fs.String("o", "", "output PNG `file`")
		width      = fs.Int("w", 0, "image width")
		height     = fs.Int("h", 0, "image height")
		srgb       = fs.Bool("srgb", true, "request an sRGB surface")
		watch      = fs.Bool("watch", false, "re-render when the scene file changes")
		verbose    = fs.Bool("v", false, "log per-frame detail")
	)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: bedrock [flags] scene.{json,yaml,toml}")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("expected exactly one scene file")
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = LoadConfig(*configPath); err != nil {
			return err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			cfg.Output = *output
		case "w":
			cfg.Width = *width
		case "h":
			cfg.Height = *height
		case "srgb":
			cfg.SRGB = *srgb
		case "v":
			if *verbose {
				cfg.LogLevel = "debug"
			}
		}
	})
	level, err := cfg.Validate()
	if err != nil {
		return err
	}
	log := newLogger(stderr, level)

	path := fs.Arg(0)
	if !*watch {
		return renderFile(cfg, path, log)
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return watchFile(ctx, cfg, path, log)
}

// renderFile renders one scene document and logs where it went.
func renderFile(cfg Config, path string, log *slog.Logger) error {
	if err := Render(cfg, path, log); err != nil {
		return err
	}
	log.Info("bedrock: rendered", "scene", path, "output", cfg.Output, "width", cfg.Width, "height", cfg.Height)
	return nil
}
