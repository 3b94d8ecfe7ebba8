// Command viewer opens a window with an "Upload Image" button, runs the
// traffic light detector on the chosen image and shows the annotated result.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/nvr-ai/go-trafficlight/annotate"
	"github.com/nvr-ai/go-trafficlight/config"
	"github.com/nvr-ai/go-trafficlight/images"
	"github.com/nvr-ai/go-trafficlight/inference"
	"github.com/nvr-ai/go-trafficlight/logging"
	"github.com/nvr-ai/go-trafficlight/profiler"
	"github.com/nvr-ai/go-trafficlight/viewer/fyneui"
)

func main() {
	fs := flag.NewFlagSet("viewer", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	report := fs.Bool("report", false, "Print per-stage timings on exit")

	cfg, err := config.Resolve(fs, flags, os.Args[1:])
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	logging.Setup(cfg.LogLevel)

	palette, err := annotate.NewPalette(cfg.Annotate.Palette)
	if err != nil {
		log.Fatalf("❌ invalid palette: %v", err)
	}

	// The model is loaded once, before the window opens.
	engine, err := inference.NewEngineBuilder().
		WithBackend(cfg.Engine.Backend).
		WithDetector(cfg.Engine.Config).
		Build()
	if err != nil {
		log.Fatalf("❌ failed to load model %s: %v", cfg.Engine.ModelPath, err)
	}
	defer engine.Close()
	log.Printf("✅ %s engine ready: %s (labels %v)", cfg.Engine.Backend, cfg.Engine.ModelPath, cfg.Engine.Labels)

	prof := profiler.NewStageProfiler()
	app := fyneui.New(cfg.Viewer, images.NewLoader(), engine, annotate.NewAnnotator(palette), prof)
	app.Run()

	if *report {
		prof.Report(os.Stdout)
	}
}
