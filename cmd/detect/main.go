// Command detect runs the detector on a single image without a GUI and
// writes the annotated copy to disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-trafficlight/annotate"
	"github.com/nvr-ai/go-trafficlight/config"
	"github.com/nvr-ai/go-trafficlight/images"
	"github.com/nvr-ai/go-trafficlight/inference"
	"github.com/nvr-ai/go-trafficlight/logging"
	"github.com/nvr-ai/go-trafficlight/profiler"
	"github.com/nvr-ai/go-trafficlight/viewer"
)

func main() {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	imagePath := fs.String("image", "", "Path to the input image")
	outPath := fs.String("out", "", "Where to write the annotated image (default annotated_<name> next to the input)")
	show := fs.Bool("show", false, "Show the result in a window and wait for a key")

	cfg, err := config.Resolve(fs, flags, os.Args[1:])
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	logging.Setup(cfg.LogLevel)

	if *imagePath == "" {
		fs.Usage()
		os.Exit(2)
	}
	if *outPath == "" {
		*outPath = annotatedPath(*imagePath)
	}

	palette, err := annotate.NewPalette(cfg.Annotate.Palette)
	if err != nil {
		log.Fatalf("❌ invalid palette: %v", err)
	}

	engine, err := inference.NewEngineBuilder().
		WithBackend(cfg.Engine.Backend).
		WithDetector(cfg.Engine.Config).
		Build()
	if err != nil {
		log.Fatalf("❌ failed to load model %s: %v", cfg.Engine.ModelPath, err)
	}
	defer engine.Close()

	prof := profiler.NewStageProfiler()

	done := prof.StartOperation(profiler.StageLoad)
	frame, err := images.NewLoader().Load(*imagePath)
	done()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer frame.Close()

	done = prof.StartOperation(profiler.StageDetect)
	detections, err := engine.Detect(context.Background(), frame)
	done()
	if err != nil {
		log.Fatalf("❌ detection failed: %v", err)
	}

	if len(detections) == 0 {
		fmt.Println(viewer.NoDetectionsText)
	}
	for _, d := range detections {
		fmt.Printf("%-8s %.2f [%d,%d,%d,%d]\n", d.Label, d.Confidence, d.X1, d.Y1, d.X2, d.Y2)
	}

	done = prof.StartOperation(profiler.StageAnnotate)
	annotated, err := annotate.NewAnnotator(palette).Annotate(frame, detections)
	done()
	if err != nil {
		log.Fatalf("❌ annotation failed: %v", err)
	}
	defer annotated.Close()

	if err := images.WriteFrame(*outPath, annotated); err != nil {
		log.Fatalf("❌ %v", err)
	}
	log.Printf("💾 wrote %s", *outPath)

	if logging.DebugEnabled() {
		prof.Report(os.Stderr)
	}

	if *show {
		showWindow(annotated)
	}
}

// annotatedPath names the output next to the input: dir/annotated_<name>.
func annotatedPath(imagePath string) string {
	return filepath.Join(filepath.Dir(imagePath), "annotated_"+filepath.Base(imagePath))
}

func showWindow(frame images.Frame) {
	bgr, err := frame.ToBGR()
	if err != nil {
		log.Printf("⚠️  cannot display: %v", err)
		return
	}
	defer bgr.Close()

	window := gocv.NewWindow("Detection Result")
	defer window.Close()

	window.IMShow(bgr)
	window.WaitKey(0)
}
