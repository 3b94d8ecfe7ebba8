// Command partition splits a YOLO dataset ({source}/images, {source}/labels)
// into train, validation and test directories.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-trafficlight/dataset"
	"github.com/nvr-ai/go-trafficlight/logging"
)

func main() {
	def := dataset.DefaultOptions()

	var (
		opts       dataset.Options
		pairing    string
		dryRun     bool
		noManifest bool
		logLevel   string
	)
	flag.StringVar(&opts.Source, "source", def.Source, "Dataset root containing images/ and labels/")
	flag.StringVar(&opts.Output, "output", def.Output, "Output root for train/, validation/ and test/")
	flag.Int64Var(&opts.Seed, "seed", def.Seed, "Shuffle seed")
	flag.StringVar(&pairing, "pairing", string(def.Pairing), "How images meet labels: position or stem")
	flag.Float64Var(&opts.Holdout, "holdout", def.Holdout, "Fraction held out of train")
	flag.Float64Var(&opts.TestFraction, "test-fraction", def.TestFraction, "Fraction of the held-out pairs sent to test")
	flag.BoolVar(&dryRun, "dry-run", false, "Print the planned split without copying")
	flag.BoolVar(&noManifest, "no-manifest", false, "Do not write manifest.yaml")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug or info")
	flag.Parse()

	logging.Setup(logLevel)
	opts.Pairing = dataset.PairingMode(pairing)
	opts.WriteManifest = !noManifest

	// Train keeps only 1-holdout of the pairs; holdout is not the train share.
	log.Printf("ℹ️  holdout=%.2f test-fraction=%.2f: train receives %.0f%% of the pairs",
		opts.Holdout, opts.TestFraction, (1-opts.Holdout)*100)

	if dryRun {
		split, err := dataset.Plan(opts)
		if err != nil {
			fail(err)
		}
		printPlan(split)
		return
	}

	if _, err := dataset.Run(opts); err != nil {
		fail(err)
	}
}

func printPlan(split dataset.Split) {
	for _, name := range dataset.SplitNames {
		pairs := split.Get(name)
		fmt.Printf("%s (%d)\n", name, len(pairs))
		for _, p := range pairs {
			fmt.Printf("  %s  %s\n", filepath.Base(p.Image), filepath.Base(p.Label))
		}
	}
}

func fail(err error) {
	var mismatch *dataset.MismatchedCountError
	if errors.As(err, &mismatch) {
		log.Printf("💡 try -pairing stem to match files by name")
	}
	log.Printf("❌ %v", err)
	os.Exit(1)
}
