// Package config loads settings from a YAML file, the environment and flags.
//
// Precedence, lowest to highest: Default(), the YAML file, environment
// variables (after loading an optional .env), then explicitly set flags.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-trafficlight/inference"
	"github.com/nvr-ai/go-trafficlight/inference/detectors"
	"github.com/nvr-ai/go-trafficlight/inference/providers"
)

// Environment variable names.
const (
	EnvModelPath   = "TL_MODEL_PATH"
	EnvBackend     = "TL_BACKEND"
	EnvConfidence  = "TL_CONFIDENCE"
	EnvIoU         = "TL_IOU"
	EnvLabels      = "TL_LABELS"
	EnvORTLibrary  = "TL_ORT_LIBRARY"
	EnvORTProvider = "TL_ORT_PROVIDER"
	EnvLogLevel    = "TL_LOG_LEVEL"
)

// minInputSide is the smallest model input edge; YOLOv8's coarsest stride is 32.
const minInputSide = 32

// EngineConfig selects the detector backend and its model settings.
type EngineConfig struct {
	Backend          inference.EngineType `yaml:"backend"`
	detectors.Config `yaml:",inline"`
}

// ViewerConfig holds the GUI window settings.
type ViewerConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// AnnotateConfig holds drawing overrides.
type AnnotateConfig struct {
	// Palette maps a label to a hex colour, e.g. off: "#404040".
	Palette map[string]string `yaml:"palette"`
}

// Config is the complete application configuration.
type Config struct {
	LogLevel string         `yaml:"log_level"`
	Engine   EngineConfig   `yaml:"engine"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Annotate AnnotateConfig `yaml:"annotate"`
}

// Default returns the built-in configuration.
//
// Returns:
//   - Config: OpenCV backend, bundled model path, ultralytics thresholds.
func Default() Config {
	return Config{
		LogLevel: "info",
		Engine: EngineConfig{
			Backend: inference.EngineOpenCV,
			Config:  detectors.DefaultConfig(),
		},
		Viewer: ViewerConfig{
			Title:  "Traffic Light Detector",
			Width:  800,
			Height: 600,
		},
	}
}

// Load builds a configuration from the defaults, an optional YAML file and
// the environment.
//
// Arguments:
//   - path: YAML file to read. Empty skips the file.
//
// Returns:
//   - Config: The merged configuration. It is not validated.
//   - error: If the file cannot be read or parsed, or an env value is malformed.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, errors.Wrap(err, "failed to load .env")
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "failed to parse config %s", path)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables.
//
// Arguments:
//   - lookup: Environment accessor, os.LookupEnv in production.
//
// Returns:
//   - error: If a numeric variable does not parse.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvModelPath); ok {
		c.Engine.ModelPath = v
	}
	if v, ok := get(EnvBackend); ok {
		c.Engine.Backend = inference.EngineType(strings.ToLower(v))
	}
	if v, ok := get(EnvConfidence); ok {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvConfidence)
		}
		c.Engine.ConfidenceThreshold = float32(f)
	}
	if v, ok := get(EnvIoU); ok {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvIoU)
		}
		c.Engine.NMSThreshold = float32(f)
	}
	if v, ok := get(EnvLabels); ok {
		c.Engine.Labels = SplitLabels(v)
	}
	if v, ok := get(EnvORTLibrary); ok {
		c.Engine.Provider.LibraryPath = v
	}
	if v, ok := get(EnvORTProvider); ok {
		c.Engine.Provider.Backend = providers.ProviderBackend(strings.ToLower(v))
	}
	if v, ok := get(EnvLogLevel); ok {
		c.LogLevel = v
	}
	return nil
}

// SplitLabels parses a comma separated label list, dropping blanks.
func SplitLabels(s string) []string {
	var labels []string
	for _, l := range strings.Split(s, ",") {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}

// Validate checks the configuration before any model is loaded.
//
// Returns:
//   - error: Describing the first invalid field.
func (c Config) Validate() error {
	e := c.Engine
	if strings.TrimSpace(e.ModelPath) == "" {
		return errors.New("engine.model_path is required")
	}
	if !inference.IsSupported(e.Backend) {
		return errors.Errorf("engine.backend %q is not one of %v", e.Backend, inference.Engines)
	}
	if e.ConfidenceThreshold < 0 || e.ConfidenceThreshold > 1 {
		return errors.Errorf("engine.confidence_threshold must be in [0,1], got %v", e.ConfidenceThreshold)
	}
	if e.NMSThreshold < 0 || e.NMSThreshold > 1 {
		return errors.Errorf("engine.nms_threshold must be in [0,1], got %v", e.NMSThreshold)
	}
	if len(e.Labels) == 0 {
		return errors.New("engine.labels must not be empty")
	}
	if e.InputShape.X < minInputSide || e.InputShape.Y < minInputSide {
		return errors.Errorf("engine.input_shape must be at least %dx%d, got %v", minInputSide, minInputSide, e.InputShape)
	}
	if e.Backend == inference.EngineONNXRuntime {
		if _, err := providers.NewProvider(e.Provider); err != nil {
			return errors.Wrap(err, "engine.onnxruntime.backend")
		}
	}
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		return errors.Errorf("viewer size must be positive, got %dx%d", c.Viewer.Width, c.Viewer.Height)
	}
	return nil
}

// Flags holds the command-line overrides shared by the viewer and detect commands.
type Flags struct {
	ConfigPath string
	modelPath  string
	backend    string
	confidence float64
	iou        float64
	labels     string
	ortLibrary string
	logLevel   string
}

// RegisterFlags defines the shared flags on fs.
//
// Arguments:
//   - fs: The flag set, flag.CommandLine in main.
//
// Returns:
//   - *Flags: Populated once fs is parsed; pass to Apply.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	def := Default()
	fs.StringVar(&f.ConfigPath, "config", "", "Path to a YAML config file")
	fs.StringVar(&f.modelPath, "model", def.Engine.ModelPath, "Path to the ONNX detection model")
	fs.StringVar(&f.backend, "backend", string(def.Engine.Backend), "Inference backend: opencv or onnxruntime")
	fs.Float64Var(&f.confidence, "confidence", float64(def.Engine.ConfidenceThreshold), "Minimum detection confidence")
	fs.Float64Var(&f.iou, "iou", float64(def.Engine.NMSThreshold), "NMS IoU threshold")
	fs.StringVar(&f.labels, "labels", strings.Join(def.Engine.Labels, ","), "Comma separated class labels in model order")
	fs.StringVar(&f.ortLibrary, "ort-library", "", "Path to the onnxruntime shared library")
	fs.StringVar(&f.logLevel, "log-level", def.LogLevel, "Log level: debug or info")
	return f
}

// Apply copies only the flags explicitly set on the command line into cfg.
func (f *Flags) Apply(fs *flag.FlagSet, cfg *Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "model":
			cfg.Engine.ModelPath = f.modelPath
		case "backend":
			cfg.Engine.Backend = inference.EngineType(strings.ToLower(f.backend))
		case "confidence":
			cfg.Engine.ConfidenceThreshold = float32(f.confidence)
		case "iou":
			cfg.Engine.NMSThreshold = float32(f.iou)
		case "labels":
			cfg.Engine.Labels = SplitLabels(f.labels)
		case "ort-library":
			cfg.Engine.Provider.LibraryPath = f.ortLibrary
		case "log-level":
			cfg.LogLevel = f.logLevel
		}
	})
}

// Resolve parses args, loads the config file and environment, applies flag
// overrides and validates the result.
//
// Arguments:
//   - fs: A flag set with RegisterFlags already applied and any command flags defined.
//   - flags: The value RegisterFlags returned.
//   - args: Command-line arguments without the program name.
//
// Returns:
//   - Config: The validated configuration.
//   - error: On parse, load or validation failure.
func Resolve(fs *flag.FlagSet, flags *Flags, args []string) (Config, error) {
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg, err := Load(flags.ConfigPath)
	if err != nil {
		return Config{}, err
	}
	flags.Apply(fs, &cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
