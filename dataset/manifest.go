package dataset

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ManifestFile is written in the output root after a successful run.
const ManifestFile = "manifest.yaml"

// Manifest records how a partition was produced.
type Manifest struct {
	RunID        string              `yaml:"run_id"`
	CreatedAt    time.Time           `yaml:"created_at"`
	Source       string              `yaml:"source"`
	Seed         int64               `yaml:"seed"`
	Pairing      PairingMode         `yaml:"pairing"`
	Holdout      float64             `yaml:"holdout"`
	TestFraction float64             `yaml:"test_fraction"`
	Counts       map[string]int      `yaml:"counts"`
	Files        map[string][]string `yaml:"files"`
}

// NewManifest describes a split with a fresh run id. Files list image base names.
func NewManifest(opts Options, split Split) *Manifest {
	m := &Manifest{
		RunID:        uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Source:       opts.Source,
		Seed:         opts.Seed,
		Pairing:      opts.Pairing,
		Holdout:      opts.Holdout,
		TestFraction: opts.TestFraction,
		Counts:       make(map[string]int, len(SplitNames)),
		Files:        make(map[string][]string, len(SplitNames)),
	}
	for _, name := range SplitNames {
		pairs := split.Get(name)
		m.Counts[name] = len(pairs)
		files := make([]string, 0, len(pairs))
		for _, p := range pairs {
			files = append(files, filepath.Base(p.Image))
		}
		m.Files[name] = files
	}
	return m
}

// Write stores the manifest as {dir}/manifest.yaml.
func (m *Manifest) Write(dir string) (string, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode manifest")
	}
	path := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", path)
	}
	return path, nil
}

// ReadManifest loads a manifest written by Write.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return &m, nil
}
