package pipeline

import (
	"fmt"
	"os"
	"runtime"

	"github.com/stopcast/stopcast/pkg/dataset"
	"gopkg.in/yaml.v3"
)

const (
	ModelTree     = "tree"
	ModelEnsemble = "ensemble"
)

// Profile is the configuration of one prediction run. Zero values fall back
// to the defaults in DefaultProfile; invalid values are rejected before any
// stop is processed.
type Profile struct {
	DatasetPath string `yaml:"dataset_path"`
	DatasetURL  string `yaml:"dataset_url"`

	// Limit caps the instances evaluated per stop. 0 means unrestricted.
	Limit        int    `yaml:"limit"`
	RandomSeed   int64  `yaml:"random_seed"`
	Model        string `yaml:"model"`
	EnsembleSize int    `yaml:"ensemble_size"`

	Workers   int    `yaml:"workers"`
	OutputDir string `yaml:"output_dir"`
}

func DefaultProfile() Profile {
	return Profile{
		DatasetURL:   dataset.DefaultSourceURL,
		RandomSeed:   42,
		Model:        ModelTree,
		EnsembleSize: 10,
		Workers:      runtime.NumCPU(),
		OutputDir:    ".",
	}
}

// LoadProfile reads a YAML run profile, layering it over the defaults.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()

	profileYaml, err := os.ReadFile(path)
	if err != nil {
		return profile, err
	}

	if err := yaml.Unmarshal(profileYaml, &profile); err != nil {
		return profile, err
	}

	return profile, profile.Validate()
}

func (p Profile) Validate() error {
	if p.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", p.Limit)
	}

	if p.Model != ModelTree && p.Model != ModelEnsemble {
		return fmt.Errorf("unknown model %q", p.Model)
	}

	if p.EnsembleSize <= 0 {
		return fmt.Errorf("ensemble_size must be positive, got %d", p.EnsembleSize)
	}

	if p.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", p.Workers)
	}

	return nil
}
