package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfileIsValid(t *testing.T) {
	assert.NoError(t, DefaultProfile().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Profile)
	}{
		{
			name:   "negative limit",
			mutate: func(p *Profile) { p.Limit = -1 },
		},
		{
			name:   "unknown model",
			mutate: func(p *Profile) { p.Model = "forest" },
		},
		{
			name:   "zero ensemble size",
			mutate: func(p *Profile) { p.EnsembleSize = 0 },
		},
		{
			name:   "zero workers",
			mutate: func(p *Profile) { p.Workers = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := DefaultProfile()
			tt.mutate(&profile)
			assert.Error(t, profile.Validate())
		})
	}
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dataset_path: ./loader.csv
limit: 500
model: ensemble
ensemble_size: 3
`), 0644))

	profile, err := LoadProfile(path)
	require.NoError(t, err)

	assert.Equal(t, "./loader.csv", profile.DatasetPath)
	assert.Equal(t, 500, profile.Limit)
	assert.Equal(t, ModelEnsemble, profile.Model)
	assert.Equal(t, 3, profile.EnsembleSize)

	// Untouched keys keep their defaults.
	assert.Equal(t, int64(42), profile.RandomSeed)
}

func TestLoadProfileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("limit: -5\n"), 0644))

	_, err := LoadProfile(path)
	assert.Error(t, err)
}

func TestLoadProfileMissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
