package main

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ternarybob/soundbite/internal/models"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Sounds []*models.NewSoundBite `yaml:"sounds"`
}

// loadCatalog reads a YAML sound catalog, falling back to the embedded
// sample set when path is empty
func loadCatalog(path string) ([]*models.NewSoundBite, error) {
	data := defaultCatalog
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
		}
		data = content
	}
	return parseCatalog(data)
}

func parseCatalog(data []byte) ([]*models.NewSoundBite, error) {
	var catalog catalogFile
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	for i, sound := range catalog.Sounds {
		if sound == nil {
			return nil, fmt.Errorf("catalog entry %d is empty", i+1)
		}
		sound.Normalize()
		if err := sound.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d (%q): %w", i+1, sound.Title, err)
		}
	}
	return catalog.Sounds, nil
}
