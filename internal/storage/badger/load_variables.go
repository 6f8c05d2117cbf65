package badger

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// variableEntry is one table in variables.toml:
//
//	[openai_api_key]
//	value = "sk-..."
//	description = "Vectorizer key sent to Weaviate"
type variableEntry struct {
	Value       string `toml:"value"`
	Description string `toml:"description"`
}

// LoadVariablesFromFiles loads variables.toml from dirPath into the KV store.
// A missing file is not an error.
func (m *Manager) LoadVariablesFromFiles(ctx context.Context, dirPath string) error {
	path := filepath.Join(dirPath, "variables.toml")

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		m.logger.Debug().Str("file", path).Msg("variables.toml not found, skipping")
		return nil
	}
	if err != nil {
		m.logger.Warn().Err(err).Str("file", path).Msg("Failed to read variables file")
		return nil
	}

	var variables map[string]variableEntry
	if err := toml.Unmarshal(content, &variables); err != nil {
		m.logger.Warn().Err(err).Str("file", path).Msg("Failed to parse variables file")
		return nil
	}

	loaded, skipped := 0, 0
	for key, variable := range variables {
		if variable.Value == "" {
			m.logger.Warn().Str("key", key).Msg("Skipping variable with empty value")
			skipped++
			continue
		}

		description := variable.Description
		if description == "" {
			description = "Loaded from variables.toml"
		}

		if _, err := m.kv.Upsert(ctx, key, variable.Value, description); err != nil {
			m.logger.Error().Err(err).Str("key", key).Msg("Failed to store variable")
			continue
		}
		loaded++
	}

	m.logger.Debug().
		Str("file", path).
		Int("loaded", loaded).
		Int("skipped", skipped).
		Msg("Loaded variables")

	return nil
}
