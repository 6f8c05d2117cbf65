package storage

import (
	"context"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/soundbite/internal/common"
	"github.com/ternarybob/soundbite/internal/interfaces"
	"github.com/ternarybob/soundbite/internal/storage/badger"
)

// NewStorageManager opens local storage and loads variables.toml and the
// configured dotenv files into the KV store. Later env files win.
func NewStorageManager(ctx context.Context, logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	mgr, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, err
	}

	if config.Variables.Dir != "" {
		if err := mgr.LoadVariablesFromFiles(ctx, config.Variables.Dir); err != nil {
			logger.Warn().Err(err).Msg("Failed to load variables")
		}
	}

	for _, envFile := range config.Variables.EnvFiles {
		path := envFile
		if !filepath.IsAbs(path) && config.Variables.Dir != "" {
			path = filepath.Join(config.Variables.Dir, envFile)
		}
		if err := mgr.LoadEnvFile(ctx, path); err != nil {
			logger.Warn().Err(err).Str("file", path).Msg("Failed to load env file")
		}
	}

	return mgr, nil
}
