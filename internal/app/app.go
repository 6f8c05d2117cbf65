package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/soundbite/internal/common"
	"github.com/ternarybob/soundbite/internal/handlers"
	"github.com/ternarybob/soundbite/internal/interfaces"
	"github.com/ternarybob/soundbite/internal/services/sounds"
	"github.com/ternarybob/soundbite/internal/services/vision"
	"github.com/ternarybob/soundbite/internal/storage"
	"github.com/ternarybob/soundbite/internal/storage/weaviate"
)

// App holds all application components and dependencies.
// External clients are created once here and injected; nothing on the
// request path creates or mutates them.
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Services
	SoundStore   interfaces.SoundStore
	Describer    interfaces.ImageDescriber
	SoundService *sounds.Service

	// Handlers
	APIHandler    *handlers.APIHandler
	ImageHandler  *handlers.ImageHandler
	SoundHandler  *handlers.SoundHandler
	SchemaHandler *handlers.SchemaHandler
	AuditHandler  *handlers.AuditHandler // nil unless audit is enabled
}

// New initializes storage, services and handlers in dependency order
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	ctx := context.Background()

	if err := app.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Str("vision", app.Describer.Name()).
		Str("class", app.SoundStore.ClassName()).
		Bool("audit", cfg.Audit.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase opens local storage, loads variables and applies {key}
// replacement to the config before any client is built.
func (a *App) initDatabase(ctx context.Context) error {
	storageManager, err := storage.NewStorageManager(ctx, a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}
	a.StorageManager = storageManager

	ApplyKeyReplacements(ctx, a.Config, storageManager.KeyValueStorage(), a.Logger)
	return nil
}

func (a *App) initServices(ctx context.Context) error {
	kv := a.StorageManager.KeyValueStorage()

	store, err := weaviate.NewStore(ctx, &a.Config.Weaviate, kv, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create weaviate store: %w", err)
	}
	a.SoundStore = store

	describer, err := vision.NewDescriber(ctx, a.Config, kv, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create image describer: %w", err)
	}
	a.Describer = describer

	a.SoundService = sounds.NewService(
		store,
		describer,
		a.StorageManager.AuditStorage(),
		a.Config.Audit,
		a.Logger,
	)
	return nil
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.SoundService, a.Logger)
	a.ImageHandler = handlers.NewImageHandler(a.SoundService, a.Config.Upload, a.Config.Search, a.Logger)
	a.SoundHandler = handlers.NewSoundHandler(a.SoundService, a.Config.Search, a.Logger)
	a.SchemaHandler = handlers.NewSchemaHandler(a.SoundService, a.Logger)
	if a.Config.Audit.Enabled {
		a.AuditHandler = handlers.NewAuditHandler(a.StorageManager.AuditStorage(), a.Logger)
	}
}

// ApplyKeyReplacements replaces {key} references in config values with KV store values
func ApplyKeyReplacements(ctx context.Context, cfg *common.Config, kv interfaces.KeyValueStorage, logger arbor.ILogger) {
	kvMap, err := kv.GetAll(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to fetch KV map for config replacement, skipping replacement")
		return
	}
	if len(kvMap) == 0 {
		return
	}
	if err := common.ReplaceInStruct(cfg, kvMap, logger); err != nil {
		logger.Warn().Err(err).Msg("Failed to replace key references in config")
		return
	}
	logger.Debug().Int("keys", len(kvMap)).Msg("Applied key/value replacements to config")
}

// Close releases clients and local storage
func (a *App) Close() error {
	if a.Describer != nil {
		if err := a.Describer.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close image describer")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
			return err
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
