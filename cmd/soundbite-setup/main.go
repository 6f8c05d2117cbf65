package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/soundbite/internal/app"
	"github.com/ternarybob/soundbite/internal/common"
	"github.com/ternarybob/soundbite/internal/services/sounds"
	"github.com/ternarybob/soundbite/internal/storage"
	"github.com/ternarybob/soundbite/internal/storage/weaviate"
)

type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles configPaths
	catalogPath = flag.String("catalog", "", "YAML sound catalog to load (default: built-in samples)")
	reset       = flag.Bool("reset", false, "Drop the class and all objects before loading")
	noSeed      = flag.Bool("no-seed", false, "Create the class without loading the catalog")
	list        = flag.Int("list", 0, "List up to N stored sound bites and exit")
	getID       = flag.String("get", "", "Print the sound bite with this ID and exit")
	deleteID    = flag.String("delete", "", "Print and delete the sound bite with this ID and exit")
	count       = flag.Bool("count", false, "Print the number of stored sound bites and exit")

	keys keyCommand
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
	flag.StringVar(&keys.set, "set-key", "", "Store NAME=VALUE in the local key store and exit")
	flag.StringVar(&keys.delete, "delete-key", "", "Remove NAME from the local key store and exit")
	flag.BoolVar(&keys.list, "list-keys", false, "List local key store entries (values masked) and exit")
}

func main() {
	flag.Parse()

	if len(configFiles) == 0 {
		configFiles = common.DiscoverConfigFiles()
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		arbor.NewLogger().Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration files")
		os.Exit(1)
	}
	logger := common.InitLogger(config)

	if err := run(config, logger); err != nil {
		logger.Error().Err(err).Msg("Setup failed")
		os.Exit(1)
	}
}

func run(config *common.Config, logger arbor.ILogger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	storageManager, err := storage.NewStorageManager(ctx, logger, config)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer storageManager.Close()

	kv := storageManager.KeyValueStorage()
	if keys.active() {
		return keys.run(ctx, kv, os.Stdout)
	}
	app.ApplyKeyReplacements(ctx, config, kv, logger)

	store, err := weaviate.NewStore(ctx, &config.Weaviate, kv, logger)
	if err != nil {
		return err
	}
	if err := store.Ready(ctx); err != nil {
		return fmt.Errorf("weaviate at %s is not ready: %w", config.Weaviate.URL, err)
	}

	service := sounds.NewService(store, nil, nil, config.Audit, logger)

	switch {
	case *getID != "":
		return showSound(ctx, service, *getID, os.Stdout)

	case *deleteID != "":
		return deleteSound(ctx, service, *deleteID, os.Stdout)

	case *count:
		n, err := service.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%d sound bites in %s\n", n, store.ClassName())
		return nil

	case *list > 0:
		items, err := service.List(ctx, *list)
		if err != nil {
			return err
		}
		for _, item := range items {
			fmt.Printf("%s  %-28s %6.1fs  [%s]\n", item.ID, item.Title, item.Duration, strings.Join(item.Tags, ", "))
		}
		return nil
	}

	created, err := service.EnsureSchema(ctx, *reset)
	if err != nil {
		return err
	}

	if *noSeed {
		return nil
	}
	if !created && *catalogPath == "" {
		logger.Info().Msg("Class already populated, use -reset to reload the sample catalog")
		return nil
	}

	catalog, err := loadCatalog(*catalogPath)
	if err != nil {
		return err
	}

	ids, err := service.Seed(ctx, catalog)
	if err != nil {
		return err
	}

	total, err := service.Count(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to count sound bites after load")
	}

	logger.Info().
		Int("inserted", len(ids)).
		Int("total", total).
		Str("class", store.ClassName()).
		Msg("Setup complete")
	return nil
}
