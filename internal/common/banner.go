package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and logs the resolved endpoints
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.PrintSimple("SoundBite", GetVersion())

	logger.Info().
		Str("version", GetFullVersion()).
		Str("environment", config.Environment).
		Str("vision_provider", string(config.Vision.Provider)).
		Str("weaviate_url", config.Weaviate.URL).
		Str("weaviate_class", config.Weaviate.ClassName).
		Msg("SoundBite starting")
}
