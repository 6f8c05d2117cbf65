package vision

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/soundbite/internal/common"
	"github.com/ternarybob/soundbite/internal/interfaces"
)

// NewDescriber builds the describer for config.Vision.Provider, resolving the
// provider API key from env, the KV store, then config.
func NewDescriber(ctx context.Context, config *common.Config, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) (*Describer, error) {
	switch config.Vision.Provider {
	case common.VisionProviderClaude:
		apiKey, err := common.ResolveAPIKey(ctx, kvStorage, "anthropic_api_key", config.Claude.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve Anthropic API key: %w", err)
		}
		timeout, limiter, err := pacing(config.Claude.Timeout, config.Claude.RateLimit)
		if err != nil {
			return nil, fmt.Errorf("invalid claude config: %w", err)
		}
		p := newClaudeProvider(apiKey, config.Claude.Model, config.Claude.Temperature, config.Claude.MaxTokens)
		logProvider(logger, p.name(), timeout, limiter)
		return newDescriber(p, limiter, timeout, config.Vision.Prompt, logger), nil

	case common.VisionProviderGemini, "":
		apiKey, err := common.ResolveAPIKey(ctx, kvStorage, "gemini_api_key", config.Gemini.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve Gemini API key: %w", err)
		}
		timeout, limiter, err := pacing(config.Gemini.Timeout, config.Gemini.RateLimit)
		if err != nil {
			return nil, fmt.Errorf("invalid gemini config: %w", err)
		}
		p, err := newGeminiProvider(ctx, apiKey, config.Gemini.Model, config.Gemini.Temperature, config.Gemini.MaxTokens)
		if err != nil {
			return nil, err
		}
		logProvider(logger, p.name(), timeout, limiter)
		return newDescriber(p, limiter, timeout, config.Vision.Prompt, logger), nil

	default:
		return nil, fmt.Errorf("unsupported vision provider: %s (expected 'gemini' or 'claude')", config.Vision.Provider)
	}
}

// pacing parses the timeout and rate limit duration strings. An empty rate
// limit disables pacing.
func pacing(timeoutStr, rateLimitStr string) (time.Duration, *rate.Limiter, error) {
	var timeout time.Duration
	if timeoutStr != "" {
		d, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return 0, nil, fmt.Errorf("invalid timeout '%s': %w", timeoutStr, err)
		}
		timeout = d
	}

	if rateLimitStr == "" {
		return timeout, nil, nil
	}
	interval, err := time.ParseDuration(rateLimitStr)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid rate_limit '%s': %w", rateLimitStr, err)
	}
	if interval <= 0 {
		return timeout, nil, nil
	}
	return timeout, rate.NewLimiter(rate.Every(interval), 1), nil
}

func logProvider(logger arbor.ILogger, name string, timeout time.Duration, limiter *rate.Limiter) {
	var perSecond float64
	if limiter != nil {
		perSecond = float64(limiter.Limit())
	}
	logger.Info().
		Str("provider", name).
		Dur("timeout", timeout).
		Float64("requests_per_second", perSecond).
		Msg("Vision describer initialized")
}
