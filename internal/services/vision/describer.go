// Package vision turns an image into a short text description using a
// vision-capable language model.
package vision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/soundbite/internal/interfaces"
)

// ErrNoDescription is returned when the model answers with no text
var ErrNoDescription = errors.New("no description generated")

// imageRequest is a single provider-agnostic generation request
type imageRequest struct {
	MimeType string
	Data     []byte
	Prompt   string
}

// provider is implemented by each model backend
type provider interface {
	generate(ctx context.Context, req *imageRequest) (string, error)
	name() string
	close() error
}

// Describer implements interfaces.ImageDescriber on top of one provider.
// Calls are paced by a shared limiter and each is bounded by timeout.
type Describer struct {
	provider provider
	limiter  *rate.Limiter
	timeout  time.Duration
	prompt   string
	logger   arbor.ILogger
}

var _ interfaces.ImageDescriber = (*Describer)(nil)

func newDescriber(p provider, limiter *rate.Limiter, timeout time.Duration, prompt string, logger arbor.ILogger) *Describer {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &Describer{
		provider: p,
		limiter:  limiter,
		timeout:  timeout,
		prompt:   prompt,
		logger:   logger,
	}
}

// Describe issues one generation request for the image and returns the
// model's text unchanged. No retries.
func (d *Describer) Describe(ctx context.Context, dataURL string) (string, error) {
	mimeType, data, err := ParseDataURL(dataURL)
	if err != nil {
		return "", err
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("failed to analyze image: %w", err)
		}
	}

	callCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := d.provider.generate(callCtx, &imageRequest{
		MimeType: mimeType,
		Data:     data,
		Prompt:   d.prompt,
	})
	if err != nil {
		d.logger.Error().
			Err(err).
			Str("provider", d.provider.name()).
			Dur("elapsed", time.Since(start)).
			Msg("Image description failed")
		return "", fmt.Errorf("failed to analyze image: %w", err)
	}

	if strings.TrimSpace(text) == "" {
		d.logger.Warn().Str("provider", d.provider.name()).Msg("Model returned no description")
		return "", ErrNoDescription
	}

	d.logger.Debug().
		Str("provider", d.provider.name()).
		Str("mime_type", mimeType).
		Int("image_bytes", len(data)).
		Int("description_length", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("Image described")

	return text, nil
}

// Name returns provider/model
func (d *Describer) Name() string {
	return d.provider.name()
}

// Close releases the provider client
func (d *Describer) Close() error {
	return d.provider.close()
}
