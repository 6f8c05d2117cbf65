package interfaces

import "context"

// ImageDescriber produces a short natural-language description of an image
// for use as a semantic search query.
type ImageDescriber interface {
	// Describe sends the image (a base64 data URL) with the fixed sound
	// association prompt and returns the model's text unchanged. Whitespace-only
	// output is an error.
	Describe(ctx context.Context, dataURL string) (string, error)

	// Name identifies the provider and model, e.g. "gemini/gemini-2.5-flash"
	Name() string

	Close() error
}
