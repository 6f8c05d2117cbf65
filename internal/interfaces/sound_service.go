package interfaces

import (
	"context"

	"github.com/ternarybob/soundbite/internal/models"
)

// SoundService is the pipeline exposed over HTTP
type SoundService interface {
	Describe(ctx context.Context, dataURL string) (string, error)
	Search(ctx context.Context, query string, limit int, threshold float64) ([]models.RankedSoundBite, error)
	MatchImage(ctx context.Context, dataURL string, limit int, threshold float64) (*models.MatchResult, error)
	Upload(ctx context.Context, sound *models.NewSoundBite) (*models.SoundBite, error)
	Schema(ctx context.Context) (*models.Schema, error)
	Ready(ctx context.Context) error
}
