package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/soundbite/internal/models"
)

// ErrObjectNotFound is returned when a sound bite ID does not exist in the store
var ErrObjectNotFound = errors.New("object not found")

// SoundStore is the vector database holding sound bites.
// Implementations vectorize text server-side; no embeddings are computed locally.
type SoundStore interface {
	// ClassName returns the class (collection) holding sound bites
	ClassName() string

	// NearText returns up to limit stored sound bites closest in meaning to
	// query, in the store's order, each with its raw cosine distance.
	NearText(ctx context.Context, query string, limit int) ([]models.SearchCandidate, error)

	// Create stores one sound bite and returns its assigned ID
	Create(ctx context.Context, sound *models.NewSoundBite) (string, error)

	// BatchCreate stores many sound bites in one request and returns their IDs
	BatchCreate(ctx context.Context, sounds []*models.NewSoundBite) ([]string, error)

	Get(ctx context.Context, id string) (*models.SoundBite, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit int) ([]models.SoundBite, error)

	// Count returns the number of objects in the named class
	Count(ctx context.Context, className string) (int, error)

	// Schema returns all class definitions; ObjectCount is left zero
	Schema(ctx context.Context) (*models.Schema, error)

	ClassExists(ctx context.Context) (bool, error)
	CreateClass(ctx context.Context) error
	DeleteClass(ctx context.Context) error

	// Ready reports whether the database accepts requests
	Ready(ctx context.Context) error
}
