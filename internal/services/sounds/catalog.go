package sounds

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/soundbite/internal/interfaces"
	"github.com/ternarybob/soundbite/internal/models"
)

// Schema returns every class with its live object count. A class whose count
// fails is reported with objectCount 0.
func (s *Service) Schema(ctx context.Context) (*models.Schema, error) {
	schema, err := s.store.Schema(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schema: %w", err)
	}

	for i := range schema.Classes {
		count, err := s.store.Count(ctx, schema.Classes[i].Class)
		if err != nil {
			s.logger.Warn().Err(err).Str("class", schema.Classes[i].Class).Msg("Failed to count objects")
			count = 0
		}
		schema.Classes[i].ObjectCount = count
	}

	return schema, nil
}

// EnsureSchema creates the sound bite class. An existing class is kept unless
// reset is set, in which case it is dropped with all objects first.
// Returns true when the class was (re)created.
func (s *Service) EnsureSchema(ctx context.Context, reset bool) (bool, error) {
	className := s.store.ClassName()

	exists, err := s.store.ClassExists(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Str("class", className).Msg("Class existence check failed, assuming absent")
		exists = false
	}

	if exists && !reset {
		s.logger.Info().Str("class", className).Msg("Class already exists")
		return false, nil
	}

	if exists {
		s.logger.Info().Str("class", className).Msg("Deleting existing class")
		if err := s.store.DeleteClass(ctx); err != nil {
			return false, fmt.Errorf("failed to delete class %s: %w", className, err)
		}
	}

	if err := s.store.CreateClass(ctx); err != nil {
		return false, fmt.Errorf("failed to create class %s: %w", className, err)
	}

	s.logger.Info().Str("class", className).Msg("Class created")
	return true, nil
}

// Seed validates every entry, then inserts all of them in one batch
func (s *Service) Seed(ctx context.Context, sounds []*models.NewSoundBite) ([]string, error) {
	if len(sounds) == 0 {
		return []string{}, nil
	}

	for i, sound := range sounds {
		sound.Normalize()
		if err := sound.Validate(); err != nil {
			return nil, fmt.Errorf("sound %d (%q): %w", i+1, sound.Title, err)
		}
	}

	ids, err := s.store.BatchCreate(ctx, sounds)
	if err != nil {
		return ids, fmt.Errorf("failed to insert sounds: %w", err)
	}

	s.logger.Info().Int("count", len(ids)).Msg("Sound bites inserted")
	return ids, nil
}

// Delete removes a sound bite by ID. A missing ID returns ErrObjectNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return models.NewValidationError("id", "Object ID is required")
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, interfaces.ErrObjectNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete sound bite %s: %w", id, err)
	}

	s.logger.Info().Str("id", id).Msg("Sound bite deleted")
	return nil
}

// Get fetches one sound bite by ID. A missing ID returns ErrObjectNotFound.
func (s *Service) Get(ctx context.Context, id string) (*models.SoundBite, error) {
	if id == "" {
		return nil, models.NewValidationError("id", "Object ID is required")
	}

	sound, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrObjectNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get sound bite %s: %w", id, err)
	}
	return sound, nil
}

// List returns up to limit stored sound bites (0 = store default)
func (s *Service) List(ctx context.Context, limit int) ([]models.SoundBite, error) {
	sounds, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sound bites: %w", err)
	}
	return sounds, nil
}

// Count returns the number of stored sound bites
func (s *Service) Count(ctx context.Context) (int, error) {
	count, err := s.store.Count(ctx, s.store.ClassName())
	if err != nil {
		return 0, fmt.Errorf("failed to count sound bites: %w", err)
	}
	return count, nil
}
