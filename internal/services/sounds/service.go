// Package sounds runs the image → description → semantic search pipeline and
// manages the sound bite catalog.
package sounds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/soundbite/internal/common"
	"github.com/ternarybob/soundbite/internal/interfaces"
	"github.com/ternarybob/soundbite/internal/models"
	"github.com/ternarybob/soundbite/internal/services/ranking"
	"github.com/ternarybob/soundbite/internal/services/vision"
)

// Service coordinates the vector store, the image describer and the audit
// trail. It holds no per-request state.
type Service struct {
	store     interfaces.SoundStore
	describer interfaces.ImageDescriber
	audit     interfaces.AuditStorage
	auditCfg  common.AuditConfig
	logger    arbor.ILogger
}

// NewService creates a sounds service. describer and audit may be nil: the
// setup CLI needs neither.
func NewService(
	store interfaces.SoundStore,
	describer interfaces.ImageDescriber,
	audit interfaces.AuditStorage,
	auditCfg common.AuditConfig,
	logger arbor.ILogger,
) *Service {
	return &Service{
		store:     store,
		describer: describer,
		audit:     audit,
		auditCfg:  auditCfg,
		logger:    logger,
	}
}

// Search runs one nearText query and returns candidates whose confidence is
// at least threshold*100, best first. No matches is an empty, successful result.
func (s *Service) Search(ctx context.Context, query string, limit int, threshold float64) ([]models.RankedSoundBite, error) {
	params, err := models.NewSearchParams(query, limit, threshold)
	if err != nil {
		return nil, err
	}
	return s.search(ctx, params, models.AuditSearchSounds)
}

func (s *Service) search(ctx context.Context, params *models.SearchParams, op models.AuditOperation) ([]models.RankedSoundBite, error) {
	start := time.Now()

	candidates, err := s.store.NearText(ctx, params.Query, params.Limit)
	if err != nil {
		err = fmt.Errorf("failed to search sounds: %w", err)
		s.logger.Error().Err(err).Str("query", params.Query).Msg("Sound search failed")
		s.record(ctx, op, start, err, params.Query, 0)
		return nil, err
	}

	results := ranking.Rank(candidates, params.Threshold)

	s.logger.Debug().
		Str("query", params.Query).
		Int("candidates", len(candidates)).
		Int("results", len(results)).
		Float64("threshold", params.Threshold).
		Dur("elapsed", time.Since(start)).
		Msg("Sound search completed")

	s.record(ctx, op, start, nil, params.Query, len(results))
	return results, nil
}

// Describe returns the vision model's description of a data URL image
func (s *Service) Describe(ctx context.Context, dataURL string) (string, error) {
	if s.describer == nil {
		return "", errors.New("image describer is not configured")
	}

	start := time.Now()
	description, err := s.describer.Describe(ctx, dataURL)
	s.record(ctx, models.AuditDescribeImage, start, err, "", 0)
	if err != nil {
		return "", err
	}
	return description, nil
}

// MatchImage describes the image and searches with the description.
// Options are validated before the vision call is made.
func (s *Service) MatchImage(ctx context.Context, dataURL string, limit int, threshold float64) (*models.MatchResult, error) {
	opts := models.SearchOptions{Limit: limit, Threshold: threshold}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	description, err := s.Describe(ctx, dataURL)
	if err != nil {
		return nil, err
	}

	params, err := models.NewSearchParams(description, limit, threshold)
	if err != nil {
		return nil, err
	}

	results, err := s.search(ctx, params, models.AuditMatchImage)
	if err != nil {
		return nil, err
	}

	return &models.MatchResult{
		Description: description,
		Results:     results,
	}, nil
}

// Upload validates and stores one sound bite
func (s *Service) Upload(ctx context.Context, sound *models.NewSoundBite) (*models.SoundBite, error) {
	sound.Normalize()
	if err := sound.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	id, err := s.store.Create(ctx, sound)
	if err != nil {
		err = fmt.Errorf("failed to upload sound bite: %w", err)
		s.logger.Error().Err(err).Str("title", sound.Title).Msg("Sound upload failed")
		s.record(ctx, models.AuditUploadSound, start, err, sound.Title, 0)
		return nil, err
	}

	s.logger.Info().Str("id", id).Str("title", sound.Title).Msg("Sound bite uploaded")
	s.record(ctx, models.AuditUploadSound, start, nil, sound.Title, 1)

	return sound.WithID(id), nil
}

// Ready reports whether the vector store accepts requests
func (s *Service) Ready(ctx context.Context) error {
	return s.store.Ready(ctx)
}

// record writes an audit entry. Audit failures are logged, never returned.
func (s *Service) record(ctx context.Context, op models.AuditOperation, start time.Time, opErr error, query string, count int) {
	if s.audit == nil || !s.auditCfg.Enabled {
		return
	}

	entry := &models.AuditEntry{
		Operation:   op,
		Timestamp:   start,
		Success:     opErr == nil,
		DurationMs:  time.Since(start).Milliseconds(),
		ResultCount: count,
	}
	if opErr != nil {
		entry.Error = auditError(op, opErr)
	}
	if s.auditCfg.LogQueries {
		entry.QueryText = query
	}

	if err := s.audit.Record(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn().Err(err).Str("operation", string(op)).Msg("Failed to record audit entry")
	}
}

// auditError is the client-facing summary of a failure. Wrapped provider and
// database errors can carry response bodies, so they are never stored.
func auditError(op models.AuditOperation, err error) string {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.Is(err, vision.ErrNoDescription):
		return "No description generated"
	}

	switch op {
	case models.AuditDescribeImage:
		return "Failed to analyze image"
	case models.AuditUploadSound:
		return "Failed to upload sound bite"
	default:
		return "Failed to search sounds"
	}
}

var _ interfaces.SoundService = (*Service)(nil)
