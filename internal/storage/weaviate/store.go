// Package weaviate implements interfaces.SoundStore on a Weaviate instance
// whose text2vec-openai module vectorizes queries and objects.
package weaviate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	weaviateclient "github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	wvmodels "github.com/weaviate/weaviate/entities/models"

	"github.com/ternarybob/soundbite/internal/common"
	"github.com/ternarybob/soundbite/internal/interfaces"
	"github.com/ternarybob/soundbite/internal/models"
)

// Store is a SoundStore backed by Weaviate
type Store struct {
	client    *weaviateclient.Client
	className string
	logger    arbor.ILogger
}

var _ interfaces.SoundStore = (*Store)(nil)

// NewStore connects to config.Weaviate.URL. The Weaviate and vectorizer keys
// are resolved from env, the KV store, then config; both are optional.
func NewStore(ctx context.Context, config *common.WeaviateConfig, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) (*Store, error) {
	scheme, host, err := splitURL(config.URL)
	if err != nil {
		return nil, err
	}

	timeout := 30 * time.Second
	if config.Timeout != "" {
		d, err := time.ParseDuration(config.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid weaviate timeout '%s': %w", config.Timeout, err)
		}
		timeout = d
	}

	cfg := weaviateclient.Config{
		Host:             host,
		Scheme:           scheme,
		ConnectionClient: &http.Client{Timeout: timeout},
		Headers:          map[string]string{},
	}

	if apiKey, err := common.ResolveAPIKey(ctx, kvStorage, "weaviate_api_key", config.APIKey); err == nil {
		cfg.AuthConfig = auth.ApiKey{Value: apiKey}
	}

	vectorizerKey, err := common.ResolveAPIKey(ctx, kvStorage, "vectorizer_api_key", config.VectorizerAPIKey)
	if err == nil {
		cfg.Headers[vectorizerHeader] = vectorizerKey
	} else {
		logger.Warn().Msg("No vectorizer API key configured, Weaviate must supply its own")
	}

	client, err := weaviateclient.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	className := config.ClassName
	if className == "" {
		className = "SoundBite"
	}

	logger.Info().
		Str("scheme", scheme).
		Str("host", host).
		Str("class", className).
		Bool("auth", cfg.AuthConfig != nil).
		Msg("Weaviate store initialized")

	return &Store{
		client:    client,
		className: className,
		logger:    logger,
	}, nil
}

// splitURL accepts "https://host:port" or a bare "host:port" (http)
func splitURL(raw string) (scheme, host string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", fmt.Errorf("weaviate url is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid weaviate url: %w", err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("invalid weaviate url %q: missing host", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", fmt.Errorf("invalid weaviate url %q: scheme must be http or https", raw)
	}
	return u.Scheme, u.Host, nil
}

// ClassName returns the sound bite class name
func (s *Store) ClassName() string {
	return s.className
}

// NearText runs one Get { <Class>(nearText, limit) } query
func (s *Store) NearText(ctx context.Context, query string, limit int) ([]models.SearchCandidate, error) {
	nearText := s.client.GraphQL().NearTextArgBuilder().WithConcepts([]string{query})

	resp, err := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(searchFields()...).
		WithNearText(nearText).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if msg := graphQLErrors(resp); msg != "" {
		return nil, fmt.Errorf("graphql: %s", msg)
	}

	return decodeNearText(resp, s.className)
}

func searchFields() []graphql.Field {
	fields := make([]graphql.Field, 0, len(soundBiteFields)+1)
	for _, name := range soundBiteFields {
		fields = append(fields, graphql.Field{Name: name})
	}
	return append(fields, graphql.Field{
		Name:   "_additional",
		Fields: []graphql.Field{{Name: "id"}, {Name: "distance"}},
	})
}

// Create inserts one object and returns its ID
func (s *Store) Create(ctx context.Context, sound *models.NewSoundBite) (string, error) {
	created, err := s.client.Data().Creator().
		WithClassName(s.className).
		WithProperties(sound.Properties()).
		Do(ctx)
	if err != nil {
		return "", err
	}
	if created == nil || created.Object == nil {
		return "", &DecodeError{Op: "create", Reason: "missing object"}
	}
	return string(created.Object.ID), nil
}

// BatchCreate inserts all objects in one batch request. Per-object failures
// reported by Weaviate fail the whole call.
func (s *Store) BatchCreate(ctx context.Context, sounds []*models.NewSoundBite) ([]string, error) {
	objects := make([]*wvmodels.Object, 0, len(sounds))
	for _, sound := range sounds {
		objects = append(objects, &wvmodels.Object{
			Class:      s.className,
			Properties: sound.Properties(),
		})
	}

	results, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(results))
	var failures []string
	for _, r := range results {
		if r.Result != nil && r.Result.Errors != nil {
			for _, item := range r.Result.Errors.Error {
				if item != nil {
					failures = append(failures, item.Message)
				}
			}
			continue
		}
		ids = append(ids, string(r.ID))
	}
	if len(failures) > 0 {
		return ids, fmt.Errorf("batch insert: %d of %d objects failed: %s",
			len(sounds)-len(ids), len(sounds), strings.Join(failures, "; "))
	}
	return ids, nil
}

// Get fetches one object by ID
func (s *Store) Get(ctx context.Context, id string) (*models.SoundBite, error) {
	exists, err := s.client.Data().Checker().WithClassName(s.className).WithID(id).Do(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, interfaces.ErrObjectNotFound
	}

	objects, err := s.client.Data().ObjectsGetter().
		WithClassName(s.className).
		WithID(id).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, interfaces.ErrObjectNotFound
	}
	return decodeObject(objects[0])
}

// Delete removes one object by ID, returning ErrObjectNotFound if absent
func (s *Store) Delete(ctx context.Context, id string) error {
	exists, err := s.client.Data().Checker().WithClassName(s.className).WithID(id).Do(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return interfaces.ErrObjectNotFound
	}
	return s.client.Data().Deleter().WithClassName(s.className).WithID(id).Do(ctx)
}

// List returns up to limit stored objects in storage order
func (s *Store) List(ctx context.Context, limit int) ([]models.SoundBite, error) {
	getter := s.client.Data().ObjectsGetter().WithClassName(s.className)
	if limit > 0 {
		getter = getter.WithLimit(limit)
	}

	objects, err := getter.Do(ctx)
	if err != nil {
		return nil, err
	}

	sounds := make([]models.SoundBite, 0, len(objects))
	for _, obj := range objects {
		sb, err := decodeObject(obj)
		if err != nil {
			return nil, err
		}
		sounds = append(sounds, *sb)
	}
	return sounds, nil
}

// Count runs Aggregate { <Class> { meta { count } } }
func (s *Store) Count(ctx context.Context, className string) (int, error) {
	resp, err := s.client.GraphQL().Aggregate().
		WithClassName(className).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if msg := graphQLErrors(resp); msg != "" {
		return 0, fmt.Errorf("graphql: %s", msg)
	}
	return decodeCount(resp, className)
}

// Schema returns every class definition without counts
func (s *Store) Schema(ctx context.Context) (*models.Schema, error) {
	dump, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return nil, err
	}

	schema := &models.Schema{Classes: []models.SchemaClass{}}
	if dump == nil {
		return schema, nil
	}
	for _, c := range dump.Classes {
		if c != nil {
			schema.Classes = append(schema.Classes, toSchemaClass(c))
		}
	}
	return schema, nil
}

func toSchemaClass(c *wvmodels.Class) models.SchemaClass {
	props := make([]models.SchemaProperty, 0, len(c.Properties))
	for _, p := range c.Properties {
		if p == nil {
			continue
		}
		props = append(props, models.SchemaProperty{
			Name:        p.Name,
			DataType:    p.DataType,
			Description: p.Description,
		})
	}
	return models.SchemaClass{
		Class:       c.Class,
		Description: c.Description,
		Vectorizer:  c.Vectorizer,
		Properties:  props,
	}
}

// ClassExists reports whether the sound bite class is defined
func (s *Store) ClassExists(ctx context.Context) (bool, error) {
	return s.client.Schema().ClassExistenceChecker().WithClassName(s.className).Do(ctx)
}

// CreateClass defines the sound bite class
func (s *Store) CreateClass(ctx context.Context) error {
	return s.client.Schema().ClassCreator().WithClass(soundBiteClass(s.className)).Do(ctx)
}

// DeleteClass drops the class and all its objects
func (s *Store) DeleteClass(ctx context.Context) error {
	return s.client.Schema().ClassDeleter().WithClassName(s.className).Do(ctx)
}

// Ready checks the /v1/.well-known/ready endpoint
func (s *Store) Ready(ctx context.Context) error {
	ready, err := s.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return err
	}
	if !ready {
		return fmt.Errorf("weaviate is not ready")
	}
	return nil
}
