package weaviate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/soundbite/internal/common"
	"github.com/ternarybob/soundbite/internal/interfaces"
)

// capturedRequest is what the fake Weaviate saw on /v1/graphql
type capturedRequest struct {
	mu            sync.Mutex
	query         string
	vectorizerKey string
	calls         int
}

func fakeWeaviate(t *testing.T, captured *capturedRequest, response string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/graphql":
			body, err := io.ReadAll(r.Body)
			if err != nil {
				t.Errorf("read body: %v", err)
			}
			var payload struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal(body, &payload); err != nil {
				t.Errorf("graphql body is not JSON: %v", err)
			}

			captured.mu.Lock()
			captured.query = payload.Query
			captured.vectorizerKey = r.Header.Get("X-OpenAI-Api-Key")
			captured.calls++
			captured.mu.Unlock()

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(response))
		case r.Method == http.MethodHead:
			// object existence checks: nothing is stored
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"OPENAI_API_KEY", "SOUNDBITE_VECTORIZER_API_KEY",
		"WEAVIATE_API_KEY", "SOUNDBITE_WEAVIATE_API_KEY",
	} {
		t.Setenv(name, "")
	}
}

func newTestStore(t *testing.T, url string) *Store {
	t.Helper()
	clearKeyEnv(t)
	store, err := NewStore(context.Background(), &common.WeaviateConfig{
		URL:              url,
		ClassName:        "SoundBite",
		VectorizerAPIKey: "sk-test",
	}, nil, arbor.NewLogger())
	require.NoError(t, err)
	return store
}

func TestNearText_RequestShape(t *testing.T) {
	captured := &capturedRequest{}
	srv := fakeWeaviate(t, captured, `{"data":{"Get":{"SoundBite":[
		{"title":"Rain on Roof","description":"Steady rain falling on a tin roof","audioUrl":"https://example.com/rain.mp3",
		 "tags":["rain","calm"],"duration":300,"_additional":{"id":"a1","distance":0.2}}
	]}}}`)
	store := newTestStore(t, srv.URL)

	candidates, err := store.NearText(context.Background(), "rainy window at night", 5)
	require.NoError(t, err)

	captured.mu.Lock()
	defer captured.mu.Unlock()
	require.Equal(t, 1, captured.calls)
	assert.Equal(t, "sk-test", captured.vectorizerKey)

	query := captured.query
	assert.Contains(t, query, "SoundBite")
	assert.Contains(t, query, "nearText")
	assert.Contains(t, query, "rainy window at night")
	assert.Regexp(t, regexp.MustCompile(`limit:\s*5\b`), query)
	for _, field := range []string{"title", "description", "audioUrl", "tags", "duration"} {
		assert.Contains(t, query, field)
	}
	assert.Regexp(t, regexp.MustCompile(`_additional\s*\{\s*id\s+distance\s*\}`), query)

	require.Len(t, candidates, 1)
	assert.Equal(t, "a1", candidates[0].ID)
	assert.Equal(t, "Rain on Roof", candidates[0].Title)
	assert.Equal(t, "https://example.com/rain.mp3", candidates[0].AudioURL)
	assert.Equal(t, []string{"rain", "calm"}, candidates[0].Tags)
	assert.Equal(t, 300.0, candidates[0].Duration)
	assert.InDelta(t, 0.2, candidates[0].Distance, 1e-9)
}

func TestNearText_GraphQLErrors(t *testing.T) {
	captured := &capturedRequest{}
	srv := fakeWeaviate(t, captured, `{"errors":[{"message":"no module with name text2vec-openai present"}]}`)
	store := newTestStore(t, srv.URL)

	_, err := store.NearText(context.Background(), "dog", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text2vec-openai")
}

func TestNearText_CustomClassName(t *testing.T) {
	captured := &capturedRequest{}
	srv := fakeWeaviate(t, captured, `{"data":{"Get":{"Effects":[]}}}`)
	clearKeyEnv(t)
	store, err := NewStore(context.Background(), &common.WeaviateConfig{URL: srv.URL, ClassName: "Effects"}, nil, arbor.NewLogger())
	require.NoError(t, err)

	candidates, err := store.NearText(context.Background(), "thunder", 3)
	require.NoError(t, err)
	assert.Empty(t, candidates)

	captured.mu.Lock()
	defer captured.mu.Unlock()
	assert.Contains(t, captured.query, "Effects")
	assert.Empty(t, captured.vectorizerKey)
}

func TestGet_MissingObject(t *testing.T) {
	srv := fakeWeaviate(t, &capturedRequest{}, `{}`)
	store := newTestStore(t, srv.URL)

	_, err := store.Get(context.Background(), "7c9e6679-7425-40de-944b-e07fc1f90ae7")
	assert.ErrorIs(t, err, interfaces.ErrObjectNotFound)
}
