package weaviate

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	wvmodels "github.com/weaviate/weaviate/entities/models"
)

func graphQLResponse(t *testing.T, body string) *wvmodels.GraphQLResponse {
	t.Helper()
	var resp wvmodels.GraphQLResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	return &resp
}

func TestDecodeNearText(t *testing.T) {
	resp := graphQLResponse(t, `{"data":{"Get":{"SoundBite":[
		{"title":"Rain on Roof","description":"rain","audioUrl":"https://example.com/rain.mp3","tags":["rain","calm"],"duration":300,
		 "_additional":{"id":"a1","distance":0.2}},
		{"title":"Dog Barking","description":"dog","audioUrl":"https://example.com/dog.mp3","tags":null,"duration":25,
		 "_additional":{"id":"b2","distance":1.4}}
	]}}}`)

	candidates, err := decodeNearText(resp, "SoundBite")
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "a1", candidates[0].ID)
	assert.Equal(t, "Rain on Roof", candidates[0].Title)
	assert.Equal(t, []string{"rain", "calm"}, candidates[0].Tags)
	assert.Equal(t, 300.0, candidates[0].Duration)
	assert.InDelta(t, 0.2, candidates[0].Distance, 1e-9)

	assert.Equal(t, []string{}, candidates[1].Tags)
	assert.InDelta(t, 1.4, candidates[1].Distance, 1e-9)
}

func TestDecodeNearText_EmptyResult(t *testing.T) {
	resp := graphQLResponse(t, `{"data":{"Get":{"SoundBite":[]}}}`)
	candidates, err := decodeNearText(resp, "SoundBite")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestDecodeNearText_ShapeMismatch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no data", `{}`},
		{"no Get", `{"data":{"Aggregate":{}}}`},
		{"wrong class", `{"data":{"Get":{"Other":[]}}}`},
		{"missing distance", `{"data":{"Get":{"SoundBite":[{"title":"x","_additional":{"id":"a"}}]}}}`},
		{"missing additional", `{"data":{"Get":{"SoundBite":[{"title":"x"}]}}}`},
		{"wrong type", `{"data":{"Get":{"SoundBite":[{"title":42,"_additional":{"id":"a","distance":0.1}}]}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeNearText(graphQLResponse(t, tt.body), "SoundBite")
			require.Error(t, err)
			var decodeErr *DecodeError
			assert.True(t, errors.As(err, &decodeErr))
		})
	}
}

func TestGraphQLErrors(t *testing.T) {
	resp := graphQLResponse(t, `{"errors":[{"message":"no api key found"},{"message":"quota"}]}`)
	assert.Equal(t, "no api key found; quota", graphQLErrors(resp))
	assert.Equal(t, "", graphQLErrors(graphQLResponse(t, `{"data":{}}`)))
	assert.Equal(t, "", graphQLErrors(nil))
}

func TestDecodeCount(t *testing.T) {
	count, err := decodeCount(graphQLResponse(t, `{"data":{"Aggregate":{"SoundBite":[{"meta":{"count":10}}]}}}`), "SoundBite")
	require.NoError(t, err)
	assert.Equal(t, 10, count)

	count, err = decodeCount(graphQLResponse(t, `{"data":{"Aggregate":{"SoundBite":[]}}}`), "SoundBite")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = decodeCount(graphQLResponse(t, `{"data":{"Aggregate":{"SoundBite":[{"meta":{}}]}}}`), "SoundBite")
	assert.Error(t, err)
}

func TestDecodeObject(t *testing.T) {
	obj := &wvmodels.Object{
		ID: "c3",
		Properties: map[string]interface{}{
			"title":       "Keyboard Typing",
			"description": "clacking keys",
			"audioUrl":    "https://example.com/typing.mp3",
			"tags":        []interface{}{"office", "keyboard"},
			"duration":    30.0,
		},
	}

	sb, err := decodeObject(obj)
	require.NoError(t, err)
	assert.Equal(t, "c3", sb.ID)
	assert.Equal(t, "Keyboard Typing", sb.Title)
	assert.Equal(t, []string{"office", "keyboard"}, sb.Tags)
	assert.Equal(t, 30.0, sb.Duration)
}

func TestSplitURL(t *testing.T) {
	scheme, host, err := splitURL("https://cluster.weaviate.network")
	require.NoError(t, err)
	assert.Equal(t, "https", scheme)
	assert.Equal(t, "cluster.weaviate.network", host)

	scheme, host, err = splitURL("localhost:8080")
	require.NoError(t, err)
	assert.Equal(t, "http", scheme)
	assert.Equal(t, "localhost:8080", host)

	_, _, err = splitURL("")
	assert.Error(t, err)

	_, _, err = splitURL("ftp://example.com")
	assert.Error(t, err)
}

func TestSoundBiteClass(t *testing.T) {
	class := soundBiteClass("SoundBite")
	assert.Equal(t, "SoundBite", class.Class)
	assert.Equal(t, "text2vec-openai", class.Vectorizer)
	require.Len(t, class.Properties, len(soundBiteFields))
	for i, p := range class.Properties {
		assert.Equal(t, soundBiteFields[i], p.Name)
	}
}
