package weaviate

import (
	wvmodels "github.com/weaviate/weaviate/entities/models"
)

const (
	vectorizerModule = "text2vec-openai"

	// vectorizerHeader carries the key the vectorizer module uses server-side
	vectorizerHeader = "X-OpenAI-Api-Key"
)

// soundBiteFields are the properties requested for every sound bite
var soundBiteFields = []string{"title", "description", "audioUrl", "tags", "duration"}

// soundBiteClass is the class definition for stored sound bites. Only text
// properties feed the vectorizer; nothing is embedded client-side.
func soundBiteClass(name string) *wvmodels.Class {
	return &wvmodels.Class{
		Class:       name,
		Description: "A sound bite with audio content and metadata",
		Vectorizer:  vectorizerModule,
		ModuleConfig: map[string]interface{}{
			vectorizerModule: map[string]interface{}{
				"model":        "ada",
				"modelVersion": "002",
				"type":         "text",
			},
		},
		Properties: []*wvmodels.Property{
			{
				Name:        "title",
				DataType:    []string{"string"},
				Description: "The title of the sound bite",
			},
			{
				Name:        "description",
				DataType:    []string{"text"},
				Description: "Detailed description of the sound",
			},
			{
				Name:        "audioUrl",
				DataType:    []string{"string"},
				Description: "URL to the audio file",
			},
			{
				Name:        "tags",
				DataType:    []string{"string[]"},
				Description: "Tags associated with the sound",
			},
			{
				Name:        "duration",
				DataType:    []string{"number"},
				Description: "Duration of the sound in seconds",
			},
		},
	}
}
