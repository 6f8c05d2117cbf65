package models

import "strings"

// SearchOptions bound how many candidates are fetched and which survive ranking
type SearchOptions struct {
	Limit     int     `validate:"gt=0"`
	Threshold float64 `validate:"gte=0,lte=1"`
}

// Validate checks limit and threshold, returning a *ValidationError
func (o SearchOptions) Validate() error {
	return validateStruct(o, searchParamsMessages)
}

// SearchParams are the validated inputs of a sound search
type SearchParams struct {
	Query string `validate:"required"`
	SearchOptions
}

var searchParamsMessages = map[string]string{
	"Query.required": "Query cannot be empty",
	"Limit.gt":       "Limit must be a positive integer",
	"Threshold.gte":  "Threshold must be between 0 and 1",
	"Threshold.lte":  "Threshold must be between 0 and 1",
}

// NewSearchParams trims the query and validates all parameters
func NewSearchParams(query string, limit int, threshold float64) (*SearchParams, error) {
	p := &SearchParams{
		Query: strings.TrimSpace(query),
		SearchOptions: SearchOptions{
			Limit:     limit,
			Threshold: threshold,
		},
	}
	if err := validateStruct(p, searchParamsMessages); err != nil {
		return nil, err
	}
	return p, nil
}

// SearchCandidate is a raw vector search hit with its cosine distance
type SearchCandidate struct {
	SoundBite
	Distance float64 `json:"distance"`
}

// MatchResult is the outcome of describing an image and searching with the description
type MatchResult struct {
	Description string            `json:"description"`
	Results     []RankedSoundBite `json:"results"`
}
