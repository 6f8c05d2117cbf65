package weaviate

import (
	"encoding/json"
	"fmt"
	"strings"

	wvmodels "github.com/weaviate/weaviate/entities/models"

	"github.com/ternarybob/soundbite/internal/models"
)

// DecodeError reports a Weaviate response whose shape does not match what was requested
type DecodeError struct {
	Op     string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unexpected %s response: %s", e.Op, e.Reason)
}

// soundBiteObject is one object in a Get response
type soundBiteObject struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	AudioURL    string          `json:"audioUrl"`
	Tags        []string        `json:"tags"`
	Duration    float64         `json:"duration"`
	Additional  *additionalInfo `json:"_additional"`
}

type additionalInfo struct {
	ID       string   `json:"id"`
	Distance *float64 `json:"distance"`
}

// getSoundBiteResponse is the data of a Get { <Class> { ... } } query
type getSoundBiteResponse struct {
	Get map[string][]soundBiteObject `json:"Get"`
}

// aggregateResponse is the data of an Aggregate { <Class> { meta { count } } } query
type aggregateResponse struct {
	Aggregate map[string][]struct {
		Meta *struct {
			Count *int `json:"count"`
		} `json:"meta"`
	} `json:"Aggregate"`
}

// graphQLErrors joins the messages of a GraphQL errors array, "" when empty
func graphQLErrors(resp *wvmodels.GraphQLResponse) string {
	if resp == nil || len(resp.Errors) == 0 {
		return ""
	}
	messages := make([]string, 0, len(resp.Errors))
	for _, e := range resp.Errors {
		if e != nil {
			messages = append(messages, e.Message)
		}
	}
	return strings.Join(messages, "; ")
}

// remarshal converts the loosely typed GraphQL data into a typed target
func remarshal(op string, data interface{}, target interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return &DecodeError{Op: op, Reason: err.Error()}
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return &DecodeError{Op: op, Reason: err.Error()}
	}
	return nil
}

// decodeNearText extracts candidates for className. Every object must carry
// an id and a distance.
func decodeNearText(resp *wvmodels.GraphQLResponse, className string) ([]models.SearchCandidate, error) {
	if resp == nil || resp.Data == nil {
		return nil, &DecodeError{Op: "nearText", Reason: "missing data"}
	}

	var decoded getSoundBiteResponse
	if err := remarshal("nearText", resp.Data, &decoded); err != nil {
		return nil, err
	}
	if decoded.Get == nil {
		return nil, &DecodeError{Op: "nearText", Reason: "missing Get"}
	}
	objects, ok := decoded.Get[className]
	if !ok {
		return nil, &DecodeError{Op: "nearText", Reason: fmt.Sprintf("missing class %s", className)}
	}

	candidates := make([]models.SearchCandidate, 0, len(objects))
	for i, obj := range objects {
		if obj.Additional == nil || obj.Additional.Distance == nil {
			return nil, &DecodeError{Op: "nearText", Reason: fmt.Sprintf("object %d has no distance", i)}
		}
		candidates = append(candidates, models.SearchCandidate{
			SoundBite: obj.toSoundBite(obj.Additional.ID),
			Distance:  *obj.Additional.Distance,
		})
	}
	return candidates, nil
}

// decodeCount extracts meta.count for className
func decodeCount(resp *wvmodels.GraphQLResponse, className string) (int, error) {
	if resp == nil || resp.Data == nil {
		return 0, &DecodeError{Op: "aggregate", Reason: "missing data"}
	}

	var decoded aggregateResponse
	if err := remarshal("aggregate", resp.Data, &decoded); err != nil {
		return 0, err
	}
	groups := decoded.Aggregate[className]
	if len(groups) == 0 {
		return 0, nil
	}
	if groups[0].Meta == nil || groups[0].Meta.Count == nil {
		return 0, &DecodeError{Op: "aggregate", Reason: "missing meta.count"}
	}
	return *groups[0].Meta.Count, nil
}

// decodeObject converts a REST object into a SoundBite
func decodeObject(obj *wvmodels.Object) (*models.SoundBite, error) {
	if obj == nil {
		return nil, &DecodeError{Op: "object", Reason: "nil object"}
	}
	var props soundBiteObject
	if err := remarshal("object", obj.Properties, &props); err != nil {
		return nil, err
	}
	sb := props.toSoundBite(string(obj.ID))
	return &sb, nil
}

func (o soundBiteObject) toSoundBite(id string) models.SoundBite {
	tags := o.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.SoundBite{
		ID:          id,
		Title:       o.Title,
		Description: o.Description,
		AudioURL:    o.AudioURL,
		Tags:        tags,
		Duration:    o.Duration,
	}
}
