package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SoundBite is a stored audio clip with descriptive metadata.
// ID is assigned by the vector database at insertion.
type SoundBite struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	AudioURL    string   `json:"audioUrl"`
	Tags        []string `json:"tags"`
	Duration    float64  `json:"duration"`
}

// RankedSoundBite is a SoundBite returned by a search, carrying the
// confidence (0-100) derived from the database distance for that search only.
type RankedSoundBite struct {
	SoundBite
	Confidence float64 `json:"confidence"`
}

// NewSoundBite is the input for creating a SoundBite
type NewSoundBite struct {
	Title       string   `json:"title" yaml:"title" validate:"required"`
	Description string   `json:"description" yaml:"description" validate:"required"`
	AudioURL    string   `json:"audioUrl" yaml:"audioUrl" validate:"required"`
	Tags        []string `json:"tags" yaml:"tags"`
	Duration    float64  `json:"duration" yaml:"duration" validate:"required,gt=0"`
}

// Normalize trims text fields and drops empty tags, keeping tag order
func (n *NewSoundBite) Normalize() {
	n.Title = strings.TrimSpace(n.Title)
	n.Description = strings.TrimSpace(n.Description)
	n.AudioURL = strings.TrimSpace(n.AudioURL)
	n.Tags = normalizeTags(n.Tags)
}

// Validate checks required fields and duration, returning a *ValidationError.
// Duration must be finite; an infinite value cannot be stored.
func (n *NewSoundBite) Validate() error {
	if err := validateStruct(n, newSoundBiteMessages); err != nil {
		return err
	}
	if math.IsInf(n.Duration, 0) {
		return NewValidationError("duration", newSoundBiteMessages["Duration.gt"])
	}
	return nil
}

// Properties returns the property map stored in the vector database
func (n *NewSoundBite) Properties() map[string]interface{} {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]interface{}{
		"title":       n.Title,
		"description": n.Description,
		"audioUrl":    n.AudioURL,
		"tags":        tags,
		"duration":    n.Duration,
	}
}

// WithID returns the stored representation of the new sound bite
func (n *NewSoundBite) WithID(id string) *SoundBite {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return &SoundBite{
		ID:          id,
		Title:       n.Title,
		Description: n.Description,
		AudioURL:    n.AudioURL,
		Tags:        tags,
		Duration:    n.Duration,
	}
}

var newSoundBiteMessages = map[string]string{
	"required":    "Missing required fields: title, description, audioUrl, duration",
	"Duration.gt": "Duration must be a positive number",
}

// TagList accepts tags either as a JSON array or as a comma-separated string
type TagList []string

// UnmarshalJSON implements json.Unmarshaler
func (t *TagList) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		*t = ParseTags(v)
	case []interface{}:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			tags = append(tags, stringify(item))
		}
		*t = normalizeTags(tags)
	default:
		// null, numbers and objects carry no tags
		*t = TagList{}
	}
	return nil
}

// ParseTags splits a comma-separated tag string, trimming entries and
// dropping empty ones: "a, b ,c" -> ["a", "b", "c"]
func ParseTags(s string) []string {
	return normalizeTags(strings.Split(s, ","))
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func stringify(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

// FlexibleDuration accepts a duration in seconds as a JSON number or a
// numeric string. Unparseable strings decode to NaN so validation rejects them.
type FlexibleDuration float64

// UnmarshalJSON implements json.Unmarshaler
func (d *FlexibleDuration) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case float64:
		*d = FlexibleDuration(v)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			*d = 0
			return nil
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsInf(f, 0) {
			f = math.NaN()
		}
		*d = FlexibleDuration(f)
	case nil:
		*d = 0
	default:
		*d = FlexibleDuration(math.NaN())
	}
	return nil
}

// UploadSoundRequest is the JSON body accepted by the upload endpoint
type UploadSoundRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	AudioURL    string           `json:"audioUrl"`
	Tags        TagList          `json:"tags"`
	Duration    FlexibleDuration `json:"duration"`
}

// ToNewSoundBite converts the loosely typed request into a NewSoundBite
func (r *UploadSoundRequest) ToNewSoundBite() *NewSoundBite {
	n := &NewSoundBite{
		Title:       r.Title,
		Description: r.Description,
		AudioURL:    r.AudioURL,
		Tags:        []string(r.Tags),
		Duration:    float64(r.Duration),
	}
	n.Normalize()
	return n
}
