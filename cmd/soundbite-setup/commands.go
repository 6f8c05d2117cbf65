package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ternarybob/soundbite/internal/interfaces"
	"github.com/ternarybob/soundbite/internal/models"
)

// objectCatalog is the part of the sounds service used by -get and -delete
type objectCatalog interface {
	Get(ctx context.Context, id string) (*models.SoundBite, error)
	Delete(ctx context.Context, id string) error
}

func printSound(w io.Writer, sound *models.SoundBite) {
	fmt.Fprintf(w, "ID:          %s\n", sound.ID)
	fmt.Fprintf(w, "Title:       %s\n", sound.Title)
	fmt.Fprintf(w, "Description: %s\n", sound.Description)
	fmt.Fprintf(w, "Audio URL:   %s\n", sound.AudioURL)
	fmt.Fprintf(w, "Tags:        %s\n", strings.Join(sound.Tags, ", "))
	fmt.Fprintf(w, "Duration:    %gs\n", sound.Duration)
}

// showSound prints one stored sound bite
func showSound(ctx context.Context, catalog objectCatalog, id string, w io.Writer) error {
	sound, err := catalog.Get(ctx, id)
	if err != nil {
		return notFound(id, err)
	}
	printSound(w, sound)
	return nil
}

// deleteSound prints the object being removed, then deletes it
func deleteSound(ctx context.Context, catalog objectCatalog, id string, w io.Writer) error {
	sound, err := catalog.Get(ctx, id)
	if err != nil {
		return notFound(id, err)
	}
	printSound(w, sound)

	if err := catalog.Delete(ctx, id); err != nil {
		return notFound(id, err)
	}
	fmt.Fprintf(w, "Deleted %s\n", id)
	return nil
}

func notFound(id string, err error) error {
	if errors.Is(err, interfaces.ErrObjectNotFound) {
		return fmt.Errorf("sound bite %s not found", id)
	}
	return err
}

// keyCommand holds the local key store flags. Keys set here are resolved
// like variables.toml entries (e.g. gemini_api_key, OPENAI_API_KEY).
type keyCommand struct {
	set    string // NAME=VALUE
	delete string
	list   bool
}

func (c keyCommand) active() bool {
	return c.set != "" || c.delete != "" || c.list
}

func (c keyCommand) run(ctx context.Context, kv interfaces.KeyValueStorage, w io.Writer) error {
	switch {
	case c.set != "":
		name, value, ok := strings.Cut(c.set, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" || value == "" {
			return fmt.Errorf("-set-key expects NAME=VALUE")
		}
		if err := kv.Set(ctx, name, value, "Set by soundbite-setup"); err != nil {
			return err
		}
		fmt.Fprintf(w, "Stored %s\n", strings.ToLower(name))
		return nil

	case c.delete != "":
		if err := kv.Delete(ctx, c.delete); err != nil {
			if errors.Is(err, interfaces.ErrKeyNotFound) {
				return fmt.Errorf("key %s not found", c.delete)
			}
			return err
		}
		fmt.Fprintf(w, "Deleted key %s\n", strings.ToLower(c.delete))
		return nil

	default:
		pairs, err := kv.List(ctx)
		if err != nil {
			return err
		}
		sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
		for _, pair := range pairs {
			fmt.Fprintf(w, "%-28s %-14s %s\n", pair.Key, maskValue(pair.Value), pair.Description)
		}
		return nil
	}
}

func maskValue(value string) string {
	if len(value) < 8 {
		return "••••••••"
	}
	return value[:4] + "..." + value[len(value)-4:]
}
