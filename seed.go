package brandsite

import (
	"encoding/json"
	"fmt"
)

// SeedFile is the JSON shape consumed by Seed: carousels and default
// content blocks provisioned out-of-band.
type SeedFile struct {
	Carousels []Carousel `json:"carousels"`
	Content   []struct {
		Slug        string      `json:"slug"`
		Content     string      `json:"content"`
		ContentType ContentType `json:"contentType"`
	} `json:"content"`
}

// Seed loads carousels and content-block defaults into the store.
// Carousels are upserted by slug. Content blocks are only inserted unless
// force is set, so edited copy survives a re-seed.
func Seed(store *Store, data []byte, force bool) error {
	var f SeedFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}
	for _, c := range f.Carousels {
		if c.Slug == "" {
			c.Slug = Slugify(c.Label)
		}
		if c.Slug == "" {
			return fmt.Errorf("seed carousel missing slug")
		}
		if c.Label == "" {
			c.Label = c.Slug
		}
		if err := store.UpsertCarousel(c); err != nil {
			return fmt.Errorf("seed carousel %s: %w", c.Slug, err)
		}
	}
	for _, b := range f.Content {
		if b.Slug == "" {
			return fmt.Errorf("seed content block missing slug")
		}
		block := ContentBlock{Slug: b.Slug, Content: b.Content, ContentType: b.ContentType}
		if err := store.UpsertContentBlock(block, force); err != nil {
			return fmt.Errorf("seed content block %s: %w", b.Slug, err)
		}
	}
	return nil
}
