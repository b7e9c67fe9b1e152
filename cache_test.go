package brandsite

import (
	"testing"
	"time"
)

func TestContentCacheServesAndInvalidates(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	if err := s.UpsertContentBlock(ContentBlock{Slug: "home.hero.title", Content: "original"}, false); err != nil {
		t.Fatal(err)
	}
	cache := NewContentCache(s, time.Hour)

	b, ok, err := cache.Get("home.hero.title")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if b.Content != "original" {
		t.Errorf("Content = %q", b.Content)
	}

	// A store write alone does not show up until the cache is invalidated.
	if err := s.UpdateContentBlock("home.hero.title", "edited"); err != nil {
		t.Fatal(err)
	}
	b, _, _ = cache.Get("home.hero.title")
	if b.Content != "original" {
		t.Errorf("Content = %q, want stale copy before invalidation", b.Content)
	}

	cache.Invalidate()
	b, _, _ = cache.Get("home.hero.title")
	if b.Content != "edited" {
		t.Errorf("Content = %q, want fresh copy after invalidation", b.Content)
	}
}

func TestContentCacheTTLExpiry(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	if err := s.UpsertContentBlock(ContentBlock{Slug: "k", Content: "v1"}, false); err != nil {
		t.Fatal(err)
	}
	cache := NewContentCache(s, 10*time.Millisecond)

	if got := cache.GetContent("k", ""); got != "v1" {
		t.Fatalf("GetContent = %q", got)
	}
	if err := s.UpdateContentBlock("k", "v2"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if got := cache.GetContent("k", ""); got != "v2" {
		t.Errorf("GetContent = %q, want reload after TTL", got)
	}
}

func TestContentCacheFallback(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	cache := NewContentCache(s, time.Hour)
	if got := cache.GetContent("missing.slug", "default copy"); got != "default copy" {
		t.Errorf("GetContent = %q, want fallback", got)
	}
}
