package main

import (
	"context"
	"strings"
	"testing"

	"github.com/veridianfields/brandsite"
)

func TestAdminImagesDeleteAsksConfirmation(t *testing.T) {
	views := defaultViews(brandsite.SiteConfig{Name: "Veridian Fields"})

	unused := []brandsite.Image{
		{ID: "img-1", URL: "/media/estate-gallery/1.jpg", AltText: "old promo shot"},
	}
	var b strings.Builder
	if err := views.AdminImages(unused, "tok123").Render(context.Background(), &b); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	out := b.String()

	// Permanent delete must not fire without an explicit confirm.
	if !strings.Contains(out, `onsubmit="return confirm(`) {
		t.Error("delete form is missing a confirmation prompt")
	}
	if !strings.Contains(out, `action="/api/admin/images/unused/delete"`) {
		t.Errorf("delete form action missing: %s", out)
	}
	if !strings.Contains(out, `name="imageId" value="img-1"`) {
		t.Errorf("delete form should carry the image id: %s", out)
	}
	if !strings.Contains(out, `name="_csrf" value="tok123"`) {
		t.Errorf("delete form should carry the CSRF token: %s", out)
	}
}

func TestAdminImagesEmptyState(t *testing.T) {
	views := defaultViews(brandsite.SiteConfig{})

	var b strings.Builder
	if err := views.AdminImages(nil, "tok").Render(context.Background(), &b); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(b.String(), "Every stored image is in use.") {
		t.Error("empty state message missing")
	}
}
