package markdown

import (
	"context"
	"strings"
	"testing"
)

func TestRenderHeading(t *testing.T) {
	got, err := Render("# Estate Grown")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(got, "<h1") || !strings.Contains(got, "Estate Grown") {
		t.Errorf("Render = %q, want h1 heading", got)
	}
}

func TestRenderEmphasis(t *testing.T) {
	got, err := Render("hand **trimmed** and *cured*")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(got, "<strong>trimmed</strong>") {
		t.Errorf("Render = %q, want strong", got)
	}
	if !strings.Contains(got, "<em>cured</em>") {
		t.Errorf("Render = %q, want em", got)
	}
}

func TestRenderGFMTable(t *testing.T) {
	got, err := Render("| Cultivar | THC |\n| --- | --- |\n| Amnesia | 22% |")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(got, "<table>") {
		t.Errorf("Render = %q, want a table", got)
	}
}

func TestComponent(t *testing.T) {
	var b strings.Builder
	if err := Component("plain paragraph").Render(context.Background(), &b); err != nil {
		t.Fatalf("Component render failed: %v", err)
	}
	if !strings.Contains(b.String(), "<p>plain paragraph</p>") {
		t.Errorf("Component = %q, want paragraph", b.String())
	}
}
