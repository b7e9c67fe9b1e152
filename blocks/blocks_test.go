package blocks

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func textRenderer(field string) RenderFunc {
	return func(props map[string]any, children templ.Component) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			if v, ok := props[field].(string); ok {
				if _, err := fmt.Fprintf(w, "<p>%s</p>", v); err != nil {
					return err
				}
			}
			if children != nil {
				return children.Render(ctx, w)
			}
			return nil
		})
	}
}

func renderToString(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(context.Background(), &b); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return b.String()
}

func TestRenderKnownBlock(t *testing.T) {
	reg := NewRegistry(map[string]RenderFunc{"Text": textRenderer("body")})
	out := renderToString(t, Render(reg, []Block{
		{Type: "Text", Props: map[string]any{"body": "premium export flower"}},
	}))
	if !strings.Contains(out, "<p>premium export flower</p>") {
		t.Fatalf("output missing rendered block: %s", out)
	}
	if !strings.Contains(out, `data-reveal`) {
		t.Fatalf("output missing reveal wrapper: %s", out)
	}
}

func TestRenderUnknownTypeIsMarkedNotFatal(t *testing.T) {
	reg := NewRegistry(map[string]RenderFunc{"Text": textRenderer("body")})
	out := renderToString(t, Render(reg, []Block{
		{Type: "Unknown.X"},
		{Type: "Text", Props: map[string]any{"body": "still renders"}},
	}))
	if !strings.Contains(out, "Unknown.X") {
		t.Fatalf("marker missing literal type name: %s", out)
	}
	if !strings.Contains(out, "still renders") {
		t.Fatalf("siblings after unknown block must still render: %s", out)
	}
}

func TestRenderNestsChildren(t *testing.T) {
	reg := NewRegistry(map[string]RenderFunc{
		"Section": textRenderer("title"),
		"Text":    textRenderer("body"),
	})
	out := renderToString(t, Render(reg, []Block{
		{
			Type:  "Section",
			Props: map[string]any{"title": "Our Cultivars"},
			Children: []Block{
				{Type: "Text", Props: map[string]any{"body": "nested copy"}},
			},
		},
	}))
	section := strings.Index(out, "Our Cultivars")
	nested := strings.Index(out, "nested copy")
	if section < 0 || nested < 0 || nested < section {
		t.Fatalf("children must render nested after their parent: %s", out)
	}
}

func TestVariantIsMergedIntoProps(t *testing.T) {
	var gotVariant string
	reg := NewRegistry(map[string]RenderFunc{
		"Hero": func(props map[string]any, _ templ.Component) templ.Component {
			gotVariant, _ = props["variant"].(string)
			return templ.ComponentFunc(func(context.Context, io.Writer) error { return nil })
		},
	})
	renderToString(t, Render(reg, []Block{{Type: "Hero", Variant: "dark"}}))
	if gotVariant != "dark" {
		t.Fatalf("variant = %q, want dark", gotVariant)
	}
}

func TestRegistryIsImmutableAfterConstruction(t *testing.T) {
	src := map[string]RenderFunc{"Text": textRenderer("body")}
	reg := NewRegistry(src)
	src["Later"] = textRenderer("body")
	if _, ok := reg.Resolve("Later"); ok {
		t.Fatal("registry must copy the renderer map at construction")
	}
	types := reg.Types()
	if len(types) != 1 || types[0] != "Text" {
		t.Fatalf("Types = %v, want [Text]", types)
	}
}

func TestLoadBlocks(t *testing.T) {
	bs, err := LoadBlocks([]byte(`[
		{"type": "Hero", "props": {"title": "x"}, "children": [
			{"type": "Text", "variant": "lede"}
		]}
	]`))
	if err != nil {
		t.Fatalf("LoadBlocks failed: %v", err)
	}
	if len(bs) != 1 || bs[0].Type != "Hero" || len(bs[0].Children) != 1 {
		t.Fatalf("unexpected blocks: %+v", bs)
	}
}

func TestLoadBlocksRejectsMissingType(t *testing.T) {
	if _, err := LoadBlocks([]byte(`[{"props": {}}]`)); err == nil {
		t.Fatal("block without a type must be rejected at load")
	}
	if _, err := LoadBlocks([]byte(`[{"type": "Hero", "extra": 1}]`)); err == nil {
		t.Fatal("unknown block fields must be rejected at load")
	}
}
