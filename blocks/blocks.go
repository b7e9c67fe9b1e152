// Package blocks renders pages from ordered trees of typed blocks. The set
// of known block types is fixed at startup: a Registry is built once from a
// map and injected into the renderer, so there is no import-order-sensitive
// global registration step.
package blocks

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"sort"

	"github.com/a-h/templ"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Block is one renderable page section: a type name resolved through the
// registry, free-form props, and optional child blocks rendered nested
// inside it. Block trees come from page definition JSON, not the database.
type Block struct {
	Type     string         `json:"type"`
	Props    map[string]any `json:"props,omitempty"`
	Variant  string         `json:"variant,omitempty"`
	Children []Block        `json:"children,omitempty"`
}

// RenderFunc produces the component for one block. children is nil when
// the block has none.
type RenderFunc func(props map[string]any, children templ.Component) templ.Component

// Registry maps block type names to render functions. It is immutable
// after construction.
type Registry struct {
	renderers map[string]RenderFunc
}

// NewRegistry builds a registry from the given map. The map is copied;
// later mutation of the argument has no effect.
func NewRegistry(renderers map[string]RenderFunc) *Registry {
	m := make(map[string]RenderFunc, len(renderers))
	for k, v := range renderers {
		m[k] = v
	}
	return &Registry{renderers: m}
}

// Resolve looks up the render function for a block type.
func (r *Registry) Resolve(blockType string) (RenderFunc, bool) {
	fn, ok := r.renderers[blockType]
	return fn, ok
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.renderers))
	for k := range r.renderers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Render walks the ordered block sequence and renders each through the
// registry. An unknown type is not fatal: it renders a visible marker
// carrying the literal type name and siblings continue. Every block is
// wrapped in a reveal container; the shipped reveal script animates it on
// first scroll-into-view and skips the animation entirely under a reduced
// motion preference.
func Render(reg *Registry, bs []Block) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, b := range bs {
			if err := renderBlock(ctx, w, reg, b); err != nil {
				return err
			}
		}
		return nil
	})
}

func renderBlock(ctx context.Context, w io.Writer, reg *Registry, b Block) error {
	if _, err := io.WriteString(w, `<div class="reveal" data-reveal>`); err != nil {
		return err
	}
	fn, ok := reg.Resolve(b.Type)
	if !ok {
		// Diagnosable in-browser rather than failing silently.
		if _, err := fmt.Fprintf(w, `<div class="block-missing" data-block-type="%s">Unknown block type: %s</div>`,
			html.EscapeString(b.Type), html.EscapeString(b.Type)); err != nil {
			return err
		}
		return closeReveal(w)
	}

	var children templ.Component
	if len(b.Children) > 0 {
		children = Render(reg, b.Children)
	}
	props := b.Props
	if b.Variant != "" {
		props = make(map[string]any, len(b.Props)+1)
		for k, v := range b.Props {
			props[k] = v
		}
		props["variant"] = b.Variant
	}
	if err := fn(props, children).Render(ctx, w); err != nil {
		return err
	}
	return closeReveal(w)
}

func closeReveal(w io.Writer) error {
	_, err := io.WriteString(w, `</div>`)
	return err
}

const blockSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {"$ref": "#/$defs/block"},
  "$defs": {
    "block": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type": {"type": "string", "minLength": 1},
        "props": {"type": "object"},
        "variant": {"type": "string"},
        "children": {
          "type": "array",
          "items": {"$ref": "#/$defs/block"}
        }
      },
      "additionalProperties": false
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("blocks.json", blockSchema)

// LoadBlocks parses a page definition. The JSON is validated against the
// block schema first, so malformed definitions fail at load time instead
// of rendering a page of unknown-type markers.
func LoadBlocks(data []byte) ([]Block, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse page definition: %w", err)
	}
	if err := compiledSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("invalid page definition: %w", err)
	}
	var bs []Block
	if err := json.Unmarshal(data, &bs); err != nil {
		return nil, fmt.Errorf("parse page definition: %w", err)
	}
	return bs, nil
}
