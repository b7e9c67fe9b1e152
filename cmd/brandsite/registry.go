package main

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/veridianfields/brandsite"
	"github.com/veridianfields/brandsite/blocks"
	"github.com/veridianfields/brandsite/markdown"
)

// defaultRegistry declares the block types the stock page definitions use.
// Installations with their own components build a registry of their own
// and pass it to brandsite.New instead.
func defaultRegistry() *blocks.Registry {
	return blocks.NewRegistry(map[string]blocks.RenderFunc{
		"hero":     renderHero,
		"section":  renderSection,
		"text":     renderText,
		"image":    renderImage,
		"carousel": renderCarousel,
		"contact":  renderContactForm,
	})
}

func prop(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

// variantClass appends "base base-variant" style classes.
func variantClass(base string, props map[string]any) string {
	if v := prop(props, "variant"); v != "" {
		return base + " " + base + "-" + v
	}
	return base
}

func renderHero(props map[string]any, children templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<header class="%s">`, html.EscapeString(variantClass("hero", props)))
		if h := prop(props, "heading"); h != "" {
			fmt.Fprintf(w, `<h1>%s</h1>`, html.EscapeString(h))
		}
		if sub := prop(props, "subheading"); sub != "" {
			fmt.Fprintf(w, `<p class="hero-sub">%s</p>`, html.EscapeString(sub))
		}
		if children != nil {
			if err := children.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</header>`)
		return err
	})
}

func renderSection(props map[string]any, children templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<section class="%s">`, html.EscapeString(variantClass("section", props)))
		if h := prop(props, "heading"); h != "" {
			fmt.Fprintf(w, `<h2>%s</h2>`, html.EscapeString(h))
		}
		if children != nil {
			if err := children.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
}

// renderText shows a content block's live copy. Markdown-typed content is
// rendered through goldmark; everything else is escaped, paragraph per line.
func renderText(props map[string]any, _ templ.Component) templ.Component {
	content := prop(props, "content")
	if prop(props, "contentType") == string(brandsite.ContentMarkdown) {
		return markdown.Component(content)
	}
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		for _, line := range strings.Split(content, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if _, err := fmt.Fprintf(w, `<p>%s</p>`, html.EscapeString(line)); err != nil {
				return err
			}
		}
		return nil
	})
}

func renderImage(props map[string]any, _ templ.Component) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<img src="%s" alt="%s" loading="lazy">`,
			html.EscapeString(prop(props, "src")), html.EscapeString(prop(props, "alt")))
		return err
	})
}

func renderCarousel(props map[string]any, _ templ.Component) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		images, _ := props["images"].([]brandsite.Image)
		if _, err := io.WriteString(w, `<div class="carousel" data-carousel>`); err != nil {
			return err
		}
		for _, img := range images {
			if _, err := fmt.Fprintf(w, `<figure><img src="%s" alt="%s" loading="lazy"></figure>`,
				html.EscapeString(img.URL), html.EscapeString(img.AltText)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func renderContactForm(props map[string]any, _ templ.Component) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		heading := prop(props, "heading")
		if heading == "" {
			heading = "Get in touch"
		}
		_, err := fmt.Fprintf(w, `<form class="contact-form" method="post" action="/api/contact" data-contact-form>
<h2>%s</h2>
<label>Name <input name="name" required></label>
<label>Company <input name="company" required></label>
<label>Email <input name="email" type="email" required></label>
<label>Country <input name="country" required></label>
<label>Message <textarea name="message" rows="6" required></textarea></label>
<button type="submit">Send</button>
</form>`, html.EscapeString(heading))
		return err
	})
}
