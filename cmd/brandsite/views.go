package main

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/veridianfields/brandsite"
)

// defaultViews is a minimal stock template set. It carries the page
// chrome, the admin screens wired to the shipped editor scripts, and the
// error pages. Installations own their real templates through ViewFuncs.
func defaultViews(cfg brandsite.SiteConfig) brandsite.ViewFuncs {
	minAlt := cfg.MinAltTextLen
	if minAlt == 0 {
		minAlt = 8
	}
	siteName := cfg.Name
	if siteName == "" {
		siteName = "Brandsite"
	}

	layout := func(title, desc string, body func(ctx context.Context, w io.Writer) error) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			fmt.Fprintf(w, `<!doctype html><html lang="en"><head><meta charset="utf-8">`)
			fmt.Fprintf(w, `<meta name="viewport" content="width=device-width, initial-scale=1">`)
			fmt.Fprintf(w, `<title>%s</title>`, html.EscapeString(title))
			if desc != "" {
				fmt.Fprintf(w, `<meta name="description" content="%s">`, html.EscapeString(desc))
			}
			fmt.Fprintf(w, `<link rel="stylesheet" href="/public/site.css"></head><body>`)
			fmt.Fprintf(w, `<nav class="site-nav"><a href="/">%s</a></nav><main>`, html.EscapeString(siteName))
			if err := body(ctx, w); err != nil {
				return err
			}
			_, err := io.WriteString(w, `</main><script src="/public/reveal.js" defer></script></body></html>`)
			return err
		})
	}

	return brandsite.ViewFuncs{
		Page: func(meta brandsite.PageMeta, body templ.Component) templ.Component {
			title := meta.Title
			if title == "" {
				title = siteName
			}
			return layout(title, meta.Description, func(ctx context.Context, w io.Writer) error {
				return body.Render(ctx, w)
			})
		},

		AdminLogin: func(showError bool, redirect, csrfToken string) templ.Component {
			return layout("Sign in", "", func(_ context.Context, w io.Writer) error {
				if showError {
					io.WriteString(w, `<p class="form-error">Wrong password, or too many attempts. Try again in a minute.</p>`)
				}
				_, err := fmt.Fprintf(w, `<form class="admin-login" method="post" action="/admin/login/">
<input type="hidden" name="_csrf" value="%s">
<input type="hidden" name="redirect" value="%s">
<label>Password <input name="password" type="password" autofocus></label>
<button type="submit">Sign in</button>
</form>`, html.EscapeString(csrfToken), html.EscapeString(redirect))
				return err
			})
		},

		AdminDashboard: func(contentBlocks []brandsite.ContentBlock, carousels []brandsite.Carousel, message, csrfToken string) templ.Component {
			return layout("Admin", "", func(_ context.Context, w io.Writer) error {
				if message == "not_admin" {
					io.WriteString(w, `<p class="form-error">Your account does not have admin access.</p>`)
				} else if message != "" {
					fmt.Fprintf(w, `<p class="form-message">%s</p>`, html.EscapeString(message))
				}
				fmt.Fprintf(w, `<form method="post" action="/admin/logout/"><input type="hidden" name="_csrf" value="%s"><button type="submit">Sign out</button></form>`,
					html.EscapeString(csrfToken))
				io.WriteString(w, `<h1>Dashboard</h1><h2>Carousels</h2><ul>`)
				for _, c := range carousels {
					fmt.Fprintf(w, `<li><a href="/admin/carousels/%s/">%s</a></li>`,
						html.EscapeString(c.Slug), html.EscapeString(c.Label))
				}
				io.WriteString(w, `</ul><p><a href="/admin/images/">Unused images</a></p><h2>Content</h2>`)
				fmt.Fprintf(w, `<div data-content-editor data-csrf="%s">
<p data-editor-error hidden></p>
<ul class="content-blocks" data-editor-blocks></ul>
</div>`, html.EscapeString(csrfToken))
				io.WriteString(w, `<noscript><ul>`)
				for _, b := range contentBlocks {
					fmt.Fprintf(w, `<li><code>%s</code> <small>%s</small></li>`,
						html.EscapeString(b.Slug), html.EscapeString(string(b.ContentType)))
				}
				io.WriteString(w, `</ul></noscript>`)
				_, err := io.WriteString(w, `<script src="/public/content-editor.js" defer></script>`)
				return err
			})
		},

		AdminCarousel: func(car brandsite.Carousel, csrfToken string) templ.Component {
			return layout("Edit carousel: "+car.Label, "", func(_ context.Context, w io.Writer) error {
				fmt.Fprintf(w, `<h1>%s</h1>`, html.EscapeString(car.Label))
				fmt.Fprintf(w, `<div data-carousel-editor data-slug="%s" data-csrf="%s" data-min-alt="%d">
<p data-editor-error hidden></p>
<ol class="editor-items" data-editor-items></ol>
<p>
<button type="button" data-editor-save>Save changes</button>
<button type="button" data-editor-discard>Discard</button>
</p>
<fieldset class="editor-upload">
<legend>Add a new image</legend>
<label>File <input type="file" accept="image/*" data-editor-file></label>
<label>Alt text <input data-editor-alt></label>
<button type="button" data-editor-stage>Add to carousel</button>
</fieldset>
<fieldset class="editor-library">
<legend>Add from library</legend>
<div data-editor-library></div>
</fieldset>
</div>`,
					html.EscapeString(car.Slug), html.EscapeString(csrfToken), minAlt)
				_, err := io.WriteString(w, `<script src="/public/carousel-editor.js" defer></script>`)
				return err
			})
		},

		AdminImages: func(unused []brandsite.Image, csrfToken string) templ.Component {
			return layout("Unused images", "", func(_ context.Context, w io.Writer) error {
				io.WriteString(w, `<h1>Unused images</h1>`)
				if len(unused) == 0 {
					_, err := io.WriteString(w, `<p>Every stored image is in use.</p>`)
					return err
				}
				io.WriteString(w, `<ul class="unused-images">`)
				for _, img := range unused {
					fmt.Fprintf(w, `<li><img src="%s" alt="%s" loading="lazy">
<form method="post" action="/api/admin/images/unused/delete" onsubmit="return confirm('Delete this image permanently? This cannot be undone.')">
<input type="hidden" name="_csrf" value="%s">
<input type="hidden" name="imageId" value="%s">
<button type="submit">Delete permanently</button>
</form></li>`,
						html.EscapeString(img.URL), html.EscapeString(img.AltText),
						html.EscapeString(csrfToken), html.EscapeString(img.ID))
				}
				_, err := io.WriteString(w, `</ul>`)
				return err
			})
		},

		NotFound: func() templ.Component {
			return layout("Not found", "", func(_ context.Context, w io.Writer) error {
				_, err := io.WriteString(w, `<h1>Page not found</h1><p><a href="/">Back to the homepage</a></p>`)
				return err
			})
		},

		ServerError: func() templ.Component {
			return layout("Something went wrong", "", func(_ context.Context, w io.Writer) error {
				_, err := io.WriteString(w, `<h1>Something went wrong</h1><p>Please try again shortly.</p>`)
				return err
			})
		},
	}
}
