package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/veridianfields/brandsite"
	"github.com/veridianfields/brandsite/blocks"
)

func runServe() error {
	cfg := brandsite.SiteConfig{
		Name:        brandsite.EnvOr("SITE_NAME", "Veridian Fields"),
		URL:         brandsite.EnvOr("SITE_URL", "http://localhost:3000"),
		Description: brandsite.EnvOr("SITE_DESCRIPTION", "Estate-grown cannabis for export markets."),

		Addr:         brandsite.EnvOr("ADDR", ":3000"),
		DatabasePath: brandsite.EnvOr("DATABASE_PATH", "data/site.db"),

		StorageDir:     brandsite.EnvOr("STORAGE_DIR", "data/objects"),
		StorageBaseURL: os.Getenv("STORAGE_BASE_URL"),
		ImageBucket:    brandsite.EnvOr("IMAGE_BUCKET", "site-images"),

		AdminPassword: brandsite.MustEnv("ADMIN_PASSWORD"),
		SessionSecret: brandsite.MustEnv("SESSION_SECRET"),
		CookieSecure:  os.Getenv("COOKIE_SECURE") == "true",
		PreviewSecret: os.Getenv("PREVIEW_SECRET"),

		ContactLogPath:   brandsite.EnvOr("CONTACT_LOG_PATH", "data/contact-submissions.json"),
		ContactEmailFrom: os.Getenv("CONTACT_EMAIL_FROM"),
		ContactEmailTo:   os.Getenv("CONTACT_EMAIL_TO"),
	}

	opts := []brandsite.Option{}

	if endpoint, key := os.Getenv("EMAIL_API_URL"), os.Getenv("EMAIL_API_KEY"); endpoint != "" && key != "" {
		opts = append(opts, brandsite.WithMailer(brandsite.NewHTTPMailer(endpoint, key)))
	}

	pages, err := loadPages(brandsite.EnvOr("PAGES_DIR", "pages"))
	if err != nil {
		return err
	}
	for _, p := range pages {
		opts = append(opts, brandsite.WithPage(p))
	}

	app := brandsite.New(cfg, defaultRegistry(), defaultViews(cfg), opts...)
	defer app.Close()
	return app.Start()
}

// loadPages reads every *.json page definition in dir. The file name maps
// to the route: home.json -> /, anything else -> /<name>/.
func loadPages(dir string) ([]brandsite.Page, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var pages []brandsite.Page
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		var def struct {
			Title       string          `json:"title"`
			Description string          `json:"description"`
			Blocks      json.RawMessage `json:"blocks"`
		}
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("page %s: %w", entry.Name(), err)
		}
		bs, err := blocks.LoadBlocks(def.Blocks)
		if err != nil {
			return nil, fmt.Errorf("page %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(entry.Name(), ".json")
		route := "/" + name + "/"
		if name == "home" {
			route = "/"
		}
		pages = append(pages, brandsite.Page{
			Route:       route,
			Title:       def.Title,
			Description: def.Description,
			Blocks:      bs,
		})
	}
	return pages, nil
}
