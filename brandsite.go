// Package brandsite is a content-managed marketing-site engine built with
// Go, Echo, and templ. Public pages are composed from block trees rendered
// through a registry; editable copy, images and carousels live in SQLite
// with binaries in object storage; an admin JSON API drives the carousel
// and content editors.
//
// Users provide their own templ components via the ViewFuncs struct, and
// brandsite handles handler logic, middleware, and database operations.
package brandsite

import (
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/veridianfields/brandsite/blocks"
)

// ViewFuncs holds user-provided templ components that the engine calls
// when rendering pages. This is the inversion-of-control mechanism that
// lets users own and customize all templates.
type ViewFuncs struct {
	Page           func(meta PageMeta, body templ.Component) templ.Component
	AdminLogin     func(showError bool, redirect, csrfToken string) templ.Component
	AdminDashboard func(blocks []ContentBlock, carousels []Carousel, message, csrfToken string) templ.Component
	AdminCarousel  func(carousel Carousel, csrfToken string) templ.Component
	AdminImages    func(unused []Image, csrfToken string) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// Page is one public page: a route plus the block tree that composes it.
type Page struct {
	Route       string
	Title       string
	Description string
	Blocks      []blocks.Block
}

// App is the central brandsite application. It wires together the store,
// object storage, cache, block registry, handlers, middleware, and
// user-provided templates.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *Store
	Storage  ObjectStorage
	Cache    *ContentCache
	Registry *blocks.Registry
	Views    ViewFuncs

	loginLimiter *LoginLimiter
	submissions  *SubmissionLog
	mailer       Mailer
	pages        []Page
	customRoutes []func(*App)
	staticDir    string
}

// New creates a brandsite App with the given configuration, block
// registry, and view functions.
func New(cfg SiteConfig, reg *blocks.Registry, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Registry:  reg,
		Views:     views,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the database, storage, cache, middleware, and routes,
// and starts the server.
func (a *App) Start() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("brandsite: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("brandsite: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("brandsite: init store: %w", err)
	}
	a.Store = store

	if a.Storage == nil {
		a.Storage = NewDiskStorage(a.Config.StorageDir)
	}
	a.Cache = NewContentCache(store, a.Config.ContentCacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)
	a.submissions = NewSubmissionLog(a.Config.ContactLogPath)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded engine assets (reveal.js, carousel-editor.js) are served
	// under /public/ and fall through to the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/reveal.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/carousel-editor.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/content-editor.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.staticDir)
	// Disk-backed object storage is served under the same URL shape a
	// hosted bucket would use, so PublicURL works in both setups.
	if disk, ok := a.Storage.(*DiskStorage); ok {
		e.Static("/storage/v1/object/public", disk.Root)
	}
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)

	// Public pages
	for _, p := range a.pages {
		page := p
		e.GET(page.Route, func(c echo.Context) error {
			return a.renderPage(c, page)
		})
	}

	// Public API
	e.POST("/api/contact", a.handleContact)
	e.GET("/api/preview", a.handlePreview)

	// Admin UI
	e.GET("/admin/login/", a.handleAdminLoginPage)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	admin := e.Group("/admin", a.adminGate)
	admin.GET("/", a.handleAdminDashboard)
	admin.GET("/carousels/:slug/", a.handleAdminCarouselPage)
	admin.GET("/images/", a.handleAdminImagesPage)

	// Admin API
	api := e.Group("/api/admin", a.adminGate)
	api.GET("/content", a.handleContentList)
	api.GET("/content/:slug", a.handleContentGet)
	api.PUT("/content/:slug", a.handleContentUpdate)
	api.GET("/carousels/:slug", a.handleCarouselGet)
	api.POST("/carousels/:slug/save", a.handleCarouselSave)
	api.POST("/carousels/:slug/items", a.handleCarouselAddItem)
	api.DELETE("/carousels/:slug/items/:item", a.handleCarouselRemoveItem)
	api.PATCH("/images/:id/alt", a.handleImageAltUpdate)
	api.GET("/images/unused", a.handleUnusedImages)
	api.POST("/images/unused/delete", a.handleUnusedImageDelete)
}

// renderPage renders a public page's block tree through the registry and
// hands the result to the user's page template.
func (a *App) renderPage(c echo.Context, p Page) error {
	meta := PageMeta{
		Title:       p.Title,
		Description: p.Description,
		URL:         BuildURL(a.Config.URL, p.Route),
	}
	// Draft mode sees edits immediately instead of waiting out the TTL.
	if IsDraftMode(c) {
		a.Cache.Invalidate()
		c.Response().Header().Set("Cache-Control", "no-store")
	}
	body := blocks.Render(a.Registry, a.hydrateBlocks(p.Blocks))
	return Render(c, a.Views.Page(meta, body))
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.File(a.staticDir + "/robots.txt")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound && a.Views.NotFound != nil {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		if a.Views.ServerError != nil {
			_ = RenderStatus(c, code, a.Views.ServerError())
			return
		}
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("brandsite: required environment variable %s is not set", key)
	}
	return v
}
