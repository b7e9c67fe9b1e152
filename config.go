package brandsite

import "time"

// SiteConfig holds all configuration for a brandsite installation.
type SiteConfig struct {
	Name        string // Site name (default "Brandsite")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for meta tags

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/site.db")

	StorageDir     string // Object storage root (default "data/objects")
	StorageBaseURL string // Base URL for public object URLs (default URL)
	ImageBucket    string // Bucket for carousel uploads (default "site-images")
	LibraryLimit   int    // Image library page size (default 60)

	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS
	PreviewSecret string // Shared secret for the draft-mode toggle

	// IsAdminUser is the capability check applied after authentication.
	// The default accepts any session established through the admin login.
	IsAdminUser func(userID string) bool

	MinAltTextLen int // Minimum trimmed alt-text length (default 8)

	ContactLogPath   string // Contact submission log (default "data/contact-submissions.json")
	MinMessageLen    int    // Minimum contact message length (default 20)
	ContactEmailFrom string // Sender for contact notifications
	ContactEmailTo   string // Recipient for contact notifications

	ContentCacheTTL time.Duration // Content block cache TTL (default 5min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Brandsite"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/site.db"
	}
	if c.StorageDir == "" {
		c.StorageDir = "data/objects"
	}
	if c.StorageBaseURL == "" {
		c.StorageBaseURL = c.URL
	}
	if c.ImageBucket == "" {
		c.ImageBucket = "site-images"
	}
	if c.LibraryLimit == 0 {
		c.LibraryLimit = 60
	}
	if c.MinAltTextLen == 0 {
		c.MinAltTextLen = 8
	}
	if c.ContactLogPath == "" {
		c.ContactLogPath = "data/contact-submissions.json"
	}
	if c.MinMessageLen == 0 {
		c.MinMessageLen = 20
	}
	if c.ContentCacheTTL == 0 {
		c.ContentCacheTTL = 5 * time.Minute
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithMailer sets the outbound mailer for contact notifications. Without
// one, submissions are logged but no email is attempted.
func WithMailer(m Mailer) Option {
	return func(a *App) {
		a.mailer = m
	}
}

// WithObjectStorage overrides the default disk-backed object storage.
func WithObjectStorage(s ObjectStorage) Option {
	return func(a *App) {
		a.Storage = s
	}
}

// WithPage registers a public page rendered from a block-tree definition.
func WithPage(p Page) Option {
	return func(a *App) {
		a.pages = append(a.pages, p)
	}
}
