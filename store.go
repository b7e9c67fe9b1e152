package brandsite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = sql.ErrNoRows

const timeLayout = time.RFC3339

// Store wraps a SQLite database and provides CRUD operations for content
// blocks, images, carousels and carousel items.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL for concurrent read/write access, busy_timeout so writers wait
	// instead of failing with SQLITE_BUSY, synchronous=NORMAL is safe with
	// WAL and avoids an fsync per transaction.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA foreign_keys=ON;
		PRAGMA cache_size=-8000;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS content_blocks (
    slug TEXT PRIMARY KEY,
    content TEXT NOT NULL,
    content_type TEXT NOT NULL DEFAULT 'text'
        CHECK (content_type IN ('text', 'markdown', 'rich')),
    updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS images (
    id TEXT PRIMARY KEY,
    bucket TEXT NOT NULL,
    path TEXT NOT NULL,
    alt_text TEXT NOT NULL DEFAULT '',
    mime_type TEXT,
    byte_size INTEGER,
    width INTEGER,
    height INTEGER,
    created_at TEXT NOT NULL,
    deleted_at TEXT,
    UNIQUE (bucket, path)
);
CREATE TABLE IF NOT EXISTS carousels (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    label TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS carousel_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    carousel_id TEXT NOT NULL REFERENCES carousels(id),
    image_id TEXT NOT NULL REFERENCES images(id),
    sort_order INTEGER NOT NULL DEFAULT 0,
    UNIQUE (carousel_id, image_id)
);
CREATE INDEX IF NOT EXISTS idx_carousel_items_carousel
    ON carousel_items (carousel_id, sort_order);
`)
	return err
}

// --- content blocks ---

// GetContentBlock returns one content block by slug.
func (s *Store) GetContentBlock(slug string) (ContentBlock, error) {
	var b ContentBlock
	var ct, updated string
	err := s.db.QueryRow(`SELECT slug, content, content_type, updated_at FROM content_blocks WHERE slug = ?`, slug).
		Scan(&b.Slug, &b.Content, &ct, &updated)
	if err != nil {
		return ContentBlock{}, err
	}
	b.ContentType = ContentType(ct)
	b.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return b, nil
}

// ListContentBlocks returns every content block ordered by slug.
func (s *Store) ListContentBlocks() ([]ContentBlock, error) {
	rows, err := s.db.Query(`SELECT slug, content, content_type, updated_at FROM content_blocks ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []ContentBlock
	for rows.Next() {
		var b ContentBlock
		var ct, updated string
		if err := rows.Scan(&b.Slug, &b.Content, &ct, &updated); err != nil {
			return nil, err
		}
		b.ContentType = ContentType(ct)
		b.UpdatedAt, _ = time.Parse(timeLayout, updated)
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// UpdateContentBlock replaces the content of an existing block and bumps its
// updated_at. Returns ErrNotFound when no block has the slug; there is no
// delete path for content blocks.
func (s *Store) UpdateContentBlock(slug, content string) error {
	res, err := s.db.Exec(`UPDATE content_blocks SET content = ?, updated_at = ? WHERE slug = ?`,
		content, time.Now().UTC().Format(timeLayout), slug)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertContentBlock inserts a block or, when force is set, overwrites an
// existing one. Used by seeding; a seed without force never clobbers copy
// that an editor has already touched.
func (s *Store) UpsertContentBlock(b ContentBlock, force bool) error {
	now := time.Now().UTC().Format(timeLayout)
	if b.ContentType == "" {
		b.ContentType = ContentText
	}
	if force {
		_, err := s.db.Exec(`INSERT INTO content_blocks (slug, content, content_type, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (slug) DO UPDATE SET content = excluded.content, content_type = excluded.content_type, updated_at = excluded.updated_at`,
			b.Slug, b.Content, string(b.ContentType), now)
		return err
	}
	_, err := s.db.Exec(`INSERT INTO content_blocks (slug, content, content_type, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (slug) DO NOTHING`,
		b.Slug, b.Content, string(b.ContentType), now)
	return err
}

// --- images ---

// InsertImage stores a new image row. A missing ID is generated. The
// inserted row is returned so callers can rely on the assigned identifier.
func (s *Store) InsertImage(img Image) (Image, error) {
	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`INSERT INTO images (id, bucket, path, alt_text, mime_type, byte_size, width, height, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		img.ID, img.Bucket, img.Path, img.AltText,
		nullString(img.MimeType), nullInt64(img.ByteSize), nullInt64(int64(img.Width)), nullInt64(int64(img.Height)),
		img.CreatedAt.Format(timeLayout))
	if err != nil {
		return Image{}, err
	}
	return img, nil
}

// GetImage returns one image row by id, including soft-deleted rows so the
// sweeper can re-validate before a hard delete.
func (s *Store) GetImage(id string) (Image, error) {
	row := s.db.QueryRow(`SELECT id, bucket, path, alt_text, mime_type, byte_size, width, height, created_at, deleted_at
		FROM images WHERE id = ?`, id)
	return scanImage(row)
}

// ListImages returns the most recent non-deleted images, at most limit.
func (s *Store) ListImages(limit int) ([]Image, error) {
	rows, err := s.db.Query(`SELECT id, bucket, path, alt_text, mime_type, byte_size, width, height, created_at, deleted_at
		FROM images WHERE deleted_at IS NULL ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// UpdateImageAlt sets the alt text of one image. Returns ErrNotFound when
// the image does not exist.
func (s *Store) UpdateImageAlt(id, altText string) error {
	res, err := s.db.Exec(`UPDATE images SET alt_text = ? WHERE id = ?`, altText, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteImage hard-deletes an image row. Callers must verify the image has
// no carousel references first; the reference check is application-level,
// not a database constraint.
func (s *Store) DeleteImage(id string) error {
	_, err := s.db.Exec(`DELETE FROM images WHERE id = ?`, id)
	return err
}

// CountImageReferences returns how many carousel items reference an image.
func (s *Store) CountImageReferences(imageID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM carousel_items WHERE image_id = ?`, imageID).Scan(&n)
	return n, err
}

// ListReferencedImageIDs returns the distinct image ids referenced by any
// carousel item, at most limit.
func (s *Store) ListReferencedImageIDs(limit int) ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT image_id FROM carousel_items LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- carousels ---

// GetCarouselBySlug returns a carousel by its stable slug.
func (s *Store) GetCarouselBySlug(slug string) (Carousel, error) {
	var c Carousel
	err := s.db.QueryRow(`SELECT id, slug, label FROM carousels WHERE slug = ?`, slug).
		Scan(&c.ID, &c.Slug, &c.Label)
	if err != nil {
		return Carousel{}, err
	}
	return c, nil
}

// ListCarousels returns all carousels ordered by slug.
func (s *Store) ListCarousels() ([]Carousel, error) {
	rows, err := s.db.Query(`SELECT id, slug, label FROM carousels ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var carousels []Carousel
	for rows.Next() {
		var c Carousel
		if err := rows.Scan(&c.ID, &c.Slug, &c.Label); err != nil {
			return nil, err
		}
		carousels = append(carousels, c)
	}
	return carousels, rows.Err()
}

// UpsertCarousel inserts a carousel or updates its label. Carousels are
// provisioned by seeding only; there is no admin create/delete path.
func (s *Store) UpsertCarousel(c Carousel) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`INSERT INTO carousels (id, slug, label) VALUES (?, ?, ?)
		ON CONFLICT (slug) DO UPDATE SET label = excluded.label`,
		c.ID, c.Slug, c.Label)
	return err
}

// --- carousel items ---

// ListCarouselItems returns a carousel's items joined with their images,
// ordered by sort_order ascending.
func (s *Store) ListCarouselItems(carouselID string) ([]CarouselItem, error) {
	rows, err := s.db.Query(`SELECT ci.id, ci.carousel_id, ci.image_id, ci.sort_order,
		i.id, i.bucket, i.path, i.alt_text, i.mime_type, i.byte_size, i.width, i.height, i.created_at, i.deleted_at
		FROM carousel_items ci
		JOIN images i ON i.id = ci.image_id
		WHERE ci.carousel_id = ?
		ORDER BY ci.sort_order ASC, ci.id ASC`, carouselID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CarouselItem
	for rows.Next() {
		var it CarouselItem
		var img Image
		var mime sql.NullString
		var size, width, height sql.NullInt64
		var created string
		var deleted sql.NullString
		if err := rows.Scan(&it.ID, &it.CarouselID, &it.ImageID, &it.SortOrder,
			&img.ID, &img.Bucket, &img.Path, &img.AltText, &mime, &size, &width, &height, &created, &deleted); err != nil {
			return nil, err
		}
		img.MimeType = mime.String
		img.ByteSize = size.Int64
		img.Width = int(width.Int64)
		img.Height = int(height.Int64)
		img.CreatedAt, _ = time.Parse(timeLayout, created)
		if deleted.Valid {
			t, _ := time.Parse(timeLayout, deleted.String)
			img.DeletedAt = &t
		}
		it.Image = &img
		items = append(items, it)
	}
	return items, rows.Err()
}

// InsertCarouselItem adds an image to a carousel at the given position and
// returns the new item id. The (carousel_id, image_id) pair is unique; a
// second insert of the same image fails with a constraint error.
func (s *Store) InsertCarouselItem(carouselID, imageID string, sortOrder int) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO carousel_items (carousel_id, image_id, sort_order) VALUES (?, ?, ?)`,
		carouselID, imageID, sortOrder)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, errors.New("insert carousel item returned no id")
	}
	return id, nil
}

// DeleteCarouselItem removes one item by id.
func (s *Store) DeleteCarouselItem(id int64) error {
	_, err := s.db.Exec(`DELETE FROM carousel_items WHERE id = ?`, id)
	return err
}

// UpdateItemSortOrder sets one item's sort_order.
func (s *Store) UpdateItemSortOrder(id int64, sortOrder int) error {
	_, err := s.db.Exec(`UPDATE carousel_items SET sort_order = ? WHERE id = ?`, sortOrder, id)
	return err
}

// NextSortOrder returns the position just past the carousel's last item.
func (s *Store) NextSortOrder(carouselID string) (int, error) {
	var next int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(sort_order) + 1, 0) FROM carousel_items WHERE carousel_id = ?`, carouselID).Scan(&next)
	return next, err
}

// RenumberCarousel rewrites sort_order for every item of a carousel into a
// dense zero-based sequence in the current order. Rows already holding the
// right value are left untouched; updates are issued one row at a time.
func (s *Store) RenumberCarousel(carouselID string) error {
	rows, err := s.db.Query(`SELECT id, sort_order FROM carousel_items WHERE carousel_id = ? ORDER BY sort_order ASC, id ASC`, carouselID)
	if err != nil {
		return err
	}
	type pos struct {
		id   int64
		sort int
	}
	var current []pos
	for rows.Next() {
		var p pos
		if err := rows.Scan(&p.id, &p.sort); err != nil {
			rows.Close()
			return err
		}
		current = append(current, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for idx, p := range current {
		if p.sort == idx {
			continue
		}
		if err := s.UpdateItemSortOrder(p.id, idx); err != nil {
			return fmt.Errorf("renumber item %d: %w", p.id, err)
		}
	}
	return nil
}

// --- scan helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImage(row rowScanner) (Image, error) {
	var img Image
	var mime sql.NullString
	var size, width, height sql.NullInt64
	var created string
	var deleted sql.NullString
	err := row.Scan(&img.ID, &img.Bucket, &img.Path, &img.AltText, &mime, &size, &width, &height, &created, &deleted)
	if err != nil {
		return Image{}, err
	}
	img.MimeType = mime.String
	img.ByteSize = size.Int64
	img.Width = int(width.Int64)
	img.Height = int(height.Int64)
	img.CreatedAt, _ = time.Parse(timeLayout, created)
	if deleted.Valid {
		t, _ := time.Parse(timeLayout, deleted.String)
		img.DeletedAt = &t
	}
	return img, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt64(n int64) any {
	if n == 0 {
		return nil
	}
	return n
}
