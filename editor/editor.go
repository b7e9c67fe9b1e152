// Package editor implements the carousel editing session: an explicit
// state machine over one carousel's ordered items, with pure local edits
// (reorder, stage, discard) kept apart from the single commit path that is
// allowed to write to the store and object storage.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// State names the phase of an editing session.
type State int

const (
	StateLoading State = iota
	StateClean
	StateDirty
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StateSaving:
		return "saving"
	}
	return "unknown"
}

// DefaultMinAltLen is the minimum trimmed alt-text length accepted by the
// editor. A heuristic, not a business rule; override via Options.
const DefaultMinAltLen = 8

// ErrAltTooShort is returned when alt text fails the minimum length check.
var ErrAltTooShort = errors.New("alt text too short")

// Item is one entry in the session's working order. Exactly two kinds
// exist: PersistedItem (already in the store) and PendingItem (staged
// upload, client-local until save). The sealed interface replaces the
// string-prefix convention the editor would otherwise need to tell the
// two apart.
type Item interface {
	// Key is a session-unique identity used for order comparisons.
	Key() string
	// AltText is the item's current alt text.
	AltText() string
	sealed()
}

// PersistedItem mirrors a carousel_items row joined with its image.
type PersistedItem struct {
	ItemID    int64
	ImageID   string
	Bucket    string
	Path      string
	Alt       string
	SortOrder int
	Width     int
	Height    int
}

func (p PersistedItem) Key() string     { return "item:" + strconv.FormatInt(p.ItemID, 10) }
func (p PersistedItem) AltText() string { return p.Alt }
func (PersistedItem) sealed()           {}

// PendingItem is a staged upload: encoded bytes plus metadata, held in
// memory until Save resolves it into an image row and a carousel item.
type PendingItem struct {
	LocalID     string
	Filename    string
	Alt         string
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

func (p PendingItem) Key() string     { return "pending:" + p.LocalID }
func (p PendingItem) AltText() string { return p.Alt }
func (PendingItem) sealed()           {}

// NewImage carries the fields Save inserts for a resolved upload.
type NewImage struct {
	Bucket      string
	Path        string
	AltText     string
	ContentType string
	ByteSize    int64
	Width       int
	Height      int
}

// Store is the slice of the content store the session commits through.
type Store interface {
	ListItems(ctx context.Context, carouselID string) ([]PersistedItem, error)
	InsertImage(ctx context.Context, img NewImage) (string, error)
	InsertItem(ctx context.Context, carouselID, imageID string, sortOrder int) (int64, error)
	UpdateSortOrder(ctx context.Context, itemID int64, sortOrder int) error
}

// ObjectStore is the slice of object storage the session commits through.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string, upsert bool) error
}

// Carousel identifies the carousel being edited.
type Carousel struct {
	ID   string
	Slug string
}

// Options tune a session. Zero values fall back to defaults.
type Options struct {
	Bucket    string
	MinAltLen int
	// Now supplies timestamps for object key namespacing; defaults to
	// time.Now.
	Now func() time.Time
	// KeyFunc builds the object key for a staged upload. Defaults to
	// ObjectKey.
	KeyFunc func(carouselSlug, filename string, t time.Time) string
}

func (o *Options) setDefaults() {
	if o.MinAltLen == 0 {
		o.MinAltLen = DefaultMinAltLen
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.KeyFunc == nil {
		o.KeyFunc = ObjectKey
	}
}

// Session holds one carousel-editing session. All edits are local until
// Save; Load and Save are the only methods that touch the store.
type Session struct {
	carousel Carousel
	opts     Options

	state    State
	items    []Item
	baseline []PersistedItem // snapshot from the last successful load
}

// NewSession creates a session in the Loading state. Call Load before
// editing.
func NewSession(c Carousel, opts Options) *Session {
	opts.setDefaults()
	return &Session{carousel: c, opts: opts, state: StateLoading}
}

// State reports the session's current phase.
func (s *Session) State() State { return s.state }

// Items returns a copy of the working order.
func (s *Session) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Load fetches the carousel's persisted items, resets the working order and
// baseline, and moves the session to Clean. Staged uploads are dropped.
func (s *Session) Load(ctx context.Context, st Store) error {
	items, err := st.ListItems(ctx, s.carousel.ID)
	if err != nil {
		return fmt.Errorf("load carousel %s: %w", s.carousel.Slug, err)
	}
	s.baseline = items
	s.items = make([]Item, len(items))
	for i, it := range items {
		s.items[i] = it
	}
	s.state = StateClean
	return nil
}

// Move swaps the item at index with its immediate neighbor in the given
// direction (+1 or -1). Boundary and out-of-range moves are no-ops.
// Reports whether the order changed.
func (s *Session) Move(index, direction int) bool {
	if direction != 1 && direction != -1 {
		return false
	}
	target := index + direction
	if index < 0 || index >= len(s.items) || target < 0 || target >= len(s.items) {
		return false
	}
	s.items[index], s.items[target] = s.items[target], s.items[index]
	s.recomputeState()
	return true
}

// Stage appends a pending upload to the working order. The upload must
// carry data and qualifying alt text.
func (s *Session) Stage(p PendingItem) error {
	if len(p.Data) == 0 {
		return errors.New("staged upload has no data")
	}
	if p.LocalID == "" {
		return errors.New("staged upload has no local id")
	}
	if err := ValidateAltText(p.Alt, s.opts.MinAltLen); err != nil {
		return err
	}
	s.items = append(s.items, p)
	s.recomputeState()
	return nil
}

// ApplyOrder rearranges the working order to match the given key sequence.
// The keys must be a permutation of the current items' keys.
func (s *Session) ApplyOrder(keys []string) error {
	if len(keys) != len(s.items) {
		return fmt.Errorf("order has %d entries, session has %d items", len(keys), len(s.items))
	}
	byKey := make(map[string]Item, len(s.items))
	for _, it := range s.items {
		byKey[it.Key()] = it
	}
	next := make([]Item, 0, len(keys))
	for _, k := range keys {
		it, ok := byKey[k]
		if !ok {
			return fmt.Errorf("order references unknown item %q", k)
		}
		delete(byKey, k)
		next = append(next, it)
	}
	s.items = next
	s.recomputeState()
	return nil
}

// Discard drops staged uploads and restores the baseline order. Callers
// that want a fresh server truth should Load again afterwards; a discard
// never writes.
func (s *Session) Discard() {
	s.items = make([]Item, len(s.baseline))
	for i, it := range s.baseline {
		s.items[i] = it
	}
	s.state = StateClean
}

// Unsaved reports whether the session has diverged from the baseline:
// any staged upload, or any difference in the ordered identifier list.
func (s *Session) Unsaved() bool {
	if len(s.items) != len(s.baseline) {
		return true
	}
	for i, it := range s.items {
		if _, pending := it.(PendingItem); pending {
			return true
		}
		if it.Key() != s.baseline[i].Key() {
			return true
		}
	}
	return false
}

func (s *Session) recomputeState() {
	if s.state == StateSaving || s.state == StateLoading {
		return
	}
	if s.Unsaved() {
		s.state = StateDirty
	} else {
		s.state = StateClean
	}
}

// SaveResult maps staged local ids to the carousel item ids they became.
type SaveResult struct {
	InsertedItems map[string]int64
}

// Save commits the session: sequentially resolves each staged upload
// (object upload, image insert, item insert at the next position), then
// renumbers every item's sort_order to its on-screen index, then reloads.
// On failure the remaining steps are abandoned and the session stays
// Dirty; inserts already committed in this attempt are not rolled back.
func (s *Session) Save(ctx context.Context, st Store, objects ObjectStore) (SaveResult, error) {
	res := SaveResult{InsertedItems: make(map[string]int64)}
	if s.state == StateSaving {
		return res, errors.New("save already in progress")
	}
	s.state = StateSaving

	fail := func(err error) (SaveResult, error) {
		s.state = StateDirty
		return res, err
	}

	// (a) Uploads, strictly in staging order so sort_order assignment is
	// deterministic. Each resolved pending item is swapped in place so the
	// renumber pass sees it at its on-screen position.
	persistedCount := 0
	for _, it := range s.items {
		if _, ok := it.(PersistedItem); ok {
			persistedCount++
		}
	}
	nextSort := persistedCount
	sortByKey := make(map[string]int, len(s.items))
	for _, base := range s.baseline {
		sortByKey[base.Key()] = base.SortOrder
	}
	for i, it := range s.items {
		p, ok := it.(PendingItem)
		if !ok {
			continue
		}
		key := s.opts.KeyFunc(s.carousel.Slug, p.Filename, s.opts.Now())
		if err := objects.Upload(ctx, s.opts.Bucket, key, p.Data, p.ContentType, true); err != nil {
			return fail(fmt.Errorf("upload %s: %w", p.Filename, err))
		}
		imageID, err := st.InsertImage(ctx, NewImage{
			Bucket:      s.opts.Bucket,
			Path:        key,
			AltText:     p.Alt,
			ContentType: p.ContentType,
			ByteSize:    int64(len(p.Data)),
			Width:       p.Width,
			Height:      p.Height,
		})
		if err != nil {
			return fail(fmt.Errorf("insert image for %s: %w", p.Filename, err))
		}
		if imageID == "" {
			return fail(fmt.Errorf("insert image for %s returned no id", p.Filename))
		}
		itemID, err := st.InsertItem(ctx, s.carousel.ID, imageID, nextSort)
		if err != nil {
			return fail(fmt.Errorf("insert carousel item for %s: %w", p.Filename, err))
		}
		if itemID == 0 {
			return fail(fmt.Errorf("insert carousel item for %s returned no id", p.Filename))
		}
		res.InsertedItems[p.LocalID] = itemID
		resolved := PersistedItem{
			ItemID:    itemID,
			ImageID:   imageID,
			Bucket:    s.opts.Bucket,
			Path:      key,
			Alt:       p.Alt,
			SortOrder: nextSort,
			Width:     p.Width,
			Height:    p.Height,
		}
		s.items[i] = resolved
		sortByKey[resolved.Key()] = nextSort
		nextSort++
	}

	// (b) Renumber everything to the on-screen order, one row at a time,
	// skipping rows already holding the right value.
	for idx, it := range s.items {
		p, ok := it.(PersistedItem)
		if !ok {
			return fail(fmt.Errorf("unresolved staged item %s during renumber", it.Key()))
		}
		if prev, known := sortByKey[p.Key()]; known && prev == idx {
			continue
		}
		if err := st.UpdateSortOrder(ctx, p.ItemID, idx); err != nil {
			return fail(fmt.Errorf("persist order for item %d: %w", p.ItemID, err))
		}
	}

	// (c) Resynchronize against the store.
	if err := s.Load(ctx, st); err != nil {
		s.state = StateDirty
		return res, err
	}
	return res, nil
}

// ValidateAltText rejects alt text whose trimmed length is below min runes.
func ValidateAltText(alt string, min int) error {
	if min <= 0 {
		min = DefaultMinAltLen
	}
	if utf8.RuneCountInString(strings.TrimSpace(alt)) < min {
		return fmt.Errorf("%w: need at least %d characters", ErrAltTooShort, min)
	}
	return nil
}

// ObjectKey builds the storage key for a carousel upload:
// {carouselSlug}/{unixTimestamp}-{sanitized filename}.jpg.
func ObjectKey(carouselSlug, filename string, t time.Time) string {
	base := filename
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	base = sanitizeFilename(base)
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("%s/%d-%s.jpg", carouselSlug, t.Unix(), base)
}

func sanitizeFilename(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	dash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
