package editor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"
)

// fakeStore is an in-memory Store/ObjectStore for session tests.
type fakeStore struct {
	items      []PersistedItem
	nextImage  int
	nextItem   int64
	uploads    []string
	orderCalls int

	failUpload      bool
	failInsertImage bool
	failUpdateOrder int // fail the nth order update (1-based), 0 = never
}

// ListItems returns items sorted by SortOrder, matching the backing query.
func (f *fakeStore) ListItems(_ context.Context, _ string) ([]PersistedItem, error) {
	out := make([]PersistedItem, len(f.items))
	copy(out, f.items)
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f *fakeStore) InsertImage(_ context.Context, img NewImage) (string, error) {
	if f.failInsertImage {
		return "", errors.New("insert image failed")
	}
	f.nextImage++
	return fmt.Sprintf("img-%d", f.nextImage), nil
}

func (f *fakeStore) InsertItem(_ context.Context, carouselID, imageID string, sortOrder int) (int64, error) {
	f.nextItem++
	f.items = append(f.items, PersistedItem{
		ItemID: f.nextItem, ImageID: imageID, SortOrder: sortOrder,
	})
	return f.nextItem, nil
}

func (f *fakeStore) UpdateSortOrder(_ context.Context, itemID int64, sortOrder int) error {
	f.orderCalls++
	if f.failUpdateOrder > 0 && f.orderCalls >= f.failUpdateOrder {
		return errors.New("update order failed")
	}
	for i := range f.items {
		if f.items[i].ItemID == itemID {
			f.items[i].SortOrder = sortOrder
			return nil
		}
	}
	return fmt.Errorf("unknown item %d", itemID)
}

func (f *fakeStore) Upload(_ context.Context, bucket, key string, data []byte, contentType string, upsert bool) error {
	if f.failUpload {
		return errors.New("upload failed")
	}
	f.uploads = append(f.uploads, bucket+"/"+key)
	return nil
}

func newTestSession(t *testing.T, n int) (*Session, *fakeStore) {
	t.Helper()
	f := &fakeStore{}
	for i := 0; i < n; i++ {
		f.items = append(f.items, PersistedItem{
			ItemID: int64(i + 1), ImageID: fmt.Sprintf("seed-%d", i+1), SortOrder: i,
		})
	}
	f.nextItem = int64(n)
	s := NewSession(Carousel{ID: "c1", Slug: "estate-gallery"}, Options{
		Bucket: "site-images",
		Now:    func() time.Time { return time.Unix(1700000000, 0) },
	})
	if err := s.Load(context.Background(), f); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return s, f
}

func keys(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Key()
	}
	return out
}

func pending(id, alt string) PendingItem {
	return PendingItem{
		LocalID: id, Filename: id + ".png", Alt: alt,
		Data: []byte{0xff, 0xd8}, ContentType: "image/jpeg",
		Width: 100, Height: 80,
	}
}

func TestLoadIsClean(t *testing.T) {
	s, _ := newTestSession(t, 3)
	if s.State() != StateClean {
		t.Fatalf("state after load = %v, want clean", s.State())
	}
	if s.Unsaved() {
		t.Fatal("fresh session should have no unsaved changes")
	}
}

func TestMoveSwapsNeighbors(t *testing.T) {
	s, _ := newTestSession(t, 3)
	if !s.Move(0, +1) {
		t.Fatal("expected move to succeed")
	}
	got := keys(s.Items())
	want := []string{"item:2", "item:1", "item:3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if !s.Unsaved() {
		t.Fatal("reorder should mark the session dirty")
	}
	if s.State() != StateDirty {
		t.Fatalf("state = %v, want dirty", s.State())
	}
}

func TestMoveBoundariesAreNoOps(t *testing.T) {
	s, _ := newTestSession(t, 3)
	if s.Move(0, -1) {
		t.Fatal("moving first item up should be a no-op")
	}
	if s.Move(2, +1) {
		t.Fatal("moving last item down should be a no-op")
	}
	if s.Move(5, +1) {
		t.Fatal("out-of-range index should be a no-op")
	}
	if s.Unsaved() {
		t.Fatal("no-op moves must not dirty the session")
	}
}

func TestMoveSequencePreservesIdentifiers(t *testing.T) {
	s, _ := newTestSession(t, 5)
	original := keys(s.Items())

	moves := []struct{ idx, delta int }{
		{0, 1}, {4, -1}, {2, 1}, {1, -1}, {3, 1}, {0, -1}, {4, 1}, {3, -1},
	}
	for _, m := range moves {
		s.Move(m.idx, m.delta)
	}

	got := keys(s.Items())
	if len(got) != len(original) {
		t.Fatalf("item count changed: %d -> %d", len(original), len(got))
	}
	seen := make(map[string]bool)
	for _, k := range got {
		if seen[k] {
			t.Fatalf("duplicated item %s after moves", k)
		}
		seen[k] = true
	}
	for _, k := range original {
		if !seen[k] {
			t.Fatalf("lost item %s after moves", k)
		}
	}
}

func TestSwapBackReturnsToClean(t *testing.T) {
	s, _ := newTestSession(t, 3)
	s.Move(0, +1)
	s.Move(1, -1)
	if s.Unsaved() {
		t.Fatal("swapping back should return to the baseline order")
	}
	if s.State() != StateClean {
		t.Fatalf("state = %v, want clean", s.State())
	}
}

func TestStageRequiresAltText(t *testing.T) {
	s, _ := newTestSession(t, 1)
	err := s.Stage(pending("u1", "short"))
	if !errors.Is(err, ErrAltTooShort) {
		t.Fatalf("expected ErrAltTooShort, got %v", err)
	}
	if s.Unsaved() {
		t.Fatal("rejected staging must not dirty the session")
	}

	if err := s.Stage(pending("u1", "greenhouse at dawn")); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if !s.Unsaved() {
		t.Fatal("staging should mark the session dirty")
	}
}

func TestDiscardRestoresBaseline(t *testing.T) {
	s, _ := newTestSession(t, 3)
	s.Move(0, +1)
	if err := s.Stage(pending("u1", "greenhouse at dawn")); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	s.Discard()
	if s.Unsaved() {
		t.Fatal("discard should clear unsaved changes")
	}
	got := keys(s.Items())
	want := []string{"item:1", "item:2", "item:3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order after discard = %v, want %v", got, want)
		}
	}
}

func TestSaveAssignsDenseOrder(t *testing.T) {
	s, f := newTestSession(t, 3)

	// Two staged uploads plus a reorder of the existing items.
	if err := s.Stage(pending("u1", "drying room interior")); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if err := s.Stage(pending("u2", "packaged flower close-up")); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	s.Move(0, +1)

	res, err := s.Save(context.Background(), f, f)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if len(res.InsertedItems) != 2 {
		t.Fatalf("inserted %d items, want 2", len(res.InsertedItems))
	}
	if s.State() != StateClean {
		t.Fatalf("state after save = %v, want clean", s.State())
	}
	if s.Unsaved() {
		t.Fatal("saved session should have no unsaved changes")
	}

	// Persisted sort_order must be exactly 0..N-1 with no gaps.
	seen := make(map[int]bool)
	for _, it := range f.items {
		if seen[it.SortOrder] {
			t.Fatalf("duplicate sort_order %d", it.SortOrder)
		}
		seen[it.SortOrder] = true
	}
	for i := 0; i < len(f.items); i++ {
		if !seen[i] {
			t.Fatalf("missing sort_order %d in %v", i, f.items)
		}
	}
	if len(f.uploads) != 2 {
		t.Fatalf("uploaded %d objects, want 2", len(f.uploads))
	}
}

func TestSaveMatchesOnScreenOrder(t *testing.T) {
	s, f := newTestSession(t, 2)
	if err := s.Stage(pending("u1", "estate aerial view")); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	// Put the staged upload first on screen.
	if err := s.ApplyOrder([]string{"pending:u1", "item:1", "item:2"}); err != nil {
		t.Fatalf("ApplyOrder failed: %v", err)
	}

	res, err := s.Save(context.Background(), f, f)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	newID := res.InsertedItems["u1"]
	orderByItem := make(map[int64]int)
	for _, it := range f.items {
		orderByItem[it.ItemID] = it.SortOrder
	}
	if orderByItem[newID] != 0 {
		t.Fatalf("staged item sort_order = %d, want 0", orderByItem[newID])
	}
	if orderByItem[1] != 1 || orderByItem[2] != 2 {
		t.Fatalf("persisted order = %v, want item:1 at 1, item:2 at 2", orderByItem)
	}

	// The reloaded session must come back in sort_order, not insertion order.
	got := keys(s.Items())
	want := []string{fmt.Sprintf("item:%d", newID), "item:1", "item:2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order after save = %v, want %v", got, want)
		}
	}
}

func TestSaveUploadFailureStaysDirty(t *testing.T) {
	s, f := newTestSession(t, 2)
	if err := s.Stage(pending("u1", "trim crew at work")); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	f.failUpload = true

	if _, err := s.Save(context.Background(), f, f); err == nil {
		t.Fatal("expected save to fail")
	}
	if s.State() != StateDirty {
		t.Fatalf("state after failed save = %v, want dirty", s.State())
	}
	if len(f.items) != 2 {
		t.Fatalf("failed upload must not insert rows, have %d items", len(f.items))
	}
}

func TestSaveMidSequenceFailureKeepsCommitted(t *testing.T) {
	s, f := newTestSession(t, 4)
	// Reverse the order so every row needs an update, then fail partway.
	for _, m := range []struct{ idx, dir int }{
		{0, 1}, {1, 1}, {2, 1}, {0, 1}, {1, 1}, {0, 1},
	} {
		s.Move(m.idx, m.dir)
	}
	f.failUpdateOrder = 2

	if _, err := s.Save(context.Background(), f, f); err == nil {
		t.Fatal("expected save to fail")
	}
	if s.State() != StateDirty {
		t.Fatalf("state after failed save = %v, want dirty", s.State())
	}
	// The first update landed; no rollback is attempted.
	if f.orderCalls < 2 {
		t.Fatalf("expected at least two order updates before failing, got %d", f.orderCalls)
	}
}

func TestApplyOrderRejectsNonPermutation(t *testing.T) {
	s, _ := newTestSession(t, 3)
	if err := s.ApplyOrder([]string{"item:1", "item:2"}); err == nil {
		t.Fatal("expected length mismatch to be rejected")
	}
	if err := s.ApplyOrder([]string{"item:1", "item:2", "item:9"}); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
	if err := s.ApplyOrder([]string{"item:1", "item:2", "item:2"}); err == nil {
		t.Fatal("expected duplicate key to be rejected")
	}
}

func TestValidateAltText(t *testing.T) {
	if err := ValidateAltText("  seven  ", 8); err == nil {
		t.Fatal("trimmed length below minimum should be rejected")
	}
	if err := ValidateAltText("long enough alt", 8); err != nil {
		t.Fatalf("qualifying alt text rejected: %v", err)
	}
	if err := ValidateAltText("exactly8", 8); err != nil {
		t.Fatalf("boundary-length alt text rejected: %v", err)
	}
}

func TestObjectKey(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	got := ObjectKey("estate-gallery", "Greenhouse Photo #3.PNG", ts)
	want := "estate-gallery/1700000000-greenhouse-photo-3.jpg"
	if got != want {
		t.Fatalf("ObjectKey = %q, want %q", got, want)
	}
	if got := ObjectKey("estate-gallery", "???.png", ts); got != "estate-gallery/1700000000-image.jpg" {
		t.Fatalf("fallback key = %q", got)
	}
}
