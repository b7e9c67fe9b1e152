package brandsite

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func setupSweeperApp(t *testing.T) *App {
	t.Helper()
	s, cleanup := setupTestStore(t)
	t.Cleanup(cleanup)

	cfg := SiteConfig{StorageBaseURL: "http://localhost:3000"}
	cfg.setDefaults()

	return &App{
		Config:  cfg,
		Echo:    echo.New(),
		Store:   s,
		Storage: NewDiskStorage(t.TempDir()),
	}
}

func sweeperJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return resp
}

func TestUnusedImagesListing(t *testing.T) {
	app := setupSweeperApp(t)

	car := seedCarousel(t, app.Store, "gallery")
	used := seedImage(t, app.Store, "gallery/used.jpg")
	unused := seedImage(t, app.Store, "gallery/unused.jpg")
	if _, err := app.Store.InsertCarouselItem(car.ID, used.ID, 0); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/images/unused", nil)
	rec := httptest.NewRecorder()
	if err := app.handleUnusedImages(app.Echo.NewContext(req, rec)); err != nil {
		t.Fatalf("handleUnusedImages: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	resp := sweeperJSON(t, rec)
	images, _ := resp["images"].([]any)
	if len(images) != 1 {
		t.Fatalf("unused count = %d, want 1", len(images))
	}
	entry, _ := images[0].(map[string]any)
	if entry["id"] != unused.ID {
		t.Errorf("unused id = %v, want %s", entry["id"], unused.ID)
	}
	url, _ := entry["url"].(string)
	if !strings.Contains(url, "gallery/unused.jpg") {
		t.Errorf("listing should carry a public url, got %q", url)
	}
}

func postUnusedDelete(t *testing.T, app *App, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/images/unused/delete", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := app.handleUnusedImageDelete(app.Echo.NewContext(req, rec)); err != nil {
		t.Fatalf("handleUnusedImageDelete: %v", err)
	}
	return rec
}

func TestUnusedImageDelete(t *testing.T) {
	app := setupSweeperApp(t)
	disk := app.Storage.(*DiskStorage)

	img := seedImage(t, app.Store, "gallery/orphan.jpg")
	if err := disk.Upload(context.Background(), img.Bucket, img.Path, []byte("bytes"), "image/jpeg", false); err != nil {
		t.Fatal(err)
	}

	rec := postUnusedDelete(t, app, `{"imageId": "`+img.ID+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	if _, err := app.Store.GetImage(img.ID); err != ErrNotFound {
		t.Errorf("image row should be gone, got %v", err)
	}
	objPath := filepath.Join(disk.Root, img.Bucket, filepath.FromSlash(img.Path))
	if _, err := os.Stat(objPath); !os.IsNotExist(err) {
		t.Error("stored object should be gone")
	}
}

func TestUnusedImageDeleteStillReferenced(t *testing.T) {
	app := setupSweeperApp(t)
	disk := app.Storage.(*DiskStorage)

	car := seedCarousel(t, app.Store, "gallery")
	img := seedImage(t, app.Store, "gallery/kept.jpg")
	if err := disk.Upload(context.Background(), img.Bucket, img.Path, []byte("bytes"), "image/jpeg", false); err != nil {
		t.Fatal(err)
	}
	// Referenced between listing and delete.
	if _, err := app.Store.InsertCarouselItem(car.ID, img.ID, 0); err != nil {
		t.Fatal(err)
	}

	rec := postUnusedDelete(t, app, `{"imageId": "`+img.ID+`"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}

	// Nothing was removed.
	if _, err := app.Store.GetImage(img.ID); err != nil {
		t.Errorf("image row must survive: %v", err)
	}
	objPath := filepath.Join(disk.Root, img.Bucket, filepath.FromSlash(img.Path))
	if _, err := os.Stat(objPath); err != nil {
		t.Error("stored object must survive")
	}
}

func TestUnusedImageDeleteMissing(t *testing.T) {
	app := setupSweeperApp(t)

	rec := postUnusedDelete(t, app, `{"imageId": "no-such-image"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestUnusedImageDeleteMissingID(t *testing.T) {
	app := setupSweeperApp(t)

	rec := postUnusedDelete(t, app, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
