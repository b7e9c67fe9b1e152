package brandsite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/veridianfields/brandsite/editor"
)

// editorStore adapts Store to the narrow interfaces the editor session
// commits through.
type editorStore struct {
	s *Store
}

func (es editorStore) ListItems(_ context.Context, carouselID string) ([]editor.PersistedItem, error) {
	items, err := es.s.ListCarouselItems(carouselID)
	if err != nil {
		return nil, err
	}
	out := make([]editor.PersistedItem, len(items))
	for i, it := range items {
		p := editor.PersistedItem{
			ItemID:    it.ID,
			ImageID:   it.ImageID,
			SortOrder: it.SortOrder,
		}
		if it.Image != nil {
			p.Bucket = it.Image.Bucket
			p.Path = it.Image.Path
			p.Alt = it.Image.AltText
			p.Width = it.Image.Width
			p.Height = it.Image.Height
		}
		out[i] = p
	}
	return out, nil
}

func (es editorStore) InsertImage(_ context.Context, img editor.NewImage) (string, error) {
	inserted, err := es.s.InsertImage(Image{
		Bucket:   img.Bucket,
		Path:     img.Path,
		AltText:  img.AltText,
		MimeType: img.ContentType,
		ByteSize: img.ByteSize,
		Width:    img.Width,
		Height:   img.Height,
	})
	if err != nil {
		return "", err
	}
	return inserted.ID, nil
}

func (es editorStore) InsertItem(_ context.Context, carouselID, imageID string, sortOrder int) (int64, error) {
	return es.s.InsertCarouselItem(carouselID, imageID, sortOrder)
}

func (es editorStore) UpdateSortOrder(_ context.Context, itemID int64, sortOrder int) error {
	return es.s.UpdateItemSortOrder(itemID, sortOrder)
}

func (a *App) carouselBySlug(c echo.Context) (Carousel, error) {
	car, err := a.Store.GetCarouselBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Carousel{}, echo.NewHTTPError(http.StatusNotFound, "carousel not found")
		}
		return Carousel{}, err
	}
	return car, nil
}

func (a *App) carouselItemsJSON(carouselID string) ([]CarouselItem, error) {
	items, err := a.Store.ListCarouselItems(carouselID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Image != nil {
			img := a.withPublicURL(*items[i].Image)
			items[i].Image = &img
		}
	}
	if items == nil {
		items = []CarouselItem{}
	}
	return items, nil
}

// handleCarouselGet returns a carousel's ordered items plus the image
// library for the add-existing picker.
func (a *App) handleCarouselGet(c echo.Context) error {
	car, err := a.carouselBySlug(c)
	if err != nil {
		return err
	}
	items, err := a.carouselItemsJSON(car.ID)
	if err != nil {
		return err
	}
	library, err := a.Store.ListImages(a.Config.LibraryLimit)
	if err != nil {
		return err
	}
	for i := range library {
		library[i] = a.withPublicURL(library[i])
	}
	if library == nil {
		library = []Image{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"carousel": car,
		"items":    items,
		"library":  library,
	})
}

// orderEntry is one slot of the on-screen order submitted with a save:
// either a persisted carousel item or a staged upload in this request.
type orderEntry struct {
	Item    *int64 `json:"item,omitempty"`
	Pending string `json:"pending,omitempty"`
}

// handleCarouselSave commits a full editing session: staged uploads from
// the multipart body are uploaded and inserted sequentially, then every
// item's sort_order is rewritten to match the submitted on-screen order.
// A mid-sequence failure aborts the rest and reports the error; committed
// inserts from this attempt stay.
func (a *App) handleCarouselSave(c echo.Context) error {
	car, err := a.carouselBySlug(c)
	if err != nil {
		return err
	}

	var order []orderEntry
	if raw := c.FormValue("order"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &order); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid order payload"})
		}
	}

	sess := editor.NewSession(editor.Carousel{ID: car.ID, Slug: car.Slug}, editor.Options{
		Bucket:    a.Config.ImageBucket,
		MinAltLen: a.Config.MinAltTextLen,
	})
	st := editorStore{a.Store}
	ctx := c.Request().Context()
	if err := sess.Load(ctx, st); err != nil {
		return err
	}

	// Stage uploads in submitted order so sort assignment is deterministic.
	for _, entry := range order {
		if entry.Pending == "" {
			continue
		}
		p, err := a.stagedUpload(c, entry.Pending)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		if err := sess.Stage(p); err != nil {
			if errors.Is(err, editor.ErrAltTooShort) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}
			return err
		}
	}

	if len(order) > 0 {
		keys := make([]string, len(order))
		for i, entry := range order {
			switch {
			case entry.Item != nil:
				keys[i] = editor.PersistedItem{ItemID: *entry.Item}.Key()
			case entry.Pending != "":
				keys[i] = editor.PendingItem{LocalID: entry.Pending}.Key()
			default:
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "order entry needs item or pending"})
			}
		}
		if err := sess.ApplyOrder(keys); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	}

	res, err := sess.Save(ctx, st, a.Storage)
	if err != nil {
		c.Logger().Errorf("carousel save %s: %v", car.Slug, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	items, err := a.carouselItemsJSON(car.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"items":    items,
		"inserted": res.InsertedItems,
	})
}

// stagedUpload reads one multipart file+alt pair and normalizes it.
func (a *App) stagedUpload(c echo.Context, localID string) (editor.PendingItem, error) {
	file, err := c.FormFile("file-" + localID)
	if err != nil {
		return editor.PendingItem{}, fmt.Errorf("missing file for staged upload %q", localID)
	}
	if file.Size > maxUploadSize {
		return editor.PendingItem{}, fmt.Errorf("file %q too large (max 10MB)", file.Filename)
	}
	src, err := file.Open()
	if err != nil {
		return editor.PendingItem{}, err
	}
	defer src.Close()

	processed, err := processImage(src)
	if err != nil {
		return editor.PendingItem{}, fmt.Errorf("invalid image %q: %w", file.Filename, err)
	}
	return editor.PendingItem{
		LocalID:     localID,
		Filename:    file.Filename,
		Alt:         c.FormValue("alt-" + localID),
		Data:        processed.Data,
		ContentType: processed.ContentType,
		Width:       processed.Width,
		Height:      processed.Height,
	}, nil
}

// handleCarouselAddItem adds an existing library image at the end of the
// carousel. This is an immediate write, not part of a staged save.
func (a *App) handleCarouselAddItem(c echo.Context) error {
	car, err := a.carouselBySlug(c)
	if err != nil {
		return err
	}
	var req struct {
		ImageID string `json:"imageId"`
	}
	if err := c.Bind(&req); err != nil || req.ImageID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "imageId is required"})
	}
	img, err := a.Store.GetImage(req.ImageID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "image not found"})
		}
		return err
	}
	if img.DeletedAt != nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": "image has been deleted"})
	}
	next, err := a.Store.NextSortOrder(car.ID)
	if err != nil {
		return err
	}
	itemID, err := a.Store.InsertCarouselItem(car.ID, req.ImageID, next)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return c.JSON(http.StatusConflict, map[string]string{"error": "image is already in this carousel"})
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "itemId": itemID})
}

// handleCarouselRemoveItem deletes one item and immediately renumbers the
// remaining items into a dense sequence.
func (a *App) handleCarouselRemoveItem(c echo.Context) error {
	car, err := a.carouselBySlug(c)
	if err != nil {
		return err
	}
	itemID, err := strconv.ParseInt(c.Param("item"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid item id"})
	}
	if err := a.Store.DeleteCarouselItem(itemID); err != nil {
		return err
	}
	if err := a.Store.RenumberCarousel(car.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

// handleImageAltUpdate sets one image's alt text. Rejected before any
// write when the trimmed length is below the minimum.
func (a *App) handleImageAltUpdate(c echo.Context) error {
	var req struct {
		AltText string `json:"altText"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := editor.ValidateAltText(req.AltText, a.Config.MinAltTextLen); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := a.Store.UpdateImageAlt(c.Param("id"), strings.TrimSpace(req.AltText)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "image not found"})
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}
