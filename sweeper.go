package brandsite

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	sweepImageLimit     = 500
	sweepReferenceLimit = 2000
)

// unusedImages computes the set difference between all non-deleted images
// and all images referenced by any carousel item, within bounded fetches.
func (a *App) unusedImages() ([]Image, error) {
	images, err := a.Store.ListImages(sweepImageLimit)
	if err != nil {
		return nil, err
	}
	referenced, err := a.Store.ListReferencedImageIDs(sweepReferenceLimit)
	if err != nil {
		return nil, err
	}
	refSet := make(map[string]struct{}, len(referenced))
	for _, id := range referenced {
		refSet[id] = struct{}{}
	}
	var unused []Image
	for _, img := range images {
		if _, ok := refSet[img.ID]; ok {
			continue
		}
		unused = append(unused, a.withPublicURL(img))
	}
	return unused, nil
}

func (a *App) handleUnusedImages(c echo.Context) error {
	unused, err := a.unusedImages()
	if err != nil {
		return err
	}
	if unused == nil {
		unused = []Image{}
	}
	return c.JSON(http.StatusOK, map[string]any{"images": unused})
}

// handleUnusedImageDelete permanently deletes one image: re-fetch the row,
// re-check references (a carousel may have picked the image up since the
// unused listing), remove the storage object, delete the row. All four
// steps run behind this one endpoint so a client cannot partially execute
// them.
func (a *App) handleUnusedImageDelete(c echo.Context) error {
	var req struct {
		ImageID string `json:"imageId" form:"imageId"`
	}
	if err := c.Bind(&req); err != nil || req.ImageID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "imageId is required"})
	}

	img, err := a.Store.GetImage(req.ImageID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "image not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	refs, err := a.Store.CountImageReferences(img.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if refs > 0 {
		// Distinct, non-fatal outcome: nothing is removed.
		return c.JSON(http.StatusConflict, map[string]string{"error": "image is still referenced by a carousel"})
	}

	if img.Bucket != "" && img.Path != "" {
		if err := a.Storage.Remove(c.Request().Context(), img.Bucket, []string{img.Path}); err != nil {
			c.Logger().Errorf("remove object %s/%s: %v", img.Bucket, img.Path, err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}
	if err := a.Store.DeleteImage(img.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}
