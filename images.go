package brandsite

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 1600
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
)

// processedImage is the normalized result of an uploaded binary: JPEG
// bytes plus dimensions.
type processedImage struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// processImage decodes an image from src, resizes it down to maxImageWidth
// when wider, and re-encodes it as JPEG.
func processImage(src io.Reader) (processedImage, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return processedImage{}, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return processedImage{}, fmt.Errorf("encode jpeg: %w", err)
	}

	return processedImage{
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
		Width:       w,
		Height:      h,
	}, nil
}

// withPublicURL fills in the derived public URL for an image.
func (a *App) withPublicURL(img Image) Image {
	if img.Bucket != "" && img.Path != "" {
		img.URL = PublicURL(a.Config.StorageBaseURL, img.Bucket, img.Path)
	}
	return img
}
