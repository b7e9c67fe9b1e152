package brandsite

import (
	"github.com/veridianfields/brandsite/blocks"
)

// hydrateBlocks resolves live data into block props before rendering:
// a "contentSlug" prop pulls current copy (with "fallback" as the default
// when the slug is absent or the store unreachable), and a "carouselSlug"
// prop pulls the carousel's ordered images with public URLs.
func (a *App) hydrateBlocks(bs []blocks.Block) []blocks.Block {
	if len(bs) == 0 {
		return nil
	}
	out := make([]blocks.Block, len(bs))
	for i, b := range bs {
		nb := b
		if len(b.Props) > 0 {
			props := make(map[string]any, len(b.Props)+2)
			for k, v := range b.Props {
				props[k] = v
			}
			if slug, ok := props["contentSlug"].(string); ok {
				fallback, _ := props["fallback"].(string)
				if block, found, err := a.Cache.Get(slug); err == nil && found {
					props["content"] = block.Content
					props["contentType"] = string(block.ContentType)
				} else {
					props["content"] = fallback
				}
			}
			if slug, ok := props["carouselSlug"].(string); ok {
				if images, err := a.carouselImages(slug); err == nil {
					props["images"] = images
				}
			}
			nb.Props = props
		}
		nb.Children = a.hydrateBlocks(b.Children)
		out[i] = nb
	}
	return out
}

// carouselImages returns a carousel's images in display order.
func (a *App) carouselImages(slug string) ([]Image, error) {
	car, err := a.Store.GetCarouselBySlug(slug)
	if err != nil {
		return nil, err
	}
	items, err := a.Store.ListCarouselItems(car.ID)
	if err != nil {
		return nil, err
	}
	images := make([]Image, 0, len(items))
	for _, it := range items {
		if it.Image == nil {
			continue
		}
		images = append(images, a.withPublicURL(*it.Image))
	}
	return images, nil
}
