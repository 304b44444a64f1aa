package catalog

import (
	"net/url"
	"strings"

	"github.com/iflis7/iyuc-store/services/storefront/internal/domain"
)

// Images returns the product gallery: its images, else its thumbnail, else
// nothing.
func Images(p *domain.Product) []domain.Image {
	if len(p.Images) > 0 {
		return p.Images
	}
	if p.Thumbnail != "" {
		return []domain.Image{{ID: "thumb", URL: p.Thumbnail}}
	}
	return []domain.Image{}
}

// ImageRewriter points backend-hosted image URLs at the configured backend
// origin.
type ImageRewriter struct {
	base string
}

func NewImageRewriter(backendURL string) ImageRewriter {
	return ImageRewriter{base: strings.TrimRight(backendURL, "/")}
}

// URL rewrites raw. Relative paths are prefixed with the backend base;
// absolute URLs on localhost or 127.0.0.1 with port 9000, 80 or none get the
// base as origin. Anything else, including unparsable input, is returned
// unchanged.
func (r ImageRewriter) URL(raw string) string {
	if raw == "" || r.base == "" {
		return raw
	}
	if strings.HasPrefix(raw, "/") {
		return r.base + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}
	host, port := u.Hostname(), u.Port()
	if host != "localhost" && host != "127.0.0.1" {
		return raw
	}
	if port != "" && port != "9000" && port != "80" {
		return raw
	}
	origin := u.Scheme + "://" + u.Host
	return strings.Replace(raw, origin, r.base, 1)
}

// Product returns a copy of p with its thumbnail and images rewritten.
func (r ImageRewriter) Product(p domain.Product) domain.Product {
	p.Thumbnail = r.URL(p.Thumbnail)
	if len(p.Images) > 0 {
		images := make([]domain.Image, len(p.Images))
		for i, img := range p.Images {
			img.URL = r.URL(img.URL)
			images[i] = img
		}
		p.Images = images
	}
	return p
}
