package storage

import (
	"context"
	"net/url"
	"strings"

	appcatalog "github.com/storefront/backend/internal/application/catalog"
)

// PublicURLResolver maps image keys onto a public base URL, for buckets that
// are served through a CDN and need no signing.
type PublicURLResolver struct {
	BaseURL string
}

var _ appcatalog.ImageURLResolver = PublicURLResolver{}

// NewPublicURLResolver creates a resolver for baseURL
func NewPublicURLResolver(baseURL string) PublicURLResolver {
	return PublicURLResolver{BaseURL: strings.TrimRight(baseURL, "/")}
}

// ResolveImageURL joins the base URL and the escaped key
func (r PublicURLResolver) ResolveImageURL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	parts := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return r.BaseURL + "/" + strings.Join(parts, "/"), nil
}
