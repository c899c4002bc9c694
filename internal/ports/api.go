package ports

import (
	"context"
	"net/url"

	"github.com/beevik/etree"
)

// API issues an authenticated GET for a path below the API base URL and
// returns the root element of the parsed XML response.
type API interface {
	Get(ctx context.Context, path string, query url.Values) (*etree.Element, error)
}
