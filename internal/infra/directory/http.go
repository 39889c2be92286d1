package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cloudscope/cloudscope/internal/domain/resources"
)

// Client queries the external resource inventory over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// Lookup resolves a resource id against GET {base}/resources/{id}.
func (c *Client) Lookup(ctx context.Context, id string) (resources.ResourceRef, error) {
	u := fmt.Sprintf("%s/resources/%s", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return resources.ResourceRef{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return resources.ResourceRef{}, fmt.Errorf("resource directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return resources.ResourceRef{}, fmt.Errorf("%w: %s", resources.ErrNotFound, id)
	}
	if resp.StatusCode != http.StatusOK {
		return resources.ResourceRef{}, fmt.Errorf("resource directory: unexpected status %d", resp.StatusCode)
	}

	var ref resources.ResourceRef
	if err := json.NewDecoder(resp.Body).Decode(&ref); err != nil {
		return resources.ResourceRef{}, fmt.Errorf("resource directory: decode: %w", err)
	}
	return ref, nil
}
