// Package images finds a stock photo for an article and optionally stores a
// local copy next to the site's static assets.
package images

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/thinkscotty/minutes/internal/models"
)

// Provider is one stock-photo search backend.
type Provider interface {
	Name() string
	// Configured reports whether the provider has the key it needs.
	Configured() bool
	// Search returns the top landscape result, or nil when nothing matched.
	Search(ctx context.Context, keywords string) (*models.Image, error)
}

// getJSON performs an authenticated GET and decodes a JSON body into v.
func getJSON(ctx context.Context, client *http.Client, endpoint, authorization string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
