// Package terminology resolves coded clinical values (ATC, SNOMED CT,
// LOINC, EDQM) to human-readable text through an external terminology
// service, with a static fallback table so resolution never blocks a parse.
package terminology

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
)

// Gateway looks a code up in an external terminology service. A lookup miss
// is reported as an empty display with a nil error; errors are reserved for
// transport failures. Both are treated as misses by the Resolver.
type Gateway interface {
	Lookup(ctx context.Context, code, systemOID, language string) (string, error)
}

// HTTPGateway talks to a CTS-style terminology endpoint:
//
//	GET {base}/resolve?code=...&system=...&lang=...
//
// expecting {"display": "..."} on success and 404 on unknown codes.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGateway creates a gateway against baseURL. The timeout bounds every
// lookup; the engine itself carries no other network I/O.
func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type lookupResponse struct {
	Display string `json:"display"`
}

// Lookup implements Gateway.
func (g *HTTPGateway) Lookup(ctx context.Context, code, systemOID, language string) (string, error) {
	q := url.Values{}
	q.Set("code", code)
	q.Set("system", systemOID)
	q.Set("lang", language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/resolve?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("lookup %s|%s: %w", systemOID, code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lookup %s|%s: unexpected status %d", systemOID, code, resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode lookup response: %w", err)
	}
	return body.Display, nil
}
