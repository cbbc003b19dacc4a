// Package aurapi is a thin client for the AUR RPC v5 JSON interface
// (https://aur.archlinux.org/rpc), used by internal/catalog.AurHas and by
// `search` to query the community repository's index over HTTP.
package aurapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/reap-dev/reap/internal/config"
	"github.com/reap-dev/reap/internal/httputil"
)

const baseURL = "https://aur.archlinux.org/rpc/v5"

// Result is a single package entry from an AUR RPC search or info
// response; only the fields reap's catalog and search surface need are
// decoded, and the rest of the response's JSON shape is ignored.
type Result struct {
	Name        string `json:"Name"`
	Version     string `json:"Version"`
	Description string `json:"Description"`
}

type response struct {
	Type    string   `json:"type"`
	Results []Result `json:"results"`
}

// Client queries the AUR RPC v5 endpoint over a security-hardened HTTP
// client (internal/httputil.NewSecureClient).
type Client struct {
	http    *http.Client
	baseURL string
}

// New builds a Client with reap's configured API timeout.
func New() *Client {
	opts := httputil.DefaultOptions()
	opts.Timeout = config.GetAPITimeout()
	return &Client{http: httputil.NewSecureClient(opts), baseURL: baseURL}
}

// Has reports whether the AUR RPC index has a package named pkg. A
// network failure is reported as "does not have it" rather than
// propagated as a fatal error, and results are never cached.
func (c *Client) Has(ctx context.Context, pkg string) bool {
	results, err := c.Info(ctx, pkg)
	if err != nil {
		return false
	}
	for _, r := range results {
		if r.Name == pkg {
			return true
		}
	}
	return false
}

// Info queries the "info" RPC method for one or more exact package names.
func (c *Client) Info(ctx context.Context, pkgs ...string) ([]Result, error) {
	return c.query(ctx, "info", pkgs)
}

// Search queries the "search" RPC method for a free-text term.
func (c *Client) Search(ctx context.Context, term string) ([]Result, error) {
	return c.query(ctx, "search", []string{term})
}

func (c *Client) query(ctx context.Context, method string, args []string) ([]Result, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid AUR RPC base URL: %w", err)
	}

	q := u.Query()
	q.Set("v", "5")
	q.Set("type", method)
	for _, a := range args {
		q.Add("arg[]", a)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build AUR RPC request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("AUR RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("AUR RPC returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read AUR RPC response: %w", err)
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode AUR RPC response: %w", err)
	}

	return parsed.Results, nil
}
