// Package awx talks to the automation server that feeds the editor: the
// inventory whose hosts fill the inventory toolbox and the job templates
// behind the DISCOVER and CONFIGURE buttons.
package awx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the host variable requests in flight.
const DefaultConcurrency = 8

// APIError is a non-2xx response.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Client is an AWX REST client. The zero HTTP uses a client with a 30 second
// timeout.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client

	// Concurrency bounds parallel host variable fetches.
	Concurrency int
}

// Host is an inventory host as the editor places it.
type Host struct {
	ID   int
	Name string
	Type string
}

type hostList struct {
	Next    *string `json:"next"`
	Results []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"results"`
}

// hostVars are the variables the editor reads from a host.
type hostVars struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// InventoryHosts lists the hosts of an inventory and reads each one's
// variables. Hosts are returned in inventory order; a host without a type
// variable is a "host".
func (c *Client) InventoryHosts(ctx context.Context, inventoryID int) ([]Host, error) {
	var hosts []Host
	path := fmt.Sprintf("/api/v2/inventories/%d/hosts/?format=json", inventoryID)
	for path != "" {
		var page hostList
		if err := c.get(ctx, path, &page); err != nil {
			return nil, err
		}
		for _, r := range page.Results {
			hosts = append(hosts, Host{ID: r.ID, Name: r.Name})
		}
		path = ""
		if page.Next != nil {
			path = *page.Next
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	limit := c.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	g.SetLimit(limit)
	for i := range hosts {
		h := &hosts[i]
		g.Go(func() error {
			vars, err := c.HostVariables(gctx, h.ID)
			if err != nil {
				return fmt.Errorf("host %d: %w", h.ID, err)
			}
			if vars.Name != "" {
				h.Name = vars.Name
			}
			h.Type = vars.Type
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i := range hosts {
		if hosts[i].Type == "" {
			hosts[i].Type = "host"
		}
	}
	return hosts, nil
}

// HostVariables reads the name and type variables of one host.
func (c *Client) HostVariables(ctx context.Context, hostID int) (Host, error) {
	var vars hostVars
	if err := c.get(ctx, fmt.Sprintf("/api/v2/hosts/%d/variable_data/?format=json", hostID), &vars); err != nil {
		return Host{}, err
	}
	return Host{ID: hostID, Name: vars.Name, Type: vars.Type}, nil
}

// LaunchJobTemplate starts a job from a template and returns the job id.
func (c *Client) LaunchJobTemplate(ctx context.Context, templateID int) (int, error) {
	var resp struct {
		Job int `json:"job"`
	}
	path := fmt.Sprintf("/api/v2/job_templates/%d/launch/", templateID)
	if err := c.do(ctx, http.MethodPost, path, strings.NewReader("{}"), &resp); err != nil {
		return 0, err
	}
	return resp.Job, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	url := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		url = strings.TrimSuffix(c.BaseURL, "/") + path
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Method: method, URL: url, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 30 * time.Second}
}
