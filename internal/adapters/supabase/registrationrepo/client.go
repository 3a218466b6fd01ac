package registrationrepo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// APIError is a non-2xx PostgREST response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase: %d: %s", e.Status, e.Message)
}

// IsConstraintViolation reports whether Postgres rejected the write (SQLSTATE class 23).
func (e *APIError) IsConstraintViolation() bool {
	return strings.HasPrefix(e.Code, "23")
}

type Options struct {
	// HTTPClient overrides the default client (15s timeout, traced transport).
	HTTPClient *http.Client
}

// client speaks the PostgREST dialect exposed by Supabase at /rest/v1.
type client struct {
	base   *url.URL
	apiKey string
	http   *http.Client
}

func newClient(baseURL, serviceRoleKey string, opts Options) (*client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("SUPABASE_URL is required")
	}
	if strings.TrimSpace(serviceRoleKey) == "" {
		return nil, errors.New("SUPABASE_SERVICE_ROLE_KEY is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse SUPABASE_URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("SUPABASE_URL must be absolute: %q", baseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &client{base: u, apiKey: serviceRoleKey, http: hc}, nil
}

// do sends a request to /rest/v1/<path> and decodes a JSON response into out.
func (c *client) do(ctx context.Context, method, path string, query url.Values, body any, header http.Header, out any) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/rest/v1/" + strings.TrimLeft(path, "/")
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	switch dst := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*dst = data
		return nil
	default:
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
		return nil
	}
}
