package sanity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultAPIVersion = "2023-05-03"
	defaultTimeout    = 60 * time.Second
)

// Config identifies a Sanity project and dataset.
type Config struct {
	ProjectID  string
	Dataset    string
	Token      string
	APIVersion string
}

// Asset is the document created by an asset upload.
type Asset struct {
	ID       string `json:"_id"`
	URL      string `json:"url"`
	MimeType string `json:"mimeType"`
}

// Client talks to the Sanity HTTP API. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	dataset    string
	token      string
}

// NewClient creates a client for the given project. The token is sent as a
// bearer token on every request.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ProjectID == "" || cfg.Dataset == "" {
		return nil, ErrNotConfigured
	}
	version := cfg.APIVersion
	if version == "" {
		version = defaultAPIVersion
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    fmt.Sprintf("https://%s.api.sanity.io/v%s", cfg.ProjectID, version),
		dataset:    cfg.Dataset,
		token:      cfg.Token,
	}, nil
}

// Query runs a GROQ query and decodes its result into out.
// Params are passed as $name query parameters.
func (c *Client) Query(ctx context.Context, query string, params map[string]any, out any) error {
	q := url.Values{}
	q.Set("query", query)
	for name, value := range params {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode param %s: %w", name, err)
		}
		q.Set("$"+name, string(encoded))
	}

	endpoint := fmt.Sprintf("%s/data/query/%s?%s", c.baseURL, c.dataset, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := c.do(req, "query", &envelope); err != nil {
		return err
	}
	if out == nil || len(envelope.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("decode query result: %w", err)
	}
	return nil
}

// Mutate applies mutations as a single atomic transaction.
func (c *Client) Mutate(ctx context.Context, mutations []Mutation) (*MutateResult, error) {
	body, err := json.Marshal(map[string]any{"mutations": mutations})
	if err != nil {
		return nil, fmt.Errorf("encode mutations: %w", err)
	}

	endpoint := fmt.Sprintf("%s/data/mutate/%s?returnIds=true", c.baseURL, c.dataset)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result MutateResult
	if err := c.do(req, "mutate", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UploadImage stores raw image bytes as an image asset.
func (c *Client) UploadImage(ctx context.Context, data []byte, filename string) (*Asset, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}

	q := url.Values{}
	if filename != "" {
		q.Set("filename", filename)
	}
	endpoint := fmt.Sprintf("%s/assets/images/%s?%s", c.baseURL, c.dataset, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", http.DetectContentType(data))

	var envelope struct {
		Document Asset `json:"document"`
	}
	if err := c.do(req, "asset upload", &envelope); err != nil {
		return nil, err
	}
	if envelope.Document.ID == "" {
		return nil, fmt.Errorf("asset upload returned no document id")
	}
	return &envelope.Document, nil
}

func (c *Client) do(req *http.Request, endpoint string, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sanity %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Message:    readErrorMessage(resp.Body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// readErrorMessage extracts error.description from a Sanity error body,
// falling back to the raw body.
func readErrorMessage(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, 4096))
	var payload struct {
		Error struct {
			Description string `json:"description"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error.Description != "" {
			return payload.Error.Description
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return string(bytes.TrimSpace(body))
}
