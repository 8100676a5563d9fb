// Package client is a typed Go client for the forfaits REST API.
//
// Every method returns either the decoded response body or a *Error, so
// callers never need to inspect net/http errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "http://localhost:3000/api"
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 4 << 20
)

type Forfait struct {
	ID          uint       `json:"id"`
	Nom         string     `json:"nom"`
	Description string     `json:"description"`
	Prix        float64    `json:"prix"`
	Image       string     `json:"image"`
	Categorie   string     `json:"categorie"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// ForfaitData is the payload of Create and Update.
type ForfaitData struct {
	Nom         string  `json:"nom"`
	Description string  `json:"description"`
	Prix        float64 `json:"prix"`
	Image       string  `json:"image"`
	Categorie   string  `json:"categorie"`
}

type DeleteResult struct {
	Message string `json:"message"`
	ID      uint   `json:"id"`
}

type Category struct {
	Name  string `json:"name"`
	Total int64  `json:"total"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which has a 10 second timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New returns a client for the API rooted at baseURL (for example
// "http://localhost:3000/api"). An empty baseURL selects DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetAll returns every forfait, newest first.
func (c *Client) GetAll(ctx context.Context) ([]Forfait, error) {
	var out []Forfait
	if err := c.do(ctx, http.MethodGet, "/forfaits", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id uint) (*Forfait, error) {
	var out Forfait
	if err := c.do(ctx, http.MethodGet, forfaitPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByCategorie returns the forfaits whose category equals categorie.
func (c *Client) GetByCategorie(ctx context.Context, categorie string) ([]Forfait, error) {
	var out []Forfait
	if err := c.do(ctx, http.MethodGet, "/forfaits/categorie/"+url.PathEscape(categorie), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search returns the forfaits whose name or description contains term.
// Terms that would not survive as a path segment ("", "." and "..") are
// sent as the term query parameter instead.
func (c *Client) Search(ctx context.Context, term string) ([]Forfait, error) {
	path := "/forfaits/search/" + url.PathEscape(term)
	switch term {
	case "", ".", "..":
		path = "/forfaits/search?term=" + url.QueryEscape(term)
	}

	var out []Forfait
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, data ForfaitData) (*Forfait, error) {
	var out Forfait
	if err := c.do(ctx, http.MethodPost, "/forfaits", data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Update(ctx context.Context, id uint, data ForfaitData) (*Forfait, error) {
	var out Forfait
	if err := c.do(ctx, http.MethodPut, forfaitPath(id), data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, id uint) (*DeleteResult, error) {
	var out DeleteResult
	if err := c.do(ctx, http.MethodDelete, forfaitPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Categories returns the categories in use with their forfait counts.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func forfaitPath(id uint) string {
	return "/forfaits/" + strconv.FormatUint(uint64(id), 10)
}

// do sends one request and decodes a 2xx body into out. Every failure is
// returned as a *Error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Message: fmt.Sprintf("encode request: %v", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &Error{Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{Message: fmt.Sprintf("read response: %v", err), StatusCode: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := &Error{
			Message:    fmt.Sprintf("request failed with status code %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
		if len(data) > 0 {
			e.Response = json.RawMessage(data)
		}
		return e
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{
			Message:    fmt.Sprintf("decode response: %v", err),
			StatusCode: resp.StatusCode,
			Response:   json.RawMessage(data),
		}
	}
	return nil
}
