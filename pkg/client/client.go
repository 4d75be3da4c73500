// Package client is a small Go client for the inventory HTTP API.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

type Game struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Platforms []string `json:"platforms"`
	Stock     int64    `json:"stock"`
}

// CreateRequest fields are loosely typed on purpose: the API accepts stock as
// a number or numeric string, and platforms as a list or a comma-separated
// string.
type CreateRequest struct {
	Title     string `json:"title"`
	Stock     any    `json:"stock,omitempty"`
	Platforms any    `json:"platforms,omitempty"`
}

// UpdateRequest sends only the fields that are set. ClearPlatforms sends an
// explicit "platforms": null, which empties the list on the server.
type UpdateRequest struct {
	Stock          any
	Platforms      any
	ClearPlatforms bool
}

func (u UpdateRequest) MarshalJSON() ([]byte, error) {
	body := map[string]any{}
	if u.Stock != nil {
		body["stock"] = u.Stock
	}
	switch {
	case u.ClearPlatforms:
		body["platforms"] = nil
	case u.Platforms != nil:
		body["platforms"] = u.Platforms
	}
	return json.Marshal(body)
}

var (
	ErrNotFound    = errors.New("game not found")
	ErrBadRequest  = errors.New("bad request")
	ErrBadStatus   = errors.New("inventory bad status")
	ErrUnavailable = errors.New("inventory unavailable")
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) List(ctx context.Context) ([]Game, error) {
	var out []Game
	err := c.do(ctx, http.MethodGet, "/api/games", nil, http.StatusOK, &out)
	return out, err
}

func (c *Client) Get(ctx context.Context, id int64) (Game, error) {
	var g Game
	err := c.do(ctx, http.MethodGet, "/api/games/"+strconv.FormatInt(id, 10), nil, http.StatusOK, &g)
	return g, err
}

func (c *Client) ByPlatform(ctx context.Context, platform string) ([]Game, error) {
	var out []Game
	err := c.do(ctx, http.MethodGet, "/api/games/platform/"+url.PathEscape(platform), nil, http.StatusOK, &out)
	return out, err
}

func (c *Client) Create(ctx context.Context, req CreateRequest) (Game, error) {
	var g Game
	err := c.do(ctx, http.MethodPost, "/api/games", req, http.StatusCreated, &g)
	return g, err
}

func (c *Client) Update(ctx context.Context, id int64, req UpdateRequest) (Game, error) {
	var g Game
	err := c.do(ctx, http.MethodPut, "/api/games/"+strconv.FormatInt(id, 10), req, http.StatusOK, &g)
	return g, err
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/games/"+strconv.FormatInt(id, 10), nil, http.StatusNoContent, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		msg := errorMessage(resp.Body)
		switch resp.StatusCode {
		case http.StatusNotFound:
			return ErrNotFound
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %s", ErrBadRequest, msg)
		default:
			return fmt.Errorf("%w: status=%d %s", ErrBadStatus, resp.StatusCode, msg)
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func errorMessage(body io.Reader) string {
	var e struct {
		Error string `json:"error"`
	}
	b, _ := io.ReadAll(io.LimitReader(body, 4<<10))
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(b))
}
