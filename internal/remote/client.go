package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/team"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("bracket not found in remote store")

const defaultTimeout = 10 * time.Second

// Client keeps a copy of every bracket document in another instance of this
// service, addressed through its document endpoint.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient targets the instance at baseURL. token is sent as a bearer
// credential and must match that instance's document token.
func NewClient(baseURL, token string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid remote store url %q", baseURL)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (c *Client) documentURL(id uuid.UUID) string {
	return fmt.Sprintf("%s/brackets/%s/document", c.baseURL, id)
}

func (c *Client) newRequest(ctx context.Context, method string, id uuid.UUID, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.documentURL(id), body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// Save replaces the remote copy of b.
func (c *Client) Save(ctx context.Context, b *bracket.Bracket) error {
	data, err := bracket.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode bracket: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, b.ID, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach remote store: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return statusError(resp)
	}
	return nil
}

// Load fetches the remote copy of a bracket and resolves its teams against
// dir.
func (c *Client) Load(ctx context.Context, id uuid.UUID, dir team.Directory) (*bracket.Bracket, error) {
	req, err := c.newRequest(ctx, http.MethodGet, id, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach remote store: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case resp.StatusCode/100 != 2:
		return nil, statusError(resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read remote document: %w", err)
	}
	return bracket.Unmarshal(data, dir)
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("remote store returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
}
