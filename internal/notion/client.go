package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pagemark-io/pagemark/internal/blocks"
)

// MaxBlocksPerRequest is the hard Notion limit on children per call.
const MaxBlocksPerRequest = 100

// Client communicates with the Notion HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	version    string
	httpClient *http.Client

	// Stats aggregates request latencies and failures for the stats endpoint.
	Stats *RequestStats
}

func NewClient(baseURL, apiKey, version string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		version: version,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Stats: NewRequestStats(time.Hour),
	}
}

// Page identifies a page created through the API.
type Page struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type parentRef struct {
	PageID string `json:"page_id"`
}

type titleRun struct {
	Text blocks.TextContent `json:"text"`
}

type titleProperty struct {
	Title []titleRun `json:"title"`
}

type pageProperties struct {
	Title titleProperty `json:"title"`
}

type createPageRequest struct {
	Parent     parentRef      `json:"parent"`
	Properties pageProperties `json:"properties"`
	Children   []blocks.Block `json:"children,omitempty"`
}

type appendChildrenRequest struct {
	Children []blocks.Block `json:"children"`
}

type archivePageRequest struct {
	Archived bool `json:"archived"`
}

// CreatePage creates a page under parentPageID with the given title. Only the
// first MaxBlocksPerRequest children are sent with the create call; append the
// remainder with AppendChildren against the returned page id.
func (c *Client) CreatePage(ctx context.Context, parentPageID, title string, children []blocks.Block) (*Page, error) {
	if len(children) > MaxBlocksPerRequest {
		children = children[:MaxBlocksPerRequest]
	}
	reqBody := createPageRequest{
		Parent: parentRef{PageID: parentPageID},
		Properties: pageProperties{
			Title: titleProperty{
				Title: []titleRun{{Text: blocks.TextContent{Content: title}}},
			},
		},
		Children: children,
	}

	var page Page
	if err := c.do(ctx, http.MethodPost, "/v1/pages", reqBody, &page); err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return &page, nil
}

// AppendChildren appends blocks under the given block or page id, batching
// MaxBlocksPerRequest at a time. Batches already written stay written when a
// later batch fails.
func (c *Client) AppendChildren(ctx context.Context, blockID string, children []blocks.Block) error {
	for start := 0; start < len(children); start += MaxBlocksPerRequest {
		end := min(start+MaxBlocksPerRequest, len(children))
		reqBody := appendChildrenRequest{Children: children[start:end]}
		if err := c.do(ctx, http.MethodPatch, "/v1/blocks/"+blockID+"/children", reqBody, nil); err != nil {
			return fmt.Errorf("append children [%d:%d): %w", start, end, err)
		}
	}
	return nil
}

// AppendPageLink appends a link_to_page block under parentPageID pointing at
// childPageID.
func (c *Client) AppendPageLink(ctx context.Context, parentPageID, childPageID string) error {
	return c.AppendChildren(ctx, parentPageID, []blocks.Block{blocks.NewPageLink(childPageID)})
}

// ArchivePage archives the page, removing it from its parent.
func (c *Client) ArchivePage(ctx context.Context, pageID string) error {
	if err := c.do(ctx, http.MethodPatch, "/v1/pages/"+pageID, archivePageRequest{Archived: true}, nil); err != nil {
		return fmt.Errorf("archive page %s: %w", pageID, err)
	}
	return nil
}

// do sends one API request and decodes the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, reqBody, out any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Notion-Version", c.version)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.Stats.Record(time.Since(start).Milliseconds(), true)
		return fmt.Errorf("notion api: %w", err)
	}
	defer resp.Body.Close()
	c.Stats.Record(time.Since(start).Milliseconds(), resp.StatusCode != http.StatusOK)

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// APIError is a non-2xx response from the Notion API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion api status %d: %s", e.StatusCode, truncate(e.Message, 200))
}

// Retryable reports whether the request may succeed on a later attempt.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
