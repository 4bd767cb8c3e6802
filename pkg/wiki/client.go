// Package wiki fetches article extracts and search results from the
// Wikipedia APIs.
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/patrickdeanbrown/wikibee/pkg/logger"
)

const (
	// DefaultBaseURL is the English Wikipedia origin.
	DefaultBaseURL = "https://en.wikipedia.org"

	userAgent = "wikibee/1.0 (https://github.com/patrickdeanbrown/wikibee)"
)

var (
	// ErrNotFound means the page exists but carries no extract text,
	// or does not exist at all.
	ErrNotFound = errors.New("no extract text for page")

	// ErrDisambiguation means the requested title is a disambiguation
	// page rather than an article.
	ErrDisambiguation = errors.New("title is a disambiguation page")
)

// SearchResult is one hit of a title search.
type SearchResult struct {
	Title       string
	Description string
	URL         string
}

// Page is a fetched article extract.
type Page struct {
	Title   string
	Extract string
}

// Client talks to the Wikipedia action and REST APIs. Requests are
// rate-limited as a courtesy to the shared endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient returns a client for the given Wikipedia origin; an empty
// baseURL selects English Wikipedia.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		// Wikipedia etiquette: stay well under the anonymous API limits.
		limiter: rate.NewLimiter(rate.Limit(5), 2),
	}
}

type extractsResponse struct {
	Query struct {
		Pages map[string]struct {
			Title     string            `json:"title"`
			Extract   string            `json:"extract"`
			PageProps map[string]string `json:"pageprops"`
		} `json:"pages"`
	} `json:"query"`
}

// FetchExtract retrieves the plain-text extract for a title. leadOnly
// restricts the fetch to the intro section.
func (c *Client) FetchExtract(ctx context.Context, title string, leadOnly bool, timeout time.Duration) (*Page, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("prop", "extracts|pageprops")
	q.Set("explaintext", "1")
	q.Set("redirects", "1")
	q.Set("format", "json")
	q.Set("titles", title)
	if leadOnly {
		q.Set("exintro", "1")
	}

	var data extractsResponse
	if err := c.getJSON(ctx, "/w/api.php?"+q.Encode(), timeout, &data); err != nil {
		return nil, err
	}

	if len(data.Query.Pages) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, title)
	}

	for _, page := range data.Query.Pages {
		if _, ok := page.PageProps["disambiguation"]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDisambiguation, page.Title)
		}
		if page.Extract == "" {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, page.Title)
		}
		logger.DebugCF("wiki", "Fetched extract", map[string]any{
			"title": page.Title,
			"bytes": len(page.Extract),
		})
		return &Page{Title: page.Title, Extract: page.Extract}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, title)
}

type searchResponse struct {
	Pages []struct {
		Title       string `json:"title"`
		Key         string `json:"key"`
		Description string `json:"description"`
	} `json:"pages"`
}

// Search runs a title search and returns up to limit results with
// article URLs filled in.
func (c *Client) Search(ctx context.Context, term string, limit int, timeout time.Duration) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	q := url.Values{}
	q.Set("q", term)
	q.Set("limit", strconv.Itoa(limit))

	var data searchResponse
	if err := c.getJSON(ctx, "/w/rest.php/v1/search/page?"+q.Encode(), timeout, &data); err != nil {
		return nil, fmt.Errorf("search for %q: %w", term, err)
	}

	results := make([]SearchResult, 0, len(data.Pages))
	for _, p := range data.Pages {
		results = append(results, SearchResult{
			Title:       p.Title,
			Description: p.Description,
			URL:         c.baseURL + "/wiki/" + url.PathEscape(p.Key),
		})
	}
	return results, nil
}

func (c *Client) getJSON(ctx context.Context, path string, timeout time.Duration, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("wikipedia request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wikipedia returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding wikipedia response: %w", err)
	}
	return nil
}

// TitleFromURL extracts the page title from an article URL such as
// https://en.wikipedia.org/wiki/Ada_Lovelace.
func TitleFromURL(articleURL string) (string, error) {
	parsed, err := url.Parse(articleURL)
	if err != nil {
		return "", fmt.Errorf("parsing article URL: %w", err)
	}
	if parsed.Scheme == "" {
		return "", errors.New("URL must include scheme (http:// or https://)")
	}

	path := parsed.Path
	if idx := strings.Index(path, "/wiki/"); idx >= 0 {
		path = path[idx+len("/wiki/"):]
	} else {
		path = strings.Trim(path, "/")
		if i := strings.LastIndex(path, "/"); i >= 0 {
			path = path[i+1:]
		}
	}
	if path == "" {
		return "", errors.New("could not determine page title from URL")
	}

	title, err := url.PathUnescape(path)
	if err != nil {
		return path, nil
	}
	return strings.ReplaceAll(title, "_", " "), nil
}
