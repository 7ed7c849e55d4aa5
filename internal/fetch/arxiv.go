// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/pdiddy/research-radar/internal/httputil"
	"github.com/pdiddy/research-radar/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const defaultMaxResults = 10

// ArxivSource fetches one page of the arXiv Atom API.
type ArxivSource struct {
	Client *http.Client
	Config types.FetchConfig
	Logger *zap.Logger
}

// Name returns the source identifier.
func (s *ArxivSource) Name() string { return "arxiv" }

// Fetch issues a single query and converts each Atom entry to a Record.
// Entries missing an id, title, published date, or summary are skipped
// with a warning.
func (s *ArxivSource) Fetch(ctx context.Context) ([]types.Record, error) {
	if strings.TrimSpace(s.Config.Query) == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}

	reqURL := s.requestURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.Config.UserAgent != "" {
		req.Header.Set("User-Agent", s.Config.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, s.Config.MaxRetries, s.Logger)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Source: "arXiv API", StatusCode: resp.StatusCode}
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	records := make([]types.Record, 0, len(feed.Items))
	for i, item := range feed.Items {
		rec, reason := arxivRecord(item)
		if reason != "" {
			s.Logger.Warn("skipping arXiv entry",
				zap.Int("index", i),
				zap.String("id", strings.TrimSpace(item.GUID)),
				zap.String("reason", reason))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *ArxivSource) requestURL() string {
	base := s.Config.BaseURL
	if base == "" {
		base = arxivAPIBase
	}
	maxResults := s.Config.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	params := url.Values{
		"search_query": {s.Config.Query},
		"start":        {strconv.Itoa(max(s.Config.Start, 0))},
		"max_results":  {strconv.Itoa(maxResults)},
	}
	if s.Config.SortBy != "" {
		params.Set("sortBy", s.Config.SortBy)
	}
	if s.Config.SortOrder != "" {
		params.Set("sortOrder", s.Config.SortOrder)
	}
	return base + "?" + params.Encode()
}

// arxivRecord converts a feed entry. A non-empty reason means the entry is
// unusable.
func arxivRecord(item *gofeed.Item) (types.Record, string) {
	id := strings.TrimSpace(item.GUID)
	title := collapseSpace(item.Title)
	abstract := strings.TrimSpace(item.Description)

	switch {
	case id == "":
		return types.Record{}, "missing id"
	case title == "":
		return types.Record{}, "missing title"
	case strings.TrimSpace(item.Published) == "":
		return types.Record{}, "missing published date"
	case item.PublishedParsed == nil:
		return types.Record{}, fmt.Sprintf("unparseable published date %q", item.Published)
	case abstract == "":
		return types.Record{}, "missing summary"
	}

	date := item.PublishedParsed.Format(types.DateLayout)
	return newRecord(id, title, date, abstract), ""
}

// collapseSpace trims s and folds internal whitespace runs, including the
// line breaks arXiv puts in long titles, to single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
