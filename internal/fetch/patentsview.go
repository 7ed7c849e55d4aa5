// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-radar/internal/httputil"
	"github.com/pdiddy/research-radar/pkg/types"
)

// patentsViewSearchBase is the PatentsView patent search endpoint. Declared
// as a var so tests can substitute an httptest server.
var patentsViewSearchBase = "https://search.patentsview.org/api/v1/patent/"

// googlePatentsBase prefixes patent numbers so that records classify as
// patents by their document URI.
const googlePatentsBase = "https://" + types.PatentHost + "/patent/"

const patentsViewFields = `["patent_id","patent_title","patent_abstract","patent_date"]`

const patentsViewMaxPageSize = 1000

// PatentsViewSource fetches one page of granted US patents.
type PatentsViewSource struct {
	Client *http.Client
	Config types.FetchConfig
	Logger *zap.Logger
}

// Name returns the source identifier.
func (s *PatentsViewSource) Name() string { return "patentsview" }

// Fetch queries title and abstract text for the configured query.
func (s *PatentsViewSource) Fetch(ctx context.Context) ([]types.Record, error) {
	reqURL, err := s.requestURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.Config.UserAgent != "" {
		req.Header.Set("User-Agent", s.Config.UserAgent)
	}
	if s.Config.APIKey != "" {
		req.Header.Set("X-Api-Key", s.Config.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, s.Config.MaxRetries, s.Logger)
	if err != nil {
		return nil, fmt.Errorf("PatentsView API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Source: "PatentsView API", StatusCode: resp.StatusCode}
	}

	var pvr patentsViewResponse
	if err := json.NewDecoder(resp.Body).Decode(&pvr); err != nil {
		return nil, fmt.Errorf("parsing PatentsView response: %w", err)
	}

	records := make([]types.Record, 0, len(pvr.Patents))
	for i, p := range pvr.Patents {
		id := strings.TrimSpace(p.PatentID)
		title := collapseSpace(p.PatentTitle)
		if id == "" || title == "" {
			s.Logger.Warn("skipping PatentsView entry",
				zap.Int("index", i),
				zap.String("id", id),
				zap.String("reason", "missing id or title"))
			continue
		}
		records = append(records, newRecord(
			googlePatentsBase+"US"+id,
			title,
			strings.TrimSpace(p.PatentDate),
			strings.TrimSpace(p.PatentAbstract),
		))
	}
	return records, nil
}

func (s *PatentsViewSource) requestURL() (string, error) {
	q, err := buildPatentsViewQuery(s.Config.Query)
	if err != nil {
		return "", err
	}

	size := s.Config.MaxResults
	if size <= 0 {
		size = defaultMaxResults
	}
	size = min(size, patentsViewMaxPageSize)

	order := "desc"
	if strings.HasPrefix(strings.ToLower(s.Config.SortOrder), "asc") {
		order = "asc"
	}

	params := url.Values{
		"q": {q},
		"f": {patentsViewFields},
		"o": {fmt.Sprintf(`{"per_page":%d}`, size)},
		"s": {fmt.Sprintf(`[{"patent_date":%q}]`, order)},
	}

	base := s.Config.BaseURL
	if base == "" {
		base = patentsViewSearchBase
	}
	return base + "?" + params.Encode(), nil
}

// buildPatentsViewQuery matches any query word in the title or abstract.
func buildPatentsViewQuery(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty PatentsView query")
	}
	type textAny struct {
		TextAny map[string]string `json:"_text_any"`
	}
	q := map[string][]textAny{
		"_or": {
			{TextAny: map[string]string{"patent_title": text}},
			{TextAny: map[string]string{"patent_abstract": text}},
		},
	}
	b, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("encoding PatentsView query: %w", err)
	}
	return string(b), nil
}

type patentsViewResponse struct {
	Patents []patentsViewPatent `json:"patents"`
	Count   int                 `json:"count"`
	Total   int                 `json:"total_hits"`
}

type patentsViewPatent struct {
	PatentID       string `json:"patent_id"`
	PatentTitle    string `json:"patent_title"`
	PatentAbstract string `json:"patent_abstract"`
	PatentDate     string `json:"patent_date"`
}
