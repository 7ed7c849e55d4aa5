// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/research-radar/internal/table"
	"github.com/pdiddy/research-radar/pkg/types"
)

const sampleArxivFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>arXiv Query: search_query=6G AND security</title>
  <id>http://arxiv.org/api/query</id>
  <updated>2024-03-01T00:00:00-05:00</updated>
  <entry>
    <id>http://arxiv.org/abs/2403.00002v1</id>
    <updated>2024-03-01T10:00:00Z</updated>
    <published>2024-03-01T10:00:00Z</published>
    <title>Secure Handover
      for 6G   Networks</title>
    <summary>  We study handover latency in 6G.
    </summary>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2402.00009v2</id>
    <updated>2024-02-20T08:00:00Z</updated>
    <published>2024-02-20T08:00:00Z</published>
    <title>Missing Abstract</title>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2401.00001v1</id>
    <updated>2024-01-15T23:30:00Z</updated>
    <published>2024-01-15T23:30:00Z</published>
    <title>Post-Quantum Keys at the Edge</title>
    <summary>Key exchange for constrained devices.</summary>
  </entry>
</feed>`

var testFormat = table.Format{Delimiter: ',', Encoding: table.UTF8}

func feedServer(t *testing.T, status int, body string, seen *url.Values) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = r.URL.Query()
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func withArxivBase(t *testing.T, base string) {
	t.Helper()
	old := arxivAPIBase
	arxivAPIBase = base
	t.Cleanup(func() { arxivAPIBase = old })
}

func arxivConfig() types.FetchConfig {
	return types.FetchConfig{
		Query:      "6G AND security",
		MaxResults: 10,
		SortBy:     "submittedDate",
		SortOrder:  "descending",
		MaxRetries: -1,
		HTTPConfig: types.HTTPConfig{UserAgent: "research-radar-test"},
	}
}

func TestArxivFetch(t *testing.T) {
	var seen url.Values
	ts := feedServer(t, http.StatusOK, sampleArxivFeed, &seen)
	withArxivBase(t, ts.URL)

	core, logs := observer.New(zapcore.WarnLevel)
	src := &ArxivSource{Client: ts.Client(), Config: arxivConfig(), Logger: zap.New(core)}

	records, err := src.Fetch(context.Background())
	require.NoError(t, err)

	// Two well-formed entries, one without a summary.
	require.Len(t, records, 2)
	assert.Equal(t, 1, logs.FilterMessage("skipping arXiv entry").Len())

	assert.Equal(t, types.Record{
		DocumentURI: "http://arxiv.org/abs/2403.00002v1",
		Title:       "Secure Handover for 6G Networks",
		PubDate:     "2024-03-01",
		Abstract:    "We study handover latency in 6G.",
		Problem:     types.Placeholder,
		Solution:    types.Placeholder,
	}, records[0])

	// API order is preserved.
	assert.Equal(t, "http://arxiv.org/abs/2401.00001v1", records[1].DocumentURI)
	assert.Equal(t, "2024-01-15", records[1].PubDate)

	assert.Equal(t, "6G AND security", seen.Get("search_query"))
	assert.Equal(t, "0", seen.Get("start"))
	assert.Equal(t, "10", seen.Get("max_results"))
	assert.Equal(t, "submittedDate", seen.Get("sortBy"))
	assert.Equal(t, "descending", seen.Get("sortOrder"))
}

func TestArxivFetchKeepsLocalCalendarDate(t *testing.T) {
	feed := `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2401.00009v1</id>
    <published>2024-01-15T23:30:00-05:00</published>
    <title>Late Evening Submission</title>
    <summary>Abstract.</summary>
  </entry>
</feed>`
	ts := feedServer(t, http.StatusOK, feed, nil)
	withArxivBase(t, ts.URL)

	// No client configured: the default client is used.
	src := &ArxivSource{Config: arxivConfig(), Logger: zap.NewNop()}
	records, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2024-01-15", records[0].PubDate)
}

func TestArxivFetchBaseURLOverride(t *testing.T) {
	ts := feedServer(t, http.StatusOK, sampleArxivFeed, nil)
	withArxivBase(t, "http://127.0.0.1:1/unreachable")

	cfg := arxivConfig()
	cfg.BaseURL = ts.URL
	src := &ArxivSource{Client: ts.Client(), Config: cfg, Logger: zap.NewNop()}

	records, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestArxivFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		isState bool
	}{
		{"server error", http.StatusInternalServerError, "boom", true},
		{"rate limited without retries", http.StatusTooManyRequests, "", true},
		{"not a feed", http.StatusOK, "this is not xml", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := feedServer(t, tt.status, tt.body, nil)
			withArxivBase(t, ts.URL)

			src := &ArxivSource{Client: ts.Client(), Config: arxivConfig(), Logger: zap.NewNop()}
			_, err := src.Fetch(context.Background())
			require.Error(t, err)

			if tt.isState {
				assert.ErrorIs(t, err, ErrRequestFailed)
				var se *StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, tt.status, se.StatusCode)
			}
		})
	}
}

func TestArxivFetchEmptyQuery(t *testing.T) {
	cfg := arxivConfig()
	cfg.Query = "  "
	src := &ArxivSource{Client: http.DefaultClient, Config: cfg, Logger: zap.NewNop()}
	_, err := src.Fetch(context.Background())
	assert.Error(t, err)
}

func TestRunWritesTable(t *testing.T) {
	ts := feedServer(t, http.StatusOK, sampleArxivFeed, nil)
	withArxivBase(t, ts.URL)

	path := filepath.Join(t.TempDir(), "papers.csv")
	src := &ArxivSource{Client: ts.Client(), Config: arxivConfig(), Logger: zap.NewNop()}

	var out bytes.Buffer
	n, err := Run(context.Background(), src, table.File{Path: path, Format: testFormat}, zap.NewNop(), &out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, out.String(), "Wrote 2 records")

	got, err := table.Read(path, testFormat, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, types.StandardColumns, got.Columns)
	assert.Equal(t, 2, got.Len())
}

func TestRunWritesNothingOnFailure(t *testing.T) {
	ts := feedServer(t, http.StatusServiceUnavailable, "", nil)
	withArxivBase(t, ts.URL)

	path := filepath.Join(t.TempDir(), "papers.csv")
	src := &ArxivSource{Client: ts.Client(), Config: arxivConfig(), Logger: zap.NewNop()}

	_, err := Run(context.Background(), src, table.File{Path: path, Format: testFormat}, zap.NewNop(), &bytes.Buffer{})
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no output file expected")
}

func TestNewSource(t *testing.T) {
	src, err := NewSource(types.FetchConfig{}, http.DefaultClient, nil)
	require.NoError(t, err)
	assert.Equal(t, "arxiv", src.Name())

	src, err = NewSource(types.FetchConfig{Source: types.FetchPatentsView}, http.DefaultClient, nil)
	require.NoError(t, err)
	assert.Equal(t, "patentsview", src.Name())

	_, err = NewSource(types.FetchConfig{Source: "scholar"}, http.DefaultClient, nil)
	assert.Error(t, err)
}
