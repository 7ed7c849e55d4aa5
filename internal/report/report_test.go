// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-radar/pkg/types"
)

func sampleRecords() []types.Record {
	return []types.Record{
		{DocumentURI: "http://arxiv.org/abs/1", Title: "Secure Handover in 6G", PubDate: "2023-06-01",
			Abstract: "Latency and authentication.", Problem: "high latency.", Solution: "pre-auth."},
		{DocumentURI: "https://patents.google.com/patent/US1", Title: "Key Exchange Device", PubDate: "15/03/2024",
			Abstract: "Quantum-safe keys.", Problem: types.Placeholder, Solution: types.Placeholder},
		{DocumentURI: "http://arxiv.org/abs/2", Title: "Jamming Detection", PubDate: "not a date",
			Abstract: "Physical layer."},
		{DocumentURI: "http://arxiv.org/abs/3", Title: "RIS Security", PubDate: "2021-01-10",
			Abstract: "Reconfigurable surfaces and authentication.", Problem: types.AnnotationError, Solution: types.AnnotationError},
		{DocumentURI: "https://example.org/report", Title: "Industry Report", PubDate: "2022/05/05",
			Abstract: "Market view."},
	}
}

func docs(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.DocumentURI
	}
	return out
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{
			name:   "no filter sorts newest first",
			filter: Filter{},
			want: []string{
				"https://patents.google.com/patent/US1",
				"http://arxiv.org/abs/1",
				"https://example.org/report",
				"http://arxiv.org/abs/3",
			},
		},
		{
			name:   "keywords any",
			filter: Filter{Keywords: []string{"KEYS", "jamming", "handover"}},
			want:   []string{"https://patents.google.com/patent/US1", "http://arxiv.org/abs/1"},
		},
		{
			name:   "keywords all",
			filter: Filter{Keywords: []string{"authentication", "handover"}, MatchAll: true},
			want:   []string{"http://arxiv.org/abs/1"},
		},
		{
			name:   "kind patent",
			filter: Filter{Kind: types.SourcePatent},
			want:   []string{"https://patents.google.com/patent/US1"},
		},
		{
			name:   "inclusive date range",
			filter: Filter{From: date(2021, 1, 10), To: date(2023, 6, 1)},
			want:   []string{"http://arxiv.org/abs/1", "https://example.org/report", "http://arxiv.org/abs/3"},
		},
		{
			name:   "problem exact",
			filter: Filter{Problem: "high latency."},
			want:   []string{"http://arxiv.org/abs/1"},
		},
		{
			name:   "nothing matches",
			filter: Filter{Keywords: []string{"satellite"}},
			want:   []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Apply(sampleRecords(), tt.filter)
			assert.Equal(t, tt.want, docs(res.Entries))
			assert.Equal(t, 1, res.Undated)
		})
	}
}

func TestApplyUpperBoundIncludesTimestampsOnThatDay(t *testing.T) {
	records := []types.Record{
		{DocumentURI: "http://arxiv.org/abs/1", PubDate: "2024-03-01T10:00:00Z"},
		{DocumentURI: "http://arxiv.org/abs/2", PubDate: "2024-03-01"},
		{DocumentURI: "http://arxiv.org/abs/3", PubDate: "2024-03-02T00:30:00Z"},
	}

	res := Apply(records, Filter{From: date(2024, 3, 1), To: date(2024, 3, 1)})
	assert.Equal(t, []string{"http://arxiv.org/abs/1", "http://arxiv.org/abs/2"}, docs(res.Entries))
	assert.Equal(t, date(2024, 3, 1), res.Entries[0].Date)
}

func TestSplitKeywords(t *testing.T) {
	assert.Equal(t, []string{"6G", "security", "RIS"}, SplitKeywords(" 6G, security ,,RIS "))
	assert.Nil(t, SplitKeywords(""))
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    types.SourceKind
		wantErr bool
	}{
		{"", "", false},
		{"All", "", false},
		{"arxiv", types.SourceArxiv, false},
		{"Patents", types.SourcePatent, false},
		{"other", types.SourceOther, false},
		{"books", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(Apply(sampleRecords(), Filter{Kind: types.SourceArxiv}).Entries, &buf)

	out := buf.String()
	assert.Contains(t, out, "2023-06-01  arxiv   Secure Handover in 6G")
	assert.Contains(t, out, "2 documents")

	buf.Reset()
	FormatTable(nil, &buf)
	assert.Equal(t, "No documents match the filter.\n", buf.String())
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(Apply(sampleRecords(), Filter{Kind: types.SourcePatent}).Entries, &buf))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "https://patents.google.com/patent/US1", got[0]["document"])
	assert.Equal(t, "patent", got[0]["kind"])

	buf.Reset()
	require.NoError(t, FormatJSON(nil, &buf))
	assert.Equal(t, "[]\n", buf.String())
}

func TestSummarize(t *testing.T) {
	s := Summarize(Apply(sampleRecords(), Filter{}).Entries)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.ByKind[types.SourceArxiv])
	assert.Equal(t, 1, s.ByKind[types.SourcePatent])
	assert.Equal(t, 1, s.ByKind[types.SourceOther])
	assert.Equal(t, map[int]int{2021: 1, 2022: 1, 2023: 1, 2024: 1}, s.ByYear)
	assert.Equal(t, 1, s.Annotated)
	assert.Equal(t, 1, s.Errors)
	assert.Equal(t, 2, s.Placeholder)
	assert.Equal(t, date(2024, 3, 15), s.Latest)

	var buf bytes.Buffer
	FormatStats(s, &buf)
	assert.Contains(t, buf.String(), "documents: 4 (arxiv: 2, patent: 1, other: 1)")
	assert.Contains(t, buf.String(), "annotated: 1, placeholder: 2, error: 1")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Réseau ...", truncate("Réseau sécurisé", 10))
	assert.Equal(t, "a b", truncate(" a\n  b ", 10))
}
