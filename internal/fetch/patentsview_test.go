// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/research-radar/pkg/types"
)

const samplePatentsViewJSON = `{
  "patents": [
    {
      "patent_id": "11234567",
      "patent_title": "Secure handover in cellular networks",
      "patent_abstract": " A method for authenticating a device before handover. ",
      "patent_date": "2023-05-02"
    },
    {
      "patent_id": "",
      "patent_title": "Orphan",
      "patent_abstract": "No identifier.",
      "patent_date": "2023-04-01"
    },
    {
      "patent_id": "10987654",
      "patent_title": "Beam management for 6G",
      "patent_abstract": "",
      "patent_date": "2022-11-08"
    }
  ],
  "count": 3,
  "total_hits": 3
}`

func TestBuildPatentsViewQuery(t *testing.T) {
	got, err := buildPatentsViewQuery(`6G "security"`)
	require.NoError(t, err)

	var decoded map[string][]map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(got), &decoded))
	require.Len(t, decoded["_or"], 2)
	assert.Equal(t, `6G "security"`, decoded["_or"][0]["_text_any"]["patent_title"])
	assert.Equal(t, `6G "security"`, decoded["_or"][1]["_text_any"]["patent_abstract"])

	_, err = buildPatentsViewQuery("   ")
	assert.Error(t, err)
}

func TestPatentsViewFetch(t *testing.T) {
	var apiKey, perPage string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("X-Api-Key")
		perPage = r.URL.Query().Get("o")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, samplePatentsViewJSON)
	}))
	defer ts.Close()

	old := patentsViewSearchBase
	patentsViewSearchBase = ts.URL + "/"
	defer func() { patentsViewSearchBase = old }()

	core, logs := observer.New(zapcore.WarnLevel)
	src := &PatentsViewSource{
		Client: ts.Client(),
		Config: types.FetchConfig{Query: "6G security", MaxResults: 5, APIKey: "test-key"},
		Logger: zap.New(core),
	}

	records, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, logs.FilterMessage("skipping PatentsView entry").Len())

	assert.Equal(t, "test-key", apiKey)
	assert.Equal(t, `{"per_page":5}`, perPage)

	r0 := records[0]
	assert.Equal(t, "https://patents.google.com/patent/US11234567", r0.DocumentURI)
	assert.Equal(t, types.SourcePatent, r0.Kind())
	assert.Equal(t, "Secure handover in cellular networks", r0.Title)
	assert.Equal(t, "2023-05-02", r0.PubDate)
	assert.Equal(t, "A method for authenticating a device before handover.", r0.Abstract)
	assert.Equal(t, types.StatePlaceholder, r0.AnnotationState())

	// An empty abstract is kept; the annotator decides what to do with it.
	assert.Equal(t, "", records[1].Abstract)
}

func TestPatentsViewFetchStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	src := &PatentsViewSource{
		Client: ts.Client(),
		Config: types.FetchConfig{Query: "6G", BaseURL: ts.URL},
		Logger: zap.NewNop(),
	}
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, err.Error(), "HTTP 403")
}
