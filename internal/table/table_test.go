// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/research-radar/pkg/types"
)

var (
	commaUTF8 = Format{Delimiter: ',', Encoding: UTF8}
	semiUTF8  = Format{Delimiter: ';', Encoding: UTF8}
)

func sampleTable() *Table {
	t := New(types.StandardColumns...)
	t.Records = []types.Record{
		{
			DocumentURI: "http://arxiv.org/abs/2401.00001v1",
			Title:       "Secure Handover in 6G",
			PubDate:     "2024-01-02",
			Abstract:    "We study handover, latency; and \"quotes\".",
			Problem:     types.Placeholder,
			Solution:    types.Placeholder,
		},
		{
			DocumentURI: "https://patents.google.com/patent/US1234567B2",
			Title:       "Key Exchange",
			PubDate:     "15/03/2023",
			Abstract:    "Multi-line\nabstract",
			Problem:     types.Placeholder,
			Solution:    types.Placeholder,
		},
	}
	return t
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []Format{commaUTF8, semiUTF8, {Delimiter: '\t', Encoding: Latin1}} {
		t.Run(string(f.Delimiter)+string(f.Encoding), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.csv")
			want := sampleTable()

			require.NoError(t, Write(path, f, want))
			got, err := Read(path, f, zap.NewNop())
			require.NoError(t, err)

			assert.Equal(t, want.Columns, got.Columns)
			assert.Equal(t, want.Records, got.Records)
		})
	}
}

func TestRoundTripPreservesExtraColumns(t *testing.T) {
	input := "Document,Title,Venue,Pub_Date,Abstract\n" +
		"http://arxiv.org/abs/1,T1,IEEE,2024-01-01,A1\n"

	got, err := Decode(strings.NewReader(input), commaUTF8, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "IEEE", got.Records[0].Extra["Venue"])

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, commaUTF8, got))
	assert.Equal(t, input, buf.String())
}

func TestDecodeSkipsMalformedRows(t *testing.T) {
	input := "Document;Title;Pub_Date\n" +
		"a;T1;2024-01-01\n" +
		"b;T2\n" +
		"c;T3;2024-01-03;extra\n" +
		"d;T4;2024-01-04\n"

	core, logs := observer.New(zapcore.WarnLevel)
	got, err := Decode(strings.NewReader(input), semiUTF8, zap.New(core))
	require.NoError(t, err)

	require.Equal(t, 2, got.Len())
	assert.Equal(t, "a", got.Records[0].DocumentURI)
	assert.Equal(t, "d", got.Records[1].DocumentURI)
	assert.Equal(t, 2, logs.FilterMessage("skipping malformed row").Len())
}

func TestDecodeDelimiterIsExplicit(t *testing.T) {
	input := "Document;Title\nx;y\n"

	got, err := Decode(strings.NewReader(input), commaUTF8, zap.NewNop())
	require.NoError(t, err)
	// Read with the wrong delimiter the header is one column.
	assert.Equal(t, []string{"Document;Title"}, got.Columns)
}

func TestDecodeLatin1(t *testing.T) {
	// "Réseau" with é encoded as a single Latin-1 byte.
	input := []byte("Document,Title\nhttp://arxiv.org/abs/1,R\xe9seau\n")

	got, err := Decode(bytes.NewReader(input), Format{Delimiter: ',', Encoding: Latin1}, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "Réseau", got.Records[0].Title)
}

func TestEncodeLatin1ReplacesUnsupported(t *testing.T) {
	tbl := New(types.ColumnDocument, types.ColumnTitle)
	tbl.Records = []types.Record{{DocumentURI: "x", Title: "Réseau 6G ✓"}}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Format{Delimiter: ',', Encoding: Latin1}, tbl))
	assert.Equal(t, []byte("Document,Title\nx,R\xe9seau 6G \x1a\n"), buf.Bytes())
}

func TestDecodeStripsUTF8BOM(t *testing.T) {
	input := "\ufeffDocument,Title\nx,y\n"
	got, err := Decode(strings.NewReader(input), commaUTF8, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"Document", "Title"}, got.Columns)
}

func TestDecodeEmpty(t *testing.T) {
	_, err := Decode(strings.NewReader(""), commaUTF8, zap.NewNop())
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.csv"), commaUTF8, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer than the table\n"), 0o644))

	tbl := New(types.ColumnDocument)
	tbl.Records = []types.Record{{DocumentURI: "x"}}
	require.NoError(t, Write(path, commaUTF8, tbl))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Document\nx\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be renamed away")
}

func TestWriteRejectsInvalidFormat(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "out.csv"), Format{Encoding: UTF8}, sampleTable())
	assert.Error(t, err)
}

func TestEnsureColumn(t *testing.T) {
	tbl := New(types.ColumnDocument, types.ColumnProblem)
	tbl.Records = []types.Record{{DocumentURI: "a", Problem: "kept"}, {DocumentURI: "b"}}

	assert.False(t, tbl.EnsureColumn(types.ColumnProblem, types.Placeholder))
	assert.True(t, tbl.EnsureColumn(types.ColumnSolution, types.Placeholder))

	assert.Equal(t, "kept", tbl.Records[0].Problem)
	assert.Equal(t, "", tbl.Records[1].Problem)
	assert.Equal(t, types.Placeholder, tbl.Records[0].Solution)
	assert.Equal(t, types.Placeholder, tbl.Records[1].Solution)
	assert.Equal(t, []string{types.ColumnDocument, types.ColumnProblem, types.ColumnSolution}, tbl.Columns)
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		name    string
		in      types.TableFile
		want    Format
		wantErr bool
	}{
		{"comma utf8", types.TableFile{Delimiter: ",", Encoding: "utf-8"}, Format{',', UTF8}, false},
		{"semicolon latin1", types.TableFile{Delimiter: ";", Encoding: "ISO-8859-1"}, Format{';', Latin1}, false},
		{"tab escape", types.TableFile{Delimiter: `\t`, Encoding: "utf8"}, Format{'\t', UTF8}, false},
		{"missing delimiter", types.TableFile{Encoding: "utf-8"}, Format{}, true},
		{"missing encoding", types.TableFile{Delimiter: ","}, Format{}, true},
		{"multi-char delimiter", types.TableFile{Delimiter: ",,", Encoding: "utf-8"}, Format{}, true},
		{"unknown encoding", types.TableFile{Delimiter: ",", Encoding: "cp1252"}, Format{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatFor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileFor(t *testing.T) {
	f, err := FileFor(types.TableFile{Path: "x.csv", Delimiter: ";", Encoding: "latin-1"})
	require.NoError(t, err)
	assert.Equal(t, File{Path: "x.csv", Format: Format{Delimiter: ';', Encoding: Latin1}}, f)

	_, err = FileFor(types.TableFile{Path: "x.csv"})
	assert.Error(t, err)

	_, err = FileFor(types.TableFile{Delimiter: ",", Encoding: "utf-8"})
	assert.Error(t, err)
}
