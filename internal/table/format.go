// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/pdiddy/research-radar/pkg/types"
)

// Encoding names a table file's character encoding.
type Encoding string

const (
	UTF8   Encoding = "utf-8"
	Latin1 Encoding = "latin-1"
)

// ParseEncoding accepts the common spellings of the supported encodings.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "utf-8", "utf8":
		return UTF8, nil
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		return Latin1, nil
	case "":
		return "", fmt.Errorf("table encoding is required")
	}
	return "", fmt.Errorf("unsupported table encoding %q: use utf-8 or latin-1", s)
}

// Format describes how a table file is laid out on disk. Both fields are
// required on every read and write.
type Format struct {
	Delimiter rune
	Encoding  Encoding
}

// Validate reports whether the format can be used with encoding/csv.
func (f Format) Validate() error {
	if f.Delimiter == 0 {
		return fmt.Errorf("table delimiter is required")
	}
	if f.Delimiter == '"' || f.Delimiter == '\r' || f.Delimiter == '\n' || f.Delimiter == utf8.RuneError {
		return fmt.Errorf("invalid table delimiter %q", f.Delimiter)
	}
	if _, err := ParseEncoding(string(f.Encoding)); err != nil {
		return err
	}
	return nil
}

// FormatFor converts a configured table file into a Format.
func FormatFor(tf types.TableFile) (Format, error) {
	delim, err := ParseDelimiter(tf.Delimiter)
	if err != nil {
		return Format{}, err
	}
	enc, err := ParseEncoding(tf.Encoding)
	if err != nil {
		return Format{}, err
	}
	return Format{Delimiter: delim, Encoding: enc}, nil
}

// ParseDelimiter turns a configured delimiter into a rune. "\t" and "tab"
// name the tab character.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, fmt.Errorf("table delimiter is required")
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("table delimiter %q must be a single character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// decoder wraps r so that reads yield UTF-8. A leading UTF-8 byte order mark
// is dropped.
func (f Format) decoder(r io.Reader) io.Reader {
	if f.Encoding == Latin1 {
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
}

// encoder wraps w so that UTF-8 writes are stored in the table's encoding.
// Characters Latin-1 cannot represent are replaced. The caller must Close
// the returned writer.
func (f Format) encoder(w io.Writer) io.WriteCloser {
	if f.Encoding == Latin1 {
		return transform.NewWriter(w, encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder()))
	}
	return nopCloser{w}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// File pairs a table path with its on-disk format.
type File struct {
	Path   string
	Format Format
}

// FileFor resolves a configured table file.
func FileFor(tf types.TableFile) (File, error) {
	if strings.TrimSpace(tf.Path) == "" {
		return File{}, fmt.Errorf("table path is required")
	}
	f, err := FormatFor(tf)
	if err != nil {
		return File{}, fmt.Errorf("table %s: %w", tf.Path, err)
	}
	return File{Path: tf.Path, Format: f}, nil
}
