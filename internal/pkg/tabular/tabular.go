// Package tabular turns an uploaded dataset file into a small preview:
// its column names, the first few rows and the total row count.
//
// Only a bounded prefix of the rows is ever materialised. CSV row counting
// splits the whole content by newline; everything downstream works on the
// sample.
package tabular

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"gopherai-insight/internal/model"
)

// MaxSampleRows caps the number of rows kept in a preview.
const MaxSampleRows = 5

type MediaType string

const (
	MediaTypeCSV   MediaType = "text/csv"
	MediaTypeJSON  MediaType = "application/json"
	MediaTypePlain MediaType = "text/plain"
)

var ErrUnsupportedMediaType = errors.New("unsupported media type")

// ParseError reports a file whose declared format could not be decoded.
type ParseError struct {
	MediaType MediaType
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s failed: %v", e.MediaType, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Preview is the structured summary stored on a dataset record.
type Preview struct {
	Columns    []string     `json:"columns"`
	SampleRows []*model.Row `json:"sample_rows"`
	RowCount   int          `json:"row_count"`
}

// Parse extracts a preview from content. Plain text and unknown types yield
// an empty preview. Only JSON can fail.
func Parse(content []byte, mediaType MediaType) (Preview, error) {
	switch mediaType {
	case MediaTypeCSV:
		return parseCSV(string(content)), nil
	case MediaTypeJSON:
		return parseJSON(content)
	default:
		return Preview{Columns: []string{}, SampleRows: []*model.Row{}}, nil
	}
}

// DetectMediaType resolves the media type of an upload. A usable declared
// type wins; otherwise the content is sniffed and the file extension is the
// last resort.
func DetectMediaType(declared, filename string, content []byte) (MediaType, error) {
	if base := normalizeMediaType(declared); base != "" && base != "application/octet-stream" {
		if mt, ok := supported(base); ok {
			return mt, nil
		}
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMediaType, base)
	}

	if mt, ok := supportedByExtension(filename); ok {
		return mt, nil
	}

	if len(content) > 0 {
		for detected := mimetype.Detect(content); detected != nil; detected = detected.Parent() {
			if mt, ok := supported(normalizeMediaType(detected.String())); ok {
				return mt, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedMediaType, filename)
}

// Extension returns the file extension used when storing a blob of type mt.
func (mt MediaType) Extension() string {
	switch mt {
	case MediaTypeCSV:
		return "csv"
	case MediaTypeJSON:
		return "json"
	default:
		return "txt"
	}
}

func normalizeMediaType(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	base, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(raw)
	}
	return base
}

func supported(base string) (MediaType, bool) {
	switch base {
	case string(MediaTypeCSV), "application/csv":
		return MediaTypeCSV, true
	case string(MediaTypeJSON):
		return MediaTypeJSON, true
	case string(MediaTypePlain):
		return MediaTypePlain, true
	}
	return "", false
}

func supportedByExtension(filename string) (MediaType, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return MediaTypeCSV, true
	case ".json":
		return MediaTypeJSON, true
	case ".txt":
		return MediaTypePlain, true
	}
	return "", false
}
