// Package export renders tabular rosters as CSV or PDF.
package export

import (
	"fmt"
	"io"
	"strings"
)

// Format identifies an output encoding.
type Format string

// Supported formats.
const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts csv or pdf in any case. Empty defaults to csv.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Filename builds an attachment name such as clients.csv.
func (f Format) Filename(base string) string {
	return base + "." + string(f)
}

// Dataset defines tabular export content. Each row has one cell per header.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Renderer writes a dataset to w.
type Renderer interface {
	Render(w io.Writer, data Dataset) error
}

// NewRenderer returns the renderer for the format.
func NewRenderer(f Format) Renderer {
	if f == FormatPDF {
		return NewPDFExporter()
	}
	return NewCSVExporter()
}
