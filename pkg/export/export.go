package export

import (
	"fmt"
	"strings"
)

// Format identifies an export encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts "csv" or "pdf" in any case. Empty defaults to CSV.
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

// Column maps a row key to its printed label.
type Column struct {
	Key   string
	Label string
}

// Dataset is a titled table.
type Dataset struct {
	Title   string
	Columns []Column
	Rows    []map[string]string
}

// Document is a rendered export ready to be streamed.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Renderer turns a dataset into bytes.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
}

// Build renders data in the requested format. base is the filename without extension.
func Build(format Format, base string, data Dataset) (*Document, error) {
	var (
		r           Renderer
		contentType string
	)
	switch format {
	case FormatCSV:
		r, contentType = NewCSVExporter(), "text/csv; charset=utf-8"
	case FormatPDF:
		r, contentType = NewPDFExporter(), "application/pdf"
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}

	body, err := r.Render(data)
	if err != nil {
		return nil, err
	}
	return &Document{
		Filename:    fmt.Sprintf("%s.%s", base, format),
		ContentType: contentType,
		Body:        body,
	}, nil
}
