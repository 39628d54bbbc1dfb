// Package export declares the contract for the external document render
// service that turns a summary into a downloadable file.
package export

import "context"

// Format is a supported export document format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
)

// Valid reports whether the format is one the render service supports.
func (f Format) Valid() bool {
	return f == FormatPDF || f == FormatDocx
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Document is a rendered artifact returned by the exporter.
type Document struct {
	Content     []byte
	ContentType string
}

// DocumentExporter renders a titled text into a document. Rendering is an
// external concern; the bridge stores the result and hands out a download URL.
type DocumentExporter interface {
	Render(ctx context.Context, title, text string, format Format) (*Document, error)
}
