package extractor

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// FitzOpener opens PDFs with MuPDF via go-fitz.
type FitzOpener struct{}

// NewFitzOpener returns the production PDF opener.
func NewFitzOpener() *FitzOpener { return &FitzOpener{} }

func (o *FitzOpener) Open(data []byte) (PDFDocument, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("mupdf open: %w", err)
	}
	return &fitzDocument{doc: doc}, nil
}

type fitzDocument struct {
	doc *fitz.Document
}

func (d *fitzDocument) NumPages() int { return d.doc.NumPage() }

func (d *fitzDocument) Text(page int) (string, error) {
	return d.doc.Text(page)
}

func (d *fitzDocument) ImagePNG(page int) ([]byte, error) {
	img, err := d.doc.Image(page)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode page %d: %w", page, err)
	}
	return buf.Bytes(), nil
}

func (d *fitzDocument) Close() error { return d.doc.Close() }
