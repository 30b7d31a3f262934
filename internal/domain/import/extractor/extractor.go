// Package extractor turns an uploaded bank statement (PDF or CSV) into a
// flat text representation. Scanned PDFs without a usable text layer fall
// back to per-page OCR.
package extractor

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/FACorreiaa/fintrack-api/internal/domain/import/sniffer"
)

// MIME types accepted by Extract.
const (
	MimePDF    = "application/pdf"
	MimeCSV    = "text/csv"
	MimeAppCSV = "application/csv"
)

// PDFDocument is an open PDF. Implementations must release native resources
// on Close.
type PDFDocument interface {
	// NumPages returns the page count.
	NumPages() int
	// Text returns the embedded text layer of a page.
	Text(page int) (string, error)
	// ImagePNG renders a page to a PNG for OCR.
	ImagePNG(page int) ([]byte, error)
	Close() error
}

// PDFOpener opens a PDF from memory.
type PDFOpener interface {
	Open(data []byte) (PDFDocument, error)
}

// OCRClient recognizes text in a rendered page image. Clients hold native
// worker resources and must be released with Close after the batch.
type OCRClient interface {
	Recognize(imagePNG []byte) (string, error)
	Close() error
}

// OCRFactory creates one OCR client per extraction batch.
type OCRFactory interface {
	NewClient() (OCRClient, error)
}

// Extractor converts raw statement uploads into text.
type Extractor struct {
	pdf          PDFOpener
	ocr          OCRFactory
	minTextChars int
	logger       *slog.Logger
}

// New creates an Extractor. minTextChars is the threshold below which an
// extraction pass is considered failed (trimmed length).
func New(pdf PDFOpener, ocr OCRFactory, minTextChars int, logger *slog.Logger) *Extractor {
	return &Extractor{
		pdf:          pdf,
		ocr:          ocr,
		minTextChars: minTextChars,
		logger:       logger,
	}
}

// Extract returns the text content of the uploaded file.
// PDF extraction tries the text layer first and only pays for OCR when the
// text layer comes back under the threshold.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType string) (string, error) {
	switch mimeType {
	case MimeCSV, MimeAppCSV:
		return e.extractCSV(data)
	case MimePDF:
		return e.extractPDF(ctx, data)
	default:
		return "", fmt.Errorf("%w (got %q)", ErrUnsupportedFormat, mimeType)
	}
}

// extractCSV decodes the file as UTF-8 delimited rows and re-serializes each
// row as one comma-joined line. No header assumption is made; the field
// delimiter is sniffed because bank exports use semicolons and tabs too.
func (e *Extractor) extractCSV(data []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffer.Delimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var lines []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", &CSVParseError{Err: err}
		}
		if isEmptyRow(record) {
			continue
		}
		lines = append(lines, strings.Join(record, ", "))
	}

	return strings.Join(lines, "\n"), nil
}

func (e *Extractor) extractPDF(ctx context.Context, data []byte) (string, error) {
	doc, err := e.pdf.Open(data)
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			e.logger.Warn("failed to close PDF document", slog.Any("error", cerr))
		}
	}()

	// Pass 1: text layer.
	text := e.textLayer(doc)
	if len(strings.TrimSpace(text)) >= e.minTextChars {
		return text, nil
	}

	e.logger.Info("insufficient text layer, falling back to OCR",
		slog.Int("chars", len(strings.TrimSpace(text))),
		slog.Int("pages", doc.NumPages()),
	)

	// Pass 2: render each page and OCR it.
	ocrText, err := e.ocrPages(ctx, doc)
	if err != nil {
		return "", err
	}
	if len(strings.TrimSpace(ocrText)) < e.minTextChars {
		return "", ErrImageBasedPDF
	}
	return ocrText, nil
}

// textLayer concatenates the embedded text of every page, blank-line
// separated. Pages without a text layer contribute nothing.
func (e *Extractor) textLayer(doc PDFDocument) string {
	var sb strings.Builder
	for page := 0; page < doc.NumPages(); page++ {
		pageText, err := doc.Text(page)
		if err != nil {
			e.logger.Warn("failed to read PDF text layer",
				slog.Int("page", page),
				slog.Any("error", err),
			)
			continue
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(pageText)
	}
	return sb.String()
}

// ocrPages runs OCR over every page in page order. A page that cannot be
// rendered is skipped rather than failing the whole document. The OCR client
// is always released, even when a page fails.
func (e *Extractor) ocrPages(ctx context.Context, doc PDFDocument) (string, error) {
	client, err := e.ocr.NewClient()
	if err != nil {
		return "", fmt.Errorf("acquire OCR worker: %w", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			e.logger.Warn("failed to release OCR worker", slog.Any("error", cerr))
		}
	}()

	var sb strings.Builder
	for page := 0; page < doc.NumPages(); page++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		img, err := doc.ImagePNG(page)
		if err != nil || len(img) == 0 {
			e.logger.Warn("no image buffer for page, skipping",
				slog.Int("page", page),
				slog.Any("error", err),
			)
			continue
		}

		pageText, err := client.Recognize(img)
		if err != nil {
			e.logger.Warn("OCR failed for page, skipping",
				slog.Int("page", page),
				slog.Any("error", err),
			)
			continue
		}

		sb.WriteString(pageText)
		sb.WriteString("\n\n")
	}

	return sb.String(), nil
}

func isEmptyRow(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
