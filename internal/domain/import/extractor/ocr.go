package extractor

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// TesseractFactory creates gosseract OCR workers.
type TesseractFactory struct {
	language string
}

// NewTesseractFactory returns the production OCR factory. language is a
// tesseract language code such as "eng".
func NewTesseractFactory(language string) *TesseractFactory {
	return &TesseractFactory{language: language}
}

func (f *TesseractFactory) NewClient() (OCRClient, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(f.language); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set OCR language %q: %w", f.language, err)
	}
	return &tesseractClient{client: client}, nil
}

type tesseractClient struct {
	client *gosseract.Client
}

func (c *tesseractClient) Recognize(imagePNG []byte) (string, error) {
	if err := c.client.SetImageFromBytes(imagePNG); err != nil {
		return "", fmt.Errorf("set OCR image: %w", err)
	}
	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}

func (c *tesseractClient) Close() error { return c.client.Close() }
