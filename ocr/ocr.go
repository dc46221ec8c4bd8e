//go:build ocr

// Package ocr recovers the printed header banner from scanned ECG
// reports. A scanned printout carries its trace as a raster image, so
// the recording metadata (patient name, recording time, heart rate)
// exists only as pixels; this package runs those pixels through
// Tesseract and parses the result into a Banner.
//
// Tesseract must be installed on the system and the module built with
// the "ocr" tag:
//
//	go build -tags ocr
//
// Without the tag a stub is compiled in and NewClient returns
// ErrOCRNotEnabled.
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Client wraps a Tesseract session.
type Client struct {
	client *gosseract.Client
}

// NewClient starts a Tesseract session. Close it when done.
func NewClient() (*Client, error) {
	return &Client{client: gosseract.NewClient()}, nil
}

// Close releases the Tesseract session. Safe on a nil client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// SetLanguage selects the recognition language, "+"-separated for
// multiple (for example "eng+deu"). The default is English.
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(lang)
}

// RecognizeText runs OCR over encoded image bytes (PNG, JPEG, TIFF)
// and returns the recognized text, whitespace-trimmed.
func (c *Client) RecognizeText(imageData []byte) (string, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("setting ocr image: %w", err)
	}
	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognizing text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// ReadBanner recognizes the report banner in the image and parses it.
func (c *Client) ReadBanner(imageData []byte) (Banner, error) {
	text, err := c.RecognizeText(imageData)
	if err != nil {
		return Banner{}, err
	}
	return ParseBanner(text), nil
}
