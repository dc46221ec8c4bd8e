//go:build !ocr

// Package ocr recovers the printed header banner from scanned ECG
// reports.
//
// This is the stub compiled without the "ocr" build tag: client
// operations return ErrOCRNotEnabled. Banner parsing works either way.
// To enable recognition, install Tesseract and rebuild with:
//
//	go build -tags ocr
package ocr

import "errors"

// ErrOCRNotEnabled reports that OCR support was not compiled in.
// Rebuild with -tags ocr to enable it.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Client is the stub session; every operation fails with
// ErrOCRNotEnabled.
type Client struct{}

// NewClient returns ErrOCRNotEnabled.
func NewClient() (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op, safe on a nil client.
func (c *Client) Close() error {
	return nil
}

// SetLanguage returns ErrOCRNotEnabled.
func (c *Client) SetLanguage(lang string) error {
	return ErrOCRNotEnabled
}

// RecognizeText returns ErrOCRNotEnabled.
func (c *Client) RecognizeText(imageData []byte) (string, error) {
	return "", ErrOCRNotEnabled
}

// ReadBanner returns ErrOCRNotEnabled.
func (c *Client) ReadBanner(imageData []byte) (Banner, error) {
	return Banner{}, ErrOCRNotEnabled
}
