// Package qr renders the scannable code other drivers use to reach a
// vehicle's alert page.
package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const pngSize = 256

// Generator renders vehicle QR codes pointing at the public alert page.
type Generator struct {
	baseURL string
}

func NewGenerator(baseURL string) *Generator {
	return &Generator{baseURL: baseURL}
}

// URL returns the public alert-page link encoded into the QR code.
func (g *Generator) URL(qrToken string) string {
	return fmt.Sprintf("%s/%s", g.baseURL, qrToken)
}

// Generate returns the alert-page URL and the QR image as a PNG data URI.
func (g *Generator) Generate(qrToken string) (url, dataURI string, err error) {
	url = g.URL(qrToken)

	png, err := qrcode.Encode(url, qrcode.Medium, pngSize)
	if err != nil {
		return "", "", fmt.Errorf("encode qr code: %w", err)
	}

	dataURI = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	return url, dataURI, nil
}
