package qrsvc

import (
	"encoding/base64"

	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
)

const pngSize = 280 // px, rendered size of the scannable image

// PNG renders the payload as a QR code PNG.
func PNG(payload string) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, pngSize)
	if err != nil {
		return nil, errors.Wrap(err, "encoding qr code")
	}
	return png, nil
}

// DataURL renders the payload as a QR code PNG embedded in a data URL,
// ready for an <img> src attribute.
func DataURL(payload string) (string, error) {
	png, err := PNG(payload)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
