// Package claimlink builds the values printed on an event's QR code.
package claimlink

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"net/url"
	"strings"
)

const (
	// QRCodePrefix marks QR payloads issued by this service.
	QRCodePrefix = "pop-"

	qrCodeIDLength = 8
	base36         = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// NewQRCodeData returns "pop-" followed by 8 random base36 characters.
func NewQRCodeData() (string, error) {
	return newQRCodeData(rand.Reader)
}

func newQRCodeData(r io.Reader) (string, error) {
	var sb strings.Builder
	sb.WriteString(QRCodePrefix)

	max := big.NewInt(int64(len(base36)))
	for i := 0; i < qrCodeIDLength; i++ {
		n, err := rand.Int(r, max)
		if err != nil {
			return "", fmt.Errorf("generate qr code data: %w", err)
		}
		sb.WriteByte(base36[n.Int64()])
	}
	return sb.String(), nil
}

// ClaimURL returns the attendee-facing claim page for an event: <base>/claim/<eventID>.
func ClaimURL(baseURL, eventID string) string {
	return strings.TrimRight(baseURL, "/") + "/claim/" + url.PathEscape(eventID)
}
