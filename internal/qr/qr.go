// Package qr owns the scan-token wire format shared by printed machine
// labels and the scanner client: the QR symbol carries the machine's bare
// scan token, nothing else.
package qr

import (
	"regexp"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelSize is the fixed pixel size of generated label images.
const LabelSize = 256

// Scan tokens are canonical 8-4-4-4-12 hex UUIDs. Anything else decoded
// from a symbol is rejected before it reaches a lookup.
var tokenPattern = regexp.MustCompile(`^(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func ValidToken(token string) bool {
	return tokenPattern.MatchString(token)
}

// NewToken mints a fresh scan token for a machine label.
func NewToken() string {
	return uuid.NewString()
}

// Label renders the printable QR image for a scan token.
func Label(token string, size int) ([]byte, error) {
	if size <= 0 {
		size = LabelSize
	}
	return qrcode.Encode(token, qrcode.Medium, size)
}
