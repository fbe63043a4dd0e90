package qrcode

import (
	"fmt"

	qr "github.com/skip2/go-qrcode"
)

// JoinLink creates a QR code PNG for the room's join URL.
func JoinLink(baseURL, roomCode string) ([]byte, error) {
	url := fmt.Sprintf("%s/join?room=%s", baseURL, roomCode)
	return qr.Encode(url, qr.Medium, 256)
}
