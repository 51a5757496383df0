// Package pairing implements the QR handshake that hands an authenticated
// identity to a second device: the initiator publishes a short-lived session
// record and renders it as a QR code; the scanner advances the session and
// registers itself once the owner approves.
package pairing

import (
	"encoding/json"
	"errors"
	"fmt"

	"clipsynq/models"

	qrcode "github.com/skip2/go-qrcode"
)

// ErrInvalidPayload rejects scans that are not ClipSynq login codes.
var ErrInvalidPayload = errors.New("invalid QR payload")

const qrImageSize = 256

// EncodePayload serializes the scannable payload.
func EncodePayload(p models.QRPayload) ([]byte, error) {
	return json.Marshal(p)
}

// DecodePayload parses and validates a scanned payload. The type tag, the
// session id and the owner user id are all required.
func DecodePayload(raw []byte) (*models.QRPayload, error) {
	var p models.QRPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if p.Type != models.QRPayloadType {
		return nil, fmt.Errorf("%w: unexpected type %q", ErrInvalidPayload, p.Type)
	}
	if p.SessionID == "" || p.UserID == "" {
		return nil, fmt.Errorf("%w: missing session or user id", ErrInvalidPayload)
	}
	return &p, nil
}

// RenderPNG encodes the payload as a scannable QR image.
func RenderPNG(p models.QRPayload) ([]byte, error) {
	data, err := EncodePayload(p)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(string(data), qrcode.High, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	return png, nil
}
