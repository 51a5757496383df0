package models

// Pairing session statuses. pending -> scanned -> approved -> authenticated,
// or pending -> denied. Terminal states are deleted by whichever side sees them.
const (
	QRStatusPending       = "pending"
	QRStatusScanned       = "scanned"
	QRStatusApproved      = "approved"
	QRStatusAuthenticated = "authenticated"
	QRStatusDenied        = "denied"
)

// QRPayloadType tags scannable payloads so foreign QR codes are rejected.
const QRPayloadType = "ClipSynq-login"

// QRSession is the short-lived handshake record at qr-sessions/{sessionId}.
type QRSession struct {
	UserID    string `json:"userId" validate:"required"`
	UserEmail string `json:"userEmail,omitempty"`
	UserName  string `json:"userName,omitempty"`
	UserPhoto string `json:"userPhoto,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	ExpiresAt int64  `json:"expiresAt"`
	Status    string `json:"status" validate:"oneof=pending scanned approved authenticated denied"`
	ScannedAt int64  `json:"scannedAt,omitempty"`
}

func (s *QRSession) Validate() error {
	return validate.Struct(s)
}

// Expired reports whether the session passed its validity window.
func (s *QRSession) Expired(nowMillis int64) bool {
	return s.ExpiresAt > 0 && nowMillis >= s.ExpiresAt
}

// QRPayload is the scannable encoding handed from the initiator to the
// scanning device. It denormalizes the owner identity so the scanner can
// label the linked session before it ever reads the session record.
type QRPayload struct {
	Type      string `json:"type"`
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail,omitempty"`
	UserName  string `json:"userName,omitempty"`
	UserPhoto string `json:"userPhoto,omitempty"`
	SessionID string `json:"sessionId"`
	Timestamp int64  `json:"timestamp"`
}
