package models

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Device types reported by the resolver.
const (
	DeviceTypeMobile  = "mobile"
	DeviceTypeDesktop = "desktop"
)

// DeviceInfo is the best-effort label derived from a user-agent string.
type DeviceInfo struct {
	DeviceName string `json:"deviceName"`
	DeviceType string `json:"deviceType"`
}

// DeviceRecord is the presence/status entry for one device under one user,
// stored at users/{uid}/devices/{deviceId} or qr-devices/{uid}/{deviceId}.
// Timestamps are epoch milliseconds.
type DeviceRecord struct {
	Name        string `json:"name" validate:"required"`
	Type        string `json:"type" validate:"oneof=mobile desktop"`
	IsOnline    bool   `json:"isOnline"`
	LastActive  int64  `json:"lastActive"`
	LastSeen    int64  `json:"lastSeen,omitempty"`
	CreatedAt   int64  `json:"createdAt,omitempty"`
	ForceLogout bool   `json:"forceLogout"`
	LinkedViaQR bool   `json:"linkedViaQR,omitempty"`
	UserAgent   string `json:"userAgent,omitempty"`
	Platform    string `json:"platform,omitempty"`
	Browser     string `json:"browser,omitempty"`
}

// Validate checks the record shape at the subscription boundary.
func (d *DeviceRecord) Validate() error {
	return validate.Struct(d)
}

// Corrupted reports whether the record lost its name and should be pruned.
func (d *DeviceRecord) Corrupted() bool {
	return d == nil || d.Name == ""
}

// DeviceEntry pairs a record with its id and namespace for device listings.
type DeviceEntry struct {
	ID     string       `json:"id"`
	IsQR   bool         `json:"isQR"`
	Record DeviceRecord `json:"record"`
}
