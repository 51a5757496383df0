package device

import (
	"fmt"
	"regexp"
	"runtime"
	"strings"
	"time"

	"clipsynq/localstore"
	"clipsynq/models"

	"github.com/google/uuid"
)

// EnsureDeviceID returns the stable identifier for this installation,
// generating and persisting one on first call. Repeated calls within the
// same state file return the identical id.
func EnsureDeviceID(store localstore.Store) (string, error) {
	if id := store.Get(localstore.KeyDeviceID); id != "" {
		return id, nil
	}
	entropy := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	id := fmt.Sprintf("device_%s%d", entropy, time.Now().UnixMilli())
	if err := store.Set(localstore.KeyDeviceID, id); err != nil {
		return "", fmt.Errorf("failed to persist device id: %w", err)
	}
	return id, nil
}

var (
	reAndroid        = regexp.MustCompile(`(?i)Android`)
	reAndroidVersion = regexp.MustCompile(`Android ([0-9.]+)`)
	reUAParens       = regexp.MustCompile(`\(([^)]+)\)`)
	reIOSFamily      = regexp.MustCompile(`(?i)iPhone|iPad|iPod`)
	reIOSVersion     = regexp.MustCompile(`OS ([0-9_]+)`)
	reWindows        = regexp.MustCompile(`(?i)Windows`)
	reMac            = regexp.MustCompile(`(?i)Mac`)
	reMacVersion     = regexp.MustCompile(`Mac OS X ([0-9_]+)`)
	reLinux          = regexp.MustCompile(`(?i)Linux`)
	reChromeOS       = regexp.MustCompile(`(?i)CrOS`)
)

// DetectDeviceInfo derives a best-effort device label and class from a
// user-agent string. Pure and deterministic: platform families are matched
// in order (Android, iOS, Windows, Mac, Linux, Chrome OS), then refined with
// a browser suffix.
func DetectDeviceInfo(userAgent string) models.DeviceInfo {
	deviceName := "Unknown Device"
	deviceType := models.DeviceTypeDesktop

	switch {
	case reAndroid.MatchString(userAgent):
		version := ""
		if m := reAndroidVersion.FindStringSubmatch(userAgent); m != nil {
			version = m[1]
		}
		deviceName = strings.TrimSpace("Android " + version)
		deviceType = models.DeviceTypeMobile
		// Prefer the hardware model from the UA parenthetical when present.
		if m := reUAParens.FindStringSubmatch(userAgent); m != nil {
			parts := strings.Split(m[1], ";")
			if len(parts) > 1 {
				model := strings.TrimSpace(parts[len(parts)-1])
				if model != "" && !strings.Contains(model, "Build") && len(model) < 30 {
					deviceName = model
				}
			}
		}
	case reIOSFamily.MatchString(userAgent):
		switch {
		case strings.Contains(userAgent, "iPad"):
			deviceName = "iPad"
		case strings.Contains(userAgent, "iPhone"):
			deviceName = "iPhone"
		default:
			deviceName = "iPod"
		}
		deviceType = models.DeviceTypeMobile
		if m := reIOSVersion.FindStringSubmatch(userAgent); m != nil {
			deviceName += fmt.Sprintf(" (iOS %s)", strings.ReplaceAll(m[1], "_", "."))
		}
	case reWindows.MatchString(userAgent):
		deviceName = "Windows PC"
		switch {
		case strings.Contains(userAgent, "Windows NT 10"):
			deviceName = "Windows 10/11 PC"
		case strings.Contains(userAgent, "Windows NT 6.3"):
			deviceName = "Windows 8.1 PC"
		case strings.Contains(userAgent, "Windows NT 6.2"):
			deviceName = "Windows 8 PC"
		case strings.Contains(userAgent, "Windows NT 6.1"):
			deviceName = "Windows 7 PC"
		}
	case reMac.MatchString(userAgent):
		deviceName = "Mac"
		if m := reMacVersion.FindStringSubmatch(userAgent); m != nil {
			parts := strings.Split(strings.ReplaceAll(m[1], "_", "."), ".")
			if len(parts) >= 2 {
				deviceName = fmt.Sprintf("macOS %s.%s", parts[0], parts[1])
			}
		}
	case reLinux.MatchString(userAgent):
		deviceName = "Linux PC"
	case reChromeOS.MatchString(userAgent):
		deviceName = "Chromebook"
	}

	if browser := BrowserInfo(userAgent); browser != "" && !strings.Contains(deviceName, browser) {
		deviceName += fmt.Sprintf(" (%s)", browser)
	}

	return models.DeviceInfo{DeviceName: deviceName, DeviceType: deviceType}
}

// BrowserInfo identifies the browser from a user-agent string. Order matters:
// Chrome UAs contain "Safari", and Edge UAs contain "Chrome", so the most
// specific token is checked first and Safari requires a Chrome exclusion.
func BrowserInfo(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Edg"):
		return "Edge"
	case strings.Contains(userAgent, "Chrome"):
		return "Chrome"
	case strings.Contains(userAgent, "Firefox"):
		return "Firefox"
	case strings.Contains(userAgent, "Safari"):
		return "Safari"
	case strings.Contains(userAgent, "Opera"), strings.Contains(userAgent, "OPR"):
		return "Opera"
	default:
		return ""
	}
}

// AgentUserAgent synthesizes a user-agent string for this process so the
// resolver has the same input shape it gets from a browser.
func AgentUserAgent() string {
	switch runtime.GOOS {
	case "windows":
		return "Mozilla/5.0 (Windows NT 10.0; Win64; x64) ClipSynq-Agent"
	case "darwin":
		return "Mozilla/5.0 (Macintosh; Intel Mac OS X 13_5) ClipSynq-Agent"
	case "android":
		return "Mozilla/5.0 (Linux; Android 14; Agent) ClipSynq-Agent"
	default:
		return "Mozilla/5.0 (X11; Linux x86_64) ClipSynq-Agent"
	}
}
