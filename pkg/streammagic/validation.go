package streammagic

import (
	"fmt"
	"strings"
)

// ValidateVolumePercent validates a volume percentage.
// Valid range is 0-100 inclusive.
func ValidateVolumePercent(volume int) error {
	if volume < 0 || volume > 100 {
		return NewValidationError("volume", fmt.Sprintf("volume must be 0-100, got %d", volume))
	}
	return nil
}

// validateHost accepts "host" or "host:port" without scheme or path.
func validateHost(host string) error {
	if host == "" {
		return NewValidationError("host", "device host cannot be empty")
	}
	if strings.Contains(host, "://") {
		return NewValidationError("host", fmt.Sprintf("device host must not include a scheme: %q", host))
	}
	if strings.ContainsAny(host, "/?# ") {
		return NewValidationError("host", fmt.Sprintf("device host must be a bare host or host:port: %q", host))
	}
	return nil
}

func validatePath(path string) error {
	if path == "" {
		return NewValidationError("path", "request path cannot be empty")
	}
	if !strings.HasPrefix(path, "/") {
		return NewValidationError("path", fmt.Sprintf("request path must start with '/': %q", path))
	}
	return nil
}
