//go:build !dev

package config

import "time"

// RequestTimeout bounds a single backend call. Prod default: 30s.
// Override with EYESCREEN_REQUEST_TIMEOUT_SECONDS (0 disables the limit).
func RequestTimeout() time.Duration {
	return envSeconds("EYESCREEN_REQUEST_TIMEOUT_SECONDS", 30*time.Second)
}
