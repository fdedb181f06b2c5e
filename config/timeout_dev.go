//go:build dev

package config

import "time"

// Dev default: 120s, the local backend is often attached to a debugger.
func RequestTimeout() time.Duration {
	return envSeconds("EYESCREEN_REQUEST_TIMEOUT_SECONDS", 120*time.Second)
}
