//go:build dev

package config

// Dev default: loopback only. Override with EYESCREEN_LISTEN_ADDR.
func ListenAddr() string {
	return envString("EYESCREEN_LISTEN_ADDR", "127.0.0.1:8080")
}
