//go:build !dev

package config

// ListenAddr returns the address the browser host binds to.
// Prod default: all interfaces on 8080. Override with EYESCREEN_LISTEN_ADDR.
func ListenAddr() string {
	return envString("EYESCREEN_LISTEN_ADDR", ":8080")
}
