//go:build dev

package config

// Dev default: serve library assets from disk so edits show up on reload.
func LiveAssets() bool {
	return envBool("EYESCREEN_LIVE_ASSETS", true)
}
