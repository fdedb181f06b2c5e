//go:build !dev

package config

// LiveAssets reports whether library assets are read from disk instead of
// the copy embedded in the binary. Override with EYESCREEN_LIVE_ASSETS.
func LiveAssets() bool {
	return envBool("EYESCREEN_LIVE_ASSETS", false)
}
