//go:build !dev

package config

// BatchWorkers returns how many folders a local batch submits at once.
// Prod default: 4. Override with EYESCREEN_BATCH_WORKERS.
func BatchWorkers() int {
	return envPositive("EYESCREEN_BATCH_WORKERS", 4)
}
