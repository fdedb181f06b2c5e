//go:build dev

package config

// Dev default: 2. Override with EYESCREEN_BATCH_WORKERS.
func BatchWorkers() int {
	return envPositive("EYESCREEN_BATCH_WORKERS", 2)
}
