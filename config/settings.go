package config

import (
	"os"
	"time"
)

const (
	// DefaultUpstream is where the production host forwards /api requests.
	DefaultUpstream = "http://127.0.0.1:5000"
	DefaultDBPath   = "data/eyescreen.db"
	DefaultAssetDir = "web"
)

// Settings is everything the process needs, resolved once at startup.
type Settings struct {
	Mode     Mode
	Endpoint Endpoint

	ListenAddr     string
	Upstream       string
	Origin         string
	DBPath         string
	AssetDir       string
	LiveAssets     bool
	RequestTimeout time.Duration
	BatchWorkers   int
}

// RawMode returns the mode indicator from the environment: EYESCREEN_MODE
// when set, NODE_ENV otherwise. The value is returned as-is.
func RawMode() string {
	if v, ok := os.LookupEnv("EYESCREEN_MODE"); ok && v != "" {
		return v
	}
	return os.Getenv("NODE_ENV")
}

// Load resolves Settings from the environment. A non-empty modeFlag wins over
// the environment's mode indicator.
func Load(modeFlag string) Settings {
	raw := RawMode()
	if modeFlag != "" {
		raw = modeFlag
	}
	mode := ParseMode(raw)

	return Settings{
		Mode:           mode,
		Endpoint:       NewEndpoint(mode, os.Getenv("EYESCREEN_DEV_API_URL")),
		ListenAddr:     ListenAddr(),
		Upstream:       envString("EYESCREEN_API_UPSTREAM", DefaultUpstream),
		Origin:         envString("EYESCREEN_ORIGIN", ""),
		DBPath:         envString("EYESCREEN_DB", DefaultDBPath),
		AssetDir:       envString("EYESCREEN_ASSET_DIR", DefaultAssetDir),
		LiveAssets:     LiveAssets(),
		RequestTimeout: RequestTimeout(),
		BatchWorkers:   BatchWorkers(),
	}
}
