package config

// Mode is the deployment profile the client runs under.
type Mode string

const (
	Production  Mode = "production"
	Development Mode = "development"
)

// ParseMode maps a raw mode indicator onto a profile. Only the exact string
// "production" selects Production; everything else, including "", is Development.
func ParseMode(raw string) Mode {
	if raw == string(Production) {
		return Production
	}
	return Development
}

func (m Mode) IsProduction() bool { return m == Production }

func (m Mode) String() string { return string(m) }
