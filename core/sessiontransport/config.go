package sessiontransport

// Config selects the deployment mode for cookie serialization.
type Config struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
}

// IsProduction reports whether secure cookie settings apply.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}
