package checkersvc

// CheckerConfig contains configuration parameters for the checker service.
type CheckerConfig struct {
	// RegisterAttempts bounds how often registration is retried when the
	// service reports a username collision
	RegisterAttempts int `env:"REGISTER_ATTEMPTS" default:"10"`
}
