package server

import "github.com/ilyakaznacheev/cleanenv"

// Config is read from the environment. FrontendURL restricts websocket
// upgrades to one origin; when empty every origin is accepted (dev mode).
type Config struct {
	Env         string `env:"ENV" env-default:"local"`
	Port        string `env:"PORT" env-default:"3000"`
	FrontendURL string `env:"FRONTEND_URL" env-default:""`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
