package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/rizza/pkg/log"
)

type ServerConfig struct {
	ListenAddr      string `env:"RIZZA_LISTEN_ADDR" envDefault:":8000"`
	AllowedOrigins  string `env:"RIZZA_ALLOWED_ORIGINS" envDefault:"*"`
	ShutdownTimeout int    `env:"RIZZA_SHUTDOWN_TIMEOUT_SECONDS" envDefault:"10"`
}

func NewServerConfig(ctx context.Context) *ServerConfig {
	c := &ServerConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Server config")
	}
	return c
}
