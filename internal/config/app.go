package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/rizza/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"RIZZA_RUNTIME_PATH" envDefault:".rizza"`

	// Context management for the chat orchestrator.
	HistoryWindowSize int `env:"HISTORY_WINDOW_SIZE" envDefault:"20"`
	MaxPromptTokens   int `env:"MAX_PROMPT_TOKENS" envDefault:"100000"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "rizza.db")
}

func (c AppConfig) GetHistoryWindowSize() int {
	return c.HistoryWindowSize
}

func (c AppConfig) GetMaxPromptTokens() int {
	return c.MaxPromptTokens
}
