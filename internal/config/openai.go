package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/rizza/pkg/log"
)

type OpenAIConfig struct {
	APIKey  string `env:"OPENAI_API_KEY,required,notEmpty"`
	BaseURL string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com"`

	// VisionModel handles requests that carry an image; TextModel handles
	// everything else, including extraction and reply generation.
	VisionModel        string `env:"OPENAI_VISION_MODEL" envDefault:"gpt-4o"`
	TextModel          string `env:"OPENAI_TEXT_MODEL" envDefault:"gpt-4o-mini"`
	TranscriptionModel string `env:"OPENAI_TRANSCRIPTION_MODEL" envDefault:"whisper-1"`
}

func NewOpenAIConfig(ctx context.Context) *OpenAIConfig {
	c := &OpenAIConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse OpenAI config")
	}
	return c
}
