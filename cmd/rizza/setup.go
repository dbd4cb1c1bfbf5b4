package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/rizza/internal/config"
	"github.com/sandevgo/rizza/internal/providers/llm"
	"github.com/sandevgo/rizza/internal/service/chat"
	"github.com/sandevgo/rizza/internal/service/memory"
	"github.com/sandevgo/rizza/internal/service/reply"
	"github.com/sandevgo/rizza/internal/service/speech"
	"github.com/sandevgo/rizza/internal/service/vision"
	"github.com/sandevgo/rizza/internal/storage/sqlite"
	"github.com/sandevgo/rizza/internal/transport/httpapi"
	"github.com/sandevgo/rizza/pkg/log"
	"github.com/sandevgo/rizza/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	openaiCfg := config.NewOpenAIConfig(ctx)
	serverCfg := config.NewServerConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	sessionsRepo := sqlite.NewSessionsRepo(db)
	factsRepo := sqlite.NewFactsRepo(db)
	contactsRepo := sqlite.NewContactsRepo(db)

	// 3. Model client
	client := llm.NewOpenAI(openaiCfg.BaseURL, openaiCfg.APIKey)

	// 4. Services
	extractor := memory.NewExtractor(factsRepo, client, openaiCfg.TextModel)

	chatSvc := chat.NewService(
		appCfg,
		sessionsRepo,
		factsRepo,
		client,
		extractor,
		openaiCfg.TextModel,
		openaiCfg.VisionModel,
	)

	visionSvc := vision.NewService(client, openaiCfg.VisionModel)
	replySvc := reply.NewService(client, openaiCfg.TextModel)
	speechSvc := speech.NewService(client, openaiCfg.TranscriptionModel)

	// 5. HTTP transport
	router := httpapi.NewRouter(chatSvc, visionSvc, replySvc, speechSvc, contactsRepo, serverCfg.AllowedOrigins)
	services = append(services, httpapi.NewServer(serverCfg, router))

	return services
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
