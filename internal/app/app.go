package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"contactdash/internal/config"
	"contactdash/internal/docstore"
	"contactdash/internal/fields"
	"contactdash/internal/handler"
	"contactdash/internal/semantic"
	"contactdash/internal/server"
	"contactdash/internal/uploads"
	"contactdash/internal/wizard"
)

type App struct {
	server *server.Server
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Dependencies
	store := docstore.NewFromEnv()
	fieldSvc := fields.New(store)

	var client semantic.Client
	if strings.TrimSpace(os.Getenv("GEMINI_API_KEY")) == "" {
		log.Printf("GEMINI_API_KEY not set, semantic predictions use the offline fallback")
		client = &semantic.FakeClient{}
	} else {
		client, err = semantic.NewGeminiClient(ctx, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to init gemini client: %w", err)
		}
	}
	predictor := semantic.NewPredictor(client)

	var archive uploads.Archive = uploads.NullArchive{}
	if cfg.Uploads.Enabled {
		s3, err := uploads.NewS3Archive(uploads.S3Config{
			Endpoint:  cfg.Uploads.Endpoint,
			Region:    cfg.Uploads.Region,
			AccessKey: cfg.Uploads.AccessKey,
			SecretKey: cfg.Uploads.SecretKey,
			Bucket:    cfg.Uploads.Bucket,
			UseSSL:    cfg.Uploads.UseSSL,
		})
		if err != nil {
			log.Printf("upload archive disabled: %v", err)
		} else {
			archive = s3
		}
	}

	wizardSvc := wizard.New(store, fieldSvc, predictor, archive)

	importHandler := handler.NewImportHandler(wizardSvc)
	fieldHandler := handler.NewFieldHandler(fieldSvc)

	// Routing & Server
	mux := server.NewMux(importHandler, fieldHandler)
	srv := server.New(cfg.Port, mux)

	return &App{
		server: srv,
	}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}
