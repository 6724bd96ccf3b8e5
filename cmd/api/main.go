package main

import (
	"context"
	"log"

	"coverletter-backend/internal/config"
	"coverletter-backend/internal/jobs"
	"coverletter-backend/internal/letters"
	"coverletter-backend/internal/llm/openai"
	"coverletter-backend/internal/render"
	"coverletter-backend/internal/scrape"
	"coverletter-backend/internal/server"
	"coverletter-backend/internal/services/health"
	"coverletter-backend/internal/shared/storage/object"
	localstore "coverletter-backend/internal/shared/storage/object/local"
	s3store "coverletter-backend/internal/shared/storage/object/s3"
	"coverletter-backend/internal/source"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	assets, err := newAssetStore(ctx, cfg)
	if err != nil {
		log.Fatalf("asset store init: %v", err)
	}

	var scraper source.Scraper
	if cfg.FirecrawlAPIKey != "" {
		client, err := scrape.NewClient(cfg.FirecrawlAPIKey, cfg.RequestTimeout)
		if err != nil {
			log.Fatalf("scrape client init: %v", err)
		}
		scraper = client
	} else {
		log.Printf("FIRECRAWL_API_KEY not set, job_url scraping disabled")
	}

	llmClient, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.RequestTimeout)
	if err != nil {
		log.Fatalf("llm client init: %v", err)
	}

	resolver := source.NewResolver(scraper, assets, cfg.DefaultCVKey, cfg.MaxCVUploadSize, cfg.MaxJobTextChars)
	generator := letters.NewGenerator(llmClient, cfg.SenderName)
	service := letters.NewService(resolver, generator, assets, cfg.TemplateKey, render.Options{
		RecipientIndentTwips: cfg.RecipientIndentTwips,
	})

	engine := server.NewEngine(cfg, server.Handlers{
		Letters: letters.NewHandler(service, cfg.MaxCVUploadSize),
		Jobs:    jobs.NewHandler(resolver),
		Health:  health.NewService(),
	})

	addr := server.Addr(cfg.Port)
	log.Printf("starting API server on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func newAssetStore(ctx context.Context, cfg config.Config) (object.AssetStore, error) {
	if cfg.ObjectStoreType == "s3" {
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	}
	return localstore.New(cfg.LocalStoreDir), nil
}
