// @title           Nicole Studio API
// @version         1.0.0
// @description     Jewelry design assistant: chat with selectable models, moodboard analysis into design DNA and piece proposals, piece image generation and running cost tracking.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api

package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"nicole-studio/docs"
	"nicole-studio/internal/attachments"
	"nicole-studio/internal/blobs"
	"nicole-studio/internal/chat"
	"nicole-studio/internal/config"
	"nicole-studio/internal/costs"
	"nicole-studio/internal/handlers"
	"nicole-studio/internal/logging"
	"nicole-studio/internal/metrics"
	"nicole-studio/internal/middleware"
	"nicole-studio/internal/moodboard"
	"nicole-studio/internal/providers"
	"nicole-studio/internal/registry"
	"nicole-studio/internal/supabase"
	"nicole-studio/internal/workspace"
)

const sweepInterval = time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Setup(cfg.Environment, cfg.LogLevel)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		if baseURL, err := url.Parse(cfg.BaseURL); err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.Logger.WithContext(ctx)

	reg := metrics.NewRegistry()

	// Cost total
	store, closeStore, err := costs.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open cost store")
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn().Err(err).Msg("failed to close cost store")
		}
	}()
	accumulator := costs.NewAccumulator(ctx, store, reg)
	log.Info().Float64("total_usd", accumulator.Total()).Msg("cost total loaded")

	// Providers
	openAI := providers.NewOpenAI(providers.OpenAIOptions{
		APIKey:          cfg.OpenAIAPIKey,
		BaseURL:         cfg.OpenAIBaseURL,
		VisionModel:     cfg.VisionModel,
		VisionMaxTokens: cfg.VisionMaxTokens,
		ImageModel:      cfg.ImageModel,
	})
	openRouter := providers.NewOpenRouter(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey)
	gemini, err := providers.NewGemini(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Gemini client")
	}
	defer gemini.Close()

	for name, key := range map[string]string{
		"OPENAI_API_KEY":     cfg.OpenAIAPIKey,
		"OPENROUTER_API_KEY": cfg.OpenRouterAPIKey,
		"GEMINI_API_KEY":     cfg.GeminiAPIKey,
	} {
		if key == "" {
			log.Warn().Str("key", name).Msg("provider key not set, calls to it will fail")
		}
	}

	// Services
	catalog := registry.New(cfg.DefaultChatModel)
	chatService := chat.NewService(catalog, map[registry.Provider]providers.ChatBackend{
		registry.ProviderOpenRouter: openRouter,
		registry.ProviderOpenAI:     openAI,
		registry.ProviderGemini:     gemini,
	}, reg)
	conversations := chat.NewConversations(chatService, accumulator)
	analyzer := moodboard.NewAnalyzer(openAI, reg)
	generator := moodboard.NewGenerator(openAI, reg)

	blobRepo := blobs.NewMemoryRepository(reg)
	workspaces := workspace.NewManager(analyzer, generator, accumulator, blobRepo, workspace.DefaultImageTTL, reg)

	var backend attachments.Backend
	if cfg.SupabaseEnabled() {
		supabaseClient, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Supabase client")
		}
		backend = attachments.NewSupabaseBackend(supabase.NewStorageClient(supabaseClient, cfg.SupabaseStorageBucket))
		log.Info().Str("bucket", cfg.SupabaseStorageBucket).Msg("attachments stored in Supabase")
	} else {
		backend = attachments.NewMemoryBackend(blobRepo, cfg.BaseURL)
		log.Info().Msg("SUPABASE_URL not set, attachments kept in memory")
	}
	files := attachments.NewService(backend, cfg.AttachmentTTL)
	go files.RunSweeper(ctx, sweepInterval)

	// Handlers
	chatHandler := handlers.NewChatHandler(chatService, accumulator)
	moodboardHandler := handlers.NewMoodboardHandler(analyzer, generator, accumulator)
	catalogHandler := handlers.NewCatalogHandler(catalog, accumulator)
	filesHandler := handlers.NewFilesHandler(files)
	conversationsHandler := handlers.NewConversationsHandler(conversations, files)
	workspacesHandler := handlers.NewWorkspacesHandler(workspaces)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestLogger(reg))
	router.Use(gin.Recovery())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", handlers.HealthHandler)
	router.GET("/metrics", reg.Handler)

	api := router.Group("/api")

	api.POST("/chat", chatHandler.Chat)
	api.POST("/moodboard/analyze", moodboardHandler.Analyze)
	api.POST("/moodboard/generate-image", moodboardHandler.GenerateImage)

	api.GET("/models", catalogHandler.ListModels)
	api.GET("/cost", catalogHandler.GetCost)

	// Attachments
	api.POST("/files", filesHandler.Upload)
	api.GET("/files/:id", filesHandler.GetFile)
	api.GET("/files/:id/content", filesHandler.GetContent)

	// Conversations
	api.POST("/conversations", conversationsHandler.CreateConversation)
	api.GET("/conversations/:id", conversationsHandler.GetConversation)
	api.POST("/conversations/:id/messages", conversationsHandler.PostMessage)

	// Moodboard workspaces
	api.POST("/workspaces", workspacesHandler.CreateWorkspace)
	api.GET("/workspaces/:id", workspacesHandler.GetWorkspace)
	api.DELETE("/workspaces/:id", workspacesHandler.DeleteWorkspace)
	api.POST("/workspaces/:id/images", workspacesHandler.StageImages)
	api.DELETE("/workspaces/:id/images/:image_id", workspacesHandler.RemoveImage)
	api.PUT("/workspaces/:id/context", workspacesHandler.SetContext)
	api.POST("/workspaces/:id/analyze", workspacesHandler.Analyze)
	api.PUT("/workspaces/:id/pieces/:index", workspacesHandler.EditPiece)
	api.PUT("/workspaces/:id/pieces/:index/refinement", workspacesHandler.SetRefinement)
	api.POST("/workspaces/:id/pieces/:index/chips", workspacesHandler.AddChip)
	api.POST("/workspaces/:id/pieces/:index/generate", workspacesHandler.GeneratePiece)
	api.POST("/workspaces/:id/generate-all", workspacesHandler.GenerateAll)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
