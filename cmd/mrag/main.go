package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/mrag/internal/ai"
	"github.com/xxxsen/mrag/internal/config"
	"github.com/xxxsen/mrag/internal/handler"
	"github.com/xxxsen/mrag/internal/job"
	"github.com/xxxsen/mrag/internal/memory"
	"github.com/xxxsen/mrag/internal/middleware"
	"github.com/xxxsen/mrag/internal/repo"
	"github.com/xxxsen/mrag/internal/schedule"
	"github.com/xxxsen/mrag/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "mrag",
		Short: "mrag research query server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run mrag server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			db, err := repo.Open(cfg.DB.DSN)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := repo.ApplyMigrations(db, cfg.DB.MigrationsDir); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, db)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, db *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.Float64("alpha", cfg.Search.Alpha),
	)

	documentRepo := repo.NewDocumentRepo(db)
	searchRepo := repo.NewSearchRepo(db)
	citationRepo := repo.NewCitationRepo(db)

	providerArgs := interface{}(cfg.AI.Data)
	if cfg.AI.Data == nil {
		providerArgs = cfg.AI
	}
	aiProvider, err := ai.NewProvider(cfg.AI.Provider, providerArgs)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	ai.ConfigureEmbedder(func() (ai.IEmbedder, error) {
		return ai.NewEmbedder(aiProvider, cfg.AI.EmbedModel), nil
	})
	manager := ai.NewManager(ai.NewGenerator(aiProvider, cfg.AI.Model), ai.ManagerConfig{
		Timeout:       cfg.AI.Timeout,
		MaxInputChars: cfg.AI.MaxInputChars,
	})

	sessions := memory.NewStore(
		cfg.Memory.Capacity,
		cfg.Memory.MaxSessions,
		time.Duration(cfg.Memory.SessionTTLMinutes)*time.Minute,
	)

	citationService := service.NewCitationService(citationRepo, documentRepo)
	queryService := service.NewQueryService(searchRepo, documentRepo, manager, sessions, citationService, service.QueryConfig{
		Alpha:             cfg.Search.Alpha,
		TopK:              cfg.Search.TopK,
		FetchK:            cfg.Search.FetchK,
		MaxCharsPerSource: cfg.Search.MaxCharsPerSource,
		HistoryTurns:      cfg.Memory.Capacity,
		RetrievalTimeout:  time.Duration(cfg.Search.TimeoutSeconds) * time.Second,
	})
	statsService := service.NewStatsService(documentRepo)
	exportService := service.NewExportService(sessions)

	deps := handler.RouterDeps{
		Queries:        handler.NewQueryHandler(queryService),
		Citations:      handler.NewCitationHandler(citationService),
		Documents:      handler.NewDocumentHandler(statsService),
		Export:         handler.NewExportHandler(exportService),
		QueryRateLimit: time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllowlist),
			middleware.RequestID(),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if cfg.Jobs.EmbeddingBackfillSpec != "" {
		backfill := job.NewEmbeddingBackfillJob(documentRepo, cfg.Jobs.EmbeddingBatchSize)
		if err := scheduler.AddJob(backfill, cfg.Jobs.EmbeddingBackfillSpec); err != nil {
			return fmt.Errorf("schedule embedding backfill: %w", err)
		}
	}
	if cfg.Jobs.CitationCleanupSpec != "" {
		cleanup := job.NewCitationCleanupJob(citationRepo, cfg.Jobs.CitationRetentionDays)
		if err := scheduler.AddJob(cleanup, cfg.Jobs.CitationCleanupSpec); err != nil {
			return fmt.Errorf("schedule citation cleanup: %w", err)
		}
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
