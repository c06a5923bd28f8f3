package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dmautz1/ai-agent-platform-sub002/config"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/api/v1/handlers"
	v1 "github.com/dmautz1/ai-agent-platform-sub002/internal/api/v1/routes"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/app"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/db"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/db/repos"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/events"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/llm"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/logger"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/pipeline"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/services"
)

func main() {
	// .env is optional in containerized deployments
	_ = godotenv.Load()
	logger.Initialize()

	database, err := db.New(db.Options{
		Host:     config.GetEnv("DB_HOST", db.DefaultHost),
		User:     config.GetEnv("DB_USER", db.DefaultUser),
		Password: config.GetEnv("DB_PASSWORD", db.DefaultPassword),
		DBName:   config.GetEnv("DB_NAME", db.DefaultDBName),
		Port:     config.GetEnvInt("DB_PORT", db.DefaultPort),
	})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	jobRepo := repos.NewJobRepository(database)
	jobService := services.NewJobService(jobRepo)

	registry := llm.NewRegistry(llm.ConfigsFromEnv(), config.GetEnv("DEFAULT_LLM_PROVIDER", llm.ProviderOpenAI))
	dispatcher := llm.NewDispatcher(registry)

	submitter := pipeline.NewHTTPSubmitter(config.GetEnv("PIPELINE_URL", v1.DefaultBaseURL+v1.APIv1Prefix))
	recovery := services.NewRecoveryService(jobRepo, submitter)
	executor := services.NewExecutor(jobRepo, dispatcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events.Start(ctx)
	events.Subscribe(events.EventJobFailed, func(_ context.Context, e events.Event) error {
		logger.WarnWithFields("Job reached failed status", map[string]interface{}{
			"job_id":  e.JobID,
			"user_id": e.UserID,
			"agent":   e.AgentID,
			"detail":  e.Detail,
		})
		return nil
	})

	var wg sync.WaitGroup
	services.LaunchRecoveryWorker(ctx, &wg, recovery,
		config.GetEnvDuration("RECOVERY_SWEEP_INTERVAL", services.DefaultSweepInterval))
	services.LaunchExecutionWorker(ctx, &wg, executor, jobService)

	server := app.New(v1.Handlers{
		Job:      handlers.NewJobHandler(jobService),
		Provider: handlers.NewProviderHandler(dispatcher),
		Recovery: handlers.NewRecoveryHandler(recovery),
	})

	// Shut down cleanly on SIGINT/SIGTERM so in-flight work can finish
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Shutdown signal received")
		cancel()
		if err := server.Shutdown(); err != nil {
			logger.Errorf("Error shutting down server: %v", err)
		}
	}()

	port := config.GetEnv("API_PORT", v1.DefaultPort)
	logger.Infof("Starting API server on port %s", port)
	if err := server.Listen(":" + port); err != nil {
		logger.Fatalf("Server error: %v", err)
	}

	wg.Wait()
	logger.Info("Shutdown complete")
}
