// Command voiceos runs the WeVysya voice intent pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/wevysya/voiceos/internal/actions"
	"github.com/wevysya/voiceos/internal/adapters/driven/ai"
	"github.com/wevysya/voiceos/internal/adapters/driven/config/file"
	"github.com/wevysya/voiceos/internal/adapters/driven/storage/sqlite"
	"github.com/wevysya/voiceos/internal/adapters/driven/telemetry/prometheus"
	"github.com/wevysya/voiceos/internal/adapters/driving/cli"
	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/services"
	"github.com/wevysya/voiceos/internal/logger"
	"github.com/wevysya/voiceos/internal/normalisers"
	"github.com/wevysya/voiceos/internal/postprocessors/chunker"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	defer logger.Sync()

	// A missing .env is normal; only the process environment is used then.
	_ = godotenv.Load()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	prompts, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("opening prompts: %w", err)
	}
	go func() {
		if err := prompts.Watch(ctx, nil); err != nil {
			logger.Debug("Prompt watch stopped: %v", err)
		}
	}()

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	applyEnv(settings)

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	aiServices, err := ai.Init(ctx, *settings, prompts, false)
	if err != nil {
		return err
	}
	defer aiServices.Close()

	telemetry := prometheus.New()
	policy := settings.Pipeline

	registry := services.NewActionRegistry()
	if err := actions.RegisterDefaults(registry, store.RecordStore()); err != nil {
		return fmt.Errorf("registering actions: %w", err)
	}
	registry.Seal()
	registry.SetTimeout(policy.DispatchTimeout)
	registry.SetTelemetry(telemetry)

	knowledge := services.NewKnowledgeService(store.KnowledgeStore(), aiServices.EmbeddingService)
	knowledge.SetPolicy(policy)
	knowledge.SetTelemetry(telemetry)

	intents := services.NewIntentService(aiServices.Classifier, registry, knowledge)
	intents.SetPolicy(policy)
	intents.SetTelemetry(telemetry)

	synth := services.NewSynthesizer()
	synth.SetPromptStore(prompts)

	voice := services.NewVoiceService(intents, knowledge, registry, synth)
	voice.SetPolicy(policy)
	voice.SetTelemetry(telemetry)

	schedulerConfig := settingsService.GetSchedulerConfig()
	tasks := store.SchedulerStore()
	scheduler := services.NewScheduler(schedulerConfig, tasks, knowledge, voice)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Voice:           voice,
		Knowledge:       knowledge,
		Importer:        services.NewImporter(knowledge, normalisers.Defaults(), chunker.New()),
		Actions:         registry,
		Settings:        settingsService,
		Config:          configStore,
		Tasks:           tasks,
		Scheduler:       scheduler,
		SchedulerConfig: schedulerConfig,
		Metrics:         telemetry.Handler(),
	})

	return cli.Execute(ctx)
}

// applyEnv fills provider secrets that are absent from the config file.
func applyEnv(settings *domain.AppSettings) {
	edgeURL := os.Getenv("VOICEOS_EDGE_URL")
	apiKey := os.Getenv("VOICEOS_API_KEY")
	openaiKey := os.Getenv("OPENAI_API_KEY")

	fill := func(provider domain.AIProvider, baseURL, key *string) {
		switch provider {
		case domain.AIProviderEdge:
			if *baseURL == "" {
				*baseURL = edgeURL
			}
			if *key == "" {
				*key = apiKey
			}
		case domain.AIProviderOpenAI:
			if *key == "" {
				*key = openaiKey
			}
		}
	}

	if settings.Classifier.Provider == "" {
		switch {
		case edgeURL != "" && apiKey != "":
			settings.Classifier.Provider = domain.AIProviderEdge
		case openaiKey != "":
			settings.Classifier.Provider = domain.AIProviderOpenAI
		}
	}
	fill(settings.Classifier.Provider, &settings.Classifier.BaseURL, &settings.Classifier.APIKey)
	fill(settings.Embedding.Provider, &settings.Embedding.BaseURL, &settings.Embedding.APIKey)
}
