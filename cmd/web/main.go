package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/SaurabhKalal/rag-chatbot/internal/ai"
	"github.com/SaurabhKalal/rag-chatbot/internal/broker"
	"github.com/SaurabhKalal/rag-chatbot/internal/db"
	"github.com/SaurabhKalal/rag-chatbot/internal/decision"
	"github.com/SaurabhKalal/rag-chatbot/internal/envstruct"
	"github.com/SaurabhKalal/rag-chatbot/internal/errors"
	"github.com/SaurabhKalal/rag-chatbot/internal/intake"
	"github.com/SaurabhKalal/rag-chatbot/internal/knowledge"
	"github.com/SaurabhKalal/rag-chatbot/internal/logging"
	"github.com/SaurabhKalal/rag-chatbot/internal/pprofserver"
	"github.com/SaurabhKalal/rag-chatbot/internal/repositories"
	"github.com/SaurabhKalal/rag-chatbot/internal/scrape"
	"github.com/joho/godotenv"
)

type application struct {
	logger         *slog.Logger
	sessions       intake.Store
	machine        *intake.Machine
	answerer       *knowledge.Answerer
	pipeline       *knowledge.Pipeline
	scraper        *scrape.Scraper
	knowledgeStore *knowledge.Store
	progressBroker *broker.ChannelBroker[string, string]
}

type config struct {
	Addr           string `env:"LEGAL_RAG_ADDR" envDefault:"localhost:8000"`
	SqliteURL      string `env:"LEGAL_RAG_SQLITE_URL" envDefault:"./rag-chatbot.sqlite"`
	GroqAPIKey     string `env:"GROQ_API_KEY"`
	GroqBaseURL    string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	ChatModel      string `env:"LEGAL_RAG_CHAT_MODEL" envDefault:"llama3-70b-8192"`
	EmbeddingModel string `env:"LEGAL_RAG_EMBEDDING_MODEL" envDefault:"nomic-embed-text-v1_5"`
	DecisionAPIKey string `env:"DECISIONRULES_API_KEY"`
	DecisionBase   string `env:"DECISIONRULES_BASE_URL" envDefault:"https://api.decisionrules.io"`
	DecisionModel  string `env:"DECISIONRULES_MODEL_ID" envDefault:"d0ec0e76-8ccb-9b87-4e9c-7672cee0d427"`
	ChunkSize      int    `env:"LEGAL_RAG_CHUNK_SIZE" envDefault:"600"`
	ChunkOverlap   int    `env:"LEGAL_RAG_CHUNK_OVERLAP" envDefault:"50"`
	TopK           int    `env:"LEGAL_RAG_TOP_K" envDefault:"5"`
	ScrapeTimeout  int    `env:"LEGAL_RAG_SCRAPE_TIMEOUT_SECONDS" envDefault:"15"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	dbs, err := db.NewDB(cfg.SqliteURL)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer func() {
		if closeErr := dbs.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close database", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db", slog.String("url", cfg.SqliteURL))

	aiClient := ai.NewClient(ai.Config{
		APIKey:         cfg.GroqAPIKey,
		BaseURL:        cfg.GroqBaseURL,
		ChatModel:      cfg.ChatModel,
		EmbeddingModel: cfg.EmbeddingModel,
	})

	conversations := repositories.NewConversationRepository(dbs, logger)
	runner := intake.NewPromptRunner(&aiClient, conversations)
	solver := decision.NewClient(decision.Config{
		BaseURL: cfg.DecisionBase,
		APIKey:  cfg.DecisionAPIKey,
		ModelID: cfg.DecisionModel,
	}, logger)
	machine := intake.NewMachine(
		intake.NewClassifier(runner),
		intake.NewExtractor(intake.NewLLMIntentAnalyzer(runner)),
		intake.NewLLMAnswerer(runner),
		solver,
		logger,
	)

	knowledgeStore := knowledge.NewStore(dbs, logger)
	answerer := knowledge.NewAnswerer(&aiClient, &aiClient, knowledgeStore, conversations, cfg.TopK, logger)
	pipeline := knowledge.NewPipeline(&aiClient, knowledgeStore, cfg.ChunkSize, cfg.ChunkOverlap, logger)
	scraper := scrape.NewScraper(time.Duration(cfg.ScrapeTimeout)*time.Second, logger)

	progressBroker := broker.NewChannelBroker[string, string]()
	go progressBroker.Start()
	defer progressBroker.Stop()

	app := application{
		logger:         logger,
		sessions:       intake.NewMemoryStore(),
		machine:        machine,
		answerer:       answerer,
		pipeline:       pipeline,
		scraper:        scraper,
		knowledgeStore: knowledgeStore,
		progressBroker: progressBroker,
	}

	return app.configureAndStartServer(ctx, cfg.Addr)
}

func main() {
	loggerHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	})
	logger := slog.New(logging.NewContextHandler(loggerHandler))

	// Initialise pprof listening on localhost so that it's not open to the world.
	pprofPort, ok := os.LookupEnv("LEGAL_RAG_PPROF_PORT")
	if !ok {
		pprofPort = ":6060"
	}
	pprofserver.Launch(pprofPort, logger)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Error(err.Error())
		os.Exit(1)
	}

	if err := run(context.Background(), logger, os.LookupEnv); err != nil {
		logger.LogAttrs(context.Background(), slog.LevelError, "server failed", errors.SlogError(err))
		os.Exit(1)
	}
}
