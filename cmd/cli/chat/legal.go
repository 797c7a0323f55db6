package chat

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/SaurabhKalal/rag-chatbot/internal/ai"
	"github.com/SaurabhKalal/rag-chatbot/internal/db"
	"github.com/SaurabhKalal/rag-chatbot/internal/decision"
	"github.com/SaurabhKalal/rag-chatbot/internal/intake"
	"github.com/SaurabhKalal/rag-chatbot/internal/repositories"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "chat",
	Title: "Chat operations",
}

var Legal = &cobra.Command{
	Use:     "legal",
	GroupID: "chat",
	Short:   "Interactive legal assistant",
	Long:    `Starts an interactive console session with the legal intake assistant`,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := runREPL(cmd.Context()); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func runREPL(ctx context.Context) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	dbs, err := db.NewDB(":memory:")
	if err != nil {
		return err
	}
	defer func() {
		_ = dbs.Close()
	}()

	aiClient := ai.NewClient(ai.Config{
		APIKey:  os.Getenv("GROQ_API_KEY"),
		BaseURL: os.Getenv("GROQ_BASE_URL"),
	})
	conversations := repositories.NewConversationRepository(dbs, logger)
	runner := intake.NewPromptRunner(&aiClient, conversations)
	solver := decision.NewClient(decision.Config{
		BaseURL: os.Getenv("DECISIONRULES_BASE_URL"),
		APIKey:  os.Getenv("DECISIONRULES_API_KEY"),
		ModelID: os.Getenv("DECISIONRULES_MODEL_ID"),
	}, logger)
	machine := intake.NewMachine(
		intake.NewClassifier(runner),
		intake.NewExtractor(intake.NewLLMIntentAnalyzer(runner)),
		intake.NewLLMAnswerer(runner),
		solver,
		logger,
	)

	sessionID := uuid.NewString()
	sessions := intake.NewMemoryStore()

	sess := sessions.GetOrCreate(sessionID)
	sess, reply, err := machine.Turn(ctx, sessionID, sess, "start")
	if err != nil {
		return err
	}
	sessions.Put(sessionID, sess)
	fmt.Printf("Assistant: %s\n\n", reply)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		switch strings.ToLower(input) {
		case "exit", "quit":
			fmt.Println("Assistant: Goodbye! Take care.")
			return nil
		}

		sess = sessions.GetOrCreate(sessionID)
		next, reply, turnErr := machine.Turn(ctx, sessionID, sess, input)
		if turnErr != nil {
			fmt.Printf("Assistant: Sorry, something went wrong: %v\n\n", turnErr)
			continue
		}
		sessions.Put(sessionID, next)
		fmt.Printf("Assistant: %s\n\n", reply)
	}
	return scanner.Err()
}
