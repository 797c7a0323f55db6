package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SaurabhKalal/rag-chatbot/internal/errors"
	"github.com/SaurabhKalal/rag-chatbot/internal/models"
	"github.com/sashabaranov/go-openai"
)

// Embedder is the slice of the AI client used to embed queries and chunks.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer is the slice of the AI client used for the answer completion.
type Completer interface {
	SyncCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error)
}

// Conversations persists the question/answer memory per session.
type Conversations interface {
	Append(ctx context.Context, sessionID string, kind models.Kind, role models.Role, content string) error
	Recent(ctx context.Context, sessionID string, kind models.Kind, limit int) ([]models.Message, error)
}

const (
	// memoryLimit bounds the chat history spliced into the answer prompt.
	memoryLimit = 5
	// adminTopK caps the results of a cross-namespace search.
	adminTopK = 10
)

const noKnowledgeAnswer = "I don't have any relevant information to answer your question. " +
	"Please make sure documents have been processed and indexed."

// Result is a grounded answer with the retrieved context that produced it.
type Result struct {
	Answer  string
	Sources []string
}

// Answerer performs retrieval-augmented answering over the chunk store.
type Answerer struct {
	embedder      Embedder
	completer     Completer
	store         *Store
	conversations Conversations
	topK          int
	logger        *slog.Logger
}

func NewAnswerer(
	embedder Embedder,
	completer Completer,
	store *Store,
	conversations Conversations,
	topK int,
	logger *slog.Logger,
) *Answerer {
	return &Answerer{
		embedder:      embedder,
		completer:     completer,
		store:         store,
		conversations: conversations,
		topK:          topK,
		logger:        logger.With("source", "knowledge.Answerer"),
	}
}

// Answer retrieves the most relevant chunks and answers strictly from them.
// Admin queries search across all namespaces; regular queries stay inside the
// session's namespace and carry conversation memory.
func (a *Answerer) Answer(ctx context.Context, sessionID, question string, admin bool) (Result, error) {
	embeddings, err := a.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return Result{}, errors.Wrap(err, "embed question")
	}
	query := embeddings[0]

	var scored []Scored
	if admin {
		scored, err = a.store.SearchAll(ctx, query, adminTopK)
	} else {
		scored, err = a.store.Search(ctx, sessionID, query, a.topK)
	}
	if err != nil {
		return Result{}, errors.Wrap(err, "search chunks")
	}
	if len(scored) == 0 {
		return Result{Answer: noKnowledgeAnswer}, nil
	}

	sources := make([]string, len(scored))
	contextParts := make([]string, len(scored))
	for i, s := range scored {
		sources[i] = s.Content
		if admin {
			contextParts[i] = fmt.Sprintf("[Source: %s] %s", s.Namespace, s.Content)
		} else {
			contextParts[i] = s.Content
		}
	}

	messages := []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleSystem,
		Content: answerPrompt(strings.Join(contextParts, "\n\n"), admin),
	}}

	if !admin {
		var history []models.Message
		if history, err = a.conversations.Recent(ctx, sessionID, models.KindKnowledge, memoryLimit); err != nil {
			return Result{}, errors.Wrap(err, "load conversation memory")
		}
		for _, m := range history {
			role := openai.ChatMessageRoleUser
			if m.Role == models.RoleAssistant {
				role = openai.ChatMessageRoleAssistant
			}
			messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
		}
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: question,
	})

	answer, err := a.completer.SyncCompletion(ctx, messages)
	if err != nil {
		return Result{}, errors.Wrap(err, "complete answer")
	}

	if !admin {
		if err = a.conversations.Append(ctx, sessionID, models.KindKnowledge, models.RoleUser, question); err != nil {
			return Result{}, errors.Wrap(err, "record question")
		}
		if err = a.conversations.Append(ctx, sessionID, models.KindKnowledge, models.RoleAssistant, answer); err != nil {
			return Result{}, errors.Wrap(err, "record answer")
		}
	}

	return Result{Answer: answer, Sources: sources}, nil
}

func answerPrompt(contextText string, admin bool) string {
	if admin {
		return fmt.Sprintf(`You are an AI assistant with global access to all processed documents across the entire knowledge base.
Use the CONTEXT below to answer questions. The context comes from multiple different sources and sessions.
Each piece of context is labeled with its source namespace for reference.

CONTEXT:
%s`, contextText)
	}
	return fmt.Sprintf(`You are a strict AI assistant. Use ONLY the below CONTEXT to answer.
Always double-check that the answer exists explicitly in the context before responding.
If the answer is not in the context, say exactly: "I don't know based on the provided content."

CONTEXT:
%s`, contextText)
}
