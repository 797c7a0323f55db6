package knowledge_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/SaurabhKalal/rag-chatbot/internal/knowledge"
	"github.com/SaurabhKalal/rag-chatbot/internal/models"
	"github.com/SaurabhKalal/rag-chatbot/internal/testhelpers"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder maps each text to a fixed vector, defaulting to unit-x.
type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := f.vectors[text]; ok {
			embeddings[i] = v
		} else {
			embeddings[i] = []float32{1, 0, 0}
		}
	}
	return embeddings, nil
}

// fakeCompleter records the prompt and returns a canned answer.
type fakeCompleter struct {
	answer   string
	messages []openai.ChatCompletionMessage
}

func (f *fakeCompleter) SyncCompletion(_ context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	f.messages = messages
	return f.answer, nil
}

// memoryConversations keeps per-session histories in memory.
type memoryConversations struct {
	messages map[string][]models.Message
}

func newMemoryConversations() *memoryConversations {
	return &memoryConversations{messages: map[string][]models.Message{}}
}

func (m *memoryConversations) Append(
	_ context.Context, sessionID string, kind models.Kind, role models.Role, content string,
) error {
	k := sessionID + "/" + string(kind)
	m.messages[k] = append(m.messages[k], models.Message{Role: role, Content: content})
	return nil
}

func (m *memoryConversations) Recent(
	_ context.Context, sessionID string, kind models.Kind, limit int,
) ([]models.Message, error) {
	history := m.messages[sessionID+"/"+string(kind)]
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history, nil
}

func TestAnswerer_answersFromNamespace(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	seedChunks(t, store)

	completer := &fakeCompleter{answer: "Deposits must come back within 21 days."}
	conversations := newMemoryConversations()
	answerer := knowledge.NewAnswerer(&fakeEmbedder{}, completer, store, conversations, 5,
		testhelpers.NewLogger(io.Discard))

	result, err := answerer.Answer(ctx, "ns-a", "When is the deposit returned?", false)
	require.NoError(t, err)

	assert.Equal(t, "Deposits must come back within 21 days.", result.Answer)
	require.Len(t, result.Sources, 2, "only the session's namespace is searched")

	// The system prompt carries the retrieved context and the strict refusal.
	require.NotEmpty(t, completer.messages)
	system := completer.messages[0]
	assert.Equal(t, openai.ChatMessageRoleSystem, system.Role)
	assert.Contains(t, system.Content, "deposits must be returned in 21 days")
	assert.Contains(t, system.Content, "I don't know based on the provided content.")
	assert.NotContains(t, system.Content, "small claims court handles disputes",
		"chunks from other namespaces must not leak into the prompt")

	// Question and answer land in the knowledge memory.
	history, err := conversations.Recent(ctx, "ns-a", models.KindKnowledge, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, models.RoleAssistant, history[1].Role)
}

func TestAnswerer_adminSearchesAllNamespaces(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	seedChunks(t, store)

	completer := &fakeCompleter{answer: "Across the knowledge base..."}
	conversations := newMemoryConversations()
	answerer := knowledge.NewAnswerer(&fakeEmbedder{}, completer, store, conversations, 5,
		testhelpers.NewLogger(io.Discard))

	result, err := answerer.Answer(ctx, "*", "What do we know?", true)
	require.NoError(t, err)

	assert.Len(t, result.Sources, 3, "admin search spans every namespace")
	system := completer.messages[0].Content
	assert.Contains(t, system, "[Source: ns-a]")
	assert.Contains(t, system, "[Source: ns-b]")

	// Admin queries leave no conversation memory behind.
	history, err := conversations.Recent(ctx, "*", models.KindKnowledge, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAnswerer_noKnowledge(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	completer := &fakeCompleter{answer: "should not be called"}
	answerer := knowledge.NewAnswerer(&fakeEmbedder{}, completer, store, newMemoryConversations(), 5,
		testhelpers.NewLogger(io.Discard))

	result, err := answerer.Answer(context.Background(), "empty-ns", "Anything?", false)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Answer, "I don't have any relevant information"))
	assert.Empty(t, result.Sources)
	assert.Empty(t, completer.messages, "no completion without retrieved context")
}

func TestAnswerer_includesConversationMemory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	seedChunks(t, store)

	conversations := newMemoryConversations()
	require.NoError(t, conversations.Append(ctx, "ns-a", models.KindKnowledge, models.RoleUser, "earlier question"))
	require.NoError(t, conversations.Append(ctx, "ns-a", models.KindKnowledge, models.RoleAssistant, "earlier answer"))

	completer := &fakeCompleter{answer: "a follow-up answer"}
	answerer := knowledge.NewAnswerer(&fakeEmbedder{}, completer, store, conversations, 5,
		testhelpers.NewLogger(io.Discard))

	_, err := answerer.Answer(ctx, "ns-a", "And then?", false)
	require.NoError(t, err)

	var contents []string
	for _, m := range completer.messages {
		contents = append(contents, m.Content)
	}
	assert.Contains(t, contents, "earlier question")
	assert.Contains(t, contents, "earlier answer")
	assert.Equal(t, "And then?", contents[len(contents)-1])
}
