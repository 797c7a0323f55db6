package intake_test

import (
	"context"
	"encoding/json"

	"github.com/SaurabhKalal/rag-chatbot/internal/intake"
	"github.com/SaurabhKalal/rag-chatbot/internal/models"
	"github.com/sashabaranov/go-openai"
)

// fakeCompleter returns canned completions in order, repeating the last one.
type fakeCompleter struct {
	responses []string
	err       error
	calls     int
}

func (f *fakeCompleter) SyncCompletion(_ context.Context, _ []openai.ChatCompletionMessage) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	idx := f.calls
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	f.calls++
	return f.responses[idx], nil
}

// memoryConversations keeps prompt histories in memory for tests.
type memoryConversations struct {
	messages map[string][]models.Message
}

func newMemoryConversations() *memoryConversations {
	return &memoryConversations{messages: map[string][]models.Message{}}
}

func (m *memoryConversations) key(sessionID string, kind models.Kind) string {
	return sessionID + "/" + string(kind)
}

func (m *memoryConversations) Append(
	_ context.Context, sessionID string, kind models.Kind, role models.Role, content string,
) error {
	k := m.key(sessionID, kind)
	m.messages[k] = append(m.messages[k], models.Message{Role: role, Content: content})
	return nil
}

func (m *memoryConversations) Recent(
	_ context.Context, sessionID string, kind models.Kind, limit int,
) ([]models.Message, error) {
	history := m.messages[m.key(sessionID, kind)]
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history, nil
}

// fakeClassifier returns a fixed classification.
type fakeClassifier struct {
	classification intake.Classification
	err            error
}

func (f *fakeClassifier) Classify(_ context.Context, _ string, _ string) (intake.Classification, error) {
	return f.classification, f.err
}

// fakeAnswerer echoes a canned general-legal answer.
type fakeAnswerer struct {
	answer string
	err    error
}

func (f *fakeAnswerer) Answer(_ context.Context, _ string, _ string) (string, error) {
	return f.answer, f.err
}

// fakeSolver records the submitted payload and returns a canned decision.
type fakeSolver struct {
	response json.RawMessage
	err      error
	payloads []any
}

func (f *fakeSolver) Solve(_ context.Context, payload any) (json.RawMessage, error) {
	f.payloads = append(f.payloads, payload)
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}
