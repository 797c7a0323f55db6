package ai

import (
	"context"

	"github.com/SaurabhKalal/rag-chatbot/internal/errors"
	"github.com/sashabaranov/go-openai"
)

// Config points the client at an OpenAI-compatible completion endpoint.
// Groq serves the OpenAI wire format, so the default base URL targets it.
type Config struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
}

const (
	DefaultBaseURL        = "https://api.groq.com/openai/v1"
	DefaultChatModel      = "llama3-70b-8192"
	DefaultEmbeddingModel = "nomic-embed-text-v1_5"
)

const MaxTokens = 4096

// Client wraps the OpenAI-compatible API used for chat completions and embeddings.
type Client struct {
	client         *openai.Client
	chatModel      string
	embeddingModel string
}

func NewClient(cfg Config) Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	return Client{
		client:         openai.NewClientWithConfig(clientConfig),
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
	}
}

// SyncCompletion sends the messages to the chat model and returns the first choice's content.
func (c *Client) SyncCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	completion, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:     c.chatModel,
			MaxTokens: MaxTokens,
			Messages:  messages,
		},
	)
	if err != nil {
		return "", errors.Wrap(err, "create chat completion")
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

// EmbedTexts returns one embedding vector per input text.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.client.CreateEmbeddings(
		ctx,
		openai.EmbeddingRequest{ //nolint:exhaustruct // this is better for readability
			Input: texts,
			Model: openai.EmbeddingModel(c.embeddingModel),
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "create embeddings")
	}
	if len(resp.Data) != len(texts) {
		return nil, errors.New("embedding count does not match input count")
	}
	embeddings := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		embeddings[i] = d.Embedding
	}
	return embeddings, nil
}
