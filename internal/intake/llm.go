package intake

import (
	"context"
	"fmt"
	"strings"

	"github.com/SaurabhKalal/rag-chatbot/internal/errors"
	"github.com/SaurabhKalal/rag-chatbot/internal/models"
	"github.com/sashabaranov/go-openai"
)

// Completer is the slice of the AI client the intake flow needs.
type Completer interface {
	SyncCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error)
}

// Conversations persists the per-session prompt histories.
type Conversations interface {
	Append(ctx context.Context, sessionID string, kind models.Kind, role models.Role, content string) error
	Recent(ctx context.Context, sessionID string, kind models.Kind, limit int) ([]models.Message, error)
}

// historyLimit bounds how much prior conversation each prompt sees.
const historyLimit = 10

// PromptRunner runs one prompt against the language model with the session's
// conversation history spliced in, and records both sides of the exchange.
type PromptRunner struct {
	completer     Completer
	conversations Conversations
}

func NewPromptRunner(completer Completer, conversations Conversations) *PromptRunner {
	return &PromptRunner{completer: completer, conversations: conversations}
}

func (r *PromptRunner) Run(
	ctx context.Context,
	sessionID string,
	kind models.Kind,
	systemPrompt string,
	input string,
) (string, error) {
	history, err := r.conversations.Recent(ctx, sessionID, kind, historyLimit)
	if err != nil {
		return "", errors.Wrap(err, "load conversation history")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: input,
	})

	content, err := r.completer.SyncCompletion(ctx, messages)
	if err != nil {
		return "", err
	}

	if err = r.conversations.Append(ctx, sessionID, kind, models.RoleUser, input); err != nil {
		return "", errors.Wrap(err, "record user message")
	}
	if err = r.conversations.Append(ctx, sessionID, kind, models.RoleAssistant, content); err != nil {
		return "", errors.Wrap(err, "record assistant message")
	}

	return content, nil
}

const caseDetectionPrompt = `You are a legal assistant for small claims court. Your job is to identify if the user's query is related to tenant security deposit issues.

Look for these specific keywords and phrases that indicate tenant security deposit cases:
- "security deposit", "deposit", "rental deposit"
- "landlord won't return", "landlord keeping", "get my deposit back"
- "tenant", "renter", "lease", "rental", "apartment"
- "move out", "end of lease", "withheld deposit"
- "damage charges", "cleaning fees", "deposit deduction"
- Combined mentions of rental/tenant AND money/deposit issues

ONLY respond with "TENANT_SECURITY_CASE" if the query clearly mentions:
- Being a tenant/renter AND having deposit issues, OR
- Specific mention of security deposit problems, OR
- Landlord not returning money/deposits

For all other legal questions (divorce, business, contracts, criminal law, etc.), provide helpful general legal advice.

Be very specific - only identify tenant security deposit cases, not general landlord-tenant issues.`

const generalLegalPrompt = `You are a helpful legal assistant for general legal questions. Provide helpful, informative responses about legal matters, but remind users that this is not legal advice and they should consult with a qualified attorney for specific legal guidance.

Be professional, knowledgeable, and helpful.`

func intentAnalysisPrompt(field Field, record Record) string {
	return fmt.Sprintf(`You are a legal assistant collecting specific information for a small claims case.

Current payload data: %s
Current question field: %s

Your job is to analyze the user's response and determine their intent/sentiment to extract the correct Yes/No answer.

For each field, analyze what the user REALLY means:

isTenant?: Determine if they are actually a tenant/renter. Respond "YES_INTENT" if they indicate they rent/lease property, "NO_INTENT" if they indicate they own the property, "UNCLEAR_INTENT" if you cannot determine their status.

isSecurity: Determine if they actually paid a security deposit. Respond "YES_INTENT" if they clearly paid a deposit, "NO_INTENT" if they clearly didn't pay a deposit, "UNCLEAR_INTENT" if you cannot determine.

inStateDefendant?: Determine if the landlord is in the same state. Respond "YES_INTENT" if clearly same state, "NO_INTENT" if clearly different states, "UNCLEAR_INTENT" if you cannot determine.

Only respond with one of: YES_INTENT, NO_INTENT, or UNCLEAR_INTENT
Do not provide explanations, just the intent classification.`, record.Snapshot(), field.PayloadKey())
}

// Intent is the three-way result of the fallback intent analysis.
type Intent int

const (
	IntentUnclear Intent = iota
	IntentYes
	IntentNo
)

// IntentAnalyzer resolves a Yes/No answer from a free-form utterance when
// explicit token matching finds nothing.
type IntentAnalyzer interface {
	AnalyzeIntent(ctx context.Context, sessionID string, field Field, record Record, utterance string) (Intent, error)
}

// LLMIntentAnalyzer asks the language model for one of the three intent tokens.
type LLMIntentAnalyzer struct {
	runner *PromptRunner
}

func NewLLMIntentAnalyzer(runner *PromptRunner) *LLMIntentAnalyzer {
	return &LLMIntentAnalyzer{runner: runner}
}

func (a *LLMIntentAnalyzer) AnalyzeIntent(
	ctx context.Context,
	sessionID string,
	field Field,
	record Record,
	utterance string,
) (Intent, error) {
	if !field.IsBool() {
		return IntentUnclear, nil
	}
	input := fmt.Sprintf("Question field: %s\nUser response: %s", field.PayloadKey(), utterance)
	content, err := a.runner.Run(ctx, sessionID, models.KindAnalysis, intentAnalysisPrompt(field, record), input)
	if err != nil {
		return IntentUnclear, err
	}
	normalized := strings.ToUpper(strings.TrimSpace(content))
	switch {
	case strings.Contains(normalized, "YES_INTENT"):
		return IntentYes, nil
	case strings.Contains(normalized, "NO_INTENT"):
		return IntentNo, nil
	default:
		return IntentUnclear, nil
	}
}

// Answerer produces the open-ended reply for general legal questions.
type Answerer interface {
	Answer(ctx context.Context, sessionID string, question string) (string, error)
}

// LLMAnswerer answers general legal questions with full conversation history.
type LLMAnswerer struct {
	runner *PromptRunner
}

func NewLLMAnswerer(runner *PromptRunner) *LLMAnswerer {
	return &LLMAnswerer{runner: runner}
}

func (a *LLMAnswerer) Answer(ctx context.Context, sessionID string, question string) (string, error) {
	return a.runner.Run(ctx, sessionID, models.KindGeneral, generalLegalPrompt, question)
}
