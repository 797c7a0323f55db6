package intake

import (
	"context"
	"strings"

	"github.com/SaurabhKalal/rag-chatbot/internal/models"
)

// Outcome tags a Classification result.
type Outcome int

const (
	// OutcomeTenantSecurityCase means the utterance opens a tenant security
	// deposit intake.
	OutcomeTenantSecurityCase Outcome = iota
	// OutcomeGeneralAnswer means the utterance is a general legal question;
	// Answer carries the reply produced while classifying.
	OutcomeGeneralAnswer
)

// Classification is the tagged result of case detection. The two variants are
// mutually exclusive: either a tenant-security case was detected, or the
// classifier's own response doubles as the general-legal answer.
type Classification struct {
	Outcome Outcome
	Answer  string
}

// CaseClassifier decides whether an utterance starts a tenant security
// deposit case.
type CaseClassifier interface {
	Classify(ctx context.Context, sessionID string, utterance string) (Classification, error)
}

// The keyword vocabularies for the lexical gate. Conjunctive keyword evidence
// is treated as conclusive so that obvious cases never pay for a model call.
var (
	tenantKeywords  = []string{"tenant", "renter", "lease", "rental", "apartment", "landlord"}
	depositKeywords = []string{"deposit", "security deposit", "money back", "return", "refund", "withheld", "keeping"}
)

// Classifier detects tenant security deposit cases with a keyword gate and a
// language-model fallback.
type Classifier struct {
	runner *PromptRunner
}

func NewClassifier(runner *PromptRunner) *Classifier {
	return &Classifier{runner: runner}
}

func (c *Classifier) Classify(ctx context.Context, sessionID string, utterance string) (Classification, error) {
	lower := strings.ToLower(utterance)

	if containsAny(lower, tenantKeywords) && containsAny(lower, depositKeywords) {
		return Classification{Outcome: OutcomeTenantSecurityCase}, nil
	}

	content, err := c.runner.Run(ctx, sessionID, models.KindDetection, caseDetectionPrompt, utterance)
	if err != nil {
		return Classification{}, err
	}
	if strings.Contains(content, "TENANT_SECURITY_CASE") {
		return Classification{Outcome: OutcomeTenantSecurityCase}, nil
	}
	return Classification{Outcome: OutcomeGeneralAnswer, Answer: content}, nil
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
