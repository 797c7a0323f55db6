package intake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SaurabhKalal/rag-chatbot/internal/errors"
)

// pronounMarkers pre-fills isTenant when the case-opening utterance speaks in
// the first person. The list and its substring-containment semantics are
// preserved from production behavior.
var pronounMarkers = []string{
	" i ", " me ", " my ", "i'", "i'm", "i am", "i've", "i pay", "i rent", "i live",
}

// Machine is the collection state machine. Turn is a pure function of
// (session, utterance): it returns the new session instead of mutating shared
// state, so a failed turn leaves the stored session exactly as it was.
type Machine struct {
	classifier CaseClassifier
	extractor  *Extractor
	answerer   Answerer
	solver     DecisionSolver
	logger     *slog.Logger
}

func NewMachine(
	classifier CaseClassifier,
	extractor *Extractor,
	answerer Answerer,
	solver DecisionSolver,
	logger *slog.Logger,
) *Machine {
	return &Machine{
		classifier: classifier,
		extractor:  extractor,
		answerer:   answerer,
		solver:     solver,
		logger:     logger.With("source", "intake.Machine"),
	}
}

// isResetSignal matches the whole utterance against the reset trigger
// phrases, case-insensitively.
func isResetSignal(utterance string) bool {
	switch strings.ToLower(strings.TrimSpace(utterance)) {
	case "start", "new case", "reset":
		return true
	}
	return false
}

// Turn processes one user utterance and returns the updated session and the
// reply. On error the returned session equals the input session, so retrying
// the same utterance is safe.
func (m *Machine) Turn(
	ctx context.Context,
	sessionID string,
	sess Session,
	utterance string,
) (Session, string, error) {
	if isResetSignal(utterance) {
		next := sess.reset()
		next.Started = true
		return next, greeting, nil
	}

	// Mid-collection turns go straight to field extraction.
	if sess.TenantCase && !sess.Record.Complete() {
		return m.collect(ctx, sessionID, sess, utterance)
	}

	// Run case detection when the case type is unresolved, or when the prior
	// case just completed and the user may be opening a new one.
	if !sess.CaseResolved || (sess.TenantCase && sess.Record.Complete()) {
		classification, err := m.classifier.Classify(ctx, sessionID, utterance)
		if err != nil {
			return sess, "", errors.Wrap(err, "classify case")
		}

		if classification.Outcome == OutcomeTenantSecurityCase {
			if sess.Record.Complete() {
				sess = sess.reset()
			}
			sess.TenantCase = true
			sess.CaseResolved = true

			intro := tenantCaseIntro
			if containsAny(strings.ToLower(utterance), pronounMarkers) {
				sess = sess.withAnswer(FieldIsTenant, YesNo(true))
				intro = tenantCaseIntroPronoun
			}
			next, _ := sess.Record.NextUnfilled()
			return sess, fmt.Sprintf("%s\n\n%s", intro, question(next)), nil
		}

		// The classifier's own response doubles as the general-legal answer.
		// Resolution is deferred while a record is mid-collection.
		if !sess.Record.Complete() {
			sess.CaseResolved = true
		}
		return sess, classification.Answer, nil
	}

	answer, err := m.answerer.Answer(ctx, sessionID, utterance)
	if err != nil {
		return sess, "", errors.Wrap(err, "answer general question")
	}
	return sess, answer, nil
}

func (m *Machine) collect(
	ctx context.Context,
	sessionID string,
	sess Session,
	utterance string,
) (Session, string, error) {
	field, ok := sess.Record.NextUnfilled()
	if !ok {
		// All data collected; remaining questions about the case are general.
		answer, err := m.answerer.Answer(ctx, sessionID, utterance)
		if err != nil {
			return sess, "", errors.Wrap(err, "answer general question")
		}
		return sess, answer, nil
	}

	value, method, err := m.extractor.Extract(ctx, sessionID, field, sess.Record, utterance)
	if err != nil {
		return sess, "", errors.Wrap(err, "extract field", slog.String("field", field.String()))
	}

	if method == MethodNone {
		sess = sess.withRetry(field)
		return sess, clarification(field, sess.RetryCount(field)), nil
	}

	sess = sess.withAnswer(field, value)

	var confirmation string
	switch {
	case field == FieldClaimAmount:
		confirmation = fmt.Sprintf("Perfect! I've recorded $%s as the claim amount.", value.displayValue())
	case method == MethodExplicit:
		confirmation = fmt.Sprintf("Perfect! I've recorded '%s' for %s.", value.displayValue(), field.PayloadKey())
	default:
		confirmation = fmt.Sprintf("Based on your response, I've recorded '%s' for %s.", value.displayValue(), field.PayloadKey())
	}

	if sess.Record.Complete() {
		return sess, fmt.Sprintf("%s\n%s", confirmation, m.submitRecord(ctx, sess.Record)), nil
	}

	next, _ := sess.Record.NextUnfilled()
	return sess, fmt.Sprintf("%s\n\n%s", confirmation, question(next)), nil
}

// submitRecord invokes the rules engine and formats the outcome. Failures are
// reported inline after the confirmation text: the record stays complete and
// intact, and the conversation always gets a reply.
func (m *Machine) submitRecord(ctx context.Context, record Record) string {
	raw, err := m.solver.Solve(ctx, record.Payload())
	if err != nil {
		m.logger.LogAttrs(ctx, slog.LevelError, "decision service call failed", errors.SlogError(err))
		return fmt.Sprintf("**API Error:** %s\n\n%s", err, decisionUnavailable)
	}
	return FormatDecision(raw)
}
