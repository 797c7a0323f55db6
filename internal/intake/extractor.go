package intake

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// ExtractionMethod records which pass produced a value, so the state machine
// can word its confirmation accordingly.
type ExtractionMethod int

const (
	MethodNone ExtractionMethod = iota
	MethodExplicit
	MethodIntent
)

// Extractor turns a raw utterance into a typed answer for one field.
type Extractor struct {
	intents IntentAnalyzer
}

func NewExtractor(intents IntentAnalyzer) *Extractor {
	return &Extractor{intents: intents}
}

// Extract attempts to produce an answer for the field from the utterance.
// A MethodNone result with a nil error means the utterance was ambiguous and
// the caller should ask for clarification. An error means the fallback
// service failed; no value is produced and the turn should be retryable.
func (e *Extractor) Extract(
	ctx context.Context,
	sessionID string,
	field Field,
	record Record,
	utterance string,
) (Answer, ExtractionMethod, error) {
	if field.IsBool() {
		if yes, ok := extractYesNo(utterance); ok {
			return YesNo(yes), MethodExplicit, nil
		}
		intent, err := e.intents.AnalyzeIntent(ctx, sessionID, field, record, utterance)
		if err != nil {
			return Answer{}, MethodNone, err
		}
		switch intent {
		case IntentYes:
			return YesNo(true), MethodIntent, nil
		case IntentNo:
			return YesNo(false), MethodIntent, nil
		default:
			return Answer{}, MethodNone, nil
		}
	}

	if amount, ok := extractAmount(utterance); ok {
		return Amount(amount), MethodExplicit, nil
	}
	return Answer{}, MethodNone, nil
}

// extractYesNo finds an explicit yes/no token in the utterance. Only exact
// token equality counts: an utterance containing "yesterday" must not match
// "yes", so substring containment is deliberately rejected.
func extractYesNo(utterance string) (value bool, ok bool) {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(utterance)))
	for _, word := range words {
		if word == "yes" || word == "y" {
			return true, true
		}
	}
	for _, word := range words {
		if word == "no" || word == "n" {
			return false, true
		}
	}
	return false, false
}

var amountPattern = regexp.MustCompile(`-?\b\d+\.?\d*\b`)

// extractAmount pulls the first numeral out of the utterance after stripping
// currency noise. Zero and negative values fail extraction the same way as
// "no number found": both route to the clarification path.
func extractAmount(utterance string) (float64, bool) {
	cleaned := strings.NewReplacer("$", "", ",", "", "USD", "", "dollars", "").Replace(utterance)

	match := amountPattern.FindString(cleaned)
	if match == "" {
		return 0, false
	}
	amount, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	if amount <= 0 {
		return 0, false
	}
	return amount, true
}
