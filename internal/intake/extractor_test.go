package intake_test

import (
	"context"
	"testing"

	"github.com/SaurabhKalal/rag-chatbot/internal/errors"
	"github.com/SaurabhKalal/rag-chatbot/internal/intake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIntentAnalyzer returns a canned intent and records whether it was called.
type fakeIntentAnalyzer struct {
	intent intake.Intent
	err    error
	called bool
}

func (f *fakeIntentAnalyzer) AnalyzeIntent(
	_ context.Context, _ string, _ intake.Field, _ intake.Record, _ string,
) (intake.Intent, error) {
	f.called = true
	return f.intent, f.err
}

func TestExtractor_yesNo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		utterance  string
		wantYes    bool
		wantMethod intake.ExtractionMethod
	}{
		{name: "bare yes", utterance: "yes", wantYes: true, wantMethod: intake.MethodExplicit},
		{name: "uppercase", utterance: "YES", wantYes: true, wantMethod: intake.MethodExplicit},
		{name: "short y", utterance: "y", wantYes: true, wantMethod: intake.MethodExplicit},
		{name: "bare no", utterance: "no", wantYes: false, wantMethod: intake.MethodExplicit},
		{name: "short n", utterance: "n", wantYes: false, wantMethod: intake.MethodExplicit},
		{name: "yes in sentence", utterance: "well yes I did", wantYes: true, wantMethod: intake.MethodExplicit},
		{name: "yes wins over no", utterance: "no wait yes", wantYes: true, wantMethod: intake.MethodExplicit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			analyzer := &fakeIntentAnalyzer{intent: intake.IntentUnclear}
			extractor := intake.NewExtractor(analyzer)

			answer, method, err := extractor.Extract(
				context.Background(), "s1", intake.FieldIsTenant, intake.Record{}, tt.utterance)
			require.NoError(t, err)

			assert.Equal(t, tt.wantMethod, method)
			yes, isBool := answer.Yes()
			require.True(t, isBool)
			assert.Equal(t, tt.wantYes, yes)
			assert.False(t, analyzer.called, "explicit token should not reach the intent analyzer")
		})
	}
}

func TestExtractor_yesNoSubstringRejected(t *testing.T) {
	t.Parallel()

	// "yesterday" contains "yes" but is not an answer; the ambiguity goes to
	// the intent analyzer instead.
	analyzer := &fakeIntentAnalyzer{intent: intake.IntentUnclear}
	extractor := intake.NewExtractor(analyzer)

	answer, method, err := extractor.Extract(
		context.Background(), "s1", intake.FieldIsTenant, intake.Record{}, "yesterday was fine")
	require.NoError(t, err)

	assert.Equal(t, intake.MethodNone, method)
	assert.False(t, answer.IsSet())
	assert.True(t, analyzer.called)
}

func TestExtractor_intentFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		intent  intake.Intent
		wantSet bool
		wantYes bool
	}{
		{name: "affirmative intent", intent: intake.IntentYes, wantSet: true, wantYes: true},
		{name: "negative intent", intent: intake.IntentNo, wantSet: true, wantYes: false},
		{name: "unclear intent", intent: intake.IntentUnclear, wantSet: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			analyzer := &fakeIntentAnalyzer{intent: tt.intent}
			extractor := intake.NewExtractor(analyzer)

			answer, method, err := extractor.Extract(
				context.Background(), "s1", intake.FieldIsSecurity, intake.Record{},
				"I gave the landlord money when I moved in")
			require.NoError(t, err)

			if !tt.wantSet {
				assert.Equal(t, intake.MethodNone, method)
				assert.False(t, answer.IsSet())
				return
			}
			assert.Equal(t, intake.MethodIntent, method)
			yes, isBool := answer.Yes()
			require.True(t, isBool)
			assert.Equal(t, tt.wantYes, yes)
		})
	}
}

func TestExtractor_intentFallbackError(t *testing.T) {
	t.Parallel()

	analyzer := &fakeIntentAnalyzer{err: errors.New("model unavailable")}
	extractor := intake.NewExtractor(analyzer)

	_, method, err := extractor.Extract(
		context.Background(), "s1", intake.FieldIsTenant, intake.Record{}, "it's complicated")
	assert.Error(t, err)
	assert.Equal(t, intake.MethodNone, method)
}

func TestExtractor_amount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		utterance string
		want      float64
		wantOK    bool
	}{
		{name: "bare number", utterance: "1500", want: 1500, wantOK: true},
		{name: "dollar sign and comma", utterance: "$1,500", want: 1500, wantOK: true},
		{name: "decimal", utterance: "1500.00", want: 1500, wantOK: true},
		{name: "with dollars word", utterance: "1500 dollars", want: 1500, wantOK: true},
		{name: "embedded in sentence", utterance: "I want $2,000 back", want: 2000, wantOK: true},
		{name: "fractional", utterance: "850.75", want: 850.75, wantOK: true},
		{name: "zero rejected", utterance: "0", wantOK: false},
		{name: "negative rejected", utterance: "-50", wantOK: false},
		{name: "no number", utterance: "a lot of money", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			analyzer := &fakeIntentAnalyzer{intent: intake.IntentUnclear}
			extractor := intake.NewExtractor(analyzer)

			answer, method, err := extractor.Extract(
				context.Background(), "s1", intake.FieldClaimAmount, intake.Record{}, tt.utterance)
			require.NoError(t, err)

			if !tt.wantOK {
				assert.Equal(t, intake.MethodNone, method)
				assert.False(t, answer.IsSet())
				return
			}
			assert.Equal(t, intake.MethodExplicit, method)
			amount, isAmount := answer.Amount()
			require.True(t, isAmount)
			assert.InDelta(t, tt.want, amount, 0.0001)
			assert.False(t, analyzer.called, "amount fields never consult the intent analyzer")
		})
	}
}
