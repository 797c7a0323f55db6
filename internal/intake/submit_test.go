package intake_test

import (
	"encoding/json"
	"testing"

	"github.com/SaurabhKalal/rag-chatbot/internal/intake"
	"github.com/stretchr/testify/assert"
)

func TestFormatDecision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		contains []string
	}{
		{
			name: "small claims with documents",
			raw:  `[{"output":{"routeTo":"Small Claims Court","documentList":["Lease Agreement","Deposit Receipt"]}}]`,
			contains: []string{
				"**Routed to: Small Claims Court**",
				"**Documents Needed:**\n- Lease Agreement\n- Deposit Receipt",
				"Always consult a qualified attorney",
			},
		},
		{
			name: "superior court",
			raw:  `[{"output":{"routeTo":"Superior Court","documentList":"NA"}}]`,
			contains: []string{
				"**Routed to: Superior Court**",
				"No documents required.",
			},
		},
		{
			name: "not applicable",
			raw:  `[{"output":{"routeTo":"Not Applicable","documentList":"NA"}}]`,
			contains: []string{
				"**Not applicable for filing in court**",
			},
		},
		{
			name: "unknown route passes through",
			raw:  `[{"output":{"routeTo":"Mediation","documentList":"NA"}}]`,
			contains: []string{
				"**Route:** Mediation",
			},
		},
		{
			name: "string document list passes through",
			raw:  `[{"output":{"routeTo":"Small Claims Court","documentList":"Lease Agreement"}}]`,
			contains: []string{
				"Documents: Lease Agreement",
			},
		},
		{
			name: "missing document list means no documents",
			raw:  `[{"output":{"routeTo":"Small Claims Court"}}]`,
			contains: []string{
				"**Routed to: Small Claims Court**",
				"No documents required.",
			},
		},
		{
			name: "null document list means no documents",
			raw:  `[{"output":{"routeTo":"Superior Court","documentList":null}}]`,
			contains: []string{
				"No documents required.",
			},
		},
		{
			name: "empty result falls back to raw JSON",
			raw:  `{"unexpected":"shape"}`,
			contains: []string{
				"```json",
				`{"unexpected":"shape"}`,
				"Always consult a qualified attorney",
			},
		},
		{
			name: "malformed JSON reports the raw response",
			raw:  `not json at all`,
			contains: []string{
				"Error formatting response:",
				"Raw response: not json at all",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := intake.FormatDecision(json.RawMessage(tt.raw))
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}
}
