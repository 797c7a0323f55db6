package knowledge_test

import (
	"testing"

	"github.com/SaurabhKalal/rag-chatbot/internal/knowledge"
	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips scraper metadata lines",
			in:   "Title: Tenant Rights\nURL: https://example.com\n====\nDeposits must be returned.",
			want: "Deposits must be returned.",
		},
		{
			name: "collapses whitespace runs",
			in:   "deposits\n\n\nmust   be\t\treturned",
			want: "deposits must be returned",
		},
		{
			name: "drops bracketed text",
			in:   "Deposits [citation needed] must be returned.",
			want: "Deposits  must be returned.",
		},
		{
			name: "drops copyright notices",
			in:   "Deposits must be returned. © 2024 Example Corp. All rights reserved. Contact us.",
			want: "Deposits must be returned. 2024 Example Corp. Contact us.",
		},
		{
			name: "normalizes typographic characters",
			in:   "“Don’t” — keep the deposit…",
			want: `"Don't" -- keep the deposit...`,
		},
		{
			name: "empty after cleaning",
			in:   "Title: only metadata\n====\n",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, knowledge.CleanText(tt.in))
		})
	}
}
