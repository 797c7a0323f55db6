package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// DecisionSolver invokes the external rules-evaluation service.
type DecisionSolver interface {
	Solve(ctx context.Context, payload any) (json.RawMessage, error)
}

// FormatDecision renders the rules-engine response for the user: a route
// line, the required documents, and the attorney disclaimer. A malformed
// response degrades to a raw display instead of failing the turn.
func FormatDecision(raw json.RawMessage) string {
	if !json.Valid(raw) {
		return fmt.Sprintf("Error formatting response: invalid JSON\n\nRaw response: %s", raw)
	}
	var results []struct {
		Output map[string]any `json:"output"`
	}
	if err := json.Unmarshal(raw, &results); err != nil || len(results) == 0 {
		// Valid JSON in an unexpected shape gets shown raw.
		return rawDecisionFallback(raw)
	}
	output := results[0].Output

	route, _ := output["routeTo"].(string)
	var routeLine string
	switch route {
	case "Superior Court":
		routeLine = "**Routed to: Superior Court**"
	case "Small Claims Court":
		routeLine = "**Routed to: Small Claims Court**"
	case "Not Applicable":
		routeLine = "**Not applicable for filing in court**"
	default:
		routeLine = fmt.Sprintf("**Route:** %s", route)
	}

	// A missing documentList means no documents, same as an explicit "NA".
	docList, ok := output["documentList"]
	if !ok || docList == nil {
		docList = "NA"
	}
	var docsLine string
	switch docs := docList.(type) {
	case string:
		if docs == "NA" {
			docsLine = "No documents required."
		} else {
			docsLine = fmt.Sprintf("Documents: %s", docs)
		}
	case []any:
		var b strings.Builder
		b.WriteString("**Documents Needed:**")
		for _, doc := range docs {
			b.WriteString(fmt.Sprintf("\n- %v", doc))
		}
		docsLine = b.String()
	default:
		docsLine = fmt.Sprintf("Documents: %v", docs)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", routeLine, docsLine, disclaimer)
}

func rawDecisionFallback(raw json.RawMessage) string {
	return fmt.Sprintf("```json\n%s\n```\n\n%s", raw, disclaimer)
}
