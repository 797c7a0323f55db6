package intake

// The user-facing texts below follow the production wording of the legal
// assistant: one question per field plus a two-tier clarification, where the
// second tier is stricter about the expected format.

const greeting = "Hello! I'm your legal assistant. How can I help you today? " +
	"I can assist with general legal questions or help you gather information for tenant security deposit cases."

const tenantCaseIntro = "I understand you have a tenant security deposit issue. " +
	"I'll help you gather the necessary information for your case."

const tenantCaseIntroPronoun = "I understand you have a tenant security deposit issue. " +
	"I've marked you as a tenant based on your message."

const decisionUnavailable = "I've collected all your information, but there was an issue connecting " +
	"to the legal analysis service. Please try again later."

const disclaimer = "_This is an automated legal analysis. Always consult a qualified attorney for advice._"

const fallbackClarification = "I didn't understand your response. Please provide a proper answer in the format I requested."

// question returns the prompt asked when the field becomes the current one.
func question(f Field) string {
	switch f {
	case FieldIsTenant:
		return "First, I need to confirm: Are you a tenant (renter) in this situation? Please answer 'Yes' or 'No'."
	case FieldIsSecurity:
		return "Did you pay a security deposit when you moved into this rental property? Please answer 'Yes' or 'No'."
	case FieldInStateDefendant:
		return "Is the landlord or property owner located in the same state as you? Please answer 'Yes' or 'No'."
	case FieldClaimAmount:
		return "What is the total dollar amount you want to claim? Please provide a specific number (for example: 1500 or $2,000)."
	default:
		return ""
	}
}

// clarification returns the escalating re-prompt for a failed extraction.
// The first failure restates the question politely; every subsequent failure
// demands the exact format.
func clarification(f Field, retryCount int) string {
	first := retryCount == 1
	switch f {
	case FieldIsTenant:
		if first {
			return "I need a clear and proper answer. Are you currently a tenant (renter) in this situation? " +
				"Please respond with either 'Yes' or 'No' only. If you explain your situation, I can understand it, " +
				"but I need a definitive yes or no answer."
		}
		return "Let me rephrase: Do you rent this property from a landlord? Please answer only 'Yes' if you " +
			"rent/lease the property, or 'No' if you own the property. I need this exact format to proceed."
	case FieldIsSecurity:
		if first {
			return "I need a clear and proper answer. Did you pay a security deposit when you moved in? " +
				"Please respond with either 'Yes' or 'No' only. You can explain the details, but I need a " +
				"definitive yes or no answer."
		}
		return "To clarify: When you first moved into this rental, did you pay any money upfront as a " +
			"'security deposit' or 'damage deposit'? Please answer only 'Yes' if you paid a deposit, or 'No' " +
			"if you didn't. I need this exact format."
	case FieldInStateDefendant:
		if first {
			return "I need a clear and proper answer. Is the defendant (landlord/property owner) located in the " +
				"same state as you? Please respond with either 'Yes' or 'No' only. You can provide details, but " +
				"I need a definitive yes or no answer."
		}
		return "To clarify: Do you and your landlord both live in the same U.S. state? Please answer only 'Yes' " +
			"if same state, or 'No' if different states. I need this exact format to proceed."
	case FieldClaimAmount:
		if first {
			return "I need a specific dollar amount for your claim. Please provide the amount as a number " +
				"(for example: 1500 or $1,500). Give me a proper numerical value."
		}
		return "Please provide only the dollar amount you want to claim as a number. For example, if you want " +
			"$2,000 back, just type '2000' or '$2000'. I need a proper numerical value."
	default:
		return fallbackClarification
	}
}
