package intake

import "strconv"

// Field is one of the structured data points collected for a tenant
// security deposit case. The declaration order is the collection order.
type Field int

const (
	FieldIsTenant Field = iota
	FieldIsSecurity
	FieldInStateDefendant
	FieldClaimAmount

	fieldCount
)

// Fields lists the collected fields in collection order.
func Fields() []Field {
	return []Field{FieldIsTenant, FieldIsSecurity, FieldInStateDefendant, FieldClaimAmount}
}

// PayloadKey is the field's key in the rules-engine payload. The spellings,
// question marks included, are what the decision model expects.
func (f Field) PayloadKey() string {
	switch f {
	case FieldIsTenant:
		return "isTenant?"
	case FieldIsSecurity:
		return "isSecurity"
	case FieldInStateDefendant:
		return "inStateDefendant?"
	case FieldClaimAmount:
		return "ClaimAmount"
	default:
		return "unknown"
	}
}

func (f Field) String() string {
	switch f {
	case FieldIsTenant:
		return "isTenant"
	case FieldIsSecurity:
		return "isSecurity"
	case FieldInStateDefendant:
		return "inStateDefendant"
	case FieldClaimAmount:
		return "claimAmount"
	default:
		return "unknown"
	}
}

// IsBool reports whether the field takes a Yes/No answer rather than an amount.
func (f Field) IsBool() bool {
	return f != FieldClaimAmount
}

type answerKind int

const (
	answerUnset answerKind = iota
	answerYesNo
	answerAmount
)

// Answer is a tagged-optional field value. The zero value is unset, which is
// distinct from any valid answer so that "No" is never confused with "not
// answered yet".
type Answer struct {
	kind   answerKind
	yes    bool
	amount float64
}

// YesNo returns a boolean answer.
func YesNo(yes bool) Answer {
	return Answer{kind: answerYesNo, yes: yes}
}

// Amount returns a numeric claim-amount answer.
func Amount(amount float64) Answer {
	return Answer{kind: answerAmount, amount: amount}
}

// IsSet reports whether the answer holds a value.
func (a Answer) IsSet() bool {
	return a.kind != answerUnset
}

// Yes reports the boolean value and whether the answer is a boolean.
func (a Answer) Yes() (bool, bool) {
	return a.yes, a.kind == answerYesNo
}

// Amount reports the numeric value and whether the answer is an amount.
func (a Answer) Amount() (float64, bool) {
	return a.amount, a.kind == answerAmount
}

// payloadValue renders the answer the way the rules engine expects: "Yes"/"No"
// strings for booleans and a bare number for the amount, narrowed to an
// integer when it is whole.
func (a Answer) payloadValue() any {
	switch a.kind {
	case answerYesNo:
		if a.yes {
			return "Yes"
		}
		return "No"
	case answerAmount:
		if a.amount == float64(int64(a.amount)) {
			return int64(a.amount)
		}
		return a.amount
	default:
		return nil
	}
}

// displayValue renders the answer for confirmation messages.
func (a Answer) displayValue() string {
	switch v := a.payloadValue().(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Record holds the current answer for every field. It is a pure value:
// assignment copies it, so threading it through the state machine never
// aliases another session's state.
type Record struct {
	answers [fieldCount]Answer
}

// Get returns the current answer for the field.
func (r Record) Get(f Field) Answer {
	return r.answers[f]
}

// WithAnswer returns a copy of the record with the field filled in.
func (r Record) WithAnswer(f Field, a Answer) Record {
	r.answers[f] = a
	return r
}

// Complete reports whether every field holds a value.
func (r Record) Complete() bool {
	for _, f := range Fields() {
		if !r.answers[f].IsSet() {
			return false
		}
	}
	return true
}

// NextUnfilled returns the first unfilled field in collection order.
func (r Record) NextUnfilled() (Field, bool) {
	for _, f := range Fields() {
		if !r.answers[f].IsSet() {
			return f, true
		}
	}
	return 0, false
}

// DecisionPayload is the envelope the rules engine expects.
type DecisionPayload struct {
	Input map[string]any `json:"input"`
}

// Payload reshapes the record into the rules-engine envelope.
func (r Record) Payload() DecisionPayload {
	input := make(map[string]any, fieldCount)
	for _, f := range Fields() {
		input[f.PayloadKey()] = r.answers[f].payloadValue()
	}
	return DecisionPayload{Input: input}
}

// Snapshot renders the record the way the intent-analysis prompt presents it,
// with unfilled fields shown as "unanswered".
func (r Record) Snapshot() string {
	var b []byte
	for i, f := range Fields() {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, f.PayloadKey()...)
		b = append(b, ": "...)
		if a := r.answers[f]; a.IsSet() {
			b = append(b, a.displayValue()...)
		} else {
			b = append(b, "unanswered"...)
		}
	}
	return string(b)
}
