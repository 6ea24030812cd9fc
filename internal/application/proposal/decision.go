package proposal

import "strings"

// Decision is the reading of a free-text reply while a proposal is open.
type Decision int

const (
	Unrecognized Decision = iota
	Approve
	Reject
)

func (d Decision) String() string {
	switch d {
	case Approve:
		return "approve"
	case Reject:
		return "reject"
	default:
		return "unrecognized"
	}
}

// Tokens are the words accepted as a decision.
type Tokens struct {
	Approve []string
	Reject  []string
}

// Classify maps a reply onto a decision. Matching is whole-message, trimmed
// and case-insensitive; anything else is Unrecognized so the reply can go on
// to the conversation.
func Classify(text string, tokens Tokens) Decision {
	text = strings.TrimSpace(text)
	if text == "" {
		return Unrecognized
	}
	for _, w := range tokens.Approve {
		if strings.EqualFold(text, strings.TrimSpace(w)) {
			return Approve
		}
	}
	for _, w := range tokens.Reject {
		if strings.EqualFold(text, strings.TrimSpace(w)) {
			return Reject
		}
	}
	return Unrecognized
}
