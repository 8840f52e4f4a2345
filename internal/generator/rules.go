package generator

import (
	"context"
	"strings"
)

// RuleResponder is a deterministic keyword-routed responder. It serves as the
// whole generator when no upstream model is configured, and its replies keep
// the persona plausible without any NLP.
type RuleResponder struct{}

// NewRuleResponder creates a rule-based generator.
func NewRuleResponder() *RuleResponder {
	return &RuleResponder{}
}

// Generate never fails. It does not classify; scam detection is left to the
// extractor's indicators.
func (g *RuleResponder) Generate(_ context.Context, req Request) (*Result, error) {
	text := ""
	if len(req.Transcript) > 0 {
		text = req.Transcript[len(req.Transcript)-1].Text
	}
	return &Result{
		Reply:     RuleReply(text),
		Reasoning: "rule-based reply",
	}, nil
}

// RuleReply picks a canned in-persona reply based on what the scammer's
// message mentions.
func RuleReply(message string) string {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "bank") || strings.Contains(lower, "account"):
		return "I'm worried about sharing my bank details. Is this really safe?"
	case strings.Contains(lower, "upi") || strings.Contains(lower, "paytm") || strings.Contains(lower, "gpay"):
		return "I don't have UPI. Can I send money another way?"
	case strings.Contains(lower, "urgent") || strings.Contains(lower, "immediately"):
		return "Why is this so urgent? I need time to think about this."
	case strings.Contains(lower, "otp") || strings.Contains(lower, "code"):
		return "I received a code but I'm not sure if I should share it. What is it for?"
	case strings.Contains(lower, "link") || strings.Contains(lower, "click"):
		return "This link looks suspicious. Are you sure it's safe?"
	case strings.Contains(lower, "money") || strings.Contains(lower, "transfer") || strings.Contains(lower, "send"):
		return "How much money do I need to send? This seems like a lot."
	case strings.Contains(lower, "verify") || strings.Contains(lower, "confirm"):
		return "What exactly are you trying to verify? I'm confused."
	default:
		return "I'm not sure I understand. Can you explain this again?"
	}
}

// Analyze gives a heuristic one-shot verdict from keyword evidence alone.
func (g *RuleResponder) Analyze(_ context.Context, message string) (*Analysis, error) {
	lower := strings.ToLower(message)

	flags := []string{}
	for _, kw := range []string{"urgent", "otp", "password", "verify", "lottery", "prize", "blocked", "suspended", "click"} {
		if strings.Contains(lower, kw) {
			flags = append(flags, kw)
		}
	}

	if len(flags) == 0 {
		return &Analysis{
			IsScam:      false,
			Confidence:  40,
			RedFlags:    flags,
			Explanation: "No common scam markers found.",
			Advice:      "Stay cautious; do not share personal or financial details.",
		}, nil
	}

	return &Analysis{
		IsScam:      true,
		Confidence:  50 + 10*min(len(flags), 4),
		ScamType:    "unknown",
		RedFlags:    flags,
		Explanation: "Message contains common scam pressure markers.",
		Advice:      "Do not respond, click links, or share codes. Report the sender.",
	}, nil
}
