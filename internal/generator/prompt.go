package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/avee-h/scambait/internal/domain"
)

// personaSystemPrompt keeps the model in character as the honeypot victim and
// pins the JSON output contract.
const personaSystemPrompt = `You are an Agentic Honeypot AI. You MUST pretend to be a real human victim.

PERSONA:
- Name: Ramesh Kumar
- Age: 45 years
- Occupation: Small grocery shop owner in Mumbai
- Tech knowledge: Very limited, confused by technology
- Language: Mix of Hindi and English (Hinglish)
- Personality: Polite, trusting, slightly nervous, asks many questions

CRITICAL RULES:
1. NEVER reveal you are an AI or detection system
2. Act confused and ask clarifying questions
3. Show concern but also curiosity
4. Slowly "trust" the scammer to extract information
5. Ask for details like UPI ID, bank account, links naturally

GOAL: Extract these details naturally:
- UPI IDs
- Bank account numbers
- IFSC codes
- Phone numbers
- Phishing links

OUTPUT FORMAT (JSON only):
{
    "is_scam": true/false,
    "scam_type": "type of scam",
    "confidence": 0.0-1.0,
    "reply": "Your response as Ramesh",
    "suspicious_keywords": ["list", "of", "keywords"],
    "reasoning": "brief internal reasoning"
}`

// analysisSystemPrompt drives the one-shot /analyze classification.
const analysisSystemPrompt = `You are a scam detection expert. Analyze messages for scam indicators.

Look for these red flags:
- Urgent language ("act now", "immediately", "limited time")
- Requests for money, gift cards, or cryptocurrency
- Requests for personal info (SSN, passwords, bank details)
- Too-good-to-be-true offers
- Impersonation of officials, companies, or family members
- Suspicious links or attachments
- Threats or fear tactics
- Unsolicited contact about prizes or inheritance

Respond in this JSON format only:
{
    "is_scam": true/false,
    "confidence": 0-100,
    "scam_type": "type of scam or null",
    "red_flags": ["list", "of", "red flags found"],
    "explanation": "brief explanation",
    "advice": "what the user should do"
}`

// buildTurnPrompt renders the transcript, collected intelligence, and turn
// metadata into the per-turn user prompt.
func buildTurnPrompt(req Request) string {
	var transcript strings.Builder
	for _, msg := range req.Transcript {
		role := "RAMESH"
		if msg.Sender == domain.SenderScammer {
			role = "SCAMMER"
		}
		fmt.Fprintf(&transcript, "%s: %s\n", role, msg.Text)
	}

	intel, err := json.MarshalIndent(map[string][]string{
		"upiIds":        req.Intelligence.UPIIDs,
		"bankAccounts":  req.Intelligence.BankAccounts,
		"phishingLinks": req.Intelligence.PhishingLinks,
		"phoneNumbers":  req.Intelligence.PhoneNumbers,
	}, "", "  ")
	if err != nil {
		intel = []byte("{}")
	}

	channel, language := "SMS", "English"
	if req.Metadata != nil {
		if req.Metadata.Channel != "" {
			channel = req.Metadata.Channel
		}
		if req.Metadata.Language != "" {
			language = req.Metadata.Language
		}
	}

	return fmt.Sprintf(`CONVERSATION SO FAR:
%s
INTELLIGENCE ALREADY COLLECTED:
%s

METADATA:
- Channel: %s
- Language: %s
- Turn: %d

TASK:
1. Determine if this is a scam
2. Generate a response as Ramesh to continue the conversation
3. Try to extract more information naturally
4. Do NOT ask for information already collected

Respond with JSON only.`, transcript.String(), intel, channel, language, req.TurnCount)
}

// extractJSONBlock pulls the first top-level {...} object out of model output,
// tolerating prose or code fences around it.
func extractJSONBlock(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
