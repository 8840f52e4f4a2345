// Package extract mines scammer message text for financial and contact
// indicators. Extraction is pure and total: any input string yields a
// well-formed record, never an error.
package extract

import (
	"regexp"
	"strings"

	"github.com/avee-h/scambait/internal/domain"
)

var (
	// UPI-style payment handles: local part of 2+ handle characters, then a
	// provider suffix of 2+ letters (e.g. "scammer@upi", "raj.k-99@okaxis").
	upiPattern = regexp.MustCompile(`\b[a-z0-9._-]{2,}@[a-z]{2,}\b`)

	// Indian mobile numbers: exactly 10 digits starting 6-9, optionally with
	// a +91 prefix. The leading (^|[^0-9]) stands in for a left word boundary
	// so numbers embedded in longer digit runs do not match; the inner group
	// captures the national number without the prefix.
	phonePattern = regexp.MustCompile(`(?:^|[^0-9])((?:\+91[\s-]?)?([6-9][0-9]{9}))\b`)

	// Bank account numbers: bare digit runs of 9-18 digits.
	accountPattern = regexp.MustCompile(`\b[0-9]{9,18}\b`)

	// IFSC codes: 4 letters, a literal zero, 6 alphanumerics.
	ifscPattern = regexp.MustCompile(`\b[A-Z]{4}0[A-Z0-9]{6}\b`)

	urlPattern = regexp.MustCompile(`https?://[^\s<>"{}|\\^` + "`" + `\[\]]+`)
)

// suspiciousKeywords is the fixed vocabulary checked by case-insensitive
// substring membership.
var suspiciousKeywords = []string{
	"urgent", "verify", "blocked", "suspended", "immediately",
	"kyc", "update", "expire", "lottery", "winner", "prize",
	"refund", "cashback", "otp", "pin", "password", "click",
	"link", "form", "bank", "account", "transfer",
}

// Extract returns every indicator found in text. Independent patterns may
// overlap (a phone number inside an account-length digit run fires both).
// Results are deduplicated in first-seen order.
func Extract(text string) domain.IntelligenceRecord {
	var rec domain.IntelligenceRecord
	if strings.TrimSpace(text) == "" {
		return rec
	}

	lower := strings.ToLower(text)

	rec.UPIIDs = dedupe(upiPattern.FindAllString(lower, -1))

	var phones []string
	for _, m := range phonePattern.FindAllStringSubmatch(text, -1) {
		phones = append(phones, m[2])
	}
	rec.PhoneNumbers = dedupe(phones)

	var accounts []string
	for _, m := range accountPattern.FindAllString(text, -1) {
		if isMobileNumber(m) {
			continue
		}
		accounts = append(accounts, m)
	}
	accounts = append(accounts, ifscPattern.FindAllString(strings.ToUpper(text), -1)...)
	rec.BankAccounts = dedupe(accounts)

	rec.PhishingLinks = dedupe(urlPattern.FindAllString(text, -1))

	for _, kw := range suspiciousKeywords {
		if strings.Contains(lower, kw) {
			rec.SuspiciousKeywords = append(rec.SuspiciousKeywords, kw)
		}
	}

	return rec
}

// isMobileNumber reports whether a digit run is shaped exactly like a
// mobile number; such runs belong to the phone field, not the account field.
func isMobileNumber(digits string) bool {
	return len(digits) == 10 && digits[0] >= '6' && digits[0] <= '9'
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
