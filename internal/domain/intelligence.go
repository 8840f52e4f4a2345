// Package domain defines the core types for honeypot sessions and
// the intelligence extracted from scammer conversations.
package domain

// IntelligenceRecord accumulates financial and contact indicators for one
// session. Each field is a set: no duplicates, first-seen order preserved
// so serialized output stays deterministic.
type IntelligenceRecord struct {
	BankAccounts       []string `json:"bankAccounts"`
	UPIIDs             []string `json:"upiIds"`
	PhishingLinks      []string `json:"phishingLinks"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

// Merge folds incoming indicators into r by per-field set union.
// No field ever shrinks; merging is idempotent and commutative up to
// element order. Returns true if any field gained a new entry.
func (r *IntelligenceRecord) Merge(in IntelligenceRecord) bool {
	changed := false
	changed = unionInto(&r.BankAccounts, in.BankAccounts) || changed
	changed = unionInto(&r.UPIIDs, in.UPIIDs) || changed
	changed = unionInto(&r.PhishingLinks, in.PhishingLinks) || changed
	changed = unionInto(&r.PhoneNumbers, in.PhoneNumbers) || changed
	changed = unionInto(&r.SuspiciousKeywords, in.SuspiciousKeywords) || changed
	return changed
}

// IsEmpty reports whether no indicator of any kind has been collected.
func (r *IntelligenceRecord) IsEmpty() bool {
	return len(r.BankAccounts) == 0 &&
		len(r.UPIIDs) == 0 &&
		len(r.PhishingLinks) == 0 &&
		len(r.PhoneNumbers) == 0 &&
		len(r.SuspiciousKeywords) == 0
}

// Clone returns a deep copy so callers can snapshot a record without
// racing against later merges.
func (r *IntelligenceRecord) Clone() IntelligenceRecord {
	return IntelligenceRecord{
		BankAccounts:       cloneSlice(r.BankAccounts),
		UPIIDs:             cloneSlice(r.UPIIDs),
		PhishingLinks:      cloneSlice(r.PhishingLinks),
		PhoneNumbers:       cloneSlice(r.PhoneNumbers),
		SuspiciousKeywords: cloneSlice(r.SuspiciousKeywords),
	}
}

func unionInto(dst *[]string, src []string) bool {
	if len(src) == 0 {
		return false
	}
	seen := make(map[string]struct{}, len(*dst))
	for _, v := range *dst {
		seen[v] = struct{}{}
	}
	changed := false
	for _, v := range src {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		*dst = append(*dst, v)
		changed = true
	}
	return changed
}

func cloneSlice(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
