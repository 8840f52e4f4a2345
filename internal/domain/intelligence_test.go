package domain

import (
	"reflect"
	"sort"
	"testing"
)

func sample() IntelligenceRecord {
	return IntelligenceRecord{
		BankAccounts:       []string{"123456789", "HDFC0001234"},
		UPIIDs:             []string{"scammer@upi"},
		PhishingLinks:      []string{"http://bad.example"},
		PhoneNumbers:       []string{"9876543210"},
		SuspiciousKeywords: []string{"urgent", "otp"},
	}
}

func TestMergeIdempotent(t *testing.T) {
	t.Parallel()

	a := sample()
	b := IntelligenceRecord{
		UPIIDs:       []string{"other@okaxis"},
		PhoneNumbers: []string{"9876543210", "6000000000"},
	}

	merged := a.Clone()
	merged.Merge(b)
	again := merged.Clone()
	if changed := again.Merge(b); changed {
		t.Error("Merging the same record twice reported a change")
	}
	if !reflect.DeepEqual(merged, again) {
		t.Errorf("merge(merge(A,B),B) != merge(A,B): %+v vs %+v", merged, again)
	}
}

func TestMergeCommutative(t *testing.T) {
	t.Parallel()

	a := sample()
	b := IntelligenceRecord{
		BankAccounts: []string{"999999999"},
		UPIIDs:       []string{"scammer@upi", "other@okaxis"},
	}

	ab := a.Clone()
	ab.Merge(b)
	ba := b.Clone()
	ba.Merge(a)

	if !sameSets(ab, ba) {
		t.Errorf("merge(A,B) and merge(B,A) differ as sets: %+v vs %+v", ab, ba)
	}
}

func TestMergeNeverShrinks(t *testing.T) {
	t.Parallel()

	a := sample()
	before := len(a.BankAccounts) + len(a.UPIIDs) + len(a.PhishingLinks) + len(a.PhoneNumbers) + len(a.SuspiciousKeywords)

	if changed := a.Merge(IntelligenceRecord{}); changed {
		t.Error("Merging an empty record reported a change")
	}

	after := len(a.BankAccounts) + len(a.UPIIDs) + len(a.PhishingLinks) + len(a.PhoneNumbers) + len(a.SuspiciousKeywords)
	if after != before {
		t.Errorf("Field count changed from %d to %d", before, after)
	}
}

func TestMergeSkipsEmptyStrings(t *testing.T) {
	t.Parallel()

	var a IntelligenceRecord
	if changed := a.Merge(IntelligenceRecord{UPIIDs: []string{""}}); changed {
		t.Error("Empty string counted as a new indicator")
	}
	if !a.IsEmpty() {
		t.Errorf("Expected empty record, got %+v", a)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	a := sample()
	cp := a.Clone()
	cp.Merge(IntelligenceRecord{UPIIDs: []string{"new@upi"}})

	if len(a.UPIIDs) != 1 {
		t.Errorf("Clone mutation leaked into original: %v", a.UPIIDs)
	}
}

func sameSets(a, b IntelligenceRecord) bool {
	return sameSet(a.BankAccounts, b.BankAccounts) &&
		sameSet(a.UPIIDs, b.UPIIDs) &&
		sameSet(a.PhishingLinks, b.PhishingLinks) &&
		sameSet(a.PhoneNumbers, b.PhoneNumbers) &&
		sameSet(a.SuspiciousKeywords, b.SuspiciousKeywords)
}

func sameSet(a, b []string) bool {
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	return reflect.DeepEqual(as, bs)
}
