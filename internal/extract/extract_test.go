package extract

import (
	"reflect"
	"testing"
)

func TestExtractUPIAndPhone(t *testing.T) {
	t.Parallel()

	rec := Extract("Send payment to scammer@upi now, call 9876543210")

	if !reflect.DeepEqual(rec.UPIIDs, []string{"scammer@upi"}) {
		t.Errorf("Expected upiIds [scammer@upi], got %v", rec.UPIIDs)
	}
	if !reflect.DeepEqual(rec.PhoneNumbers, []string{"9876543210"}) {
		t.Errorf("Expected phoneNumbers [9876543210], got %v", rec.PhoneNumbers)
	}
	if len(rec.BankAccounts) != 0 {
		t.Errorf("Expected no bank accounts, got %v", rec.BankAccounts)
	}
	if len(rec.PhishingLinks) != 0 {
		t.Errorf("Expected no phishing links, got %v", rec.PhishingLinks)
	}
	if len(rec.SuspiciousKeywords) != 0 {
		t.Errorf("Expected no keywords, got %v", rec.SuspiciousKeywords)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "   ", "\n\t  "} {
		rec := Extract(text)
		if !rec.IsEmpty() {
			t.Errorf("Expected empty record for %q, got %+v", text, rec)
		}
	}
}

func TestExtractShortNumberIsNotPhone(t *testing.T) {
	t.Parallel()

	rec := Extract("my code is 12345")
	if len(rec.PhoneNumbers) != 0 {
		t.Errorf("Expected no phone numbers, got %v", rec.PhoneNumbers)
	}
	if len(rec.BankAccounts) != 0 {
		t.Errorf("Expected no bank accounts, got %v", rec.BankAccounts)
	}
}

func TestExtractLongDigitRunIsBankAccountNotPhone(t *testing.T) {
	t.Parallel()

	rec := Extract("transfer to 987654321012345678 today")
	if !reflect.DeepEqual(rec.BankAccounts, []string{"987654321012345678"}) {
		t.Errorf("Expected 18-digit bank account, got %v", rec.BankAccounts)
	}
	if len(rec.PhoneNumbers) != 0 {
		t.Errorf("Expected no phone numbers inside the digit run, got %v", rec.PhoneNumbers)
	}
}

func TestExtractPhoneWithCountryCode(t *testing.T) {
	t.Parallel()

	rec := Extract("call me on +91 9876543210 or 9876543210")
	if !reflect.DeepEqual(rec.PhoneNumbers, []string{"9876543210"}) {
		t.Errorf("Expected deduplicated national number, got %v", rec.PhoneNumbers)
	}
}

func TestExtractPhoneWrongPrefixRejected(t *testing.T) {
	t.Parallel()

	// 10 digits but leading 5 is outside the mobile range.
	rec := Extract("call 5876543210")
	if len(rec.PhoneNumbers) != 0 {
		t.Errorf("Expected no phone numbers, got %v", rec.PhoneNumbers)
	}
	// A 10-digit run that is not mobile-shaped still counts as an account.
	if !reflect.DeepEqual(rec.BankAccounts, []string{"5876543210"}) {
		t.Errorf("Expected bank account fallback, got %v", rec.BankAccounts)
	}
}

func TestExtractIFSC(t *testing.T) {
	t.Parallel()

	rec := Extract("use account 123456789 with ifsc hdfc0001234")
	want := []string{"123456789", "HDFC0001234"}
	if !reflect.DeepEqual(rec.BankAccounts, want) {
		t.Errorf("Expected %v, got %v", want, rec.BankAccounts)
	}
}

func TestExtractURLs(t *testing.T) {
	t.Parallel()

	rec := Extract("click https://evil.example/verify?id=1 or http://bad.example now")
	want := []string{"https://evil.example/verify?id=1", "http://bad.example"}
	if !reflect.DeepEqual(rec.PhishingLinks, want) {
		t.Errorf("Expected %v, got %v", want, rec.PhishingLinks)
	}
}

func TestExtractKeywordsCaseInsensitiveAndDeduplicated(t *testing.T) {
	t.Parallel()

	rec := Extract("URGENT urgent OTP! Verify your KYC, verify now")
	want := []string{"urgent", "verify", "kyc", "otp"}
	if !reflect.DeepEqual(rec.SuspiciousKeywords, want) {
		t.Errorf("Expected %v, got %v", want, rec.SuspiciousKeywords)
	}
}

func TestExtractOverlappingIndicators(t *testing.T) {
	t.Parallel()

	rec := Extract("pay scammer@upi, account 123456789012, call 9876543210, https://evil.example urgent")
	if len(rec.UPIIDs) != 1 || len(rec.BankAccounts) != 1 || len(rec.PhoneNumbers) != 1 || len(rec.PhishingLinks) != 1 {
		t.Errorf("Expected one indicator per field, got %+v", rec)
	}
	if len(rec.SuspiciousKeywords) == 0 {
		t.Error("Expected suspicious keywords to fire alongside other patterns")
	}
}

func TestExtractIsTotal(t *testing.T) {
	t.Parallel()

	// Hostile inputs must never panic.
	inputs := []string{
		"@@@@", "\x00\x01\x02", "http://", "99999999999999999999999999",
		"@upi", "a@b", "((((((", "+91", "ＵＲＧＥＮＴ",
	}
	for _, in := range inputs {
		_ = Extract(in)
	}
}
