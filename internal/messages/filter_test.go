package messages

import "testing"

func TestSanitizeBlocksPhoneNumbers(t *testing.T) {
	got := Sanitize("call me on 9876543210 tonight")
	want := "call me on [PHONE BLOCKED] tonight"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSanitizeBlocksUPIHandles(t *testing.T) {
	got := Sanitize("send to ravi.k-99@okhdfc instead")
	want := "send to [UPI BLOCKED] instead"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSanitizeBlocksPaymentKeywords(t *testing.T) {
	cases := map[string]string{
		"just GPay me":           "just [PAYMENT KEYWORD BLOCKED] me",
		"use PhonePe ok":         "use [PAYMENT KEYWORD BLOCKED] ok",
		"paytm works too":        "[PAYMENT KEYWORD BLOCKED] works too",
		"got UPI? send directly": "got [PAYMENT KEYWORD BLOCKED]? send directly",
	}
	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Errorf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeKeywordIsWholeWordOnly(t *testing.T) {
	// Substrings of ordinary words must survive.
	got := Sanitize("the soup is delicious")
	if got != "the soup is delicious" {
		t.Errorf("got %q, want text unchanged", got)
	}
}

func TestSanitizeAppliesRulesInOrder(t *testing.T) {
	// A 10-digit run inside a UPI-shaped token is caught by the phone rule
	// first; later rules still scrub what remains.
	got := Sanitize("pay 9876543210@paytm now")
	if got == "pay 9876543210@paytm now" {
		t.Fatal("nothing was blocked")
	}
	if containsDigits(got, 10) {
		t.Errorf("phone number leaked through: %q", got)
	}
}

func TestSanitizeCleanTextUnchanged(t *testing.T) {
	in := "Is the camera still under warranty? Can meet Saturday."
	if got := Sanitize(in); got != in {
		t.Errorf("clean text was altered: %q", got)
	}
}

func TestWasFiltered(t *testing.T) {
	cases := []struct {
		text string
		rule string
		hit  bool
	}{
		{"9876543210", "phone", true},
		{"me@okaxis", "upi", true},
		{"gpay me", "keyword", true},
		{"hello there", "", false},
	}
	for _, tc := range cases {
		rule, hit := WasFiltered(tc.text)
		if rule != tc.rule || hit != tc.hit {
			t.Errorf("WasFiltered(%q) = (%q, %v), want (%q, %v)", tc.text, rule, hit, tc.rule, tc.hit)
		}
	}
}

func containsDigits(s string, n int) bool {
	run := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}
