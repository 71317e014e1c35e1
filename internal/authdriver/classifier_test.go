package authdriver

import "testing"

func TestClassify_URLTakesPrecedenceOverText(t *testing.T) {
	s := Signals{
		URL:      "https://youtube.com/paid_memberships",
		BodyText: "Something went wrong while loading this page.",
	}
	if got := Classify(s); got != PageLoggedInPremium {
		t.Fatalf("Classify = %q, want %q (URL must win over misleading body text)", got, PageLoggedInPremium)
	}
}

func TestClassify_DOMBeatsText(t *testing.T) {
	s := Signals{
		DOM:      map[string]bool{DOMCaptchaImage: true},
		BodyText: "Welcome back",
	}
	if got := Classify(s); got != PageImageCaptcha {
		t.Fatalf("Classify = %q, want %q", got, PageImageCaptcha)
	}
}

func TestClassify_TextFallback(t *testing.T) {
	s := Signals{BodyText: "This account has been disabled for violating our policies."}
	if got := Classify(s); got != PageAccountDisabled {
		t.Fatalf("Classify = %q, want %q", got, PageAccountDisabled)
	}
}

func TestClassify_Unknown(t *testing.T) {
	s := Signals{URL: "https://example.com/nothing", BodyText: "lorem ipsum"}
	if got := Classify(s); got != PageUnknown {
		t.Fatalf("Classify = %q, want %q", got, PageUnknown)
	}
}

func TestClassify_TwoFactorByURL(t *testing.T) {
	s := Signals{URL: "https://accounts.google.com/signin/v2/challenge/totp?x=1"}
	if got := Classify(s); got != PageTwoFactor {
		t.Fatalf("Classify = %q, want %q", got, PageTwoFactor)
	}
}
