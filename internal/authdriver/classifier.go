package authdriver

import "strings"

// knownURLPatterns maps a substring found in the current URL to the page
// type it authoritatively identifies. URL patterns are checked first and
// win outright — spec §4.7's mandatory precedence.
var knownURLPatterns = []struct {
	substr string
	page   PageType
}{
	{"accounts.google.com/signin/v2/challenge/totp", PageTwoFactor},
	{"accounts.google.com/signin/v2/challenge/recaptcha", PageRecaptcha},
	{"accounts.google.com/signin/rejected", PageAccountDisabled},
	{"accounts.google.com/signin/v2/challenge/selection", PageRecoverySelection},
	{"accounts.google.com/signin/v2/identifier", PageEmailInput},
	{"accounts.google.com/signin/v2/challengepwd", PagePasswordInput},
	{"accounts.google.com/signin/v2/challenge/ipp", PagePhoneVerification},
	{"accounts.google.com/signin/v2/identityconfirmation", PageIdentityConfirm},
	{"accounts.google.com/ServiceLogin", PageAccountChooser},
	{"accounts.google.com/speedbump/passkeyenrollment", PagePasskeyEnrollment},
	{"myaccount.google.com", PageProfileHome},
	{"youtube.com/paid_memberships", PageLoggedInPremium},
	{"chrome-error://", PageBrowserError},
}

// Classify applies the mandatory precedence: URL patterns, then DOM
// markers, then body-text keywords. Body text is checked last because
// it is prone to false positives (a Premium page can legitimately
// contain "Something went wrong" as product copy).
func Classify(s Signals) PageType {
	if p, ok := classifyByURL(s.URL); ok {
		return p
	}
	if p, ok := classifyByDOM(s); ok {
		return p
	}
	if p, ok := classifyByText(s); ok {
		return p
	}
	return PageUnknown
}

func classifyByURL(url string) (PageType, bool) {
	lower := strings.ToLower(url)
	for _, pat := range knownURLPatterns {
		if strings.Contains(lower, strings.ToLower(pat.substr)) {
			return pat.page, true
		}
	}
	return "", false
}

func classifyByDOM(s Signals) (PageType, bool) {
	switch {
	case s.hasAny(DOMRecaptchaFrame):
		return PageRecaptcha, true
	case s.hasAny(DOMCaptchaImage):
		return PageImageCaptcha, true
	case s.hasAny(DOMPasskeyPrompt):
		return PagePasskeyEnrollment, true
	case s.hasAny(DOMTOTPField):
		return PageTwoFactor, true
	case s.hasAny(DOMPasswordField):
		return PagePasswordInput, true
	case s.hasAny(DOMEmailField):
		return PageEmailInput, true
	case s.hasAny(DOMRecoveryOption):
		return PageRecoverySelection, true
	case s.hasAny(DOMAccountTile, DOMUseAnotherAccount):
		return PageAccountChooser, true
	case s.hasAny(DOMPauseButton) && !s.hasAny(DOMPausedBadge):
		return PageLoggedInPremium, true
	case s.hasAny(DOMResumeButton, DOMPausedBadge):
		return PageLoggedInPremium, true
	case s.hasAny(DOMManageButton):
		return PageLoggedInPremium, true
	}
	return "", false
}

func classifyByText(s Signals) (PageType, bool) {
	switch {
	case s.textContainsAny("this account has been disabled", "account disabled"):
		return PageAccountDisabled, true
	case s.textContainsAny("verify it's you", "confirm your phone number"):
		return PagePhoneVerification, true
	case s.textContainsAny("err_connection_closed", "err_network_changed", "this site can't be reached"):
		return PageBrowserError, true
	case s.textContainsAny("something went wrong on our end", "provider error", "service unavailable"):
		return PageProviderError, true
	case s.textContainsAny("welcome", "choose an account"):
		return PageAccountChooser, true
	case s.textContainsAny("signed in"):
		return PageLoggedIn, true
	}
	return "", false
}
