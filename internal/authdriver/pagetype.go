package authdriver

// PageType is the closed classifier result (spec §4.7). Every value the
// classifier can return is listed here; there is no open string variant.
type PageType string

const (
	PageProfileHome         PageType = "profile_home"
	PageBrowserError        PageType = "browser_error"
	PageProviderError       PageType = "provider_error"
	PageAccountDisabled     PageType = "account_disabled"
	PagePasskeyEnrollment   PageType = "passkey_enrollment"
	PageImageCaptcha        PageType = "image_captcha"
	PageRecaptcha           PageType = "recaptcha"
	PagePhoneVerification   PageType = "phone_verification"
	PageIdentityConfirm     PageType = "identity_confirmation"
	PageAccountChooser      PageType = "account_chooser"
	PageEmailInput          PageType = "email_input"
	PagePasswordInput       PageType = "password_input"
	PageTwoFactor           PageType = "two_factor"
	PageRecoverySelection   PageType = "recovery_selection"
	PageLoggedIn            PageType = "logged_in"
	PageLoggedInPremium     PageType = "logged_in_premium"
	PageUnknown             PageType = "unknown"
)
