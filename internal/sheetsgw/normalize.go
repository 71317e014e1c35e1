package sheetsgw

import "strings"

// NormalizeEmail is the one fuzzy match in the system (spec §4.2), scoped
// to the email↔profile-id mapping lookup: lower-cases the address and, for
// Gmail addresses, strips dots and any "+tag" suffix from the local part
// ("a.b+x@gmail.com" -> "ab@gmail.com").
func NormalizeEmail(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))

	at := strings.LastIndex(addr, "@")
	if at < 0 {
		return addr
	}
	local, domain := addr[:at], addr[at+1:]

	if domain != "gmail.com" && domain != "googlemail.com" {
		return addr
	}

	if plus := strings.Index(local, "+"); plus >= 0 {
		local = local[:plus]
	}
	local = strings.ReplaceAll(local, ".", "")

	return local + "@gmail.com"
}
