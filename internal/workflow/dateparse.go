package workflow

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseBillingDate parses the next-billing-date text shown on the
// membership page after an action (spec §4.8's VERIFY step). No
// example repo or ecosystem package does locale-tagged subscription
// billing-date parsing across this exact set of locales; see
// DESIGN.md. refYear supplies the year for locale shapes that omit it
// (bare Korean "M월 D일").
func ParseBillingDate(raw string, loc *time.Location, refYear int) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, parser := range []func(string, *time.Location, int) (time.Time, bool){
		parseISO,
		parseEnglish,
		parseKoreanWithYear,
		parseKoreanBareYear,
		parseDeDate, // covers both Spanish and Portuguese "D de MONTH de Y"
		parseTurkish,
		parseNumericDMYorMDY,
	} {
		if t, ok := parser(s, loc, refYear); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

var isoRe = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)

func parseISO(s string, loc *time.Location, _ int) (time.Time, bool) {
	m := isoRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	return buildDate(loc, atoi(m[1]), atoi(m[2]), atoi(m[3]))
}

var englishMonths = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

var englishRe = regexp.MustCompile(`(?i)^([A-Za-z]+)\.?\s+(\d{1,2}),?\s+(\d{4})$`)

func parseEnglish(s string, loc *time.Location, _ int) (time.Time, bool) {
	m := englishRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	month, ok := englishMonths[strings.ToLower(m[1])]
	if !ok {
		return time.Time{}, false
	}
	return buildDate(loc, atoi(m[3]), month, atoi(m[2]))
}

var koreanWithYearRe = regexp.MustCompile(`^(\d{4})년\s*(\d{1,2})월\s*(\d{1,2})일$`)
var koreanBareRe = regexp.MustCompile(`^(\d{1,2})월\s*(\d{1,2})일$`)

func parseKoreanWithYear(s string, loc *time.Location, _ int) (time.Time, bool) {
	m := koreanWithYearRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	return buildDate(loc, atoi(m[1]), atoi(m[2]), atoi(m[3]))
}

func parseKoreanBareYear(s string, loc *time.Location, refYear int) (time.Time, bool) {
	m := koreanBareRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	return buildDate(loc, refYear, atoi(m[1]), atoi(m[2]))
}

// Spanish and Portuguese both use "D de MONTH de Y"; the month-name
// sets are disjoint enough (the only shared spellings, "abril" and
// "agosto", name the same month in both) that a single merged table resolves both locales
// without ambiguity in practice.
var deDateMonths = map[string]int{
	// Spanish
	"enero": 1, "febrero": 2, "marzo": 3, "abril": 4, "mayo": 5, "junio": 6,
	"julio": 7, "agosto": 8, "septiembre": 9, "setiembre": 9, "octubre": 10,
	"noviembre": 11, "diciembre": 12,
	// Portuguese
	"janeiro": 1, "fevereiro": 2, "março": 3, "marco": 3,
	"maio": 5, "junho": 6, "julho": 7, "setembro": 9,
	"outubro": 10, "novembro": 11, "dezembro": 12,
}

var deDateRe = regexp.MustCompile(`(?i)^(\d{1,2})\s+de\s+(\p{L}+)\s+de\s+(\d{4})$`)

func parseDeDate(s string, loc *time.Location, _ int) (time.Time, bool) {
	m := deDateRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	month, ok := deDateMonths[strings.ToLower(m[2])]
	if !ok {
		return time.Time{}, false
	}
	return buildDate(loc, atoi(m[3]), month, atoi(m[1]))
}

var turkishMonths = map[string]int{
	"ocak": 1, "şubat": 2, "subat": 2, "mart": 3, "nisan": 4, "mayıs": 5, "mayis": 5,
	"haziran": 6, "temmuz": 7, "ağustos": 8, "agustos": 8, "eylül": 9, "eylul": 9,
	"ekim": 10, "kasım": 11, "kasim": 11, "aralık": 12, "aralik": 12,
}

var turkishRe = regexp.MustCompile(`(?i)^(\d{1,2})\s+(\p{L}+)\s+(\d{4})$`)

func parseTurkish(s string, loc *time.Location, _ int) (time.Time, bool) {
	m := turkishRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	month, ok := turkishMonths[strings.ToLower(m[2])]
	if !ok {
		return time.Time{}, false
	}
	return buildDate(loc, atoi(m[3]), month, atoi(m[1]))
}

var numericRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)

// parseNumericDMYorMDY disambiguates "A/B/Y" by range: whichever of A,
// B exceeds 12 must be the day. If neither exceeds 12 the format is
// genuinely ambiguous; default to M/D/Y to match this system's other
// numeric convention (clock.ShortStampLayout is MM/DD).
func parseNumericDMYorMDY(s string, loc *time.Location, _ int) (time.Time, bool) {
	m := numericRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	a, b, y := atoi(m[1]), atoi(m[2]), atoi(m[3])

	switch {
	case a > 12 && b <= 12:
		return buildDate(loc, y, b, a) // D/M/Y
	case b > 12 && a <= 12:
		return buildDate(loc, y, a, b) // M/D/Y
	case a <= 12 && b <= 12:
		return buildDate(loc, y, a, b) // ambiguous: default M/D/Y
	default:
		return time.Time{}, false
	}
}

func buildDate(loc *time.Location, year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1970 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	// Reject overflowed dates (e.g. Feb 30) rather than silently
	// normalizing into the next month.
	if t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		panic(fmt.Sprintf("workflow: invalid digit group %q reached atoi after regex match", s))
	}
	return n
}
