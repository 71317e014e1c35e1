package sheetsgw_test

import (
	"testing"

	"github.com/averyhale/ytprem-scheduler/internal/sheetsgw"
)

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"a.b+x@gmail.com":   "ab@gmail.com",
		"A.B@GMail.com":     "ab@gmail.com",
		" ab@gmail.com ":    "ab@gmail.com",
		"a+x@googlemail.com": "a@gmail.com",
		"a.b@yahoo.com":     "a.b@yahoo.com",
	}
	for in, want := range cases {
		if got := sheetsgw.NormalizeEmail(in); got != want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}
