package candidates

import "strings"

// NormalizePhone canonicalizes an Israeli phone number: separators are
// stripped, a +972/972 international prefix collapses to a local 0, and a
// bare 9-digit number gains the leading 0. The same rule is implemented in
// SQL as normalize_il_phone so matching happens at the data layer too.
// NormalizePhone is idempotent.
func NormalizePhone(raw string) string {
	if raw == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch r {
		case '-', ' ', '(', ')', '.':
		default:
			b.WriteRune(r)
		}
	}
	s := b.String()

	switch {
	case strings.HasPrefix(s, "+972"):
		s = "0" + s[4:]
	case strings.HasPrefix(s, "972"):
		s = "0" + s[3:]
	}

	if len(s) == 9 && !strings.HasPrefix(s, "0") && allDigits(s) {
		s = "0" + s
	}
	return s
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
