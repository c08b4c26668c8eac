package dedupe

import (
	"strings"
)

// Strictness names a phone normalization policy. The scripts this engine
// replaces disagreed on which to use, so both are supported and the caller
// picks one.
type Strictness string

const (
	// Permissive strips the country prefix, whitespace and hyphens and
	// accepts any all-digit remainder of 10+ digits. Used for grouping.
	Permissive Strictness = "permissive"

	// Strict additionally strips bare country-code and trunk-zero prefixes
	// and accepts only exactly 10 digits starting with a valid mobile
	// leading digit. Used by the system-email business rules.
	Strict Strictness = "strict"
)

// mobileLeadingDigits are the leading digits valid for Indian mobile numbers.
const mobileLeadingDigits = "6789"

// NormalizePhone canonicalizes a raw phone value under the given policy.
// The second return is false when the value yields no usable key, which
// excludes the record from phone grouping (not an error).
func NormalizePhone(raw string, prefix string, level Strictness) (string, bool) {
	if raw == "" {
		return "", false
	}

	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, prefix, "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")

	if level == Strict {
		// Keep digits and a possible leading +, drop everything else.
		s = keepDialable(s)
		bare := strings.TrimPrefix(prefix, "+")
		switch {
		case strings.HasPrefix(s, "+"):
			s = strings.TrimPrefix(s, "+"+bare)
			s = strings.TrimPrefix(s, "+")
		case strings.HasPrefix(s, bare) && len(s) == len(bare)+10:
			s = s[len(bare):]
		case strings.HasPrefix(s, "0") && len(s) == 11:
			s = s[1:]
		}
		if len(s) != 10 || !allDigits(s) {
			return "", false
		}
		if !strings.ContainsRune(mobileLeadingDigits, rune(s[0])) {
			return "", false
		}
		return s, true
	}

	if len(s) < 10 || !allDigits(s) {
		return "", false
	}
	return s, true
}

// NormalizeEmail canonicalizes an email for grouping: lowercase, trimmed.
// An empty value yields no key.
func NormalizeEmail(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}
	return s, true
}

// IsSystemEmail reports whether email is an algorithmically assigned address:
// a digits-only local part at the given domain.
func IsSystemEmail(email, domain string) bool {
	s := strings.ToLower(strings.TrimSpace(email))
	local, ok := strings.CutSuffix(s, "@"+strings.ToLower(domain))
	if !ok || local == "" {
		return false
	}
	return allDigits(local)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// keepDialable drops every rune except digits and '+'.
func keepDialable(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
