package utils

import "strings"

// NormalizePhoneIN strips formatting and country/trunk prefixes from Indian
// mobile numbers, leaving the bare 10-digit form the payment gateway expects.
func NormalizePhoneIN(phone string) string {
	p := strings.TrimSpace(phone)
	p = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(p)

	switch {
	case strings.HasPrefix(p, "+91"):
		p = p[3:]
	case strings.HasPrefix(p, "91") && len(p) == 12:
		p = p[2:]
	case strings.HasPrefix(p, "0") && len(p) == 11:
		p = p[1:]
	}

	return p
}
