package promoters

import "strings"

// idWidth is the maximum promoterId length. Downstream links reference ids
// directly, so this must never change.
const idWidth = 40

// PromoterID derives the stable id for one account:
// "PRM_" + alnum(upper(platform)) + "_" + alnum(lower(identifier)), truncated.
func PromoterID(platform, identifier string) string {
	id := "PRM_" + alnum(strings.ToUpper(platform)) + "_" + alnum(strings.ToLower(identifier))
	if len(id) > idWidth {
		id = id[:idWidth]
	}
	return id
}

func alnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}
