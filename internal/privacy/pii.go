package privacy

import (
	"regexp"
	"sort"
	"strings"
)

// Category labels one kind of personally identifying data found in
// free text.
type Category string

const (
	CategoryEmail       Category = "email"
	CategoryPhone       Category = "phone"
	CategoryNationalID  Category = "national_id"
	CategoryPaymentCard Category = "payment_card"
	CategoryIPAddress   Category = "ip_address"
)

var (
	reEmail = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	rePhone = regexp.MustCompile(`(?:\+\d{7,15})|(?:(?:\+?\d{1,3}[-. ])?\(?\d{3}\)?[-. ]\d{3}[-. ]\d{4})`)
	reNatID = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b|\b\d{9,11}\b`)
	reCard  = regexp.MustCompile(`\b\d(?:[ -]?\d){12,18}\b`)
	reIPv4  = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
)

// DetectPII tests text against each category independently and returns
// the categories found, in a fixed order. An empty slice means clean.
func DetectPII(text string) []Category {
	var found []Category
	if reEmail.MatchString(text) {
		found = append(found, CategoryEmail)
	}
	if rePhone.MatchString(text) {
		found = append(found, CategoryPhone)
	}
	if reNatID.MatchString(text) {
		found = append(found, CategoryNationalID)
	}
	if hasCardNumber(text) {
		found = append(found, CategoryPaymentCard)
	}
	if reIPv4.MatchString(text) {
		found = append(found, CategoryIPAddress)
	}
	return found
}

func hasCardNumber(text string) bool {
	for _, m := range reCard.FindAllString(text, -1) {
		if luhnValid(digitsOf(m)) {
			return true
		}
	}
	return false
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// luhnValid runs the Luhn checksum over a digit string, the standard
// filter separating card numbers from arbitrary digit runs.
func luhnValid(digits string) bool {
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

type span struct {
	start, end int
}

// Sanitize masks each detected PII span with mask repeated to the
// span's length, preserving the structure of the surrounding text. With
// preserveDomain set, only the local part of an email is masked and
// "@domain" is kept.
func Sanitize(text string, mask rune, preserveDomain bool) string {
	var spans []span

	for _, loc := range reEmail.FindAllStringIndex(text, -1) {
		s := span{loc[0], loc[1]}
		if preserveDomain {
			match := text[loc[0]:loc[1]]
			if at := strings.IndexByte(match, '@'); at > 0 {
				s.end = loc[0] + at
			}
		}
		spans = append(spans, s)
	}
	for _, re := range []*regexp.Regexp{rePhone, reNatID, reIPv4} {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			spans = append(spans, span{loc[0], loc[1]})
		}
	}
	for _, loc := range reCard.FindAllStringIndex(text, -1) {
		if luhnValid(digitsOf(text[loc[0]:loc[1]])) {
			spans = append(spans, span{loc[0], loc[1]})
		}
	}

	if len(spans) == 0 {
		return text
	}

	merged := mergeSpans(spans)
	var b strings.Builder
	b.Grow(len(text))
	prev := 0
	for _, s := range merged {
		b.WriteString(text[prev:s.start])
		b.WriteString(strings.Repeat(string(mask), len([]rune(text[s.start:s.end]))))
		prev = s.end
	}
	b.WriteString(text[prev:])
	return b.String()
}

func mergeSpans(spans []span) []span {
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.start <= last.end {
			if s.end > last.end {
				last.end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}
