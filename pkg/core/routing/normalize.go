package routing

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// StripLeadingZeros removes leading zeros from a train number.
// An all-zero or empty number becomes "0".
func StripLeadingZeros(train string) string {
	stripped := strings.TrimLeft(strings.TrimSpace(train), "0")
	if stripped == "" {
		return "0"
	}
	return stripped
}

// ZeroPadded returns the single-zero-prefixed spelling of a train number
func ZeroPadded(train string) string {
	return "0" + StripLeadingZeros(train)
}

// TrainSpellings returns the equivalent keys of a train number: as given,
// zero-stripped and zero-prefixed. Duplicates are removed, order is preserved.
func TrainSpellings(train string) []string {
	literal := strings.TrimSpace(train)
	candidates := []string{literal, StripLeadingZeros(literal), ZeroPadded(literal)}

	seen := make(map[string]bool, len(candidates))
	spellings := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		spellings = append(spellings, c)
	}
	return spellings
}

// NormalizeCoach folds a coach label into its comparison form.
// Full-width characters from mobile keyboards fold to ASCII under NFKC.
func NormalizeCoach(coach string) string {
	return strings.ToUpper(strings.TrimSpace(norm.NFKC.String(coach)))
}
