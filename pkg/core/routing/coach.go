package routing

import "strings"

// ExactMatchCoachPrefixes are coach classes (AC, M-class, garib rath, high capacity, chair car)
// whose staff are assigned per coach rather than per train
var ExactMatchCoachPrefixes = []string{"A", "B", "M", "G", "H", "C"}

// RequiresExactMatch reports whether a coach must be resolved against per-coach
// assignments. Other coaches (sleeper, second sitting, ...) fall back to the
// train's EHK.
func RequiresExactMatch(coach string) bool {
	normalized := NormalizeCoach(coach)
	if normalized == "" {
		return false
	}
	for _, prefix := range ExactMatchCoachPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			return true
		}
	}
	return false
}
