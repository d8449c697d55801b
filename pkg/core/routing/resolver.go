package routing

import "strings"

// Pair is a (train, coach) combination taken from a complaint
type Pair struct {
	Train string
	Coach string
}

// NewPair builds a pair with a trimmed train and normalized coach
func NewPair(train, coach string) Pair {
	return Pair{Train: strings.TrimSpace(train), Coach: NormalizeCoach(coach)}
}

// Resolve returns the support contact of every pair. Coaches with per-coach staff are
// looked up in the exact index, all others fall back to the train's EHK. A miss
// resolves to "".
//
// Each result is stored under the literal, zero-stripped and zero-prefixed spellings
// of the pair's train so callers can look it up by any of them.
func Resolve(index *AssignmentIndex, pairs []Pair) map[Pair]string {
	contacts := make(map[Pair]string, len(pairs)*3)
	if index == nil {
		index = NewAssignmentIndex()
	}

	for _, pair := range pairs {
		contact := ResolveOne(index, pair.Train, pair.Coach)

		coach := NormalizeCoach(pair.Coach)
		for _, spelling := range TrainSpellings(pair.Train) {
			key := Pair{Train: spelling, Coach: coach}
			// A spelling shared by two input pairs keeps the first non-empty result
			if existing, ok := contacts[key]; ok && existing != "" {
				continue
			}
			contacts[key] = contact
		}
	}

	return contacts
}

// ResolveOne returns the support contact of a single train and coach
func ResolveOne(index *AssignmentIndex, train, coach string) string {
	train = strings.TrimSpace(train)
	coach = NormalizeCoach(coach)
	cleanTrain := StripLeadingZeros(train)

	if RequiresExactMatch(coach) {
		for _, key := range []string{train, cleanTrain} {
			if contact, ok := index.ExactContact(key, coach); ok {
				return contact
			}
		}
		return ""
	}

	for _, key := range []string{train, cleanTrain} {
		if contact, ok := index.EHKContact(key); ok {
			return contact
		}
	}
	return ""
}

// Lookup finds the contact of train and coach in a Resolve result, trying the
// literal, zero-prefixed and zero-stripped spellings in that order
func Lookup(contacts map[Pair]string, train, coach string) string {
	train = strings.TrimSpace(train)
	coach = NormalizeCoach(coach)

	for _, spelling := range []string{train, ZeroPadded(train), StripLeadingZeros(train)} {
		if contact, ok := contacts[Pair{Train: spelling, Coach: coach}]; ok {
			return contact
		}
	}
	return ""
}
