package ticket

import "strings"

// Classify reports whether a problem description is urgent: a
// case-insensitive substring match against the configured keyword list.
// Deterministic and pure so the triage behavior is directly testable.
func Classify(description string, keywords []string) bool {
	d := strings.ToLower(description)
	for _, k := range keywords {
		if k != "" && strings.Contains(d, k) {
			return true
		}
	}
	return false
}
