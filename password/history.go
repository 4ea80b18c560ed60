package password

import "github.com/credkit/credkit/internal/constcmp"

// DefaultHistoryLimit bounds how many prior hashes are consulted for reuse
// detection when the caller does not configure a limit.
const DefaultHistoryLimit = 5

// CheckHistory reports whether candidate appears among the most recent
// history entries. history is ordered most-recent-first; at most limit
// entries are consulted, so an entry beyond the limit is never reported as
// reused. The returned position is 1-based (1 = most recent) for user
// messaging. Comparison goes through the constant-time comparator.
func CheckHistory(candidate string, history []string, limit int) (bool, int) {
	if candidate == "" || limit <= 0 {
		return false, 0
	}
	if limit > len(history) {
		limit = len(history)
	}

	reused := false
	position := 0
	for i := 0; i < limit; i++ {
		// Scan every consulted entry even after a match so the number of
		// comparator invocations does not depend on the match position.
		if constcmp.EqualString(candidate, history[i]) && !reused {
			reused = true
			position = i + 1
		}
	}

	return reused, position
}
