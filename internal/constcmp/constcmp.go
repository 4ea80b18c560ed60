// Package constcmp implements timing-independent byte and string comparison.
//
// Both comparison functions scan the full length of the longer input and
// resolve equality only after the scan completes. There is no early return
// on the first differing byte, so execution time does not reveal the
// position of a mismatch.
package constcmp

// Equal reports whether a and b are identical byte sequences.
//
// The scan always covers max(len(a), len(b)) positions. A position beyond
// the end of the shorter input contributes a guaranteed difference, which
// makes unequal lengths compare false without shortening the scan.
func Equal(a, b []byte) bool {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}

	var diff byte
	for i := 0; i < n; i++ {
		var ab, bb byte
		if i < len(a) {
			ab = a[i]
		} else {
			diff |= 1
		}
		if i < len(b) {
			bb = b[i]
		} else {
			diff |= 1
		}
		diff |= ab ^ bb
	}

	return diff == 0
}

// EqualString is Equal over the raw bytes of two strings.
func EqualString(a, b string) bool {
	return Equal([]byte(a), []byte(b))
}
