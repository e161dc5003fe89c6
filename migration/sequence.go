package migration

import "strings"

// Sequence is a migration's numeric prefix. Comparison is numeric with
// arbitrary precision: "0002" equals "2", and "10" orders after "9" even
// though it sorts before it lexicographically.
type Sequence string

// Compare returns -1, 0, or 1 ordering s numerically against other.
func (s Sequence) Compare(other Sequence) int {
	a := strings.TrimLeft(string(s), "0")
	b := strings.TrimLeft(string(other), "0")

	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}

		return 1
	}

	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}

	return 0
}
