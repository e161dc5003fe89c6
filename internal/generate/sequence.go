package generate

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/sediment-db/sediment/migration"
)

// seqPrefix matches the numeric prefix of unit file names such as
// 0002_add_email.go or 0002_add_email.up.sql.
var seqPrefix = regexp.MustCompile(`^(\d+)_\w+`) //nolint:gochecknoglobals // compiled once

// NextSequence returns the sequence the next generated unit should carry:
// one past the highest numeric prefix found in dir, zero-padded to four
// digits. A missing directory yields the first sequence.
func NextSequence(dir string) (migration.Sequence, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "0001", nil
		}

		return "", fmt.Errorf("scanning migrations directory: %w", err)
	}

	var highest int64

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		m := seqPrefix.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}

		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}

		if n > highest {
			highest = n
		}
	}

	return migration.Sequence(fmt.Sprintf("%04d", highest+1)), nil
}
