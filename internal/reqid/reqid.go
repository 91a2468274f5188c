package reqid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Prefix is the stable identifier prefix exposed to downstream systems.
const Prefix = "REQ-"

// idRe matches the external identifier contract: REQ- followed by at least
// four decimal digits. Callers may not assume exactly four once the counter
// passes 9999.
var idRe = regexp.MustCompile(`^REQ-(\d{4,})$`)

// Format renders a sequence value as a request identifier. Values 1-9999 are
// zero-padded to four digits; larger values widen without padding.
func Format(n uint64) string {
	return fmt.Sprintf("%s%04d", Prefix, n)
}

// Parse extracts the numeric suffix from a request identifier. It is strict:
// anything that Format could not have produced is rejected, including a zero
// suffix and zero-padded suffixes of five or more digits.
func Parse(id string) (uint64, error) {
	m := idRe.FindStringSubmatch(id)
	if m == nil {
		return 0, fmt.Errorf("malformed request identifier %q", id)
	}
	digits := m[1]
	if len(digits) > 4 && strings.HasPrefix(digits, "0") {
		return 0, fmt.Errorf("malformed request identifier %q: padded suffix", id)
	}
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed request identifier %q: %w", id, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("malformed request identifier %q: zero suffix", id)
	}
	return n, nil
}
