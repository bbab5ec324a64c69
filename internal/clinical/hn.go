package clinical

import (
	"strings"
)

// HNWidth is the fixed width of a canonical hospital number.
const HNWidth = 7

// NormalizeHN canonicalises a hospital number so both tables join on it.
// It trims whitespace and the Sheets text marker, drops thousands separators
// and a decimal suffix left by numeric cells, and zero-pads to HNWidth.
func NormalizeHN(raw string) string {
	hn := strings.TrimSpace(raw)
	hn = strings.TrimPrefix(hn, "'")
	hn = strings.ReplaceAll(hn, ",", "")
	if i := strings.IndexByte(hn, '.'); i >= 0 {
		hn = hn[:i]
	}
	hn = strings.TrimSpace(hn)
	if n := HNWidth - len(hn); n > 0 {
		hn = strings.Repeat("0", n) + hn
	}
	return hn
}
