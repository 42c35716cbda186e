package sentencia

import (
	"fmt"
	"regexp"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// IndexID builds the deterministic document id for one sentence-index
// entry: pensioner id, payment id and the concept with every
// non-alphanumeric run stripped. Re-scanning an unchanged payment set
// produces the same ids, so index writes are idempotent overwrites.
func IndexID(pensionadoID, pagoID, concepto string) string {
	return fmt.Sprintf("%s_%s_%s", pensionadoID, pagoID, nonAlphanumeric.ReplaceAllString(concepto, ""))
}
