package ticketsubmit

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Tag derives a stable 12-hex-character token from the caller identity and
// the trimmed short description. The downstream ticketing system can use it
// to spot resubmissions; this system never enforces uniqueness itself.
func Tag(caller, shortDescription string) string {
	if caller == "" {
		caller = "unknown"
	}
	sum := sha256.Sum256([]byte(caller + "|" + strings.TrimSpace(shortDescription)))
	return hex.EncodeToString(sum[:])[:12]
}
