package codec

import (
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"

	"github.com/roach88/tpgm/internal/predicate"
)

// DomainPredicate separates predicate fingerprints from other content
// hashes. The version suffix allows the encoding to change.
const DomainPredicate = "tpgm/predicate/v1"

// Fingerprint returns the hex BLAKE3-256 digest of the canonical encoding
// of p. Equal predicates have equal fingerprints.
func Fingerprint(p predicate.Predicate) (string, error) {
	canonical, err := MarshalCanonical(p)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(DomainPredicate, canonical), nil
}

// hashWithDomain computes BLAKE3(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := blake3.New(32, nil)
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
