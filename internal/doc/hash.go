package doc

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content digests.
// Version suffix enables future algorithm migration.
const (
	DomainContent = "nestedjson/content/v1"
	DomainValue   = "nestedjson/value/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentDigest identifies serialized document text byte for byte.
// Used by the revision store to skip writes that change nothing.
func ContentDigest(content []byte) string {
	return hashWithDomain(DomainContent, content)
}

// ValueDigest identifies a value by its canonical form, so two trees that differ
// only in key order or number spelling share a digest.
func ValueDigest(n Node) (string, error) {
	canonical, err := Canonical(n)
	if err != nil {
		return "", fmt.Errorf("ValueDigest: %w", err)
	}
	return hashWithDomain(DomainValue, []byte(canonical)), nil
}
