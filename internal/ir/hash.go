package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content-addressed fingerprints.
// Version suffix enables future algorithm migration.
const (
	DomainReport = "modcheck/report/v1"
	DomainModel  = "modcheck/model/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// MustFingerprint is like Report.Fingerprint but panics on error.
// Use only in tests or when the report is known to be well formed.
func MustFingerprint(r *Report) string {
	fp, err := r.Fingerprint()
	if err != nil {
		panic(err)
	}
	return fp
}
