// Package artifact fingerprints scan results and publishes reports to
// S3-compatible object storage.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/theirongolddev/greenlint/internal/model"
)

// Canonical returns the JSON form of r used for hashing: object keys sorted
// at every level, no insignificant whitespace, and the machine-specific root
// path omitted.
func Canonical(r *model.ScanResult) ([]byte, error) {
	c := *r
	c.Root = ""
	raw, err := json.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	// encoding/json writes map keys in sorted order.
	return json.Marshal(generic)
}

// HashReport returns the hex SHA-256 of the canonical JSON of r.
func HashReport(r *model.ScanResult) (string, error) {
	data, err := Canonical(r)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
