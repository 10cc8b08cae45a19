package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 digest of data. Route keys are built from the
// digests of the canonical QASM text and the device definition.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON hashes the JSON encoding of v.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return Hash(data), nil
}

// hashKey builds "kind:digest" over the JSON encoding of parts.
func hashKey(kind string, parts ...any) string {
	digest, err := HashJSON(parts)
	if err != nil {
		// parts are strings and plain option structs
		panic("cache: unencodable key part: " + err.Error())
	}
	return kind + ":" + digest
}
