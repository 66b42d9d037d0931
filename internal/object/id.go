package object

import (
	"encoding/hex"
	"fmt"

	apperrors "groot/internal/errors"

	"github.com/multiformats/go-multihash"
)

// IDLength is the length of a hex encoded SHA2-256 digest.
const IDLength = 64

// ID identifies an object by the SHA2-256 digest of its exact bytes.
type ID string

func (id ID) String() string { return string(id) }

// Short returns the abbreviated form used in listings.
func (id ID) Short() string {
	if len(id) < 8 {
		return string(id)
	}
	return string(id[:8])
}

// Compute derives the identifier of data. Only the bytes matter; names,
// paths and timestamps never enter the digest.
func Compute(data []byte) (ID, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", fmt.Errorf("hashing content: %w", err)
	}
	decoded, err := multihash.Decode(mh)
	if err != nil {
		return "", fmt.Errorf("decoding multihash: %w", err)
	}
	return ID(hex.EncodeToString(decoded.Digest)), nil
}

// Parse validates s as a full identifier.
func Parse(s string) (ID, error) {
	if len(s) != IDLength || !isHex(s) {
		return "", apperrors.NotFound(fmt.Sprintf("invalid object id %q", s))
	}
	return ID(s), nil
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return false
		}
	}
	return true
}
