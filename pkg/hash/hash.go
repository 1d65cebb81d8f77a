package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
)

type Algorithm string

const SHA256 Algorithm = "sha256"

// Digest identifies a payload, e.g. a downloaded course export.
type Digest struct {
	Algorithm Algorithm
	Hex       string
}

func (d Digest) String() string {
	return fmt.Sprintf("%s:%s", d.Algorithm, d.Hex)
}

type Hasher struct {
	algorithm Algorithm
}

func NewHasher(algorithm Algorithm) *Hasher {
	return &Hasher{algorithm: algorithm}
}

func (h *Hasher) Sum(data []byte) (Digest, error) {
	hasher, err := h.newHash()
	if err != nil {
		return Digest{}, err
	}

	hasher.Write(data)
	return Digest{
		Algorithm: h.algorithm,
		Hex:       hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

func (h *Hasher) newHash() (hash.Hash, error) {
	switch h.algorithm {
	case SHA256:
		return sha256.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", h.algorithm)
	}
}
