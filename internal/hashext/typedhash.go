// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package hashext provides extensions to the standard crypto/hash package.
package hashext

import (
	"crypto"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"encoding/hex"
	"hash"
	"io"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/pkg/errors"
)

// TypedHash is a hash.Hash annotated with its algorithm.
type TypedHash struct {
	hash.Hash
	Algorithm crypto.Hash
}

// NewTypedHash constructs a new TypedHash.
func NewTypedHash(algo crypto.Hash) TypedHash {
	return TypedHash{Hash: algo.New(), Algorithm: algo}
}

// Digest returns the current sum annotated with the hash algorithm.
func (t TypedHash) Digest() Digest {
	return Digest{Algorithm: t.Algorithm, Value: hex.EncodeToString(t.Sum(nil))}
}

var algorithmNames = map[crypto.Hash]string{
	crypto.SHA256: "sha256",
	crypto.SHA512: "sha512",
}

// Digest is a hex-encoded hash sum with its algorithm.
type Digest struct {
	Algorithm crypto.Hash
	Value     string
}

// String renders the digest as "<algorithm>:<hex>".
func (d Digest) String() string {
	if d.Value == "" {
		return ""
	}
	return algorithmNames[d.Algorithm] + ":" + d.Value
}

// IsZero reports whether the digest is unset.
func (d Digest) IsZero() bool { return d.Value == "" }

// MarshalText implements encoding.TextMarshaler.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(b []byte) error {
	parsed, err := ParseDigest(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDigest parses the "<algorithm>:<hex>" form produced by Digest.String.
func ParseDigest(s string) (Digest, error) {
	if s == "" {
		return Digest{}, nil
	}
	name, value, ok := strings.Cut(s, ":")
	if !ok {
		return Digest{}, errors.Errorf("malformed digest %q", s)
	}
	for algo, n := range algorithmNames {
		if n == name {
			if _, err := hex.DecodeString(value); err != nil {
				return Digest{}, errors.Wrapf(err, "malformed digest %q", s)
			}
			return Digest{Algorithm: algo, Value: value}, nil
		}
	}
	return Digest{}, errors.Errorf("unsupported digest algorithm %q", name)
}

// FileDigest hashes the contents of filename in fs.
func FileDigest(fs billy.Basic, filename string, algo crypto.Hash) (Digest, error) {
	f, err := fs.Open(filename)
	if err != nil {
		return Digest{}, err
	}
	defer f.Close()
	h := NewTypedHash(algo)
	if _, err := io.Copy(h, f); err != nil {
		return Digest{}, errors.Wrapf(err, "hashing %s", filename)
	}
	return h.Digest(), nil
}
