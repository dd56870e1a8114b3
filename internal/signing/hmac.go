package signing

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"
	"hash"
	"sort"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ErrUnsupportedAlgorithm is returned when a hash algorithm name has no
// matching digest implementation.
var ErrUnsupportedAlgorithm = errors.New("signing: unsupported hash algorithm")

// algorithms maps the names accepted by the SMSGlobal PHP tooling
// (hash_hmac) to digest constructors.
var algorithms = map[string]func() hash.Hash{
	"md5":        md5.New,
	"sha1":       sha1.New,
	"sha224":     sha256.New224,
	"sha256":     sha256.New,
	"sha384":     sha512.New384,
	"sha512":     sha512.New,
	"sha512/224": sha512.New512_224,
	"sha512/256": sha512.New512_256,
	"sha3-224":   sha3.New224,
	"sha3-256":   sha3.New256,
	"sha3-384":   sha3.New384,
	"sha3-512":   sha3.New512,
}

// HashFunc resolves an algorithm name (case-insensitive) to its digest
// constructor.
func HashFunc(algorithm string) (func() hash.Hash, error) {
	fn, ok := algorithms[strings.ToLower(strings.TrimSpace(algorithm))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}
	return fn, nil
}

// SupportedAlgorithms returns the accepted algorithm names in sorted order.
func SupportedAlgorithms() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildHMACSignature signs message with secret using the named algorithm.
//
// The secret is used as raw bytes. Returns the standard (padded) base64
// encoding of the binary digest.
func BuildHMACSignature(algorithm, secret, message string) (string, error) {
	fn, err := HashFunc(algorithm)
	if err != nil {
		return "", err
	}

	mac := hmac.New(fn, []byte(secret))
	mac.Write([]byte(message))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
