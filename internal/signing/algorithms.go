package signing

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/ripemd160"
	"golang.org/x/crypto/sha3"
)

// DefaultAlgorithm is used when a caller does not name one.
const DefaultAlgorithm = "sha1"

var (
	// ErrUnsupportedAlgorithm is returned when no digest is registered under a name.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	// ErrInvalidAlgorithm is returned by Register for empty names or nil constructors.
	ErrInvalidAlgorithm = errors.New("invalid algorithm registration")
	// ErrAlgorithmExists is returned by Register when the name is already taken.
	ErrAlgorithmExists = errors.New("algorithm already registered")
)

var registry = struct {
	mu    sync.RWMutex
	funcs map[string]func() hash.Hash
}{
	funcs: map[string]func() hash.Hash{
		"md5":         md5.New,
		"sha1":        sha1.New,
		"sha224":      sha256.New224,
		"sha256":      sha256.New,
		"sha384":      sha512.New384,
		"sha512":      sha512.New,
		"sha512-224":  sha512.New512_224,
		"sha512-256":  sha512.New512_256,
		"sha3-224":    sha3.New224,
		"sha3-256":    sha3.New256,
		"sha3-384":    sha3.New384,
		"sha3-512":    sha3.New512,
		"blake2b-256": unkeyed(blake2b.New256),
		"blake2b-512": unkeyed(blake2b.New512),
		"blake2s-256": unkeyed(blake2s.New256),
		"ripemd160":   ripemd160.New,
	},
}

// blake2 constructors only fail for oversized keys; nil never does.
func unkeyed(fn func(key []byte) (hash.Hash, error)) func() hash.Hash {
	return func() hash.Hash {
		h, err := fn(nil)
		if err != nil {
			panic(err)
		}
		return h
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds a digest constructor under name. Names are case-insensitive.
func Register(name string, fn func() hash.Hash) error {
	key := normalize(name)
	if key == "" || fn == nil {
		return ErrInvalidAlgorithm
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, ok := registry.funcs[key]; ok {
		return fmt.Errorf("%w: %s", ErrAlgorithmExists, key)
	}
	registry.funcs[key] = fn
	return nil
}

// Lookup returns the digest constructor registered under name.
func Lookup(name string) (func() hash.Hash, error) {
	registry.mu.RLock()
	fn, ok := registry.funcs[normalize(name)]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}
	return fn, nil
}

// Supported reports whether name resolves to a registered digest.
func Supported(name string) bool {
	_, err := Lookup(name)
	return err == nil
}

// Names returns every registered algorithm name in sorted order.
func Names() []string {
	registry.mu.RLock()
	out := make([]string, 0, len(registry.funcs))
	for name := range registry.funcs {
		out = append(out, name)
	}
	registry.mu.RUnlock()

	sort.Strings(out)
	return out
}
