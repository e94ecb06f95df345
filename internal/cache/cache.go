// Package cache stores finished conversion reports on disk, keyed by the
// rule set and the exact input files.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vmihailenco/msgpack/v5"

	"codeshift/internal/source"
)

// EnvDir overrides the cache location.
const EnvDir = "CODESHIFT_CACHE_DIR"

// ErrIncomplete is returned by Put for reports that did not cover every file.
var ErrIncomplete = errors.New("cache: incomplete reports are not stored")

// memoSize bounds the decoded payloads kept in memory per store.
const memoSize = 64

// Store is a directory of msgpack payloads fronted by a small in-memory LRU.
// It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	dir  string
	memo *lru.Cache[string, *Payload]
}

// DefaultDir resolves $CODESHIFT_CACHE_DIR, then $XDG_CACHE_HOME/codeshift,
// then ~/.cache/codeshift.
func DefaultDir() (string, error) {
	if dir := os.Getenv(EnvDir); dir != "" {
		return dir, nil
	}
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "codeshift"), nil
}

// Open creates dir if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	memo, err := lru.New[string, *Payload](memoSize)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &Store{dir: dir, memo: memo}, nil
}

func (s *Store) Dir() string { return s.dir }

// Key hashes the rule set fingerprint with the path and content hash of every
// file, in input order.
func Key(fingerprint string, files []*source.File) string {
	h := sha256.New()
	h.Write([]byte(fingerprint))
	h.Write([]byte{0})
	for _, f := range files {
		h.Write([]byte(f.Path))
		h.Write([]byte{0})
		h.Write(f.Hash[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Store) pathFor(key string) string {
	return filepath.Join(s.dir, "reports", key[:2], key+".mp")
}

// Put writes p under key, replacing any previous payload atomically.
func (s *Store) Put(key string, p *Payload) error {
	if s == nil {
		return nil
	}
	if p.Incomplete {
		return ErrIncomplete
	}
	p.Schema = SchemaVersion
	p.Key = key

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp) //nolint:errcheck // gone after a successful rename

	if err := msgpack.NewEncoder(f).Encode(p); err != nil {
		f.Close() //nolint:errcheck
		return fmt.Errorf("cache: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	s.memo.Add(key, p)
	return nil
}

// Get loads the payload stored under key. A missing entry, a schema mismatch
// or a key mismatch is a miss, not an error.
func (s *Store) Get(key string) (*Payload, bool, error) {
	if s == nil {
		return nil, false, nil
	}
	if p, ok := s.memo.Get(key); ok {
		return p, true, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var p Payload
	if err := msgpack.NewDecoder(f).Decode(&p); err != nil {
		return nil, false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	if p.Schema != SchemaVersion || p.Key != key {
		return nil, false, nil
	}
	s.memo.Add(key, &p)
	return &p, true, nil
}

// Clear removes every stored payload.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memo.Purge()
	return os.RemoveAll(filepath.Join(s.dir, "reports"))
}
