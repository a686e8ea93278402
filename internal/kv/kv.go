// Package kv persists named JSON values to durable storage.
//
// A Store maps a key to one serialized value. The file-backed store keeps one
// file per key inside a data directory and replaces it atomically on every
// save, so a crash mid-write leaves the previous value in place.
package kv

import (
	"errors"
	"strings"
)

// ErrEmptyKey is returned when a key is empty after sanitizing.
var ErrEmptyKey = errors.New("kv: empty key")

// Store loads and saves values by key.
//
// Load reports ok=false when the key has never been saved. Save replaces the
// previous value entirely.
type Store interface {
	Load(key string) (data []byte, ok bool, err error)
	Save(key string, data []byte) error
}

// sanitizeKey maps a key to a name that is safe to use as a file name.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrEmptyKey
	}

	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '.' || c == '_' || c == '-'
		if !valid {
			b.WriteByte('_')
			continue
		}
		b.WriteByte(c)
	}

	name := strings.Trim(b.String(), ".")
	if name == "" {
		return "", ErrEmptyKey
	}
	return name, nil
}
