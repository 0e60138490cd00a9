package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("key not found")

// Well-known keys shared by the stores and the remote services.
const (
	KeyAccessToken     = "access_token"
	KeyUserName        = "user_name"
	KeyAuth            = "auth-storage"
	KeyNotes           = "notes-storage"
	KeyPrivacy         = "privacy-storage"
	KeyTheme           = "theme-storage"
	KeyLegacyConsent   = "cookie-consent"
	KeyLegacyConsentTS = "cookie-consent-timestamp"
)

// Store is a string-keyed byte-valued persistence backend.
// Get returns ErrNotFound for a missing key; Remove of a missing key succeeds.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// GetJSON decodes the value stored under key into v.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

type namespaced struct {
	Store
	prefix string
}

// Namespaced prefixes every key with "prefix:" so several applications can share one backend.
func Namespaced(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return &namespaced{Store: s, prefix: prefix}
}

func (n *namespaced) key(k string) string { return n.prefix + ":" + k }

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.Store.Get(ctx, n.key(key))
}

func (n *namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.Store.Set(ctx, n.key(key), value)
}

func (n *namespaced) Remove(ctx context.Context, key string) error {
	return n.Store.Remove(ctx, n.key(key))
}
