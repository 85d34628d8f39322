package store

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

type memoryEntry struct {
	fields    map[string]any
	expiresAt time.Time // zero means no expiry
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryStorage is a process-local Storage used when no redis backend is
// configured and in tests. Values are kept as field maps, mirroring the
// redis hash layout; expiry is enforced lazily on access.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
}

// encodeFields builds the hash field map from the struct's redis tags. Field
// values are stored as-is, so types without exported fields (time.Time)
// round-trip unchanged instead of being flattened away.
func encodeFields(val any) (map[string]any, error) {
	rv := reflect.ValueOf(val)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot encode %T as hash fields", val)
	}
	fields := make(map[string]any)
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(field.Tag.Get("redis"), ",")
		if tag == "" || tag == "-" {
			continue
		}
		fields[tag] = rv.Field(i).Interface()
	}
	return fields, nil
}

func decodeFields(input map[string]any, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "redis",
		Result:  output,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

func (s *MemoryStorage) Get(ctx context.Context, key string, val any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return ErrNotFound
	}
	if entry.expired(time.Now()) {
		delete(s.entries, key)
		return ErrNotFound
	}
	return decodeFields(entry.fields, val)
}

func (s *MemoryStorage) Set(ctx context.Context, key string, val any, expiresIn time.Duration) error {
	fields, err := encodeFields(val)
	if err != nil {
		return err
	}
	entry := &memoryEntry{fields: fields}
	if expiresIn > 0 {
		entry.expiresAt = time.Now().Add(expiresIn)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}

func (s *MemoryStorage) Save(ctx context.Context, key string, val any) error {
	return s.Set(ctx, key, val, -1)
}

func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok || entry.expired(time.Now()) {
		delete(s.entries, key)
		return ErrNotFound
	}
	delete(s.entries, key)
	return nil
}

func (s *MemoryStorage) Expire(ctx context.Context, key string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[key]; ok {
		entry.expiresAt = expiresAt
	}
	return nil
}

func (s *MemoryStorage) SetAttr(ctx context.Context, key string, field string, val any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok || entry.expired(time.Now()) {
		entry = &memoryEntry{fields: make(map[string]any)}
		s.entries[key] = entry
	}
	entry.fields[field] = val
	return nil
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		entries: make(map[string]*memoryEntry),
	}
}
