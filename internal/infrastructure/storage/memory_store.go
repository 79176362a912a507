package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	appprinting "github.com/billhub/backend/internal/application/printing"
)

// Ensure MemoryDocumentStore implements DocumentArchive
var _ appprinting.DocumentArchive = (*MemoryDocumentStore)(nil)

// MemoryDocumentStore keeps documents in memory. Intended for
// development and tests; nothing survives a restart.
type MemoryDocumentStore struct {
	// BaseURL prefixes generated download URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryDocumentStore creates an empty in-memory store
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		BaseURL: "https://storage.invalid",
		objects: make(map[string][]byte),
	}
}

// Upload stores data under the given key
func (s *MemoryDocumentStore) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[storageKey] = buf
	return nil
}

// GenerateDownloadURL returns a synthetic URL for a stored object
func (s *MemoryDocumentStore) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	s.mu.RLock()
	_, ok := s.objects[storageKey]
	s.mu.RUnlock()
	if !ok {
		return "", time.Time{}, errors.New("object not found")
	}

	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/" + storageKey, expiresAt, nil
}

// ObjectExists reports whether a key has been uploaded
func (s *MemoryDocumentStore) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[storageKey]
	return ok, nil
}

// Get returns a stored object, mainly for tests
func (s *MemoryDocumentStore) Get(storageKey string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[storageKey]
	return data, ok
}
