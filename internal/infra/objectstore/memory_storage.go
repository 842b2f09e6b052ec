package objectstore

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"sync"

	"github.com/yanqian/polyglot-faq/internal/domain/faq"
)

// MemoryStorage keeps exports in memory. Useful for tests and local dev.
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string]storedBlob
}

type storedBlob struct {
	data        []byte
	contentType string
}

// NewMemoryStorage constructs storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string]storedBlob)}
}

// Put implements faq.SnapshotStorage.
func (s *MemoryStorage) Put(_ context.Context, key string, data []byte, contentType string) (faq.StoredObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hash := md5.Sum(data)
	s.blobs[key] = storedBlob{data: append([]byte(nil), data...), contentType: contentType}
	return faq.StoredObject{
		Key:  key,
		Size: int64(len(data)),
		ETag: hex.EncodeToString(hash[:]),
	}, nil
}

// Get returns a stored blob and its content type.
func (s *MemoryStorage) Get(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[key]
	if !ok {
		return nil, "", false
	}
	return append([]byte(nil), blob.data...), blob.contentType, true
}

var _ faq.SnapshotStorage = (*MemoryStorage)(nil)
