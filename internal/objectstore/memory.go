package objectstore

import (
	"context"
	"fmt"
	"sync"
)

type Object struct {
	Content     []byte
	ContentType string
}

// Memory is an in-process Store for local runs and tests.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]Object
	BaseURL string
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]Object), BaseURL: "memory://"}
}

func (m *Memory) Upload(_ context.Context, bucket, key string, content []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := bucket + "/" + key
	if _, ok := m.objects[path]; ok {
		return fmt.Errorf("%w: %s", ErrObjectExists, path)
	}
	m.objects[path] = Object{Content: append([]byte(nil), content...), ContentType: contentType}
	return nil
}

func (m *Memory) PublicURL(bucket, key string) string {
	return m.BaseURL + bucket + "/" + key
}

// Get returns the stored object under bucket/key.
func (m *Memory) Get(bucket, key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[bucket+"/"+key]
	return obj, ok
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
