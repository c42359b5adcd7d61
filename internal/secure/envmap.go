package secure

import (
	"fmt"
	"sync"
)

// EnvMap maps environment variable names to secret values, keeping
// insertion order for deterministic output.
type EnvMap struct {
	mu     sync.Mutex
	keys   []string
	values map[string]*SecureBuffer
}

// NewEnvMap returns an empty map.
func NewEnvMap() *EnvMap {
	return &EnvMap{values: make(map[string]*SecureBuffer)}
}

// Set stores value under key, replacing and destroying any previous value.
func (m *EnvMap) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.values[key]; ok {
		old.Destroy()
	} else {
		m.keys = append(m.keys, key)
	}
	m.values[key] = NewSecureBuffer([]byte(value))
}

// Keys returns the keys in insertion order.
func (m *EnvMap) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.keys...)
}

// Len is the number of entries.
func (m *EnvMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys)
}

// Reveal decrypts every value and passes the plaintext map to fn. Locked
// buffers are destroyed when fn returns.
func (m *EnvMap) Reveal(fn func(values map[string]string) error) error {
	m.mu.Lock()
	plain := make(map[string]string, len(m.keys))
	for _, key := range m.keys {
		locked, err := m.values[key].Open()
		if err != nil {
			m.mu.Unlock()
			return fmt.Errorf("open secret %s: %w", key, err)
		}
		plain[key] = string(locked.Bytes())
		locked.Destroy()
	}
	m.mu.Unlock()

	return fn(plain)
}

// Destroy drops every value. The map is empty afterwards.
func (m *EnvMap) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range m.values {
		v.Destroy()
	}
	m.keys = nil
	m.values = make(map[string]*SecureBuffer)
}
