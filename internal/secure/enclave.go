package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// SecureBuffer holds one secret value in an encrypted enclave.
type SecureBuffer struct {
	mu        sync.RWMutex
	enclave   *memguard.Enclave
	empty     bool
	destroyed bool
}

// NewSecureBuffer moves data into an enclave. memguard wipes data after
// copying it, so callers must not reuse the slice.
func NewSecureBuffer(data []byte) *SecureBuffer {
	if len(data) == 0 {
		// memguard refuses empty enclaves.
		return &SecureBuffer{empty: true}
	}
	return &SecureBuffer{enclave: memguard.NewEnclave(data)}
}

// Open decrypts the value into a locked buffer. The caller must Destroy
// the returned buffer. A destroyed or empty SecureBuffer opens to an empty
// buffer.
func (s *SecureBuffer) Open() (*memguard.LockedBuffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed || s.empty || s.enclave == nil {
		return memguard.NewBuffer(0), nil
	}
	return s.enclave.Open()
}

// Destroy drops the enclave. It is idempotent.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enclave = nil
	s.destroyed = true
}
