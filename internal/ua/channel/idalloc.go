package channel

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
)

// maxAllocAttempts bounds the random-generation retry loop. With a
// 32-bit random space and the small number of concurrently open channels
// any one server holds, collisions are astronomically unlikely; this is
// a safety net against a degenerate RNG rather than an expected path.
const maxAllocAttempts = 100

// ErrIDSpaceExhausted indicates a unique nonzero id could not be found
// after maxAllocAttempts tries.
var ErrIDSpaceExhausted = errors.New("opcua: channel/token id space exhausted")

// IDAllocator generates unique, nonzero, random 32-bit identifiers. It
// is used for both channel ids and security token ids (spec §4.4),
// mirroring the BFD discriminator allocator's contract: unique across
// everything the allocator manages, never zero (zero is reserved —
// "channel id not yet assigned" for an unopened channel, just as BFD
// reserves zero for "Your Discriminator not yet known").
type IDAllocator struct {
	mu        sync.Mutex
	allocated map[uint32]struct{}
}

// NewIDAllocator returns an empty IDAllocator.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{allocated: make(map[uint32]struct{})}
}

// Allocate generates a unique, nonzero, random id.
func (a *IDAllocator) Allocate() (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var buf [4]byte
	for range maxAllocAttempts {
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, fmt.Errorf("generate random id: %w", err)
		}
		id := binary.BigEndian.Uint32(buf[:])
		if id == 0 {
			continue
		}
		if _, exists := a.allocated[id]; exists {
			continue
		}
		a.allocated[id] = struct{}{}
		return id, nil
	}
	return 0, fmt.Errorf("allocate id after %d attempts: %w", maxAllocAttempts, ErrIDSpaceExhausted)
}

// Release frees id for reuse. Releasing an unallocated id is a no-op.
func (a *IDAllocator) Release(id uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.allocated, id)
}

// IsAllocated reports whether id is currently allocated.
func (a *IDAllocator) IsAllocated(id uint32) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.allocated[id]
	return ok
}
