package imagecodec

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Handle is an opaque, locally dereferenceable reference to an encoded image.
type Handle string

// String implements fmt.Stringer.
func (h Handle) String() string {
	return string(h)
}

// Blob is the encoded image a handle points at.
type Blob struct {
	Data      []byte
	MIME      string
	Width     int
	Height    int
	CreatedAt time.Time
}

// Registry owns encoded images until their handles are released.
type Registry struct {
	mu    sync.RWMutex
	blobs map[Handle]Blob
	now   func() time.Time
}

// NewRegistry returns an empty handle registry.
func NewRegistry() *Registry {
	return &Registry{
		blobs: make(map[Handle]Blob),
		now:   time.Now,
	}
}

// Put stores blob and returns a fresh handle for it.
func (r *Registry) Put(blob Blob) Handle {
	h := Handle(uuid.NewString())
	if blob.CreatedAt.IsZero() {
		blob.CreatedAt = r.now()
	}
	r.mu.Lock()
	r.blobs[h] = blob
	r.mu.Unlock()
	return h
}

// Get dereferences a handle.
func (r *Registry) Get(h Handle) (Blob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	blob, ok := r.blobs[h]
	return blob, ok
}

// Release frees the blob behind h. Releasing an unknown handle is a no-op.
func (r *Registry) Release(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blobs[h]; !ok {
		return false
	}
	delete(r.blobs, h)
	return true
}

// Len reports how many handles are still live.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blobs)
}
