// Package blobpool implements the pooled byte-buffer allocator shared by
// bitmaps and GPU tile staging transfers. Filter pipelines allocate many
// same-size buffers per frame; reusing them cuts allocator pressure and, on
// the GPU path, upload/download driver churn.
package blobpool

import "sync"

// Blob owns a byte buffer of at least the requested size. Release returns
// the Blob to the pool it was allocated from; a Blob allocated outside a
// Pool (or already released) ignores a repeat Release.
type Blob struct {
	data     []byte
	pool     *Pool
	released bool
}

// Bytes returns the blob's backing buffer. An OOM blob (see Pool.Alloc)
// returns a nil slice; callers must check Empty before use.
func (b *Blob) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// Len returns the size of the blob's buffer.
func (b *Blob) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Empty reports whether this is the zero-value failure Blob returned on
// OOM: callers must check this before using Bytes().
func (b *Blob) Empty() bool {
	return b == nil || b.data == nil
}

// Release returns the blob's buffer to its owning pool for reuse. A Blob
// with no owning pool (or one already released) is a no-op.
func (b *Blob) Release() {
	if b == nil || b.pool == nil || b.released {
		return
	}
	b.released = true
	b.pool.release(b)
}

// bucket groups free blobs of identical byte size.
type bucket struct {
	free []*Blob
}

// Pool is a thread-safe pool of reusable byte blobs, bucketed by exact
// requested size. Concurrent Alloc/Release/Reserve/ReleaseUnused calls are
// serialized through an internal lock.
type Pool struct {
	mu      sync.Mutex
	buckets map[int]*bucket
}

// New creates an empty blob pool.
func New() *Pool {
	return &Pool{buckets: make(map[int]*bucket)}
}

// Alloc returns a Blob owning a buffer of at least size bytes, reusing a
// previously released blob of the same size when one is available. On
// allocation failure (recovered from a failed make) it returns an empty
// Blob rather than panicking; callers must check Empty().
func (p *Pool) Alloc(size int) (blob *Blob) {
	if size < 0 {
		return &Blob{}
	}

	p.mu.Lock()
	b := p.buckets[size]
	if b != nil && len(b.free) > 0 {
		blob = b.free[len(b.free)-1]
		b.free = b.free[:len(b.free)-1]
		p.mu.Unlock()
		blob.released = false
		for i := range blob.data {
			blob.data[i] = 0
		}
		return blob
	}
	p.mu.Unlock()

	return p.allocFresh(size)
}

func (p *Pool) allocFresh(size int) (blob *Blob) {
	defer func() {
		if recover() != nil {
			blob = &Blob{}
		}
	}()
	return &Blob{data: make([]byte, size), pool: p}
}

// Reserve pre-fills count blobs of the given size into the pool, so a
// subsequent burst of Alloc calls for that size can be served without
// touching the heap allocator.
func (p *Pool) Reserve(count, size int) {
	if count <= 0 || size < 0 {
		return
	}
	fresh := make([]*Blob, 0, count)
	for i := 0; i < count; i++ {
		b := p.allocFresh(size)
		if b.Empty() {
			break
		}
		b.released = true
		fresh = append(fresh, b)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	b := p.buckets[size]
	if b == nil {
		b = &bucket{}
		p.buckets[size] = b
	}
	b.free = append(b.free, fresh...)
}

// ReleaseUnused drops every blob currently sitting idle in the pool's free
// lists, letting the garbage collector reclaim them. Blobs currently
// checked out (not yet Released) are unaffected.
func (p *Pool) ReleaseUnused() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for size, b := range p.buckets {
		b.free = nil
		delete(p.buckets, size)
	}
}

func (p *Pool) release(blob *Blob) {
	size := len(blob.data)
	p.mu.Lock()
	defer p.mu.Unlock()
	b := p.buckets[size]
	if b == nil {
		b = &bucket{}
		p.buckets[size] = b
	}
	b.free = append(b.free, blob)
}
