// Package pool provides bucketed sync.Pool instances for the per-frame
// scratch storage of the frame coder. Plane buffers are organized by size
// class so that reconstruction frames of one resolution recycle each other.
package pool

import "sync"

// Size classes for bucketed pools.
const (
	Size4K   = 4096
	Size16K  = 16384
	Size64K  = 65536
	Size256K = 262144
	Size1M   = 1048576
	Size4M   = 4194304
)

// bucketIndex returns the pool index for a given size.
func bucketIndex(size int) int {
	switch {
	case size <= Size4K:
		return 0
	case size <= Size16K:
		return 1
	case size <= Size64K:
		return 2
	case size <= Size256K:
		return 3
	case size <= Size1M:
		return 4
	case size <= Size4M:
		return 5
	default:
		return 6
	}
}

var sizes = [7]int{Size4K, Size16K, Size64K, Size256K, Size1M, Size4M, 0}

var pools [7]sync.Pool

func init() {
	for i := range pools {
		sz := sizes[i]
		pools[i] = sync.Pool{
			New: func() any {
				b := make([]byte, sz)
				return &b
			},
		}
	}
}

// Get returns a byte slice of length size. The contents are undefined; the
// caller must overwrite every byte it later reads. Call Put when done.
func Get(size int) []byte {
	idx := bucketIndex(size)
	bp := pools[idx].Get().(*[]byte)
	b := *bp
	if cap(b) < size {
		return make([]byte, size)
	}
	return b[:size]
}

// Put returns a byte slice to the pool. Slices below the smallest size
// class are dropped.
func Put(b []byte) {
	c := cap(b)
	if c < Size4K {
		return
	}
	idx := bucketIndex(c)
	// A slice lands in the bucket whose class it fully covers, so Get never
	// hands out a buffer smaller than the class minimum.
	if idx < len(sizes)-1 && c < sizes[idx] {
		idx--
	}
	b = b[:c]
	pools[idx].Put(&b)
}

// Slice is a typed free list for growable scratch slices, such as the token
// stream of a frame. The zero value is ready to use.
type Slice[T any] struct {
	p sync.Pool
}

// Get returns an empty slice with capacity for at least n elements.
func (s *Slice[T]) Get(n int) []T {
	if v := s.p.Get(); v != nil {
		buf := *(v.(*[]T))
		if cap(buf) >= n {
			return buf[:0]
		}
	}
	return make([]T, 0, n)
}

// Put returns buf to the free list.
func (s *Slice[T]) Put(buf []T) {
	if cap(buf) == 0 {
		return
	}
	buf = buf[:0]
	s.p.Put(&buf)
}
