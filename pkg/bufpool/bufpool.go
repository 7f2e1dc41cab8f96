// Package bufpool recycles the byte slices used to scan shard lines and the
// buffers used to encode JSON and image responses.
//
// Slices come in three size classes. A request above the largest class is
// allocated directly and dropped on Put, so one oversized shard line does
// not pin megabytes in the pool.
//
//	buf := bufpool.Get(size)
//	defer bufpool.Put(buf)
package bufpool

import (
	"bytes"
	"sync"
)

// Size classes.
const (
	// DefaultSmallSize fits info.json and most single records (4KiB).
	DefaultSmallSize = 4 << 10

	// DefaultMediumSize is the initial shard scan buffer (64KiB).
	DefaultMediumSize = 64 << 10

	// DefaultLargeSize fits long records of big shapes (1MiB).
	DefaultLargeSize = 1 << 20

	// maxPooledBuffer is the largest bytes.Buffer returned to the pool.
	maxPooledBuffer = 4 << 20
)

// Pool hands out byte slices by size class.
type Pool struct {
	classes [3]class
}

type class struct {
	size int
	pool sync.Pool
}

// Config sets the size classes. Zero fields take the defaults.
type Config struct {
	SmallSize  int
	MediumSize int
	LargeSize  int
}

// NewPool creates a pool. A nil config uses the default classes.
func NewPool(cfg *Config) *Pool {
	var c Config
	if cfg != nil {
		c = *cfg
	}
	sizes := [3]int{
		orDefault(c.SmallSize, DefaultSmallSize),
		orDefault(c.MediumSize, DefaultMediumSize),
		orDefault(c.LargeSize, DefaultLargeSize),
	}

	p := &Pool{}
	for i, size := range sizes {
		p.classes[i].size = size
		p.classes[i].pool.New = func() any {
			buf := make([]byte, size)
			return &buf
		}
	}
	return p
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Get returns a slice of length size. Its capacity is the size class, so
// the caller may reslice up to cap. Return it with Put.
func (p *Pool) Get(size int) []byte {
	for i := range p.classes {
		c := &p.classes[i]
		if size <= c.size {
			buf := *c.pool.Get().(*[]byte)
			return buf[:size]
		}
	}
	return make([]byte, size)
}

// Put returns buf to its size class. Slices whose capacity matches no class
// are left to the garbage collector.
func (p *Pool) Put(buf []byte) {
	if buf == nil {
		return
	}
	for i := range p.classes {
		c := &p.classes[i]
		if cap(buf) == c.size {
			full := buf[:c.size]
			c.pool.Put(&full)
			return
		}
	}
}

var (
	globalPool = NewPool(nil)

	buffers = sync.Pool{
		New: func() any { return new(bytes.Buffer) },
	}
)

// Get returns a slice of length size from the shared pool.
func Get(size int) []byte {
	return globalPool.Get(size)
}

// Put returns a slice obtained from Get to the shared pool.
func Put(buf []byte) {
	globalPool.Put(buf)
}

// GetBuffer returns an empty bytes.Buffer.
func GetBuffer() *bytes.Buffer {
	return buffers.Get().(*bytes.Buffer)
}

// PutBuffer resets buf and returns it to the pool. Buffers that grew beyond
// 4MiB are discarded.
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledBuffer {
		return
	}
	buf.Reset()
	buffers.Put(buf)
}
