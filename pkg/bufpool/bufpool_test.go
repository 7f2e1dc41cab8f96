package bufpool

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_SizeClasses(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantCap int
	}{
		{"zero", 0, DefaultSmallSize},
		{"small", 100, DefaultSmallSize},
		{"small boundary", DefaultSmallSize, DefaultSmallSize},
		{"medium", DefaultSmallSize + 1, DefaultMediumSize},
		{"medium boundary", DefaultMediumSize, DefaultMediumSize},
		{"large", DefaultMediumSize + 1, DefaultLargeSize},
		{"large boundary", DefaultLargeSize, DefaultLargeSize},
		{"oversized", DefaultLargeSize + 1, DefaultLargeSize + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := Get(tt.size)
			defer Put(buf)

			assert.Len(t, buf, tt.size)
			assert.Equal(t, tt.wantCap, cap(buf))
		})
	}
}

func TestPut_IgnoresForeignSlices(t *testing.T) {
	assert.NotPanics(t, func() {
		Put(nil)
		Put(make([]byte, 10))
		Put(make([]byte, DefaultLargeSize*2))
	})
}

func TestPool_Reuse(t *testing.T) {
	p := NewPool(&Config{SmallSize: 16, MediumSize: 32, LargeSize: 64})

	buf := p.Get(10)
	require.Equal(t, 16, cap(buf))
	buf[0] = 'x'
	p.Put(buf)

	// Reslicing back to the class size keeps the slice poolable.
	again := p.Get(16)
	assert.Len(t, again, 16)
	assert.Equal(t, 16, cap(again))
}

func TestNewPool_Defaults(t *testing.T) {
	p := NewPool(&Config{MediumSize: 128})

	assert.Equal(t, DefaultSmallSize, cap(p.Get(1)))
	assert.Equal(t, 128, cap(p.Get(DefaultSmallSize+1)))
	assert.Equal(t, DefaultLargeSize, cap(p.Get(129)))
}

func TestBuffer(t *testing.T) {
	buf := GetBuffer()
	require.NotNil(t, buf)
	assert.Zero(t, buf.Len())

	buf.WriteString("hello")
	PutBuffer(buf)

	next := GetBuffer()
	assert.Zero(t, next.Len(), "pooled buffers come back empty")
	PutBuffer(next)
}

func TestPutBuffer_DropsLargeBuffers(t *testing.T) {
	assert.NotPanics(t, func() {
		PutBuffer(nil)
		PutBuffer(bytes.NewBuffer(make([]byte, 0, maxPooledBuffer+1)))
	})
}

func TestConcurrentAccess(t *testing.T) {
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				size := (i*100 + j) % (DefaultMediumSize * 2)
				buf := Get(size)
				if len(buf) != size {
					t.Errorf("Get(%d) returned len %d", size, len(buf))
				}
				Put(buf)

				b := GetBuffer()
				b.WriteByte(byte(j))
				PutBuffer(b)
			}
		}()
	}
	wg.Wait()
}

func BenchmarkGetPut(b *testing.B) {
	for b.Loop() {
		buf := Get(DefaultMediumSize)
		Put(buf)
	}
}
