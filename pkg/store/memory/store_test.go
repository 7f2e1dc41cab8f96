package memory

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/shapeview/pkg/store"
)

func TestStore_PutOpen(t *testing.T) {
	t.Parallel()

	s := New()
	s.PutString("a/info.json", `{"total_shapes":1}`)

	rc, err := s.Open(context.Background(), "a/info.json")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `{"total_shapes":1}`, string(data))
	assert.Equal(t, 1, s.Opens())
}

func TestStore_PutCopiesData(t *testing.T) {
	t.Parallel()

	s := New()
	buf := []byte("original")
	s.Put("k", buf)
	buf[0] = 'X'

	data, err := store.ReadAll(context.Background(), s, "k", 0)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestStore_NotFoundCountsOpen(t *testing.T) {
	t.Parallel()

	s := New()
	_, err := s.Open(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrObjectNotFound)
	assert.Equal(t, 1, s.Opens())
}

func TestStore_KeysAndDelete(t *testing.T) {
	t.Parallel()

	s := New()
	s.PutString("ds/chunks/chunk_2.json", "")
	s.PutString("ds/chunks/chunk_1.json", "")
	s.PutString("other/info.json", "")

	assert.Equal(t, []string{"ds/chunks/chunk_1.json", "ds/chunks/chunk_2.json"}, s.Keys("ds/"))

	s.Delete("ds/chunks/chunk_1.json")
	assert.Equal(t, []string{"ds/chunks/chunk_2.json"}, s.Keys("ds/"))
}

func TestStore_Close(t *testing.T) {
	t.Parallel()

	s := New()
	require.NoError(t, s.HealthCheck(context.Background()))
	require.NoError(t, s.Close())

	_, err := s.Open(context.Background(), "k")
	assert.ErrorIs(t, err, store.ErrStoreClosed)
	assert.ErrorIs(t, s.HealthCheck(context.Background()), store.ErrStoreClosed)
	assert.Equal(t, "memory", s.Type())
}
