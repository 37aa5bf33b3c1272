package memory

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chunkflow/internal/core/domain"
)

func TestObjectStore_Download(t *testing.T) {
	store := NewObjectStore()
	store.Put("kb/import-1/a.txt", []byte("hello"))

	var buf bytes.Buffer
	n, err := store.Download(context.Background(), "kb/import-1/a.txt", &buf)

	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, "hello", buf.String())
}

func TestObjectStore_PutCopies(t *testing.T) {
	store := NewObjectStore()
	content := []byte("hello")
	store.Put("k", content)
	content[0] = 'j'

	var buf bytes.Buffer
	_, err := store.Download(context.Background(), "k", &buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", buf.String())
}

func TestObjectStore_NotFound(t *testing.T) {
	_, err := NewObjectStore().Download(context.Background(), "missing", &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestObjectStore_CancelledContext(t *testing.T) {
	store := NewObjectStore()
	store.Put("k", []byte("x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Download(ctx, "k", &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestObjectStore_Keys(t *testing.T) {
	store := NewObjectStore()
	store.Put("b", nil)
	store.Put("a", nil)

	assert.Equal(t, []string{"a", "b"}, store.Keys())
}
