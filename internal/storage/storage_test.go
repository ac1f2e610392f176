package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndResolve(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	key, size, err := store.Save(".pdf", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.EqualValues(t, 5, size)
	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.True(t, store.Exists(key))

	f, err := store.Open(key)
	require.NoError(t, err)
	defer f.Close()
}

func TestSaveNormalizesExtension(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	key, _, err := store.Save("docx", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".docx"))
}

func TestResolveRejectsEscape(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../outside.pdf", "../../etc/passwd", "a/../../b.pdf"} {
		_, err := store.Resolve(key)
		assert.ErrorIs(t, err, ErrOutsideRoot, "key %q must not resolve", key)
	}
	assert.False(t, store.Exists("../outside.pdf"))
}

func TestExistsMissing(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	assert.False(t, store.Exists("nope.pdf"))
}
