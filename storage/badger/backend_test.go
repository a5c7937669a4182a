package badger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LessGoh/Claude-QA-UI-v2/storage"
	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "db")
	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_PathIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := OpenBackend(path, false)
	assert.Error(t, err)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	err = backend.WithTx(func(tx *badger.Txn) error { return nil }, false)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	err = backend.WithBatch(func(wb *badger.WriteBatch) error { return nil })
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestWithTx(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	t.Run("committed write is visible", func(t *testing.T) {
		err := backend.WithTx(func(tx *badger.Txn) error {
			if err := tx.Set([]byte("k1"), []byte("v1")); err != nil {
				return err
			}
			return tx.Commit()
		}, true)
		require.NoError(t, err)

		err = backend.WithTx(func(tx *badger.Txn) error {
			_, err := tx.Get([]byte("k1"))
			return err
		}, false)
		assert.NoError(t, err)
	})

	t.Run("error discards the transaction", func(t *testing.T) {
		err := backend.WithTx(func(tx *badger.Txn) error {
			if err := tx.Set([]byte("k2"), []byte("v2")); err != nil {
				return err
			}
			return assert.AnError
		}, true)
		assert.Equal(t, assert.AnError, err)

		err = backend.WithTx(func(tx *badger.Txn) error {
			_, err := tx.Get([]byte("k2"))
			return err
		}, false)
		assert.ErrorIs(t, err, badger.ErrKeyNotFound)
	})
}

func TestWithBatch(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.WithBatch(func(wb *badger.WriteBatch) error {
		for _, k := range []string{"a", "b", "c"} {
			if err := wb.Set([]byte(k), []byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = backend.WithTx(func(tx *badger.Txn) error {
		for _, k := range []string{"a", "b", "c"} {
			if _, err := tx.Get([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	}, false)
	assert.NoError(t, err)
}

func TestGetSequence(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	seq, err := backend.GetSequence("test_sequence")
	require.NoError(t, err)
	require.NotNil(t, seq)
	defer seq.Release()

	id1, err := seq.Next()
	require.NoError(t, err)

	id2, err := seq.Next()
	require.NoError(t, err)

	assert.Greater(t, id2, id1)
}

func TestKeys_IndexPrefixes(t *testing.T) {
	personal := makeDocumentRecordKey("pdf-qa-personal-alice", 1)
	shared := makeDocumentRecordKey("pdf-qa-shared", 1)

	assert.True(t, len(personal) == len(shared))
	assert.NotEqual(t, personal, shared)
	assert.Equal(t, makePartialDocumentRecordKey("pdf-qa-shared"), shared[:len(shared)-8])

	fragment := makeFragmentKey("pdf-qa-shared", "abc")
	assert.Equal(t, makePartialFragmentKey("pdf-qa-shared"), fragment[:len(fragment)-3])
}
