package credstore

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a store with cheap KDF parameters.
func newTestStore(t *testing.T, path string, key string) *FileStore {
	t.Helper()
	s, err := NewFileStore(path, StaticKeySource(key))
	require.NoError(t, err)
	s.kdf = kdfParams{time: 1, memory: 1024, threads: 1}
	return s
}

func TestFileStoreSetAndGet(t *testing.T) {
	s := newTestStore(t, filepath.Join(t.TempDir(), "credentials.enc"), "master")

	require.NoError(t, s.Set(KeyClientID, "client-id"))
	require.NoError(t, s.Set(KeyClientSecret, "MjU5NGE3ZGY="))

	id, err := s.Get(KeyClientID)
	require.NoError(t, err)
	assert.Equal(t, "client-id", id)

	secret, err := s.Get(KeyClientSecret)
	require.NoError(t, err)
	assert.Equal(t, "MjU5NGE3ZGY=", secret)
}

func TestFileStoreNotFound(t *testing.T) {
	s := newTestStore(t, filepath.Join(t.TempDir(), "credentials.enc"), "master")

	_, err := s.Get("missing")
	var nf *ErrNotFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.Name)
	assert.Equal(t, "credential not found: missing", err.Error())

	assert.True(t, IsNotFound(s.Delete("missing")))
}

func TestFileStoreEmptyName(t *testing.T) {
	s := newTestStore(t, filepath.Join(t.TempDir(), "credentials.enc"), "master")
	assert.Error(t, s.Set("", "value"))
}

func TestFileStoreDeleteAndList(t *testing.T) {
	s := newTestStore(t, filepath.Join(t.TempDir(), "credentials.enc"), "master")

	names, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, name := range []string{"client_secret", "alt_client_id", "client_id"} {
		require.NoError(t, s.Set(name, "v"))
	}

	names, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alt_client_id", "client_id", "client_secret"}, names)

	require.NoError(t, s.Delete("alt_client_id"))
	_, err = s.Get("alt_client_id")
	assert.True(t, IsNotFound(err))

	names, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"client_id", "client_secret"}, names)
}

func TestFileStoreOverwrite(t *testing.T) {
	s := newTestStore(t, filepath.Join(t.TempDir(), "credentials.enc"), "master")

	require.NoError(t, s.Set(KeyClientSecret, "original"))
	require.NoError(t, s.Set(KeyClientSecret, "updated"))

	v, err := s.Get(KeyClientSecret)
	require.NoError(t, err)
	assert.Equal(t, "updated", v)
}

func TestFileStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")

	require.NoError(t, newTestStore(t, path, "master").Set(KeyClientID, "persistent"))

	v, err := newTestStore(t, path, "master").Get(KeyClientID)
	require.NoError(t, err)
	assert.Equal(t, "persistent", v)
}

func TestFileStoreWrongMasterKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")
	require.NoError(t, newTestStore(t, path, "right").Set(KeyClientID, "id"))

	_, err := newTestStore(t, path, "wrong").Get(KeyClientID)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestFileStoreFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")
	s := newTestStore(t, path, "master")
	require.NoError(t, s.Set(KeyClientSecret, "this-should-be-encrypted"))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "GIGA", string(contents[:4]))
	assert.Equal(t, byte(0x01), contents[4])
	assert.Greater(t, len(contents), headerLength)
	assert.False(t, bytes.Contains(contents, []byte("this-should-be-encrypted")))
}

func TestFileStoreTamperedHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")
	s := newTestStore(t, path, "master")
	require.NoError(t, s.Set(KeyClientID, "id"))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	// Flip a salt byte: the header is authenticated.
	contents[5] ^= 0xff
	require.NoError(t, os.WriteFile(path, contents, 0600))

	_, err = s.Get(KeyClientID)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestFileStoreRejectsForeignFiles(t *testing.T) {
	dir := t.TempDir()

	tests := map[string][]byte{
		"plaintext json": []byte(`{"client_id":"id"}`),
		"short":          []byte("GIGA\x01"),
	}
	for name, contents := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".enc")
			require.NoError(t, os.WriteFile(path, contents, 0600))

			_, err := newTestStore(t, path, "master").List()
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}

	path := filepath.Join(dir, "future.enc")
	future := append([]byte("GIGA\x09"), make([]byte, headerLength)...)
	require.NoError(t, os.WriteFile(path, future, 0600))
	_, err := newTestStore(t, path, "master").List()
	assert.ErrorContains(t, err, "unsupported credential vault version 9")
}

func TestFileStoreEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	names, err := newTestStore(t, path, "master").List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestFileStorePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file permissions not supported on Windows")
	}

	dir := filepath.Join(t.TempDir(), "nested", ".giga")
	path := filepath.Join(dir, "credentials.enc")
	require.NoError(t, newTestStore(t, path, "master").Set("k", "v"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files should be cleaned up")
}

func TestFileStoreConcurrentUse(t *testing.T) {
	s := newTestStore(t, filepath.Join(t.TempDir(), "credentials.enc"), "master")

	var wg sync.WaitGroup
	for _, name := range []string{"a", "b", "c", "d"} {
		name := name
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Set(name, name))
		}()
	}
	wg.Wait()

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, names)
}
