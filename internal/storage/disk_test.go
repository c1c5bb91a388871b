package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestNewDisk_RequiresExistingDir(t *testing.T) {
	_, err := NewDisk("")
	assert.Error(t, err)

	missing := filepath.Join(t.TempDir(), "nope")
	_, err = NewDisk(missing)
	assert.Error(t, err)
	_, statErr := os.Stat(missing)
	assert.True(t, os.IsNotExist(statErr), "upload dir must not be created")

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = NewDisk(file)
	assert.Error(t, err)
}

func TestDisk_PutGet(t *testing.T) {
	dir := t.TempDir()
	st, err := NewDisk(dir)
	require.NoError(t, err)
	ctx := context.Background()

	info, err := st.Put(ctx, "abc-report.docx", strings.NewReader("hello"), PutObjectOptions{Size: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)
	assert.Equal(t, filepath.Join(dir, "abc-report.docx"), info.Path)
	assert.Equal(t, st.Path("abc-report.docx"), info.Path)

	rc, got, err := st.Get(ctx, "abc-report.docx")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, int64(5), got.Size)

	_, _, err = st.Get(ctx, "abc-missing.docx")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDisk_PdfContentType(t *testing.T) {
	st, err := NewDisk(t.TempDir())
	require.NoError(t, err)

	info, err := st.Put(context.Background(), "x.pdf", strings.NewReader("%PDF"), PutObjectOptions{Size: -1})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", info.ContentType)
}

func TestDisk_FailedWriteLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	st, err := NewDisk(dir)
	require.NoError(t, err)

	_, err = st.Put(context.Background(), "out.pdf", failingReader{}, PutObjectOptions{Size: -1})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no partial or final file may remain")
}

func TestDisk_InvalidKeys(t *testing.T) {
	st, err := NewDisk(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", ".", "..", "../escape", "a/b", `a\b`} {
		_, err := st.Put(ctx, key, strings.NewReader("x"), PutObjectOptions{})
		assert.ErrorIs(t, err, ErrInvalidKey, key)
		_, _, err = st.Get(ctx, key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestDisk_CanceledContext(t *testing.T) {
	st, err := NewDisk(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = st.Put(ctx, "a.txt", strings.NewReader("x"), PutObjectOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDisk_ConcurrentPuts(t *testing.T) {
	dir := t.TempDir()
	st, err := NewDisk(dir)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a'+i)) + ".txt"
			_, err := st.Put(context.Background(), key, strings.NewReader(key), PutObjectOptions{})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}

func TestDisk_Ping(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "up")
	require.NoError(t, os.Mkdir(dir, 0o755))
	st, err := NewDisk(dir)
	require.NoError(t, err)
	assert.NoError(t, st.Ping(context.Background()))

	require.NoError(t, os.Remove(dir))
	assert.Error(t, st.Ping(context.Background()))
}
