package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	myErr "baraholka-main/internal/types/errors"
)

func TestStorage_Save(t *testing.T) {
	dir := t.TempDir()
	logger := zaptest.NewLogger(t).Sugar()

	storage, err := NewStorage(dir, "http://localhost:8080/", logger)
	require.NoError(t, err)

	url, err := storage.Save("photo.JPG", strings.NewReader("fake image bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/media/"), "url=%s", url)
	assert.True(t, strings.HasSuffix(url, ".jpg"), "url=%s", url)

	// Файл действительно лежит в каталоге с содержимым
	name := url[strings.LastIndex(url, "/")+1:]
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(data))
}

func TestStorage_Save_UniqueNames(t *testing.T) {
	dir := t.TempDir()
	logger := zaptest.NewLogger(t).Sugar()

	storage, err := NewStorage(dir, "http://localhost:8080", logger)
	require.NoError(t, err)

	// Два файла с одинаковым исходным именем не должны перезаписать друг друга
	first, err := storage.Save("same.png", strings.NewReader("first"))
	require.NoError(t, err)
	second, err := storage.Save("same.png", strings.NewReader("second"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestStorage_Save_RejectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	logger := zaptest.NewLogger(t).Sugar()

	storage, err := NewStorage(dir, "http://localhost:8080", logger)
	require.NoError(t, err)

	_, err = storage.Save("malware.exe", strings.NewReader("nope"))
	assert.ErrorIs(t, err, myErr.ErrUnsupportedMediaType)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
