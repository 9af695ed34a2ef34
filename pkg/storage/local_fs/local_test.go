package local_fs

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *LocalFS {
	t.Helper()
	client, err := NewClient(&Config{SavePath: t.TempDir(), CustomPath: "images"})
	require.NoError(t, err)
	return client
}

func TestLocalFS_SendContentOverwrites(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	savedPath, err := client.SendContent(ctx, "groceries", []byte("first"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(client.Config.SavePath, "images", "groceries"), savedPath)

	_, err = client.SendContent(ctx, "groceries", []byte("second"), "text/plain")
	require.NoError(t, err)

	data, err := os.ReadFile(savedPath)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(savedPath))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestLocalFS_ExistsOpenDelete(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	ok, err := client.Exists(ctx, "trip")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = client.Open(ctx, "trip")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = client.SendContent(ctx, "trip", []byte("png-bytes"), "image/png")
	require.NoError(t, err)

	ok, err = client.Exists(ctx, "trip")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := client.Open(ctx, "trip")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, client.Delete(ctx, "trip"))
	require.NoError(t, client.Delete(ctx, "trip"), "deleting a missing key is not an error")

	ok, err = client.Exists(ctx, "trip")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewClientRequiresSavePath(t *testing.T) {
	_, err := NewClient(&Config{})
	assert.Error(t, err)
}
