package webdav

import (
	"context"
	"io"
	"io/fs"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xwebdav "golang.org/x/net/webdav"
)

func newTestClient(t *testing.T) *WebDAV {
	t.Helper()
	srv := httptest.NewServer(&xwebdav.Handler{
		FileSystem: xwebdav.NewMemFS(),
		LockSystem: xwebdav.NewMemLS(),
	})
	t.Cleanup(srv.Close)

	client, err := NewClient(&Config{Endpoint: srv.URL, CustomPath: "pin-notes/images"})
	require.NoError(t, err)
	return client
}

func TestWebDAV_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	ok, err := client.Exists(ctx, "groceries")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = client.Open(ctx, "groceries")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	key, err := client.SendContent(ctx, "groceries", []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/pin-notes/images/groceries", key)

	_, err = client.SendContent(ctx, "groceries", []byte("png-bytes-v2"), "image/png")
	require.NoError(t, err, "overwrite")

	ok, err = client.Exists(ctx, "groceries")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := client.Open(ctx, "groceries")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "png-bytes-v2", string(data))

	require.NoError(t, client.Delete(ctx, "groceries"))
	require.NoError(t, client.Delete(ctx, "groceries"), "missing key")

	ok, err = client.Exists(ctx, "groceries")
	require.NoError(t, err)
	assert.False(t, ok)
}
