package aws_s3

import (
	"context"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 answers the handful of path-style object calls the backend issues.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	methods []string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.methods = append(f.methods, r.Method+" "+r.URL.Path)

	switch r.Method {
	case http.MethodPut:
		_, _ = io.Copy(io.Discard, r.Body)
		f.objects[r.URL.Path] = "uploaded"
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if _, ok := f.objects[r.URL.Path]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Length", "0")
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		_, _ = io.WriteString(w, body)
	case http.MethodDelete:
		delete(f.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}
}

func newFakeClient(t *testing.T) (*S3, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := NewClient(&Config{
		Endpoint:        srv.URL,
		Region:          "us-east-1",
		BucketName:      "notes",
		AccessKeyID:     "key",
		AccessKeySecret: "secret",
		CustomPath:      "images",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	return client, fake
}

func TestS3_ExistsAndOpen(t *testing.T) {
	ctx := context.Background()
	client, fake := newFakeClient(t)
	fake.objects["/notes/images/groceries"] = "png-bytes"

	ok, err := client.Exists(ctx, "groceries")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	rc, err := client.Open(ctx, "groceries")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "png-bytes", string(data))

	_, err = client.Open(ctx, "missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestS3_SendContentAndDelete(t *testing.T) {
	ctx := context.Background()
	client, fake := newFakeClient(t)

	key, err := client.SendContent(ctx, "trip", []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "images/trip", key)

	require.NoError(t, client.Delete(ctx, "trip"))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Contains(t, fake.methods, "PUT /notes/images/trip")
	assert.Contains(t, fake.methods, "DELETE /notes/images/trip")
	assert.NotContains(t, fake.objects, "/notes/images/trip")
}

func TestS3_SignURL(t *testing.T) {
	client, _ := newFakeClient(t)

	url, err := client.SignURL(context.Background(), "groceries", 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.Contains(url, "/notes/images/groceries"), url)
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=600")
}
