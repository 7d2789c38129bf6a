package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 records path-style requests and answers like an empty S3 server
type fakeS3 struct {
	mu           sync.Mutex
	bucketExists bool
	requests     []string
	bodies       map[string]string
	contentTypes map[string]string
}

func newFakeS3(t *testing.T, bucketExists bool) (*fakeS3, *httptest.Server) {
	f := &fakeS3{bucketExists: bucketExists, bodies: map[string]string{}, contentTypes: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		path := strings.TrimSuffix(r.URL.Path, "/")
		f.requests = append(f.requests, r.Method+" "+path)

		switch {
		case r.Method == http.MethodHead && path == "/slips":
			if !f.bucketExists {
				w.WriteHeader(http.StatusNotFound)
				return
			}
		case r.Method == http.MethodPut && path == "/slips":
			f.bucketExists = true
		case r.Method == http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			f.bodies[path] = string(body)
			f.contentTypes[path] = r.Header.Get("Content-Type")
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func newTestArchive(t *testing.T, endpoint string) *S3DocumentArchive {
	t.Helper()
	a, err := NewS3DocumentArchive(context.Background(), &config.StorageConfig{
		Endpoint:     endpoint,
		Bucket:       "slips",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		UsePathStyle: true,
	})
	require.NoError(t, err)
	return a
}

func TestNewS3DocumentArchive_Validation(t *testing.T) {
	_, err := NewS3DocumentArchive(context.Background(), nil)
	assert.ErrorContains(t, err, "configuration is required")

	_, err = NewS3DocumentArchive(context.Background(), &config.StorageConfig{AccessKey: "k", SecretKey: "s"})
	assert.ErrorContains(t, err, "bucket is required")

	_, err = NewS3DocumentArchive(context.Background(), &config.StorageConfig{Bucket: "slips", AccessKey: "k"})
	assert.ErrorContains(t, err, "secret key")
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "", endpointURL("", true))
	assert.Equal(t, "http://minio:9000", endpointURL("minio:9000", false))
	assert.Equal(t, "https://minio:9000", endpointURL("minio:9000", true))
	assert.Equal(t, "http://minio:9000", endpointURL("http://minio:9000", true))
}

func TestS3DocumentArchive_Put(t *testing.T) {
	f, srv := newFakeS3(t, true)
	a := newTestArchive(t, srv.URL)

	key := "production-orders/42/issues/MI-20250101-ABC123.json"
	require.NoError(t, a.Put(context.Background(), key, []byte(`{"issue_no":"MI-20250101-ABC123"}`), "application/json"))

	path := "/slips/" + key
	assert.Contains(t, f.bodies[path], `"issue_no":"MI-20250101-ABC123"`)
	assert.Equal(t, "application/json", f.contentTypes[path])
	assert.Equal(t, "slips", a.Bucket())

	assert.ErrorContains(t, a.Put(context.Background(), "", nil, "application/json"), "key is required")
}

func TestS3DocumentArchive_EnsureBucket(t *testing.T) {
	t.Run("creates a missing bucket", func(t *testing.T) {
		f, srv := newFakeS3(t, false)
		require.NoError(t, newTestArchive(t, srv.URL).EnsureBucket(context.Background()))
		assert.Equal(t, []string{"HEAD /slips", "PUT /slips"}, f.requests)
	})

	t.Run("leaves an existing bucket alone", func(t *testing.T) {
		f, srv := newFakeS3(t, true)
		require.NoError(t, newTestArchive(t, srv.URL).EnsureBucket(context.Background()))
		assert.Equal(t, []string{"HEAD /slips"}, f.requests)
	})
}

func TestNoopArchive_Put(t *testing.T) {
	a := NewNoopArchive(nil)
	assert.NoError(t, a.Put(context.Background(), "k", []byte("x"), "application/json"))
	assert.Error(t, a.Put(context.Background(), "", nil, ""))
}
