package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/mobilecollector/backoffice/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBackend struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryBackend) EnsureBucket(ctx context.Context) error { return nil }

func (m *memoryBackend) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memoryBackend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryBackend) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return ErrObjectNotFound
	}
	delete(m.objects, key)
	return nil
}

func (m *memoryBackend) Bucket() string { return "exports" }

func TestStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := newMemoryBackend()
	s := NewStorage(backend)

	payload := []byte("PK\x03\x04workbook")
	key := "exports/2026/10/14/01J-Laporan_Transaksi_2026-10-14.xlsx"
	require.NoError(t, s.Put(ctx, key, bytes.NewReader(payload), int64(len(payload)), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", backend.types[key])

	rc, err := s.Get(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, payload, got)

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.Equal(t, "exports", s.Bucket())
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.StorageConfig{Backend: "none"})
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = Open(ctx, config.StorageConfig{Backend: "ftp"})
	assert.Error(t, err)

	_, err = Open(ctx, config.StorageConfig{Backend: "minio", Minio: config.MinioConfig{Endpoint: "localhost:9000"}})
	assert.ErrorContains(t, err, "access key")

	_, err = Open(ctx, config.StorageConfig{Backend: "s3", S3: config.S3Config{AccessKey: "a", SecretKey: "b"}})
	assert.ErrorContains(t, err, "bucket")
}
