package localcache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/jewelry-admin/pkg/db"
	pkgredis "github.com/angelmondragon/jewelry-admin/pkg/redis"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func exerciseBackend(t *testing.T, backend Backend) {
	t.Helper()
	ctx := context.Background()

	_, found, err := backend.Read(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, backend.Write(ctx, "k", []byte(`[{"id":1}]`)))
	require.NoError(t, backend.Write(ctx, "k", []byte(`[{"id":2}]`)))
	value, found, err := backend.Read(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `[{"id":2}]`, string(value))

	require.NoError(t, backend.Delete(ctx, "k"))
	_, found, err = backend.Read(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemoryBackend())
}

func TestMemoryBackendCopiesValues(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	value := []byte("abc")
	require.NoError(t, backend.Write(ctx, "k", value))
	value[0] = 'z'
	got, _, _ := backend.Read(ctx, "k")
	require.Equal(t, "abc", string(got))
}

func TestSQLiteBackend(t *testing.T) {
	client, err := db.NewFromDialector(context.Background(), sqlite.Open("file::memory:"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	exerciseBackend(t, NewSQLiteBackend(client.DB()))
}

func TestRedisBackend(t *testing.T) {
	kv := &fakeKV{data: map[string]string{}}
	exerciseBackend(t, NewRedisBackend(kv))

	require.NoError(t, NewRedisBackend(kv).Write(context.Background(), ProductsKey, []byte("[]")))
	_, ok := kv.data["test:"+ProductsKey]
	require.True(t, ok, "keys should go through CacheKey")
}

type fakeKV struct {
	data map[string]string
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", pkgredis.ErrNotFound
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.data[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeKV) CacheKey(name string) string {
	return "test:" + name
}
