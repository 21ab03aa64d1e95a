package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Redis tests are opt-in: set REDIS_URL to a disposable instance.
func testClient(t *testing.T) *RedisPages {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("redis tests are disabled; set REDIS_URL to enable")
	}
	client, err := Connect(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisPages(client, time.Minute)
}

func TestNopAlwaysMisses(t *testing.T) {
	var p Pages = Nop{}
	ctx := context.Background()
	gen, err := p.Generation(ctx, "/dashboard/invoices")
	require.NoError(t, err)
	require.NoError(t, p.Set(ctx, "/dashboard/invoices", gen, "k", []byte("x")))
	_, err = p.Get(ctx, "/dashboard/invoices", gen, "k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.NoError(t, p.Invalidate(ctx, "/dashboard/invoices"))
}

func TestRedisPagesInvalidateDropsEveryVariant(t *testing.T) {
	p := testClient(t)
	ctx := context.Background()
	path := "/dashboard/invoices-" + uuid.NewString()
	other := "/dashboard/customers-" + uuid.NewString()

	gen, err := p.Generation(ctx, path)
	require.NoError(t, err)
	otherGen, err := p.Generation(ctx, other)
	require.NoError(t, err)

	require.NoError(t, p.Set(ctx, path, gen, "page=1", []byte("one")))
	require.NoError(t, p.Set(ctx, path, gen, "page=2&query=lee", []byte("two")))
	require.NoError(t, p.Set(ctx, other, otherGen, "", []byte("customers")))

	body, err := p.Get(ctx, path, gen, "page=2&query=lee")
	require.NoError(t, err)
	assert.Equal(t, "two", string(body))

	require.NoError(t, p.Invalidate(ctx, path))

	next, err := p.Generation(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, gen+1, next)
	_, err = p.Get(ctx, path, next, "page=1")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = p.Get(ctx, path, next, "page=2&query=lee")
	assert.ErrorIs(t, err, ErrMiss)

	body, err = p.Get(ctx, other, otherGen, "")
	require.NoError(t, err)
	assert.Equal(t, "customers", string(body))
}

func TestRedisPagesFillAfterInvalidateIsNotServed(t *testing.T) {
	p := testClient(t)
	ctx := context.Background()
	path := "/dashboard/invoices-" + uuid.NewString()

	gen, err := p.Generation(ctx, path)
	require.NoError(t, err)

	require.NoError(t, p.Invalidate(ctx, path))
	require.NoError(t, p.Set(ctx, path, gen, "page=1", []byte("stale")))

	next, err := p.Generation(ctx, path)
	require.NoError(t, err)
	_, err = p.Get(ctx, path, next, "page=1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisRevocations(t *testing.T) {
	p := testClient(t)
	store := NewRedisRevocations(p.client)
	ctx := context.Background()
	id := uuid.New()

	revoked, err := store.IsRevoked(ctx, id)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.MarkRevoked(ctx, id, time.Now().Add(time.Minute)))

	revoked, err = store.IsRevoked(ctx, id)
	require.NoError(t, err)
	assert.True(t, revoked)
}
