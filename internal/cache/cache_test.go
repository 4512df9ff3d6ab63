package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetDelete(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	_, ok := store.Get("missing")
	assert.False(t, ok)

	store.Set("key", "value", time.Minute)
	got, ok := store.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value", got)

	store.Delete("key")
	_, ok = store.Get("key")
	assert.False(t, ok)
}

func TestEntriesExpire(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	store.Set("short", 1, 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)

	_, ok := store.Get("short")
	assert.False(t, ok)
}

func TestDeletePrefixIsScoped(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	store.Set("notifications:user:1:page:1:limit:10", "a", time.Minute)
	store.Set("notifications:user:1:unread", int64(3), time.Minute)
	store.Set("notifications:user:12:unread", int64(5), time.Minute)
	store.Set("products:list:1", "b", time.Minute)

	store.DeletePrefix("notifications:user:1:")

	_, ok := store.Get("notifications:user:1:page:1:limit:10")
	assert.False(t, ok)
	_, ok = store.Get("notifications:user:1:unread")
	assert.False(t, ok)

	// A different user and an unrelated namespace are untouched.
	_, ok = store.Get("notifications:user:12:unread")
	assert.True(t, ok)
	_, ok = store.Get("products:list:1")
	assert.True(t, ok)
}

func TestFlush(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	store.Set("a", 1, time.Minute)
	store.Set("b", 2, time.Minute)

	store.Flush()

	_, ok := store.Get("a")
	assert.False(t, ok)
	_, ok = store.Get("b")
	assert.False(t, ok)
}
