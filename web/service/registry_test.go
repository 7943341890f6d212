package service

import (
	"context"
	"testing"
	"time"

	"invite-share/database/model"

	isLib "github.com/matryer/is"
)

func TestCacheRegistryGet(t *testing.T) {
	is := isLib.New(t)
	r := NewCacheRegistry(&fakeInviteSource{}, time.Hour)

	a := r.Get("a")
	is.True(a == r.Get("a"))
	is.True(a != r.Get("b"))
	is.Equal(r.Len(), 2)
}

func TestCacheRegistryMergeAll(t *testing.T) {
	is := isLib.New(t)
	ctx := context.Background()
	r := NewCacheRegistry(&fakeInviteSource{invites: storedInvites()}, time.Hour)
	defer r.InvalidateAll()

	ready := r.Get("ready")
	_, err := ready.Initialize(ctx, 10)
	is.NoErr(err)
	idle := r.Get("idle")

	r.NotifyRefresh(&RefreshResult{Increment: 1, NewInvites: []*model.Invite{{Id: 9, Timestamp: 9000}}})

	is.Equal(ready.Len(), 4)
	is.True(ready.Top(1)[0].IsNew)
	is.Equal(idle.Len(), 0) // never initialized, will read the store instead

	is.Equal(r.MergeAll(nil), 0)
}

func TestCacheRegistryEvictIdle(t *testing.T) {
	is := isLib.New(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewCacheRegistry(&fakeInviteSource{}, time.Hour)
	r.now = func() time.Time { return now }

	r.Get("old")
	now = now.Add(20 * time.Minute)
	r.Get("fresh")
	now = now.Add(15 * time.Minute)

	is.Equal(r.EvictIdle(30*time.Minute), 1)
	is.Equal(r.Len(), 1)

	// touching a cache keeps it alive
	r.Get("fresh").Top(1)
	now = now.Add(29 * time.Minute)
	is.Equal(r.EvictIdle(30*time.Minute), 0)
}

func TestCacheRegistryInvalidateAndReload(t *testing.T) {
	is := isLib.New(t)
	ctx := context.Background()
	source := &fakeInviteSource{invites: storedInvites()}
	r := NewCacheRegistry(source, time.Hour)

	cache := r.Get("a")
	_, err := cache.Initialize(ctx, 2)
	is.NoErr(err)

	source.invites = source.invites[:1]
	is.NoErr(r.ReloadAll(ctx, 10))
	is.Equal(cache.Len(), 1)

	r.InvalidateAll()
	is.True(!cache.IsInitialized())
	is.NoErr(r.ReloadAll(ctx, 10)) // skips uninitialized caches
	is.True(!cache.IsInitialized())
}
