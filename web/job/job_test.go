package job

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"invite-share/database"
	"invite-share/database/model"
	"invite-share/web/service"

	isLib "github.com/matryer/is"
)

func newTestStore(t *testing.T) *database.Store {
	t.Helper()
	store, err := database.Open(filepath.Join(t.TempDir(), "job.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func todayCount(t *testing.T, store *database.Store) int {
	t.Helper()
	var n int
	if _, err := store.GetConfig(context.Background(), model.KeyTodayCount, &n); err != nil {
		t.Fatalf("get today count: %v", err)
	}
	return n
}

func TestRefreshJob(t *testing.T) {
	is := isLib.New(t)
	store := newTestStore(t)
	is.NoErr(store.SetConfig(context.Background(), model.KeyRefreshRules, []model.RefreshRule{{Increment: 1, Probability: 100}}))
	refreshService := service.NewRefreshService(store, service.NewSettingService(store), rand.New(rand.NewSource(1)))
	j := NewRefreshJob(refreshService)

	j.Run()
	is.Equal(todayCount(t, store), model.DefaultTodayCount+1)
	is.True(!j.running.Load())

	// an overlapping run is skipped
	j.running.Store(true)
	j.Run()
	is.Equal(todayCount(t, store), model.DefaultTodayCount+1)
}

func TestRefreshJobSurvivesStorageError(t *testing.T) {
	is := isLib.New(t)
	store := newTestStore(t)
	refreshService := service.NewRefreshService(store, service.NewSettingService(store), nil)
	j := NewRefreshJob(refreshService)
	is.NoErr(store.Close())

	j.Run()
	is.True(!j.running.Load())
}

func TestEvictCacheJob(t *testing.T) {
	is := isLib.New(t)
	caches := service.NewCacheRegistry(service.NewInviteService(newTestStore(t)), time.Hour)
	caches.Get("a")
	time.Sleep(5 * time.Millisecond)

	NewEvictCacheJob(caches, time.Hour).Run()
	is.Equal(caches.Len(), 1)

	NewEvictCacheJob(caches, time.Millisecond).Run()
	is.Equal(caches.Len(), 0)
}

func TestResetTodayJob(t *testing.T) {
	is := isLib.New(t)
	store := newTestStore(t)

	NewResetTodayJob(service.NewRefreshService(store, service.NewSettingService(store), nil)).Run()
	is.Equal(todayCount(t, store), 0)

	var total int
	_, err := store.GetConfig(context.Background(), model.KeyTotalCount, &total)
	is.NoErr(err)
	is.Equal(total, model.DefaultTotalCount)
}
