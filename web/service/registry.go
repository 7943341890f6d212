package service

import (
	"context"
	"sync"
	"time"

	"invite-share/database/model"
	"invite-share/logger"
)

// CacheRegistry keeps one RecordCache per browser session.
type CacheRegistry struct {
	source InviteSource
	expiry time.Duration
	now    func() time.Time

	mu     sync.Mutex
	caches map[string]*RecordCache
}

func NewCacheRegistry(source InviteSource, expiry time.Duration) *CacheRegistry {
	return &CacheRegistry{
		source: source,
		expiry: expiry,
		now:    time.Now,
		caches: make(map[string]*RecordCache),
	}
}

// Get returns the cache of id, creating an empty one on first use.
func (r *CacheRegistry) Get(id string) *RecordCache {
	r.mu.Lock()
	defer r.mu.Unlock()
	cache, ok := r.caches[id]
	if !ok {
		cache = NewRecordCache(r.source, r.expiry)
		cache.now = r.now
		cache.lastAccess = r.now()
		r.caches[id] = cache
	}
	return cache
}

func (r *CacheRegistry) snapshot() []*RecordCache {
	r.mu.Lock()
	defer r.mu.Unlock()
	caches := make([]*RecordCache, 0, len(r.caches))
	for _, cache := range r.caches {
		caches = append(caches, cache)
	}
	return caches
}

// MergeAll hands a refresh batch to every initialized cache. Caches that were
// never initialized will read the records from the store instead.
func (r *CacheRegistry) MergeAll(records []*model.Invite) int {
	if len(records) == 0 {
		return 0
	}
	merged := 0
	for _, cache := range r.snapshot() {
		if cache.IsInitialized() {
			cache.Merge(records)
			merged++
		}
	}
	return merged
}

// NotifyRefresh merges a refresh batch into the initialized caches.
func (r *CacheRegistry) NotifyRefresh(result *RefreshResult) {
	if result == nil {
		return
	}
	r.MergeAll(result.NewInvites)
}

// InvalidateAll empties every cache, used after the data was reset.
func (r *CacheRegistry) InvalidateAll() {
	for _, cache := range r.snapshot() {
		cache.Invalidate()
	}
}

// ReloadAll refreshes every initialized cache from the store.
func (r *CacheRegistry) ReloadAll(ctx context.Context, count int) error {
	for _, cache := range r.snapshot() {
		if !cache.IsInitialized() {
			continue
		}
		if _, err := cache.Reload(ctx, count); err != nil {
			return err
		}
	}
	return nil
}

// EvictIdle drops caches not touched within maxIdle and returns how many.
func (r *CacheRegistry) EvictIdle(maxIdle time.Duration) int {
	deadline := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, cache := range r.caches {
		if cache.LastAccess().Before(deadline) {
			cache.Invalidate()
			delete(r.caches, id)
			evicted++
		}
	}
	if evicted > 0 {
		logger.Debugf("evicted %d idle invite caches, %d left", evicted, len(r.caches))
	}
	return evicted
}

func (r *CacheRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.caches)
}
