package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"invite-share/database/model"
	"invite-share/logger"

	"github.com/samber/lo"
)

const (
	// DefaultNewFlagExpiry 新记录高亮保持的时间
	DefaultNewFlagExpiry = 10 * time.Second
	// MaxCachedRecords bounds a cache that lives as long as a browser session.
	MaxCachedRecords = 500
)

// InviteSource is where a RecordCache loads from.
type InviteSource interface {
	GetInvites(ctx context.Context, limit int) ([]model.Invite, error)
}

// RecordCache mirrors the newest invites for one consumer and tracks which of
// them arrived with the latest refresh. Every returned slice is a copy.
type RecordCache struct {
	source InviteSource
	expiry time.Duration
	now    func() time.Time

	mu          sync.Mutex
	records     []model.Invite
	initialized bool
	lastAccess  time.Time

	timer      *time.Timer
	generation uint64
}

func NewRecordCache(source InviteSource, expiry time.Duration) *RecordCache {
	if expiry <= 0 {
		expiry = DefaultNewFlagExpiry
	}
	return &RecordCache{
		source:     source,
		expiry:     expiry,
		now:        time.Now,
		lastAccess: time.Now(),
	}
}

// Initialize loads the newest count records once; later calls return the
// current contents without touching the store.
func (c *RecordCache) Initialize(ctx context.Context, count int) ([]model.Invite, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastAccess = c.now()
	if c.initialized {
		return slices.Clone(c.records), nil
	}
	return c.loadLocked(ctx, count)
}

// Reload replaces the contents with the newest count records from the store.
func (c *RecordCache) Reload(ctx context.Context, count int) ([]model.Invite, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastAccess = c.now()
	return c.loadLocked(ctx, count)
}

func (c *RecordCache) loadLocked(ctx context.Context, count int) ([]model.Invite, error) {
	records, err := c.source.GetInvites(ctx, count)
	if err != nil {
		logger.Warning("load invite cache failed:", err)
		return nil, err
	}
	for i := range records {
		records[i].IsNew = false
	}
	c.stopTimerLocked()
	c.records = records
	c.initialized = true
	return slices.Clone(c.records), nil
}

// Merge puts copies of newRecords, flagged new, in front of the cached ones,
// clears the flag on everything already cached and schedules the flags to
// expire. An empty batch leaves the cache untouched.
func (c *RecordCache) Merge(newRecords []*model.Invite) []model.Invite {
	incoming := lo.Map(
		lo.Filter(newRecords, func(r *model.Invite, _ int) bool { return r != nil }),
		func(r *model.Invite, _ int) model.Invite {
			record := *r
			record.IsNew = true
			return record
		})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastAccess = c.now()
	if len(incoming) == 0 {
		return slices.Clone(c.records)
	}

	for i := range c.records {
		c.records[i].IsNew = false
	}
	merged := append(incoming, c.records...)
	slices.SortStableFunc(merged, func(a, b model.Invite) int {
		switch {
		case a.Timestamp > b.Timestamp:
			return -1
		case a.Timestamp < b.Timestamp:
			return 1
		}
		return 0
	})
	if len(merged) > MaxCachedRecords {
		merged = merged[:MaxCachedRecords]
	}
	c.records = merged

	c.scheduleLocked(c.expiry)
	return slices.Clone(c.records)
}

// ScheduleExpiry clears every new flag after delay. Only the most recently
// scheduled expiry is kept.
func (c *RecordCache) ScheduleExpiry(delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scheduleLocked(delay)
}

func (c *RecordCache) scheduleLocked(delay time.Duration) {
	c.stopTimerLocked()
	generation := c.generation
	c.timer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		// 定时器已被替换或取消
		if generation != c.generation {
			return
		}
		c.clearNewFlagsLocked()
		c.timer = nil
	})
}

func (c *RecordCache) stopTimerLocked() {
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// ClearNewFlags clears the flags immediately and cancels a pending expiry.
func (c *RecordCache) ClearNewFlags() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
	c.clearNewFlagsLocked()
}

func (c *RecordCache) clearNewFlagsLocked() {
	for i := range c.records {
		c.records[i].IsNew = false
	}
}

// Top returns a copy of the first count records.
func (c *RecordCache) Top(count int) []model.Invite {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastAccess = c.now()
	top := make([]model.Invite, max(0, min(count, len(c.records))))
	copy(top, c.records)
	return top
}

func (c *RecordCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

func (c *RecordCache) IsInitialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

func (c *RecordCache) LastAccess() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastAccess
}

// Invalidate empties the cache so the next Initialize reads the store again.
func (c *RecordCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
	c.records = nil
	c.initialized = false
}
