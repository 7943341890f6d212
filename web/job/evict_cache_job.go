package job

import (
	"time"

	"invite-share/web/service"
)

type EvictCacheJob struct {
	caches  *service.CacheRegistry
	maxIdle time.Duration
}

func NewEvictCacheJob(caches *service.CacheRegistry, maxIdle time.Duration) *EvictCacheJob {
	return &EvictCacheJob{caches: caches, maxIdle: maxIdle}
}

func (j *EvictCacheJob) Run() {
	j.caches.EvictIdle(j.maxIdle)
}
