package job

import (
	"context"
	"time"

	"invite-share/logger"
	"invite-share/util/common"
	"invite-share/web/service"

	"go.uber.org/atomic"
)

const refreshTimeout = 30 * time.Second

// RefreshJob 定时自动刷新邀请，结果经由通知合并进所有会话缓存
type RefreshJob struct {
	refreshService *service.RefreshService
	running        atomic.Bool
}

func NewRefreshJob(refreshService *service.RefreshService) *RefreshJob {
	return &RefreshJob{refreshService: refreshService}
}

func (j *RefreshJob) Run() {
	// 上一次还没结束就跳过
	if !j.running.CompareAndSwap(false, true) {
		logger.Debug("refresh job still running, skip")
		return
	}
	defer j.running.Store(false)
	defer common.Recover("refresh job panic")

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	result, err := j.refreshService.Refresh(ctx)
	if err != nil {
		logger.Warning("auto refresh failed:", err)
		return
	}
	if result.Increment > 0 {
		logger.Infof("auto refresh %s added %d invites", result.BatchID, result.Increment)
	}
}
