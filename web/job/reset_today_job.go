package job

import (
	"context"

	"invite-share/logger"
	"invite-share/web/service"
)

// ResetTodayJob 每天零点把“今日新增”清零，总邀请数不变
type ResetTodayJob struct {
	refreshService *service.RefreshService
}

func NewResetTodayJob(refreshService *service.RefreshService) *ResetTodayJob {
	return &ResetTodayJob{refreshService: refreshService}
}

func (j *ResetTodayJob) Run() {
	if err := j.refreshService.ResetTodayCount(context.Background()); err != nil {
		logger.Warning("reset today count failed:", err)
	}
}
