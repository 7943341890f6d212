package service

import (
	"context"
	"strconv"
	"time"

	"invite-share/config"
	"invite-share/database"
	"invite-share/logger"

	"github.com/google/uuid"
)

type Status struct {
	Version     string `json:"version"`
	Uptime      uint64 `json:"uptime"`
	InviteCount int64  `json:"inviteCount"`
	CacheCount  int    `json:"cacheCount"`
	TgBot       bool   `json:"tgBot"`
}

type ServerService struct {
	store     *database.Store
	caches    *CacheRegistry
	tgService TelegramService
	startTime time.Time
}

func NewServerService(store *database.Store, caches *CacheRegistry) *ServerService {
	return &ServerService{
		store:     store,
		caches:    caches,
		startTime: time.Now(),
	}
}

func (s *ServerService) SetTelegramService(tgService TelegramService) {
	s.tgService = tgService
}

func (s *ServerService) GetStatus(ctx context.Context) (*Status, error) {
	count, err := s.store.CountInvites(ctx)
	if err != nil {
		return nil, err
	}
	status := &Status{
		Version:     config.GetVersion(),
		Uptime:      uint64(time.Since(s.startTime).Seconds()),
		InviteCount: count,
	}
	if s.caches != nil {
		status.CacheCount = s.caches.Len()
	}
	if s.tgService != nil {
		status.TgBot = s.tgService.IsRunning()
	}
	return status, nil
}

// GetLogs returns the newest count buffered log lines at or above level.
func (s *ServerService) GetLogs(count string, level string) []string {
	c, err := strconv.Atoi(count)
	if err != nil || c < 0 {
		c = 0
	}
	return logger.GetLogs(c, level)
}

// GetDb returns a consistent copy of the database file.
func (s *ServerService) GetDb() ([]byte, error) {
	return s.store.Backup()
}

func (s *ServerService) GetNewUUID() map[string]string {
	return map[string]string{
		"uuid": uuid.NewString(),
	}
}
