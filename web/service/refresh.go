package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"invite-share/database"
	"invite-share/database/model"
	"invite-share/logger"
	"invite-share/util/nickname"
	"invite-share/util/random"
	"invite-share/web/entity"

	"github.com/google/uuid"
)

// RefreshResult describes one refresh. NewInvites carry their assigned ids and
// are ordered newest first.
type RefreshResult struct {
	Increment  int             `json:"increment"`
	NewInvites []*model.Invite `json:"newInvites"`
	BatchID    string          `json:"batchId"`
}

// RefreshNotifier is told about every refresh that produced invites.
type RefreshNotifier interface {
	NotifyRefresh(result *RefreshResult)
}

// RefreshService fabricates new invite events according to the refresh rules.
type RefreshService struct {
	store          *database.Store
	settingService *SettingService
	src            random.Source
	names          *nickname.Generator
	notifiers      []RefreshNotifier
	now            func() time.Time

	// 计数器的读-改-写不能交错
	mu sync.Mutex
}

func NewRefreshService(store *database.Store, settingService *SettingService, src random.Source) *RefreshService {
	if src == nil {
		src = random.Default
	}
	return &RefreshService{
		store:          store,
		settingService: settingService,
		src:            src,
		names:          nickname.New(src),
		now:            time.Now,
	}
}

// SetNotifiers replaces the receivers of refresh batches. They are called in
// order, synchronously, while the refresh still holds its lock.
func (s *RefreshService) SetNotifiers(notifiers ...RefreshNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifiers = notifiers
}

// SelectRule walks rules accumulating probabilities and returns the first rule
// whose cumulative value reaches r (r in [0,100)). When the table sums to
// less than r the last rule is used. ok is false only for an empty table.
func SelectRule(rules []model.RefreshRule, r float64) (rule model.RefreshRule, ok bool) {
	if len(rules) == 0 {
		return model.RefreshRule{}, false
	}
	cumulative := 0.0
	for _, rule := range rules {
		cumulative += rule.Probability
		if r <= cumulative {
			return rule, true
		}
	}
	return rules[len(rules)-1], true
}

// Draw picks an increment from rules using the service's randomness.
func (s *RefreshService) Draw(rules []model.RefreshRule) int {
	rule, ok := SelectRule(rules, s.src.Float64()*100)
	if !ok || rule.Increment < 0 {
		return 0
	}
	return rule.Increment
}

// Refresh performs one draw. An increment of 0 writes nothing. Otherwise both
// counters are raised in one transaction and each synthesized invite is
// appended on its own; a failure stops the remaining writes without undoing
// the ones already committed.
func (s *RefreshService) Refresh(ctx context.Context) (*RefreshResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules, err := s.settingService.GetRefreshRules(ctx)
	if err != nil {
		return nil, err
	}
	price, err := s.settingService.GetInvitePrice(ctx)
	if err != nil {
		return nil, err
	}

	result := &RefreshResult{
		Increment:  s.Draw(rules),
		NewInvites: []*model.Invite{},
		BatchID:    uuid.NewString(),
	}
	if result.Increment == 0 {
		logger.Debugf("refresh %s: no new invites", result.BatchID)
		return result, nil
	}

	todayCount, err := s.settingService.GetTodayCount(ctx)
	if err != nil {
		return nil, err
	}
	totalCount, err := s.settingService.GetTotalCount(ctx)
	if err != nil {
		return nil, err
	}
	err = s.store.SetConfigs(ctx, map[string]any{
		model.KeyTodayCount: todayCount + result.Increment,
		model.KeyTotalCount: totalCount + result.Increment,
	})
	if err != nil {
		logger.Errorf("refresh %s: update counters: %v", result.BatchID, err)
		return nil, err
	}

	now := s.now()
	for i := 0; i < result.Increment; i++ {
		invite := s.synthesize(now, price)
		if _, err := s.store.AddInvite(ctx, invite); err != nil {
			logger.Errorf("refresh %s: appended %d of %d invites: %v", result.BatchID, i, result.Increment, err)
			return nil, err
		}
		result.NewInvites = append(result.NewInvites, invite)
	}

	slices.SortFunc(result.NewInvites, func(a, b *model.Invite) int {
		if a.Timestamp != b.Timestamp {
			if a.Timestamp > b.Timestamp {
				return -1
			}
			return 1
		}
		if a.Id > b.Id {
			return -1
		}
		if a.Id < b.Id {
			return 1
		}
		return 0
	})

	logger.Infof("refresh %s: +%d invites", result.BatchID, result.Increment)
	for _, notifier := range s.notifiers {
		notifier.NotifyRefresh(result)
	}
	return result, nil
}

// 下面这些写入会改动计数器，和 Refresh 持同一把锁，避免刷新把旧值写回去

// ResetTodayCount sets todayCount to 0 and leaves totalCount alone.
func (s *RefreshService) ResetTodayCount(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.SetConfig(ctx, model.KeyTodayCount, 0); err != nil {
		return err
	}
	logger.Info("today count reset")
	return nil
}

func (s *RefreshService) UpdateAllSetting(ctx context.Context, setting *entity.AllSetting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settingService.UpdateAllSetting(ctx, setting)
}

func (s *RefreshService) ResetAllData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settingService.ResetAllData(ctx)
}

// SetConfig writes a single config entry, any key including the counters.
func (s *RefreshService) SetConfig(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.SetConfig(ctx, key, value)
}

// synthesize 生成一条过去一小时内的邀请记录
func (s *RefreshService) synthesize(now time.Time, price float64) *model.Invite {
	offset := time.Duration(s.src.Float64() * float64(time.Hour))
	return &model.Invite{
		Name:        s.names.Nickname(),
		Phone:       s.names.Phone(),
		Timestamp:   now.Add(-offset).UnixMilli(),
		AvatarColor: random.AvatarColor(s.src),
		Amount:      price,
	}
}
