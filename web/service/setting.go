package service

import (
	"context"

	"invite-share/database"
	"invite-share/database/model"
	"invite-share/logger"
	"invite-share/web/entity"

	"github.com/shopspring/decimal"
)

// FallbackDisplayCount 配置缺失或无效时，邀请列表默认显示的条数
const FallbackDisplayCount = 10

// SettingService gives typed access to the business settings kept in the
// config store.
type SettingService struct {
	store *database.Store
}

func NewSettingService(store *database.Store) *SettingService {
	return &SettingService{store: store}
}

func getOr[T any](ctx context.Context, store *database.Store, key string, fallback T) (T, error) {
	var v T
	found, err := store.GetConfig(ctx, key, &v)
	if err != nil {
		return fallback, err
	}
	if !found {
		return fallback, nil
	}
	return v, nil
}

func (s *SettingService) GetInvitePrice(ctx context.Context) (float64, error) {
	return getOr(ctx, s.store, model.KeyInvitePrice, model.DefaultInvitePrice)
}

func (s *SettingService) GetTodayCount(ctx context.Context) (int, error) {
	return getOr(ctx, s.store, model.KeyTodayCount, 0)
}

func (s *SettingService) GetTotalCount(ctx context.Context) (int, error) {
	return getOr(ctx, s.store, model.KeyTotalCount, 0)
}

func (s *SettingService) GetInviteCode(ctx context.Context) (string, error) {
	return getOr(ctx, s.store, model.KeyInviteCode, "")
}

// GetInviteDisplayCount never returns less than 1.
func (s *SettingService) GetInviteDisplayCount(ctx context.Context) (int, error) {
	n, err := getOr(ctx, s.store, model.KeyInviteDisplayCount, FallbackDisplayCount)
	if err != nil {
		return FallbackDisplayCount, err
	}
	if n < 1 {
		return FallbackDisplayCount, nil
	}
	return n, nil
}

// GetRefreshRules returns an empty table when the key is absent.
func (s *SettingService) GetRefreshRules(ctx context.Context) ([]model.RefreshRule, error) {
	return getOr(ctx, s.store, model.KeyRefreshRules, []model.RefreshRule{})
}

func (s *SettingService) GetAllSetting(ctx context.Context) (*entity.AllSetting, error) {
	setting := &entity.AllSetting{}
	var err error
	if setting.InvitePrice, err = s.GetInvitePrice(ctx); err != nil {
		return nil, err
	}
	if setting.TodayCount, err = s.GetTodayCount(ctx); err != nil {
		return nil, err
	}
	if setting.TotalCount, err = s.GetTotalCount(ctx); err != nil {
		return nil, err
	}
	if setting.InviteCode, err = s.GetInviteCode(ctx); err != nil {
		return nil, err
	}
	if setting.InviteDisplayCount, err = s.GetInviteDisplayCount(ctx); err != nil {
		return nil, err
	}
	if setting.RefreshRules, err = s.GetRefreshRules(ctx); err != nil {
		return nil, err
	}
	return setting, nil
}

// UpdateAllSetting validates the whole form first and then writes the six
// keys in one transaction, so a rejected form changes nothing.
func (s *SettingService) UpdateAllSetting(ctx context.Context, setting *entity.AllSetting) error {
	if err := setting.CheckValid(); err != nil {
		return err
	}
	err := s.store.SetConfigs(ctx, map[string]any{
		model.KeyInvitePrice:        setting.InvitePrice,
		model.KeyTodayCount:         setting.TodayCount,
		model.KeyTotalCount:         setting.TotalCount,
		model.KeyInviteCode:         setting.InviteCode,
		model.KeyInviteDisplayCount: setting.InviteDisplayCount,
		model.KeyRefreshRules:       setting.RefreshRules,
	})
	if err != nil {
		return err
	}
	logger.Infof("settings saved, %d refresh rules", len(setting.RefreshRules))
	return nil
}

// Earnings is count × price rounded to cents.
func Earnings(count int, price float64) string {
	return decimal.NewFromInt(int64(count)).Mul(decimal.NewFromFloat(price)).StringFixed(2)
}

func (s *SettingService) GetStats(ctx context.Context) (*entity.Stats, error) {
	setting, err := s.GetAllSetting(ctx)
	if err != nil {
		return nil, err
	}
	inviteCount, err := s.store.CountInvites(ctx)
	if err != nil {
		return nil, err
	}
	return &entity.Stats{
		InviteCode:    setting.InviteCode,
		InvitePrice:   decimal.NewFromFloat(setting.InvitePrice).StringFixed(2),
		TodayCount:    setting.TodayCount,
		TotalCount:    setting.TotalCount,
		TodayEarnings: Earnings(setting.TodayCount, setting.InvitePrice),
		TotalEarnings: Earnings(setting.TotalCount, setting.InvitePrice),
		InviteCount:   inviteCount,
	}, nil
}

// ResetAllData wipes both tables and restores the defaults.
func (s *SettingService) ResetAllData(ctx context.Context) error {
	logger.Warning("resetting all data")
	return s.store.DestroyAndReseed(ctx)
}
