package database

import (
	"context"
	"slices"

	"invite-share/database/model"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetConfigRaw returns the JSON encoded value of key, or nil when the key is absent.
func (s *Store) GetConfigRaw(ctx context.Context, key string) (json.RawMessage, error) {
	if key == "" {
		return nil, nil
	}
	var entry model.ConfigEntry
	err := s.db.WithContext(ctx).Where(&model.ConfigEntry{Key: key}).First(&entry).Error
	if err != nil {
		if IsNotFound(err) {
			// 配置不存在属于正常情况，返回 nil 而不是错误
			return nil, nil
		}
		return nil, storageErr("get config "+key, err)
	}
	return json.RawMessage(entry.Value), nil
}

// GetConfig decodes the value of key into out. found is false, with a nil
// error, when the key does not exist.
func (s *Store) GetConfig(ctx context.Context, key string, out any) (found bool, err error) {
	raw, err := s.GetConfigRaw(ctx, key)
	if err != nil || raw == nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, storageErr("decode config "+key, err)
	}
	return true, nil
}

// SetConfig inserts or replaces a single entry.
func (s *Store) SetConfig(ctx context.Context, key string, value any) error {
	return s.SetConfigs(ctx, map[string]any{key: value})
}

// SetConfigs writes all entries in one transaction; either all of them are
// stored or none.
func (s *Store) SetConfigs(ctx context.Context, values map[string]any) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return upsertConfigs(tx, values)
	})
	return storageErr("set config", err)
}

func upsertConfigs(tx *gorm.DB, values map[string]any) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		data, err := json.Marshal(values[key])
		if err != nil {
			return err
		}
		entry := model.ConfigEntry{Key: key, Value: string(data)}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&entry).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// GetAllConfig returns a snapshot of every entry.
func (s *Store) GetAllConfig(ctx context.Context) (map[string]json.RawMessage, error) {
	var entries []model.ConfigEntry
	if err := s.db.WithContext(ctx).Find(&entries).Error; err != nil {
		return nil, storageErr("get all config", err)
	}
	configs := make(map[string]json.RawMessage, len(entries))
	for _, entry := range entries {
		configs[entry.Key] = json.RawMessage(entry.Value)
	}
	return configs, nil
}
