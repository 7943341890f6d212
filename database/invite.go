package database

import (
	"context"

	"invite-share/database/model"

	"gorm.io/gorm"
)

// AddInvite appends a record. The store assigns the id, and the timestamp
// when the caller left it zero; both are written back into invite. The id is
// returned only after the insert has committed.
func (s *Store) AddInvite(ctx context.Context, invite *model.Invite) (int64, error) {
	record := *invite
	record.Id = 0
	record.IsNew = false
	if record.Timestamp == 0 {
		record.Timestamp = s.now().UnixMilli()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&record).Error
	})
	if err != nil {
		return 0, storageErr("add invite", err)
	}

	invite.Id = record.Id
	invite.Timestamp = record.Timestamp
	return record.Id, nil
}

// GetInvites returns up to limit records, newest first. Records sharing a
// timestamp are ordered by id, later insertions first.
func (s *Store) GetInvites(ctx context.Context, limit int) ([]model.Invite, error) {
	if limit <= 0 {
		return []model.Invite{}, nil
	}
	// limit 由调用方传入，不能用来预分配
	invites := []model.Invite{}
	err := s.db.WithContext(ctx).
		Order("timestamp desc").
		Order("id desc").
		Limit(limit).
		Find(&invites).Error
	if err != nil {
		return nil, storageErr("get invites", err)
	}
	return invites, nil
}

func (s *Store) CountInvites(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Invite{}).Count(&count).Error; err != nil {
		return 0, storageErr("count invites", err)
	}
	return count, nil
}
