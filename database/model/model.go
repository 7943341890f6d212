package model

import "time"

// Config keys.
const (
	KeyInvitePrice        = "invitePrice"
	KeyTodayCount         = "todayCount"
	KeyTotalCount         = "totalCount"
	KeyInviteCode         = "inviteCode"
	KeyInviteDisplayCount = "inviteDisplayCount"
	KeyRefreshRules       = "refreshRules"
)

// Defaults written when the store is first created.
const (
	DefaultInvitePrice        = 1.2
	DefaultTodayCount         = 3
	DefaultTotalCount         = 8653
	DefaultInviteCode         = "6985"
	DefaultInviteDisplayCount = 6
)

// ConfigEntry is one persisted setting; Value holds the JSON encoding.
type ConfigEntry struct {
	Key       string    `json:"key" gorm:"type:varchar(64);primaryKey"`
	Value     string    `json:"value" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"-" gorm:"autoUpdateTime"`
}

func (ConfigEntry) TableName() string {
	return "configs"
}

// Invite 邀请记录。IsNew 只在内存缓存中使用，不会写入数据库。
type Invite struct {
	Id          int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string  `json:"name" gorm:"type:varchar(255);not null"`
	Phone       string  `json:"phone" gorm:"type:varchar(32)"`
	Timestamp   int64   `json:"timestamp" gorm:"not null;index"` // epoch milliseconds
	AvatarColor string  `json:"avatarColor" gorm:"type:varchar(16)"`
	Amount      float64 `json:"amount"`
	IsNew       bool    `json:"isNew" gorm:"-"`
}

func (Invite) TableName() string {
	return "invites"
}

// RefreshRule is one weighted outcome of a refresh: with Probability percent,
// Increment new invites are produced.
type RefreshRule struct {
	Increment   int     `json:"increment"`
	Probability float64 `json:"probability"`
}

func DefaultRefreshRules() []RefreshRule {
	return []RefreshRule{
		{Increment: 0, Probability: 50},
		{Increment: 1, Probability: 30},
		{Increment: 2, Probability: 15},
		{Increment: 3, Probability: 5},
	}
}
