package service

import (
	"context"

	"invite-share/database"
	"invite-share/database/model"

	"github.com/goccy/go-json"
	"github.com/skip2/go-qrcode"
)

// InviteService exposes the invite log and the config store to the API.
type InviteService struct {
	store *database.Store
}

func NewInviteService(store *database.Store) *InviteService {
	return &InviteService{store: store}
}

// GetInvites satisfies InviteSource.
func (s *InviteService) GetInvites(ctx context.Context, limit int) ([]model.Invite, error) {
	return s.store.GetInvites(ctx, limit)
}

func (s *InviteService) AddInvite(ctx context.Context, invite *model.Invite) (int64, error) {
	return s.store.AddInvite(ctx, invite)
}

// GetConfig returns nil for an absent key.
func (s *InviteService) GetConfig(ctx context.Context, key string) (json.RawMessage, error) {
	return s.store.GetConfigRaw(ctx, key)
}

func (s *InviteService) GetAllConfig(ctx context.Context) (map[string]json.RawMessage, error) {
	return s.store.GetAllConfig(ctx)
}

// QRCode renders content as a PNG of size×size pixels.
func (s *InviteService) QRCode(content string, size int) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, size)
}
