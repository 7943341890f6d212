package service

import (
	"math/rand"
	"path/filepath"
	"testing"

	"invite-share/database"
)

func newTestStore(t *testing.T) *database.Store {
	t.Helper()
	store, err := database.Open(filepath.Join(t.TempDir(), "invite-share.db"),
		database.WithSource(rand.New(rand.NewSource(42))))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}
