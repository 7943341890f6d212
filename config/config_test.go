package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	isLib "github.com/matryer/is"
	"github.com/op/go-logging"
)

func TestNormalizeBasePath(t *testing.T) {
	tests := map[string]string{
		"/":      "/",
		"":       "/",
		"share":  "/share/",
		"/share": "/share/",
		"share/": "/share/",
		"/a/b/":  "/a/b/",
	}
	for in, want := range tests {
		if got := normalizeBasePath(in); got != want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	is := isLib.New(t)
	t.Chdir(t.TempDir())
	t.Setenv("INVITE_SHARE_CONFIG", "")
	t.Setenv("INVITE_SHARE_DB_FOLDER", "data")

	cfg, err := Load()
	is.NoErr(err)
	is.Equal(cfg.DBPath, filepath.Join("data", "invite-share.db"))
	is.Equal(cfg.Address(), "127.0.0.1:8080")
	is.Equal(cfg.BasePath, "/")
	is.Equal(cfg.RefreshSpec, "@every 30s")
	is.Equal(cfg.TodayResetSpec, "@midnight")
	is.Equal(cfg.CacheExpiry, 10*time.Second)
	is.Equal(cfg.GetLoggingLevel(), logging.INFO)
}

func TestLoadFileThenEnv(t *testing.T) {
	is := isLib.New(t)
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "invite-share.toml")
	content := `
port = 9090
base_path = "share"
log_level = "DEBUG"
cache_expiry = "3s"

[telegram]
token = "file-token"
chat_ids = "1,2"
`
	is.NoErr(os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("INVITE_SHARE_CONFIG", path)
	t.Setenv("INVITE_SHARE_PORT", "9191")
	t.Setenv("INVITE_SHARE_REFRESH_SPEC", "")

	cfg, err := Load()
	is.NoErr(err)
	is.Equal(cfg.Port, 9191) // env wins over the file
	is.Equal(cfg.BasePath, "/share/")
	is.Equal(cfg.GetLoggingLevel(), logging.DEBUG)
	is.Equal(cfg.CacheExpiry, 3*time.Second)
	is.Equal(cfg.RefreshSpec, "") // set but empty disables auto refresh
	is.Equal(cfg.TgBotToken, "file-token")
	is.Equal(cfg.TgBotChatIds, "1,2")
}

func TestLoadErrors(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("bad port", func(t *testing.T) {
		t.Setenv("INVITE_SHARE_CONFIG", "")
		t.Setenv("INVITE_SHARE_PORT", "http")
		if _, err := Load(); err == nil {
			t.Fatal("expected error for non-numeric port")
		}
	})
	t.Run("missing file", func(t *testing.T) {
		t.Setenv("INVITE_SHARE_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))
		if _, err := Load(); err == nil {
			t.Fatal("expected error for missing config file")
		}
	})
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("INVITE_SHARE_CONFIG", "")
		t.Setenv("INVITE_SHARE_CACHE_EXPIRY", "soon")
		if _, err := Load(); err == nil {
			t.Fatal("expected error for bad duration")
		}
	})
}
