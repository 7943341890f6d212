package web

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"invite-share/config"
	"invite-share/database"
	"invite-share/web/entity"
	"invite-share/web/locale"

	"github.com/goccy/go-json"
	isLib "github.com/matryer/is"
	"github.com/pelletier/go-toml/v2"
)

func flattenKeys(prefix string, m map[string]any, out *[]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			flattenKeys(key, sub, out)
			continue
		}
		*out = append(*out, key)
	}
}

func translationKeys(t *testing.T, name string) []string {
	t.Helper()
	data, err := i18nFS.ReadFile("translation/" + name)
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}
	var keys []string
	flattenKeys("", m, &keys)
	sort.Strings(keys)
	return keys
}

func TestTranslationsHaveSameKeys(t *testing.T) {
	is := isLib.New(t)
	zh := translationKeys(t, "translate.zh-CN.toml")
	en := translationKeys(t, "translate.en-US.toml")
	is.True(len(zh) > 0)
	is.Equal(zh, en)
}

func TestEmbeddedLocalizer(t *testing.T) {
	is := isLib.New(t)
	is.NoErr(locale.InitLocalizer(i18nFS, "en-US"))
	is.Equal(len(locale.Languages()), 2)
	is.True(locale.I18n(locale.Bot, "success") != "success")
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := database.Open(filepath.Join(t.TempDir(), "web.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	cfg := &config.Config{
		BasePath:      "/share/",
		CacheExpiry:   time.Second,
		SessionSecret: "test-secret",
	}
	return NewServer(cfg, store)
}

func TestRouterServesAPIUnderBasePath(t *testing.T) {
	is := isLib.New(t)
	s := newTestServer(t)
	engine, err := s.initRouter()
	is.NoErr(err)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/share/api/stats", nil))
	is.Equal(rec.Code, http.StatusOK)

	var msg entity.Msg
	is.NoErr(json.Unmarshal(rec.Body.Bytes(), &msg))
	is.True(msg.Success)

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	is.Equal(rec.Code, http.StatusNotFound)
}

func TestRouterSetsSessionCookie(t *testing.T) {
	is := isLib.New(t)
	s := newTestServer(t)
	engine, err := s.initRouter()
	is.NoErr(err)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/share/api/cache?count=3", nil))
	is.Equal(rec.Code, http.StatusOK)
	is.True(strings.Contains(rec.Header().Get("Set-Cookie"), sessionName+"="))
	is.Equal(s.caches.Len(), 1)
}
