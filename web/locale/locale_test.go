package locale

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/gin-gonic/gin"
	isLib "github.com/matryer/is"
)

var testFS = fstest.MapFS{
	"translation/translate.zh-CN.toml": {Data: []byte(`
"success" = "成功"

[pages.invite]
"refreshSuccess" = "刷新成功，新增 {{.Count}} 位好友"
`)},
	"translation/translate.en-US.toml": {Data: []byte(`
"success" = "Success"

[pages.invite]
"refreshSuccess" = "Refreshed, {{.Count}} new friends joined"
`)},
	"translation/README.md": {Data: []byte("ignored")},
}

func TestLocalize(t *testing.T) {
	is := isLib.New(t)
	is.NoErr(InitLocalizer(testFS, "en-US"))
	is.Equal(len(Languages()), 2)

	is.Equal(I18n(Bot, "success"), "Success")
	is.Equal(I18n(Bot, "pages.invite.refreshSuccess", "Count==3"), "Refreshed, 3 new friends joined")
	is.Equal(I18n(Web, "success"), "成功") // web falls back to the default language
	is.Equal(I18n(Bot, "missing.key"), "missing.key")
	is.Equal(I18n("other", "success"), "")
}

func TestLocalizerMiddleware(t *testing.T) {
	is := isLib.New(t)
	is.NoErr(InitLocalizer(testFS, ""))
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(LocalizerMiddleware())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, Localize(FromContext(c), "pages.invite.refreshSuccess", "Count==2"))
	})

	tests := []struct {
		name   string
		cookie string
		header string
		want   string
	}{
		{"default", "", "", "刷新成功，新增 2 位好友"},
		{"header", "", "en-US,en;q=0.9", "Refreshed, 2 new friends joined"},
		{"cookie wins", "zh-CN", "en-US", "刷新成功，新增 2 位好友"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := isLib.New(t)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "lang", Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Accept-Language", tt.header)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			is.Equal(w.Body.String(), tt.want)
		})
	}
}

func TestCreateTemplateData(t *testing.T) {
	is := isLib.New(t)
	data := createTemplateData([]string{"Name==Amy", "Expr==a==b", "broken"})
	is.Equal(data["Name"], "Amy")
	is.Equal(data["Expr"], "a==b")
	is.Equal(len(data), 2)
}
