package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	isLib "github.com/matryer/is"
)

func TestCacheIdIsStable(t *testing.T) {
	is := isLib.New(t)
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(sessions.Sessions("invite-share", cookie.NewStore([]byte("secret"))))
	engine.GET("/", func(c *gin.Context) {
		id, err := GetCacheId(c)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, id)
	})
	engine.GET("/clear", func(c *gin.Context) {
		if err := ClearCacheId(c); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
		}
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	is.Equal(w.Code, http.StatusOK)
	first := w.Body.String()
	is.Equal(len(first), 36)
	cookies := w.Result().Cookies()
	is.True(len(cookies) > 0)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	is.Equal(w.Body.String(), first)

	// without the cookie a new id is issued
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	is.True(w.Body.String() != first)

	// after clearing, the same browser gets a new id
	req = httptest.NewRequest(http.MethodGet, "/clear", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	is.Equal(w.Code, http.StatusOK)
	cleared := w.Result().Cookies()
	is.True(len(cleared) > 0)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cleared {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	is.True(w.Body.String() != first)
}
