package controller

import (
	"net/http"

	"invite-share/logger"

	"github.com/gin-gonic/gin"
)

type BaseController struct{}

// noCache keeps browsers from reusing API responses; the page polls them.
func (a *BaseController) noCache(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Next()
}

// recoverPanic turns a handler panic into a JSON failure instead of a dropped connection.
func (a *BaseController) recoverPanic(c *gin.Context) {
	defer func() {
		if err := recover(); err != nil {
			logger.Error("api panic:", c.Request.Method, c.Request.URL.Path, err)
			pureJsonMsg(c, http.StatusInternalServerError, false, I18nWeb(c, "somethingWentWrong"))
			c.Abort()
		}
	}()
	c.Next()
}
