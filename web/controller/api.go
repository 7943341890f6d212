package controller

import (
	"net/http"

	"invite-share/web/service"

	"github.com/gin-gonic/gin"
)

// Services bundles what the API handlers need.
type Services struct {
	Invite  *service.InviteService
	Setting *service.SettingService
	Refresh *service.RefreshService
	Server  *service.ServerService
	Caches  *service.CacheRegistry
	Tgbot   *service.Tgbot
}

type APIController struct {
	BaseController
	inviteController  *InviteController
	settingController *SettingController
	serverController  *ServerController
	Tgbot             *service.Tgbot
}

func NewAPIController(g *gin.RouterGroup, s Services) *APIController {
	a := &APIController{Tgbot: s.Tgbot}
	a.initRouter(g, s)
	return a
}

func (a *APIController) initRouter(g *gin.RouterGroup, s Services) {
	// Main API group
	api := g.Group("/api")
	api.Use(a.recoverPanic, a.noCache)

	a.inviteController = NewInviteController(api, s.Invite, s.Setting, s.Refresh, s.Caches)
	a.settingController = NewSettingController(api, s.Invite, s.Setting, s.Refresh, s.Caches)

	// Server API
	server := api.Group("/server")
	a.serverController = NewServerController(server, s.Server)

	// Extra routes
	api.POST("/backuptotgbot", a.BackuptoTgbot)
}

func (a *APIController) BackuptoTgbot(c *gin.Context) {
	if a.Tgbot == nil || !a.Tgbot.IsRunning() {
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "fail"))
		return
	}
	go a.Tgbot.SendBackupToAdmins()
	jsonMsg(c, I18nWeb(c, "success"), nil)
}
