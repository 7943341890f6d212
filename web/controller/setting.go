package controller

import (
	"errors"
	"fmt"

	"invite-share/web/entity"
	"invite-share/web/service"
	"invite-share/web/session"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

type SettingController struct {
	BaseController

	inviteService  *service.InviteService
	settingService *service.SettingService
	refreshService *service.RefreshService
	caches         *service.CacheRegistry
}

func NewSettingController(g *gin.RouterGroup, inviteService *service.InviteService, settingService *service.SettingService,
	refreshService *service.RefreshService, caches *service.CacheRegistry,
) *SettingController {
	a := &SettingController{
		inviteService:  inviteService,
		settingService: settingService,
		refreshService: refreshService,
		caches:         caches,
	}
	a.initRouter(g)
	return a
}

func (a *SettingController) initRouter(g *gin.RouterGroup) {
	g.GET("/config", a.getAllConfig)
	g.GET("/config/:key", a.getConfig)
	g.POST("/config/:key", a.setConfig)
	g.GET("/settings", a.getAllSetting)
	g.POST("/settings", a.updateSetting)
	g.POST("/reset", a.resetAllData)
}

func (a *SettingController) getAllConfig(c *gin.Context) {
	configs, err := a.inviteService.GetAllConfig(c.Request.Context())
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.config.getError"), err)
		return
	}
	jsonObj(c, configs, nil)
}

func (a *SettingController) getConfig(c *gin.Context) {
	value, err := a.inviteService.GetConfig(c.Request.Context(), c.Param("key"))
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.config.getError"), err)
		return
	}
	jsonObj(c, value, nil)
}

func (a *SettingController) setConfig(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.config.setError"), err)
		return
	}
	if !json.Valid(data) {
		jsonMsg(c, I18nWeb(c, "pages.config.setError"), errors.New(I18nWeb(c, "pages.config.invalidValue")))
		return
	}
	err = a.refreshService.SetConfig(c.Request.Context(), c.Param("key"), json.RawMessage(data))
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.config.setError"), err)
		return
	}
	jsonMsg(c, I18nWeb(c, "pages.config.setSuccess"), nil)
}

func (a *SettingController) getAllSetting(c *gin.Context) {
	setting, err := a.settingService.GetAllSetting(c.Request.Context())
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.settings.getError"), err)
		return
	}
	jsonObj(c, setting, nil)
}

func (a *SettingController) updateSetting(c *gin.Context) {
	allSetting := &entity.AllSetting{}
	if err := c.ShouldBindJSON(allSetting); err != nil {
		jsonMsg(c, I18nWeb(c, "pages.settings.toasts.saveError"), err)
		return
	}
	err := a.refreshService.UpdateAllSetting(c.Request.Context(), allSetting)
	if err != nil {
		if entity.IsValidationError(err) {
			jsonMsg(c, I18nWeb(c, "pages.settings.toasts.invalid"), err)
			return
		}
		jsonMsg(c, I18nWeb(c, "pages.settings.toasts.saveError"), err)
		return
	}

	total := 0.0
	for _, rule := range allSetting.RefreshRules {
		total += rule.Probability
	}
	jsonMsg(c, I18nWeb(c, "pages.settings.toasts.saveSuccess",
		fmt.Sprintf("Count==%d", len(allSetting.RefreshRules)),
		fmt.Sprintf("Total==%.1f", total),
	), nil)
}

// resetAllData 重置所有数据，清空全部会话缓存并重新加载当前会话
func (a *SettingController) resetAllData(c *gin.Context) {
	ctx := c.Request.Context()
	if err := a.refreshService.ResetAllData(ctx); err != nil {
		jsonMsg(c, I18nWeb(c, "pages.settings.toasts.resetError"), err)
		return
	}
	a.caches.InvalidateAll()

	displayCount, err := a.settingService.GetInviteDisplayCount(ctx)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.settings.toasts.resetError"), err)
		return
	}
	id, err := session.GetCacheId(c)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.settings.toasts.resetError"), err)
		return
	}
	records, err := a.caches.Get(id).Reload(ctx, displayCount)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.settings.toasts.resetError"), err)
		return
	}
	jsonMsgObj(c, I18nWeb(c, "pages.settings.toasts.resetSuccess"), records, nil)
}
