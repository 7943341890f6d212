package controller

import (
	"net/http"
	"strconv"

	"invite-share/database/model"
	"invite-share/web/service"
	"invite-share/web/session"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

const qrcodeSize = 256

type InviteController struct {
	BaseController

	inviteService  *service.InviteService
	settingService *service.SettingService
	refreshService *service.RefreshService
	caches         *service.CacheRegistry
}

func NewInviteController(g *gin.RouterGroup, inviteService *service.InviteService, settingService *service.SettingService,
	refreshService *service.RefreshService, caches *service.CacheRegistry,
) *InviteController {
	a := &InviteController{
		inviteService:  inviteService,
		settingService: settingService,
		refreshService: refreshService,
		caches:         caches,
	}
	a.initRouter(g)
	return a
}

func (a *InviteController) initRouter(g *gin.RouterGroup) {
	g.GET("/invites", a.getInvites)
	g.POST("/invites", a.addInvite)
	g.POST("/refresh", a.refresh)
	g.GET("/cache", a.getCache)
	g.GET("/stats", a.getStats)
	g.GET("/invite/qrcode", a.getQRCode)
}

func (a *InviteController) getInvites(c *gin.Context) {
	limit := intQuery(c, "limit", service.FallbackDisplayCount)
	invites, err := a.inviteService.GetInvites(c.Request.Context(), limit)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.invite.loadError"), err)
		return
	}
	jsonObj(c, invites, nil)
}

func (a *InviteController) addInvite(c *gin.Context) {
	invite := &model.Invite{}
	if err := c.ShouldBindJSON(invite); err != nil {
		jsonMsg(c, I18nWeb(c, "pages.invite.addError"), err)
		return
	}
	id, err := a.inviteService.AddInvite(c.Request.Context(), invite)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.invite.addError"), err)
		return
	}
	jsonMsgObj(c, I18nWeb(c, "pages.invite.addSuccess"), id, nil)
}

// sessionCache returns the caller's cache, loaded with displayCount records.
func (a *InviteController) sessionCache(c *gin.Context) (*service.RecordCache, int, error) {
	ctx := c.Request.Context()
	displayCount, err := a.settingService.GetInviteDisplayCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	id, err := session.GetCacheId(c)
	if err != nil {
		return nil, 0, err
	}
	cache := a.caches.Get(id)
	if _, err := cache.Initialize(ctx, displayCount); err != nil {
		return nil, 0, err
	}
	return cache, displayCount, nil
}

func (a *InviteController) getCache(c *gin.Context) {
	cache, displayCount, err := a.sessionCache(c)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.invite.loadError"), err)
		return
	}
	jsonObj(c, cache.Top(intQuery(c, "count", displayCount)), nil)
}

type refreshResponse struct {
	Increment  int             `json:"increment"`
	NewInvites []*model.Invite `json:"newInvites"`
	BatchID    string          `json:"batchId"`
	Records    []model.Invite  `json:"records"`
	NewIds     []int64         `json:"newIds"`
}

// refresh 下拉刷新：先确保本会话缓存已加载，再执行一次刷新，新记录会通过通知合并进所有缓存
func (a *InviteController) refresh(c *gin.Context) {
	cache, displayCount, err := a.sessionCache(c)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.invite.loadError"), err)
		return
	}
	result, err := a.refreshService.Refresh(c.Request.Context())
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.invite.refreshError"), err)
		return
	}

	resp := refreshResponse{
		Increment:  result.Increment,
		NewInvites: result.NewInvites,
		BatchID:    result.BatchID,
		Records:    cache.Top(displayCount),
		NewIds:     lo.Map(result.NewInvites, func(r *model.Invite, _ int) int64 { return r.Id }),
	}
	msg := I18nWeb(c, "pages.invite.refreshNone")
	if result.Increment > 0 {
		msg = I18nWeb(c, "pages.invite.refreshSuccess", "Count=="+strconv.Itoa(result.Increment))
	}
	jsonMsgObj(c, msg, resp, nil)
}

func (a *InviteController) getStats(c *gin.Context) {
	stats, err := a.settingService.GetStats(c.Request.Context())
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.index.getStatsError"), err)
		return
	}
	jsonObj(c, stats, nil)
}

func (a *InviteController) getQRCode(c *gin.Context) {
	code, err := a.settingService.GetInviteCode(c.Request.Context())
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.invite.qrcodeError"), err)
		return
	}
	png, err := a.inviteService.QRCode(I18nWeb(c, "pages.invite.shareText", "Code=="+code), qrcodeSize)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.invite.qrcodeError"), err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
