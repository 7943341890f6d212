package web

import (
	"context"
	"embed"
	"io"
	"net"
	"net/http"
	"time"

	"invite-share/config"
	"invite-share/database"
	"invite-share/logger"
	"invite-share/util/common"
	"invite-share/web/controller"
	"invite-share/web/job"
	"invite-share/web/locale"
	"invite-share/web/service"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

//go:embed translation/*
var i18nFS embed.FS

const sessionName = "invite-share"

type Server struct {
	httpServer *http.Server
	listener   net.Listener

	cfg   *config.Config
	store *database.Store

	api *controller.APIController

	inviteService  *service.InviteService
	settingService *service.SettingService
	refreshService *service.RefreshService
	serverService  *service.ServerService
	caches         *service.CacheRegistry
	tgbotService   *service.Tgbot

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

func NewServer(cfg *config.Config, store *database.Store) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:    cfg,
		store:  store,
		ctx:    ctx,
		cancel: cancel,
	}

	s.inviteService = service.NewInviteService(store)
	s.settingService = service.NewSettingService(store)
	s.refreshService = service.NewRefreshService(store, s.settingService, nil)
	s.caches = service.NewCacheRegistry(s.inviteService, cfg.CacheExpiry)
	s.serverService = service.NewServerService(store, s.caches)
	s.tgbotService = service.NewTgbot(cfg, s.settingService, s.serverService)
	s.tgbotService.SetRefreshService(s.refreshService)
	s.serverService.SetTelegramService(s.tgbotService)

	// 刷新结果同时推给会话缓存和 Telegram
	s.refreshService.SetNotifiers(s.caches, s.tgbotService)
	return s
}

func (s *Server) initRouter() (*gin.Engine, error) {
	if s.cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()

	basePath := s.cfg.BasePath
	// 二维码本身已经压缩过
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{basePath + "api/invite/qrcode"})))

	store := cookie.NewStore([]byte(s.cfg.SessionSecret))
	engine.Use(sessions.Sessions(sessionName, store))
	engine.Use(func(c *gin.Context) {
		c.Set("base_path", basePath)
	})

	// init i18n
	err := locale.InitLocalizer(i18nFS, locale.DefaultLanguage.String())
	if err != nil {
		return nil, err
	}
	engine.Use(locale.LocalizerMiddleware())

	g := engine.Group(basePath)
	s.api = controller.NewAPIController(g, controller.Services{
		Invite:  s.inviteService,
		Setting: s.settingService,
		Refresh: s.refreshService,
		Server:  s.serverService,
		Caches:  s.caches,
		Tgbot:   s.tgbotService,
	})

	return engine, nil
}

func (s *Server) startTask() {
	if spec := s.cfg.RefreshSpec; spec != "" {
		if _, err := s.cron.AddJob(spec, job.NewRefreshJob(s.refreshService)); err != nil {
			logger.Warningf("add refresh job error[%s], spec[%s]", err, spec)
		} else {
			logger.Infof("auto refresh enabled, run at %s", spec)
		}
	}

	if spec := s.cfg.TodayResetSpec; spec != "" {
		if _, err := s.cron.AddJob(spec, job.NewResetTodayJob(s.refreshService)); err != nil {
			logger.Warningf("add reset today job error[%s], spec[%s]", err, spec)
		}
	}

	// 清理长时间没访问的会话缓存
	if s.cfg.CacheIdle > 0 {
		s.cron.AddJob("@every 1m", job.NewEvictCacheJob(s.caches, s.cfg.CacheIdle))
	}
}

func (s *Server) Start() (err error) {
	// This is an anonymous function, no function name
	defer func() {
		if err != nil {
			s.Stop()
		}
	}()

	s.cron = cron.New(cron.WithLocation(time.Local), cron.WithSeconds())
	s.cron.Start()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", s.cfg.Address())
	if err != nil {
		return err
	}
	logger.Info("Web server running HTTP on", listener.Addr())
	s.listener = listener

	s.httpServer = &http.Server{
		Handler: engine,
	}

	go func() {
		s.httpServer.Serve(listener)
	}()

	s.startTask()

	if s.tgbotService.Enabled() {
		if err := s.tgbotService.Start(); err != nil {
			// 机器人失败不影响页面服务
			logger.Warning("start telegram bot failed:", err)
		}
	}

	return nil
}

func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.tgbotService.IsRunning() {
		s.tgbotService.Stop()
	}
	var err1 error
	var err2 error
	if s.httpServer != nil {
		err1 = s.httpServer.Shutdown(s.ctx)
	}
	if s.listener != nil {
		err2 = s.listener.Close()
	}
	return common.Combine(err1, err2)
}

func (s *Server) GetCtx() context.Context {
	return s.ctx
}

func (s *Server) GetCron() *cron.Cron {
	return s.cron
}
