package controller

import (
	"fmt"
	"net/http"
	"regexp"
	"time"

	"invite-share/config"
	"invite-share/web/service"

	"github.com/gin-gonic/gin"
)

var filenameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)

type ServerController struct {
	BaseController

	serverService *service.ServerService
}

func NewServerController(g *gin.RouterGroup, serverService *service.ServerService) *ServerController {
	a := &ServerController{
		serverService: serverService,
	}
	a.initRouter(g)
	return a
}

func (a *ServerController) initRouter(g *gin.RouterGroup) {
	g.GET("/status", a.status)
	g.GET("/getDb", a.getDb)
	g.GET("/getNewUUID", a.getNewUUID)
	g.GET("/logs/:count", a.getLogs)
	g.POST("/logs/:count", a.getLogs)
}

func (a *ServerController) status(c *gin.Context) {
	status, err := a.serverService.GetStatus(c.Request.Context())
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.index.getStatusError"), err)
		return
	}
	jsonObj(c, status, nil)
}

func (a *ServerController) getLogs(c *gin.Context) {
	count := c.Param("count")
	level := c.Query("level")
	if level == "" {
		level = c.PostForm("level")
	}
	logs := a.serverService.GetLogs(count, level)
	jsonObj(c, logs, nil)
}

func (a *ServerController) getDb(c *gin.Context) {
	db, err := a.serverService.GetDb()
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.index.getDatabaseError"), err)
		return
	}

	filename := fmt.Sprintf("%s-%s.db", config.GetName(), time.Now().Format("20060102-150405"))

	if !isValidFilename(filename) {
		c.AbortWithError(http.StatusBadRequest, fmt.Errorf("invalid filename"))
		return
	}

	// Set the headers for the response
	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	// Write the file contents to the response
	c.Writer.Write(db)
}

func isValidFilename(filename string) bool {
	// Validate that the filename only contains allowed characters
	return filenameRegex.MatchString(filename)
}

func (a *ServerController) getNewUUID(c *gin.Context) {
	jsonObj(c, a.serverService.GetNewUUID(), nil)
}
