package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"invite-share/logger"
	"invite-share/web/entity"
	"invite-share/web/locale"

	"github.com/gin-gonic/gin"
)

func jsonMsg(c *gin.Context, msg string, err error) {
	jsonMsgObj(c, msg, nil, err)
}

func jsonObj(c *gin.Context, obj any, err error) {
	jsonMsgObj(c, "", obj, err)
}

func jsonMsgObj(c *gin.Context, msg string, obj any, err error) {
	m := entity.Msg{
		Obj: obj,
	}
	if err == nil {
		m.Success = true
		if msg != "" {
			m.Msg = msg
		}
	} else {
		m.Success = false
		m.Msg = msg + " (" + errorText(c, err) + ")"
		logger.Warning(msg+" "+I18nWeb(c, "fail")+": ", err)
	}
	c.JSON(http.StatusOK, m)
}

func pureJsonMsg(c *gin.Context, statusCode int, success bool, msg string) {
	c.JSON(statusCode, entity.Msg{
		Success: success,
		Msg:     msg,
	})
}

// errorText localizes validation errors; anything else is shown as is.
func errorText(c *gin.Context, err error) string {
	var verrs entity.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, ve := range verrs {
			msgs = append(msgs, I18nWeb(c, ve.Key, ve.Params...))
		}
		return strings.Join(msgs, "; ")
	}
	var ve *entity.ValidationError
	if errors.As(err, &ve) {
		return I18nWeb(c, ve.Key, ve.Params...)
	}
	return err.Error()
}

func I18nWeb(c *gin.Context, name string, params ...string) string {
	return locale.Localize(locale.FromContext(c), name, params...)
}

// intQuery 读取整数查询参数，缺失或非法时返回 def
func intQuery(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
