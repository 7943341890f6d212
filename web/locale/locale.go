package locale

import (
	"io/fs"
	"strings"

	"invite-share/logger"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

// DefaultLanguage 页面默认使用简体中文
var DefaultLanguage = language.MustParse("zh-CN")

var (
	i18nBundle   *i18n.Bundle
	LocalizerBot *i18n.Localizer
)

type I18nType string

const (
	Bot I18nType = "bot"
	Web I18nType = "web"
)

const localizerKey = "localizer"

// InitLocalizer loads every translation file below "translation" in i18nFS and
// prepares the bot localizer for botLang.
func InitLocalizer(i18nFS fs.FS, botLang string) error {
	bundle := i18n.NewBundle(DefaultLanguage)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	if err := parseTranslationFiles(i18nFS, bundle); err != nil {
		return err
	}
	i18nBundle = bundle

	if botLang == "" {
		botLang = DefaultLanguage.String()
	}
	LocalizerBot = i18n.NewLocalizer(i18nBundle, botLang)
	return nil
}

// Languages lists the tags that have a translation file.
func Languages() []string {
	if i18nBundle == nil {
		return nil
	}
	tags := i18nBundle.LanguageTags()
	langs := make([]string, 0, len(tags))
	for _, tag := range tags {
		langs = append(langs, tag.String())
	}
	return langs
}

func createTemplateData(params []string, seperator ...string) map[string]any {
	var sep string = "=="
	if len(seperator) > 0 {
		sep = seperator[0]
	}

	templateData := make(map[string]any)
	for _, param := range params {
		parts := strings.SplitN(param, sep, 2)
		if len(parts) != 2 {
			continue
		}
		templateData[parts[0]] = parts[1]
	}

	return templateData
}

// Localize renders key with params of the form "Name==value". The key itself
// is returned when no localizer is ready or the message is unknown.
func Localize(localizer *i18n.Localizer, key string, params ...string) string {
	if localizer == nil {
		return key
	}

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: createTemplateData(params),
	})
	if err != nil {
		if msg != "" {
			// 当前语言缺少该条目，已回退到默认语言
			logger.Debugf("localize %q: %v", key, err)
			return msg
		}
		logger.Warningf("Failed to localize message %q: %v", key, err)
		return key
	}
	return msg
}

func I18n(i18nType I18nType, key string, params ...string) string {
	switch i18nType {
	case Bot:
		return Localize(LocalizerBot, key, params...)
	case Web:
		return Localize(newLocalizer(""), key, params...)
	default:
		logger.Errorf("Invalid type for I18n: %s", i18nType)
		return ""
	}
}

func newLocalizer(langs ...string) *i18n.Localizer {
	if i18nBundle == nil {
		return nil
	}
	return i18n.NewLocalizer(i18nBundle, langs...)
}

// LocalizerMiddleware picks the language from the "lang" cookie, then the
// Accept-Language header, and stores the localizer in the gin context.
func LocalizerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var lang string
		if cookie, err := c.Request.Cookie("lang"); err == nil {
			lang = cookie.Value
		}

		c.Set(localizerKey, newLocalizer(lang, c.GetHeader("Accept-Language")))
		c.Next()
	}
}

// FromContext returns the request localizer set by LocalizerMiddleware.
func FromContext(c *gin.Context) *i18n.Localizer {
	v, ok := c.Get(localizerKey)
	if !ok {
		return newLocalizer()
	}
	localizer, _ := v.(*i18n.Localizer)
	return localizer
}

func parseTranslationFiles(i18nFS fs.FS, i18nBundle *i18n.Bundle) error {
	err := fs.WalkDir(i18nFS, "translation",
		func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() || !strings.HasSuffix(path, ".toml") {
				return nil
			}

			data, err := fs.ReadFile(i18nFS, path)
			if err != nil {
				return err
			}

			_, err = i18nBundle.ParseMessageFileBytes(data, path)
			return err
		})
	if err != nil {
		return err
	}

	return nil
}
