package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"invite-share/config"
	"invite-share/logger"
	"invite-share/web/locale"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/skip2/go-qrcode"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpproxy"
	"go.uber.org/atomic"
)

// TelegramService 用于解耦 ServerService 与 Tgbot 的直接依赖
type TelegramService interface {
	SendMessage(msg string) error
	IsRunning() bool
}

// Tgbot reports refreshes to the admin chats and answers a few commands.
type Tgbot struct {
	settingService *SettingService
	serverService  *ServerService
	refreshService *RefreshService

	token     string
	chatIds   string
	proxy     string
	apiServer string

	bot        *telego.Bot
	botHandler *th.BotHandler
	adminIds   []int64
	hostname   string
	running    atomic.Bool
	cancel     context.CancelFunc
}

func NewTgbot(cfg *config.Config, settingService *SettingService, serverService *ServerService) *Tgbot {
	return &Tgbot{
		settingService: settingService,
		serverService:  serverService,
		token:          cfg.TgBotToken,
		chatIds:        cfg.TgBotChatIds,
		proxy:          cfg.TgBotProxy,
		apiServer:      cfg.TgBotAPIServer,
	}
}

// SetRefreshService is needed by the /refresh command.
func (t *Tgbot) SetRefreshService(s *RefreshService) {
	t.refreshService = s
}

func (t *Tgbot) Enabled() bool {
	return t.token != ""
}

func (t *Tgbot) I18nBot(name string, params ...string) string {
	return locale.I18n(locale.Bot, name, params...)
}

// ParseAdminIds parses a comma separated list of chat ids.
func ParseAdminIds(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (t *Tgbot) Start() error {
	if !t.Enabled() {
		return errors.New("telegram bot token is empty")
	}

	adminIds, err := ParseAdminIds(t.chatIds)
	if err != nil {
		logger.Warning("Failed to parse admin ID from Telegram bot chat ID:", err)
		return err
	}
	t.adminIds = adminIds
	t.SetHostname()

	t.bot, err = t.NewBot(t.token, t.proxy, t.apiServer)
	if err != nil {
		logger.Error("Failed to initialize Telegram bot API:", err)
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel

	err = t.bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{
		Commands: []telego.BotCommand{
			{Command: "start", Description: t.I18nBot("tgbot.commands.startDesc")},
			{Command: "help", Description: t.I18nBot("tgbot.commands.helpDesc")},
			{Command: "stats", Description: t.I18nBot("tgbot.commands.statsDesc")},
			{Command: "qrcode", Description: t.I18nBot("tgbot.commands.qrcodeDesc")},
			{Command: "refresh", Description: t.I18nBot("tgbot.commands.refreshDesc")},
			{Command: "backup", Description: t.I18nBot("tgbot.commands.backupDesc")},
			{Command: "id", Description: t.I18nBot("tgbot.commands.idDesc")},
		},
	})
	if err != nil {
		logger.Warning("Failed to set bot commands:", err)
	}

	if t.running.CompareAndSwap(false, true) {
		logger.Info("Telegram bot receiver started")
		go t.OnReceive(ctx)
	}
	return nil
}

func (t *Tgbot) NewBot(token string, proxyUrl string, apiServerUrl string) (*telego.Bot, error) {
	if proxyUrl == "" && apiServerUrl == "" {
		return telego.NewBot(token)
	}

	if proxyUrl != "" {
		if !strings.HasPrefix(proxyUrl, "socks5://") {
			logger.Warning("Invalid socks5 URL, using default")
			return telego.NewBot(token)
		}

		_, err := url.Parse(proxyUrl)
		if err != nil {
			logger.Warningf("Can't parse proxy URL, using default instance for tgbot: %v", err)
			return telego.NewBot(token)
		}

		return telego.NewBot(token, telego.WithFastHTTPClient(&fasthttp.Client{
			Dial: fasthttpproxy.FasthttpSocksDialer(proxyUrl),
		}))
	}

	if !strings.HasPrefix(apiServerUrl, "http") {
		logger.Warning("Invalid http(s) URL, using default")
		return telego.NewBot(token)
	}

	_, err := url.Parse(apiServerUrl)
	if err != nil {
		logger.Warningf("Can't parse API server URL, using default instance for tgbot: %v", err)
		return telego.NewBot(token)
	}

	return telego.NewBot(token, telego.WithAPIServer(apiServerUrl))
}

func (t *Tgbot) IsRunning() bool {
	return t.running.Load()
}

func (t *Tgbot) SetHostname() {
	host, err := os.Hostname()
	if err != nil {
		logger.Error("get hostname error:", err)
		t.hostname = ""
		return
	}
	t.hostname = host
}

func (t *Tgbot) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
	if t.botHandler != nil {
		t.botHandler.Stop()
	}
	logger.Info("Stop Telegram receiver ...")
	t.running.Store(false)
	t.adminIds = nil
}

func (t *Tgbot) OnReceive(ctx context.Context) {
	params := telego.GetUpdatesParams{
		Timeout: 10,
	}

	updates, err := t.bot.UpdatesViaLongPolling(ctx, &params)
	if err != nil {
		logger.Error("Telegram long polling failed:", err)
		t.running.Store(false)
		return
	}

	t.botHandler, err = th.NewBotHandler(t.bot, updates)
	if err != nil {
		logger.Error("Telegram bot handler failed:", err)
		t.running.Store(false)
		return
	}

	t.botHandler.HandleMessage(func(ctx *th.Context, message telego.Message) error {
		var fromId int64
		if message.From != nil {
			fromId = message.From.ID
		}
		t.answerCommand(&message, message.Chat.ID, t.checkAdmin(fromId))
		return nil
	}, th.AnyCommand())

	t.botHandler.Start()
}

func (t *Tgbot) checkAdmin(tgId int64) bool {
	for _, adminId := range t.adminIds {
		if adminId == tgId {
			return true
		}
	}
	return false
}

func (t *Tgbot) answerCommand(message *telego.Message, chatId int64, isAdmin bool) {
	msg := ""
	command, _, _ := tu.ParseCommand(message.Text)

	switch command {
	case "help":
		msg += t.I18nBot("tgbot.commands.help")
	case "start":
		firstName := ""
		if message.From != nil {
			firstName = message.From.FirstName
		}
		msg += t.I18nBot("tgbot.commands.start", "Firstname=="+html.EscapeString(firstName))
		if isAdmin {
			msg += t.I18nBot("tgbot.commands.welcome", "Hostname=="+t.hostname)
		}
		msg += "\n" + t.I18nBot("tgbot.commands.help")
	case "id":
		if message.From != nil {
			msg += t.I18nBot("tgbot.commands.getID", "ID=="+strconv.FormatInt(message.From.ID, 10))
		}
	case "stats":
		msg += t.statsMessage()
	case "qrcode":
		t.sendInviteQRCode(chatId)
		return
	case "refresh":
		if !isAdmin {
			msg += t.I18nBot("tgbot.commands.notAdmin")
			break
		}
		msg += t.refreshNow()
	case "backup":
		if !isAdmin {
			msg += t.I18nBot("tgbot.commands.notAdmin")
			break
		}
		t.sendBackup(chatId)
		return
	default:
		msg += t.I18nBot("tgbot.commands.unknown")
	}

	t.SendMsgToTgbot(chatId, msg)
}

func (t *Tgbot) statsMessage() string {
	stats, err := t.settingService.GetStats(context.Background())
	if err != nil {
		logger.Warning("tgbot: get stats failed:", err)
		return t.I18nBot("tgbot.noResult")
	}
	return t.I18nBot("tgbot.messages.stats",
		"Today=="+strconv.Itoa(stats.TodayCount),
		"Total=="+strconv.Itoa(stats.TotalCount),
		"TodayEarnings=="+stats.TodayEarnings,
		"TotalEarnings=="+stats.TotalEarnings,
	)
}

// refreshNow runs one refresh; the batch itself is announced by NotifyRefresh.
func (t *Tgbot) refreshNow() string {
	if t.refreshService == nil {
		return t.I18nBot("tgbot.noResult")
	}
	result, err := t.refreshService.Refresh(context.Background())
	if err != nil {
		return t.I18nBot("tgbot.messages.refreshFailed", "Error=="+html.EscapeString(err.Error()))
	}
	if result.Increment == 0 {
		return t.I18nBot("tgbot.messages.refreshNone")
	}
	return t.statsMessage()
}

// RefreshMessage renders a refresh batch for the admin chats.
func (t *Tgbot) RefreshMessage(result *RefreshResult) string {
	var b strings.Builder
	b.WriteString(t.I18nBot("tgbot.messages.newInvites",
		"Count=="+strconv.Itoa(result.Increment),
		"Batch=="+result.BatchID,
	))
	for _, invite := range result.NewInvites {
		b.WriteString(t.I18nBot("tgbot.messages.inviteLine",
			"Name=="+html.EscapeString(invite.Name),
			"Amount=="+strconv.FormatFloat(invite.Amount, 'f', 2, 64),
		))
	}
	return b.String()
}

// NotifyRefresh sends the batch to the admins without blocking the caller.
func (t *Tgbot) NotifyRefresh(result *RefreshResult) {
	if !t.IsRunning() || result == nil || result.Increment == 0 {
		return
	}
	msg := t.RefreshMessage(result)
	go t.SendMsgToTgbotAdmins(msg)
}

func (t *Tgbot) SendMsgToTgbot(chatId int64, msg string, replyMarkup ...telego.ReplyMarkup) {
	if !t.IsRunning() {
		return
	}

	if msg == "" {
		logger.Info("[tgbot] message is empty!")
		return
	}

	var allMessages []string
	limit := 2000

	// paging message if it is big
	if len(msg) > limit {
		messages := strings.Split(msg, "\n")
		lastIndex := -1

		for _, message := range messages {
			if (len(allMessages) == 0) || (len(allMessages[lastIndex])+len(message) > limit) {
				allMessages = append(allMessages, message)
				lastIndex++
			} else {
				allMessages[lastIndex] += "\n" + message
			}
		}
		if strings.TrimSpace(allMessages[len(allMessages)-1]) == "" {
			allMessages = allMessages[:len(allMessages)-1]
		}
	} else {
		allMessages = append(allMessages, msg)
	}
	for n, message := range allMessages {
		params := telego.SendMessageParams{
			ChatID:    tu.ID(chatId),
			Text:      message,
			ParseMode: telego.ModeHTML,
		}
		// only add replyMarkup to last message
		if len(replyMarkup) > 0 && n == (len(allMessages)-1) {
			params.ReplyMarkup = replyMarkup[0]
		}
		_, err := t.bot.SendMessage(context.Background(), &params)
		if err != nil {
			logger.Warning("Error sending telegram message :", err)
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func (t *Tgbot) SendMsgToTgbotAdmins(msg string, replyMarkup ...telego.ReplyMarkup) {
	for _, adminId := range t.adminIds {
		t.SendMsgToTgbot(adminId, msg, replyMarkup...)
	}
}

func (t *Tgbot) SendMessage(msg string) error {
	if !t.IsRunning() {
		return errors.New("telegram bot is not running")
	}
	t.SendMsgToTgbotAdmins(msg)
	return nil
}

// SendBackupToAdmins 把数据库备份发给所有管理员
func (t *Tgbot) SendBackupToAdmins() {
	if !t.IsRunning() {
		return
	}
	for _, adminId := range t.adminIds {
		t.sendBackup(adminId)
	}
}

func (t *Tgbot) sendBackup(chatId int64) {
	output := t.I18nBot("tgbot.messages.backupTime", "Time=="+time.Now().Format("2006-01-02 15:04:05"))
	t.SendMsgToTgbot(chatId, output)

	db, err := t.serverService.GetDb()
	if err != nil {
		logger.Error("Error in reading db for backup: ", err)
		return
	}
	document := tu.Document(
		tu.ID(chatId),
		tu.FileFromBytes(db, config.GetName()+".db"),
	)
	if _, err := t.bot.SendDocument(context.Background(), document); err != nil {
		logger.Error("Error in uploading backup: ", err)
	}
}

func (t *Tgbot) sendInviteQRCode(chatId int64) {
	code, err := t.settingService.GetInviteCode(context.Background())
	if err != nil || code == "" {
		t.SendMsgToTgbot(chatId, t.I18nBot("tgbot.noResult"))
		return
	}
	caption := t.I18nBot("tgbot.messages.inviteCode", "Code=="+html.EscapeString(code))

	png, err := qrcode.Encode(t.I18nBot("pages.invite.shareText", "Code=="+code), qrcode.Medium, 256)
	if err != nil {
		logger.Warningf("生成二维码失败，将发送纯文本: %v", err)
		t.SendMsgToTgbot(chatId, caption)
		return
	}

	photo := tu.Photo(
		tu.ID(chatId),
		tu.FileFromBytes(png, "invite.png"),
	).WithCaption(caption).WithParseMode(telego.ModeHTML)
	if _, err := t.bot.SendPhoto(context.Background(), photo); err != nil {
		logger.Warningf("发送邀请二维码到 %d 失败: %v", chatId, err)
		t.SendMsgToTgbot(chatId, caption)
	}
}
