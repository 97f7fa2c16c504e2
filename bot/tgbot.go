// Package bot implements the Telegram admin bot.
//
// Admins are the chat ids listed in the config. They can issue moderator
// invites, look at the latest sessions and receive log records forwarded
// by the slog Telegram handler. Records below error level are batched in
// a DigestBuffer when a digest interval is configured.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"

	"liveqa/entity"
	"liveqa/lib/sl"
)

// Core is the part of the application the bot commands call into.
type Core interface {
	CreateInvite(ctx context.Context, moderator *entity.Moderator) (*entity.InviteWithUrl, error)
	ListSessions(ctx context.Context, q *entity.SessionListQuery) ([]*entity.SessionListItem, *entity.Pagination, error)
}

type BotConfig struct {
	AdminIds       []int64
	DigestInterval time.Duration
}

type TgBot struct {
	log         *slog.Logger
	api         *tgbotapi.Bot
	core        Core
	mu          sync.RWMutex // guards minLogLevel
	minLogLevel slog.Level
	updater     *ext.Updater
	digest      *DigestBuffer
	adminIds    []int64
	config      BotConfig
}

func NewTgBot(apiKey string, log *slog.Logger, cfg BotConfig) (*TgBot, error) {
	tgBot := newTgBot(log, cfg)

	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	tgBot.api = api

	return tgBot, nil
}

// newTgBot builds everything but the API client. The digest exists from the
// start since log records may arrive before polling begins.
func newTgBot(log *slog.Logger, cfg BotConfig) *TgBot {
	tgBot := &TgBot{
		log:         log.With(sl.Module("tgbot")),
		minLogLevel: slog.LevelDebug,
		adminIds:    slices.Clone(cfg.AdminIds),
		config:      cfg,
	}
	if cfg.DigestInterval > 0 {
		tgBot.digest = NewDigestBuffer(tgBot.plainResponse, cfg.DigestInterval)
	}
	return tgBot
}

// SetCore connects the commands to the application; until then they answer
// that the service is not ready.
func (t *TgBot) SetCore(core Core) {
	t.core = core
}

func (t *TgBot) Start() error {
	if t.digest != nil {
		t.digest.StartTicker()
	}

	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(b *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			t.log.Error("handling update:", sl.Err(err))
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	t.updater = ext.NewUpdater(dispatcher, nil)

	dispatcher.AddHandler(handlers.NewCommand("start", t.start))
	dispatcher.AddHandler(handlers.NewCommand("help", t.help))
	dispatcher.AddHandler(handlers.NewCommand("level", t.level))
	dispatcher.AddHandler(handlers.NewCommand("invite", t.invite))
	dispatcher.AddHandler(handlers.NewCommand("sessions", t.sessions))

	t.setDefaultCommands()
	t.syncAdminMenus()

	err := t.updater.StartPolling(t.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	t.log.With(slog.Int("admins", len(t.adminIds))).Info("telegram bot started")
	t.updater.Idle()
	return nil
}

func (t *TgBot) Stop() {
	if t.updater != nil {
		t.log.Info("stopping telegram bot")
		t.updater.Stop()
	}
	if t.digest != nil {
		t.digest.Stop()
	}
}

func (t *TgBot) isAdmin(chatId int64) bool {
	return slices.Contains(t.adminIds, chatId)
}

func (t *TgBot) logLevel() slog.Level {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.minLogLevel
}
