// Package bot is the conversational surface for supporters: the same
// link/check operations the HTTP API exposes, driven by Telegram commands.
// The caller's own Telegram id is the chat identity being linked and
// checked, so a passing /check can hand the campaign group invite straight
// back to the person who asked.
//
//	tgbot.go    : TgBot struct, lifecycle, Database/Core interfaces
//	commands.go : /start, /stop, /campaigns, /link, /check, /help
//	admin.go    : /sync, /report, /subscribers, sync-run notifications
//	helpers.go  : Sanitize, plainResponse, reportError
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"

	"apoiasync/entity"
	"apoiasync/lib/sl"
)

// Database is the subscriber registry, implemented by
// internal/database/mongo.go. The bot works without it: commands still
// answer, only registration and notifications are skipped.
type Database interface {
	RegisterSubscriber(telegramId int64, username string) error
	SetSubscriberEnabled(telegramId int64, enabled bool) error
	GetSubscriber(telegramId int64) (*entity.Subscriber, error)
	GetSubscribers() ([]*entity.Subscriber, error)
	LastSyncReport() (*entity.SyncReport, error)
}

// Core is the slice of the application facade the bot drives.
type Core interface {
	Campaigns(ctx context.Context) ([]*entity.Campaign, error)
	Campaign(ctx context.Context, campaignId int64) (*entity.Campaign, error)
	LinkSupporter(ctx context.Context, params *entity.LinkParams) (*entity.LinkResult, error)
	CheckSupporter(ctx context.Context, params *entity.CheckParams) (*entity.CheckResult, error)
	SyncAll(ctx context.Context) (*entity.SyncReport, error)
}

type TgBot struct {
	log      *slog.Logger
	api      *tgbotapi.Bot
	db       Database
	core     Core
	adminIds []int64
	updater  *ext.Updater
}

func NewTgBot(apiKey string, core Core, adminIds []int64, log *slog.Logger) (*TgBot, error) {
	tgBot := &TgBot{
		log:      log.With(sl.Module("tgbot")),
		core:     core,
		adminIds: adminIds,
	}

	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	tgBot.api = api

	return tgBot, nil
}

func (t *TgBot) SetDatabase(db Database) {
	t.db = db
}

func (t *TgBot) Start() error {
	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(b *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			t.log.Error("handling update:", sl.Err(err))
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	t.updater = ext.NewUpdater(dispatcher, nil)

	dispatcher.AddHandler(handlers.NewCommand("start", t.start))
	dispatcher.AddHandler(handlers.NewCommand("stop", t.stop))
	dispatcher.AddHandler(handlers.NewCommand("campaigns", t.campaigns))
	dispatcher.AddHandler(handlers.NewCommand("link", t.link))
	dispatcher.AddHandler(handlers.NewCommand("check", t.check))
	dispatcher.AddHandler(handlers.NewCommand("help", t.help))

	// Admin commands
	dispatcher.AddHandler(handlers.NewCommand("sync", t.syncCmd))
	dispatcher.AddHandler(handlers.NewCommand("report", t.lastReport))
	dispatcher.AddHandler(handlers.NewCommand("subscribers", t.subscribers))

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

	t.updater.Idle()
	return nil
}

func (t *TgBot) Stop() {
	if t.updater != nil {
		t.log.Info("stopping telegram bot")
		t.updater.Stop()
	}
}
