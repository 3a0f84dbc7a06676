package main

import (
	"context"
	"flag"
	"log/slog"
	"path/filepath"
	"time"

	"apoiasync/bot"
	"apoiasync/impl/core"
	"apoiasync/impl/roster"
	"apoiasync/impl/syncer"
	"apoiasync/internal/apoiase"
	"apoiasync/internal/config"
	"apoiasync/internal/database"
	"apoiasync/internal/http-server/api"
	"apoiasync/internal/scheduler"
	"apoiasync/lib/logger"
	"apoiasync/lib/sl"
)

const logFileName = "apoiasync.log"

func main() {
	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	log := logger.SetupLogger(conf.Env, filepath.Join(*logPath, logFileName))
	log.Info("starting apoiasync", slog.String("config", *configPath), slog.String("env", conf.Env))

	db, err := database.NewSQLClient(conf)
	if err != nil {
		log.Error("connecting roster store", sl.Err(err))
		return
	}
	defer db.Close()

	seedCampaigns(conf, db, log)

	var source syncer.Source
	if conf.ApoiaSe.Enabled {
		source = apoiase.NewClient(apoiase.Config{Url: conf.ApoiaSe.Url, Token: conf.ApoiaSe.Token}, log)
	} else {
		log.Info("apoiase integration disabled, using fixture source")
		source = apoiase.NewStatic()
	}

	snc := syncer.New(db, source, time.Duration(conf.ApoiaSe.TimeoutSec)*time.Second, log)
	rst := roster.New(db, log)
	app := core.New(db, rst, snc, log)

	mongo := database.NewMongoClient(conf)
	if mongo != nil {
		app.SetReportLog(mongo)
	}

	var tgBot *bot.TgBot
	if conf.Telegram.Enabled {
		tgBot, err = bot.NewTgBot(conf.Telegram.ApiKey, app, conf.Telegram.AdminIds, log)
		if err != nil {
			log.Error("creating telegram bot", sl.Err(err))
			return
		}
		if mongo != nil {
			tgBot.SetDatabase(mongo)
		}
		go func() {
			if err := tgBot.Start(); err != nil {
				log.Error("telegram bot stopped", sl.Err(err))
			}
		}()
		defer tgBot.Stop()
	}

	sched := scheduler.New(app, time.Duration(conf.Sync.IntervalMin)*time.Minute, log)
	if tgBot != nil {
		sched.SetNotifier(tgBot)
	}
	sched.Start()
	defer sched.Stop()

	if err = api.New(conf, log, app); err != nil {
		log.Error("api server stopped", sl.Err(err))
	}
}

// seedCampaigns applies the administrative campaign list from the config
// file. Upserts, so restarting with the same list is a no-op.
func seedCampaigns(conf *config.Config, db *database.MySql, log *slog.Logger) {
	ctx := context.Background()
	for i := range conf.Campaigns {
		campaign := conf.Campaigns[i]
		if err := db.UpsertCampaign(ctx, &campaign); err != nil {
			log.Error("seeding campaign", slog.Int64("campaign_id", campaign.Id), sl.Err(err))
			continue
		}
		log.Debug("campaign seeded", slog.Int64("campaign_id", campaign.Id), slog.String("name", campaign.Name))
	}
}
