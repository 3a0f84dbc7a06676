package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"apoiasync/entity"
	"apoiasync/impl/roster"
	"apoiasync/impl/syncer"
	"apoiasync/lib/sl"
)

var ErrCampaignNotFound = errors.New("campaign not found")

type Database interface {
	GetCampaigns(ctx context.Context) ([]*entity.Campaign, error)
	GetCampaign(ctx context.Context, campaignId int64) (*entity.Campaign, error)
	GetSupporters(ctx context.Context, campaignId int64) ([]*entity.Supporter, error)
}

// ReportLog persists reconciliation run reports. Optional: without it the
// report is still returned to the trigger, just not kept.
type ReportLog interface {
	SaveSyncReport(report *entity.SyncReport) error
}

// Core is the application facade: the HTTP handlers, the bot and the
// scheduler each declare the slice of it they need.
type Core struct {
	db      Database
	roster  *roster.Roster
	syncer  *syncer.Syncer
	reports ReportLog
	log     *slog.Logger
}

func New(db Database, rst *roster.Roster, snc *syncer.Syncer, log *slog.Logger) *Core {
	if db == nil {
		panic("roster database is nil")
	}
	return &Core{
		db:     db,
		roster: rst,
		syncer: snc,
		log:    log.With(sl.Module("core")),
	}
}

func (c *Core) SetReportLog(reports ReportLog) {
	c.reports = reports
}

func (c *Core) Campaigns(ctx context.Context) ([]*entity.Campaign, error) {
	return c.db.GetCampaigns(ctx)
}

func (c *Core) Campaign(ctx context.Context, campaignId int64) (*entity.Campaign, error) {
	campaign, err := c.db.GetCampaign(ctx, campaignId)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	return campaign, nil
}

func (c *Core) CampaignSupporters(ctx context.Context, campaignId int64) ([]*entity.Supporter, error) {
	if _, err := c.Campaign(ctx, campaignId); err != nil {
		return nil, err
	}
	return c.db.GetSupporters(ctx, campaignId)
}

func (c *Core) LinkSupporter(ctx context.Context, params *entity.LinkParams) (*entity.LinkResult, error) {
	if c.roster == nil {
		return nil, fmt.Errorf("roster service not connected")
	}
	return c.roster.Link(ctx, params.CampaignId, params.SupporterId, params.TelegramId)
}

func (c *Core) CheckSupporter(ctx context.Context, params *entity.CheckParams) (*entity.CheckResult, error) {
	if c.roster == nil {
		return nil, fmt.Errorf("roster service not connected")
	}
	return c.roster.Check(ctx, params.CampaignId, params.TelegramId)
}

// SyncAll runs one reconciliation pass over every campaign and logs the
// report. A report that cannot be persisted is still returned.
func (c *Core) SyncAll(ctx context.Context) (*entity.SyncReport, error) {
	if c.syncer == nil {
		return nil, fmt.Errorf("sync service not connected")
	}
	report, err := c.syncer.Run(ctx)
	if err != nil {
		return nil, err
	}
	if c.reports != nil {
		if err = c.reports.SaveSyncReport(report); err != nil {
			c.log.Warn("saving sync report", sl.Err(err))
		}
	}
	return report, nil
}
