// Package roster binds Telegram accounts to supporters and answers access
// checks against them. A binding never grants access by itself: Check
// reads the supporter's status fresh on every call, so a cancellation
// picked up by the next reconciliation run revokes access on the next
// check with no unlink step, and a reactivation restores it the same way.
package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"apoiasync/entity"
	"apoiasync/lib/sl"
)

var (
	// ErrSupporterNotFound: no supporter exists for the (campaign, id) pair.
	ErrSupporterNotFound = errors.New("supporter not found for campaign")
	// ErrSupporterNotActive: the supporter exists but is not active right now.
	ErrSupporterNotActive = errors.New("not an active supporter")
)

const (
	reasonNotLinked = "not linked to any supporter"
	reasonNotActive = "not an active supporter of this campaign"
	reasonActive    = "active supporter"
)

type Database interface {
	GetSupporter(ctx context.Context, campaignId, supporterId int64) (*entity.Supporter, error)
	GetLinkBySupporter(ctx context.Context, campaignId, supporterId int64) (*entity.TelegramLink, error)
	GetLinkByTelegramId(ctx context.Context, telegramId string) (*entity.TelegramLink, error)
	UpsertLink(ctx context.Context, campaignId, supporterId int64, telegramId string) error
}

type Roster struct {
	db  Database
	log *slog.Logger
}

func New(db Database, log *slog.Logger) *Roster {
	return &Roster{
		db:  db,
		log: log.With(sl.Module("roster")),
	}
}

// Link binds telegramId to the supporter identified by (campaignId,
// supporterId). The supporter must exist and be active at this moment;
// a repeat call overwrites the previous binding (last link wins), and a
// telegram id already bound elsewhere moves to this supporter.
func (r *Roster) Link(ctx context.Context, campaignId, supporterId int64, telegramId string) (*entity.LinkResult, error) {
	supporter, err := r.db.GetSupporter(ctx, campaignId, supporterId)
	if err != nil {
		return nil, fmt.Errorf("load supporter: %w", err)
	}
	if supporter == nil {
		return nil, ErrSupporterNotFound
	}
	if !supporter.IsActive() {
		return nil, ErrSupporterNotActive
	}

	previous, err := r.db.GetLinkBySupporter(ctx, campaignId, supporterId)
	if err != nil {
		return nil, fmt.Errorf("load link: %w", err)
	}

	if err = r.db.UpsertLink(ctx, campaignId, supporterId, telegramId); err != nil {
		return nil, fmt.Errorf("save link: %w", err)
	}

	if previous != nil && previous.TelegramId != telegramId {
		r.log.Info("supporter rebound",
			slog.Int64("campaign_id", campaignId),
			slog.Int64("supporter_id", supporterId),
			slog.String("old_telegram_id", previous.TelegramId),
			slog.String("telegram_id", telegramId),
		)
	} else {
		r.log.Info("supporter linked",
			slog.Int64("campaign_id", campaignId),
			slog.Int64("supporter_id", supporterId),
			slog.String("telegram_id", telegramId),
		)
	}
	return &entity.LinkResult{
		CampaignId:  campaignId,
		SupporterId: supporterId,
		TelegramId:  telegramId,
		Message: fmt.Sprintf("supporter %d linked to telegram id %s in campaign %d",
			supporterId, telegramId, campaignId),
	}, nil
}

// Check reports whether telegramId is currently an active supporter of the
// campaign. A negative decision is a result, not an error; store failures
// are returned as errors and never masked as a negative decision.
func (r *Roster) Check(ctx context.Context, campaignId int64, telegramId string) (*entity.CheckResult, error) {
	link, err := r.db.GetLinkByTelegramId(ctx, telegramId)
	if err != nil {
		return nil, fmt.Errorf("load link: %w", err)
	}
	if link == nil {
		return &entity.CheckResult{Active: false, Reason: reasonNotLinked}, nil
	}

	supporter, err := r.db.GetSupporter(ctx, campaignId, link.SupporterId)
	if err != nil {
		return nil, fmt.Errorf("load supporter: %w", err)
	}
	// The link may belong to a supporter of another campaign: the
	// supporter id recurring in this campaign is a different person.
	if supporter == nil || link.CampaignId != campaignId || !supporter.IsActive() {
		return &entity.CheckResult{Active: false, Reason: reasonNotActive}, nil
	}
	return &entity.CheckResult{Active: true, Reason: reasonActive}, nil
}
