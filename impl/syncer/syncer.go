// Package syncer reconciles the local supporter roster with the
// crowdfunding platform's report. It only ever inserts or overwrites:
// a supporter the platform stops reporting is left untouched, because
// absence from a report is not a cancellation. Only an explicit
// "inactive" entry is.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"apoiasync/entity"
	"apoiasync/lib/clock"
	"apoiasync/lib/sl"
)

type Database interface {
	GetCampaigns(ctx context.Context) ([]*entity.Campaign, error)
	UpsertSupporter(ctx context.Context, supporter *entity.Supporter) error
}

// Source fetches the platform supporter report for one campaign. It must
// not mutate local state; swapping the fixture source for the real API
// client happens here.
type Source interface {
	FetchSupporters(ctx context.Context, campaign *entity.Campaign) ([]entity.SupporterRecord, error)
}

type Syncer struct {
	db      Database
	source  Source
	timeout time.Duration
	log     *slog.Logger
}

func New(db Database, source Source, timeout time.Duration, log *slog.Logger) *Syncer {
	return &Syncer{
		db:      db,
		source:  source,
		timeout: timeout,
		log:     log.With(sl.Module("syncer")),
	}
}

// Run reconciles every known campaign once. A failed campaign list load
// aborts the run; after that, campaigns are isolated from each other: a
// fetch or mid-batch write failure is recorded in that campaign's result
// and the run continues. There is no retry within a run; the scheduler
// triggers the next one.
func (s *Syncer) Run(ctx context.Context) (*entity.SyncReport, error) {
	report := &entity.SyncReport{
		RunId:     uuid.NewString(),
		StartedAt: clock.Now(),
	}
	log := s.log.With(slog.String("run_id", report.RunId))

	campaigns, err := s.db.GetCampaigns(ctx)
	if err != nil {
		return nil, fmt.Errorf("load campaigns: %w", err)
	}

	for _, campaign := range campaigns {
		result := s.syncCampaign(ctx, campaign)
		if result.Failed() {
			log.Warn("campaign sync failed",
				slog.Int64("campaign_id", campaign.Id),
				slog.Int("applied", result.Applied),
				slog.String("error", result.Error),
			)
		}
		report.Campaigns = append(report.Campaigns, *result)
	}

	report.FinishedAt = clock.Now()
	log.Info("sync run finished",
		slog.Int("campaigns", len(report.Campaigns)),
		slog.Int("applied", report.Applied()),
		slog.Int("failures", report.Failures()),
	)
	return report, nil
}

// syncCampaign applies one campaign's report. Records apply in input
// order, so a duplicated supporter id resolves to its last occurrence.
// A record with an unknown status is skipped and counted, never written.
func (s *Syncer) syncCampaign(ctx context.Context, campaign *entity.Campaign) *entity.CampaignSyncResult {
	result := &entity.CampaignSyncResult{CampaignId: campaign.Id}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	records, err := s.source.FetchSupporters(fetchCtx, campaign)
	if err != nil {
		result.Error = fmt.Sprintf("fetch: %v", err)
		return result
	}

	for _, record := range records {
		status, err := entity.ParseStatus(record.Status)
		if err != nil {
			s.log.Warn("malformed supporter record",
				slog.Int64("campaign_id", campaign.Id),
				slog.Int64("supporter_id", record.Id),
				sl.Err(err),
			)
			result.Skipped++
			continue
		}

		supporter := &entity.Supporter{
			CampaignId: campaign.Id,
			Id:         record.Id,
			Name:       record.Name,
			Status:     status,
		}
		if err = s.db.UpsertSupporter(ctx, supporter); err != nil {
			result.Error = fmt.Sprintf("after %d of %d records: %v", result.Applied, len(records), err)
			return result
		}
		result.Applied++
	}
	return result
}
