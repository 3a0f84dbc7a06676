package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/google/uuid"

	"apoiasync/entity"
	"apoiasync/internal/config"
)

// MySql is the roster store: campaigns, supporters and telegram links.
// Uniqueness invariants live in the schema: supporters are keyed by
// (campaign_id, id), links by (campaign_id, supporter_id) with a second
// unique index on telegram_id, so every upsert is a single native
// INSERT ... ON DUPLICATE KEY UPDATE and duplicates cannot appear under
// concurrent callers.
type MySql struct {
	db         *sql.DB
	statements map[string]*sql.Stmt
	mu         sync.Mutex
}

func NewSQLClient(conf *config.Config) (*MySql, error) {
	connectionURI := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		conf.MySql.UserName, conf.MySql.Password, conf.MySql.HostName, conf.MySql.Port, conf.MySql.Database)
	db, err := sql.Open("mysql", connectionURI)
	if err != nil {
		return nil, fmt.Errorf("sql connect: %w", err)
	}

	// try to ping three times with a 30-second interval; wait for a database to start
	for i := 0; i < 3; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		if i == 2 {
			return nil, fmt.Errorf("ping database: %w", err)
		}
		time.Sleep(30 * time.Second)
	}

	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &MySql{
		db:         db,
		statements: make(map[string]*sql.Stmt),
	}

	if err = sdb.createTables(); err != nil {
		return nil, err
	}

	return sdb, nil
}

func (s *MySql) Close() {
	s.closeStmt()
	_ = s.db.Close()
}

func (s *MySql) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS campaigns (
			id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			group_link VARCHAR(255) NOT NULL,
			PRIMARY KEY (id)
		)`,
		`CREATE TABLE IF NOT EXISTS supporters (
			campaign_id BIGINT NOT NULL,
			id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			status VARCHAR(32) NOT NULL,
			PRIMARY KEY (campaign_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS telegram_links (
			id CHAR(36) NOT NULL,
			campaign_id BIGINT NOT NULL,
			supporter_id BIGINT NOT NULL,
			telegram_id VARCHAR(64) NOT NULL,
			PRIMARY KEY (id),
			UNIQUE KEY uq_link_supporter (campaign_id, supporter_id),
			UNIQUE KEY uq_link_telegram (telegram_id)
		)`,
	}
	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

func (s *MySql) UpsertCampaign(ctx context.Context, campaign *entity.Campaign) error {
	stmt, err := s.stmtUpsertCampaign()
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx, campaign.Id, campaign.Name, campaign.GroupLink)
	if err != nil {
		return fmt.Errorf("upsert campaign %d: %w", campaign.Id, err)
	}
	return nil
}

func (s *MySql) GetCampaigns(ctx context.Context) ([]*entity.Campaign, error) {
	stmt, err := s.stmtSelectCampaigns()
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("select campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*entity.Campaign
	for rows.Next() {
		var campaign entity.Campaign
		if err = rows.Scan(&campaign.Id, &campaign.Name, &campaign.GroupLink); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, &campaign)
	}
	return campaigns, rows.Err()
}

func (s *MySql) GetCampaign(ctx context.Context, campaignId int64) (*entity.Campaign, error) {
	stmt, err := s.stmtSelectCampaign()
	if err != nil {
		return nil, err
	}
	var campaign entity.Campaign
	err = stmt.QueryRowContext(ctx, campaignId).Scan(&campaign.Id, &campaign.Name, &campaign.GroupLink)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select campaign %d: %w", campaignId, err)
	}
	return &campaign, nil
}

// UpsertSupporter inserts the supporter or, when the (campaign, id) pair is
// already known, overwrites its name and status in place. Any existing
// telegram link stays untouched.
func (s *MySql) UpsertSupporter(ctx context.Context, supporter *entity.Supporter) error {
	stmt, err := s.stmtUpsertSupporter()
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx, supporter.CampaignId, supporter.Id, supporter.Name, string(supporter.Status))
	if err != nil {
		return fmt.Errorf("upsert supporter %d/%d: %w", supporter.CampaignId, supporter.Id, err)
	}
	return nil
}

func (s *MySql) GetSupporter(ctx context.Context, campaignId, supporterId int64) (*entity.Supporter, error) {
	stmt, err := s.stmtSelectSupporter()
	if err != nil {
		return nil, err
	}
	var supporter entity.Supporter
	err = stmt.QueryRowContext(ctx, campaignId, supporterId).Scan(
		&supporter.CampaignId, &supporter.Id, &supporter.Name, &supporter.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select supporter %d/%d: %w", campaignId, supporterId, err)
	}
	return &supporter, nil
}

func (s *MySql) GetSupporters(ctx context.Context, campaignId int64) ([]*entity.Supporter, error) {
	stmt, err := s.stmtSelectSupporters()
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, campaignId)
	if err != nil {
		return nil, fmt.Errorf("select supporters %d: %w", campaignId, err)
	}
	defer rows.Close()

	var supporters []*entity.Supporter
	for rows.Next() {
		var supporter entity.Supporter
		if err = rows.Scan(&supporter.CampaignId, &supporter.Id, &supporter.Name, &supporter.Status); err != nil {
			return nil, err
		}
		supporters = append(supporters, &supporter)
	}
	return supporters, rows.Err()
}

func (s *MySql) GetLinkBySupporter(ctx context.Context, campaignId, supporterId int64) (*entity.TelegramLink, error) {
	stmt, err := s.stmtSelectLinkBySupporter()
	if err != nil {
		return nil, err
	}
	return s.scanLink(stmt.QueryRowContext(ctx, campaignId, supporterId))
}

func (s *MySql) GetLinkByTelegramId(ctx context.Context, telegramId string) (*entity.TelegramLink, error) {
	stmt, err := s.stmtSelectLinkByTelegramId()
	if err != nil {
		return nil, err
	}
	return s.scanLink(stmt.QueryRowContext(ctx, telegramId))
}

func (s *MySql) scanLink(row *sql.Row) (*entity.TelegramLink, error) {
	var link entity.TelegramLink
	err := row.Scan(&link.Id, &link.CampaignId, &link.SupporterId, &link.TelegramId)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select link: %w", err)
	}
	return &link, nil
}

// UpsertLink binds a telegram id to a supporter. The telegram id moves: if
// it is currently bound to a different supporter, that row is evicted in
// the same transaction, so both unique indexes hold at commit. The
// supporter's own row, if any, keeps its surrogate id and only the
// telegram_id value changes.
func (s *MySql) UpsertLink(ctx context.Context, campaignId, supporterId int64, telegramId string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin link tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM telegram_links WHERE telegram_id = ? AND NOT (campaign_id = ? AND supporter_id = ?)`,
		telegramId, campaignId, supporterId)
	if err != nil {
		return fmt.Errorf("evict telegram id: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO telegram_links (id, campaign_id, supporter_id, telegram_id)
		 VALUES (?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE telegram_id = VALUES(telegram_id)`,
		uuid.NewString(), campaignId, supporterId, telegramId)
	if err != nil {
		return fmt.Errorf("upsert link %d/%d: %w", campaignId, supporterId, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit link tx: %w", err)
	}
	return nil
}
