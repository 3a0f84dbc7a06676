package database

import (
	"database/sql"
	"fmt"
)

func (s *MySql) prepareStmt(name, query string) (*sql.Stmt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stmt, ok := s.statements[name]; ok {
		return stmt, nil
	}

	stmt, err := s.db.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("prepare statement [%s]: %w", name, err)
	}

	s.statements[name] = stmt
	return stmt, nil
}

func (s *MySql) closeStmt() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, stmt := range s.statements {
		_ = stmt.Close()
		delete(s.statements, name)
	}
}

func (s *MySql) stmtUpsertCampaign() (*sql.Stmt, error) {
	query := `INSERT INTO campaigns (id, name, group_link)
              VALUES (?, ?, ?)
              ON DUPLICATE KEY UPDATE
                  name = VALUES(name),
                  group_link = VALUES(group_link)`
	return s.prepareStmt("upsertCampaign", query)
}

func (s *MySql) stmtSelectCampaigns() (*sql.Stmt, error) {
	query := `SELECT id, name, group_link FROM campaigns ORDER BY id`
	return s.prepareStmt("selectCampaigns", query)
}

func (s *MySql) stmtSelectCampaign() (*sql.Stmt, error) {
	query := `SELECT id, name, group_link FROM campaigns WHERE id = ?`
	return s.prepareStmt("selectCampaign", query)
}

func (s *MySql) stmtUpsertSupporter() (*sql.Stmt, error) {
	query := `INSERT INTO supporters (campaign_id, id, name, status)
              VALUES (?, ?, ?, ?)
              ON DUPLICATE KEY UPDATE
                  name = VALUES(name),
                  status = VALUES(status)`
	return s.prepareStmt("upsertSupporter", query)
}

func (s *MySql) stmtSelectSupporter() (*sql.Stmt, error) {
	query := `SELECT campaign_id, id, name, status FROM supporters
              WHERE campaign_id = ? AND id = ?`
	return s.prepareStmt("selectSupporter", query)
}

func (s *MySql) stmtSelectSupporters() (*sql.Stmt, error) {
	query := `SELECT campaign_id, id, name, status FROM supporters
              WHERE campaign_id = ? ORDER BY id`
	return s.prepareStmt("selectSupporters", query)
}

func (s *MySql) stmtSelectLinkBySupporter() (*sql.Stmt, error) {
	query := `SELECT id, campaign_id, supporter_id, telegram_id FROM telegram_links
              WHERE campaign_id = ? AND supporter_id = ?`
	return s.prepareStmt("selectLinkBySupporter", query)
}

func (s *MySql) stmtSelectLinkByTelegramId() (*sql.Stmt, error) {
	query := `SELECT id, campaign_id, supporter_id, telegram_id FROM telegram_links
              WHERE telegram_id = ?`
	return s.prepareStmt("selectLinkByTelegramId", query)
}
