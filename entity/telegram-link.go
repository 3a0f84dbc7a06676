package entity

import (
	"net/http"

	"apoiasync/lib/validate"
)

// TelegramLink binds one Telegram account to one supporter. Both sides are
// unique: a supporter holds at most one link, and a Telegram id is bound
// to at most one supporter at a time. Re-linking overwrites in place; a
// link by itself grants nothing, access is decided against the bound
// supporter's status at check time.
type TelegramLink struct {
	Id          string `json:"id"`
	CampaignId  int64  `json:"campaign_id"`
	SupporterId int64  `json:"supporter_id"`
	TelegramId  string `json:"telegram_id"`
}

// LinkParams is an inbound link request.
type LinkParams struct {
	CampaignId  int64  `json:"campaign_id" validate:"required"`
	SupporterId int64  `json:"supporter_id" validate:"required"`
	TelegramId  string `json:"telegram_id" validate:"required"`
}

func (p *LinkParams) Bind(_ *http.Request) error {
	return validate.Struct(p)
}

// LinkResult echoes the identifiers of a successful link for caller display.
type LinkResult struct {
	CampaignId  int64  `json:"campaign_id"`
	SupporterId int64  `json:"supporter_id"`
	TelegramId  string `json:"telegram_id"`
	Message     string `json:"message"`
}

// CheckParams is an inbound access-check request.
type CheckParams struct {
	CampaignId int64  `json:"campaign_id" validate:"required"`
	TelegramId string `json:"telegram_id" validate:"required"`
}

func (p *CheckParams) Bind(_ *http.Request) error {
	return validate.Struct(p)
}

// CheckResult is the access decision handed to the chat-platform client.
type CheckResult struct {
	Active bool   `json:"active"`
	Reason string `json:"reason"`
}
