package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"

	"apoiasync/entity"
	"apoiasync/impl/roster"
)

func (t *TgBot) start(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id

	if t.db != nil {
		if err := t.db.RegisterSubscriber(chatId, ctx.EffectiveUser.Username); err != nil {
			t.reportError(chatId, "/start", err)
			return nil
		}
	}

	t.plainResponse(chatId,
		"Hello\\! I connect campaign supporters to their Telegram groups\\.\n\n"+
			"`/campaigns` — list campaigns\n"+
			"`/link <campaign> <supporter>` — link your account to your supporter id\n"+
			"`/check <campaign>` — check your access and get the group invite\n"+
			"`/help` — all commands")
	return nil
}

func (t *TgBot) stop(_ *tgbotapi.Bot, ctx *ext.Context) error {
	if t.db == nil {
		return nil
	}
	chatId := ctx.EffectiveUser.Id

	err := t.db.SetSubscriberEnabled(chatId, false)
	if err != nil {
		t.reportError(chatId, "/stop", err)
		return nil
	}
	t.plainResponse(chatId, "Notifications DISABLED")
	return nil
}

func (t *TgBot) campaigns(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id

	campaigns, err := t.core.Campaigns(context.Background())
	if err != nil {
		t.reportError(chatId, "/campaigns", err)
		return nil
	}
	if len(campaigns) == 0 {
		t.plainResponse(chatId, "No campaigns configured yet\\.")
		return nil
	}

	var sb strings.Builder
	sb.WriteString("*Campaigns:*\n")
	for _, campaign := range campaigns {
		sb.WriteString(fmt.Sprintf("`%d` — %s\n", campaign.Id, Sanitize(campaign.Name)))
	}
	sb.WriteString("\nUse `/link <campaign> <supporter>` to link your account\\.")
	t.plainResponse(chatId, sb.String())
	return nil
}

// link binds the caller's Telegram account to a supporter record. The
// supporter id is the one the crowdfunding platform shows the backer.
func (t *TgBot) link(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id

	args := strings.Fields(ctx.EffectiveMessage.Text)
	if len(args) < 3 {
		t.plainResponse(chatId, "Usage: `/link <campaign> <supporter>`")
		return nil
	}
	campaignId, err1 := strconv.ParseInt(args[1], 10, 64)
	supporterId, err2 := strconv.ParseInt(args[2], 10, 64)
	if err1 != nil || err2 != nil {
		t.plainResponse(chatId, "Campaign and supporter must be numeric ids\\. Usage: `/link <campaign> <supporter>`")
		return nil
	}

	params := &entity.LinkParams{
		CampaignId:  campaignId,
		SupporterId: supporterId,
		TelegramId:  strconv.FormatInt(chatId, 10),
	}
	_, err := t.core.LinkSupporter(context.Background(), params)
	if err != nil {
		switch {
		case errors.Is(err, roster.ErrSupporterNotFound):
			t.plainResponse(chatId, fmt.Sprintf("Supporter `%d` was not found in campaign `%d`\\.", supporterId, campaignId))
		case errors.Is(err, roster.ErrSupporterNotActive):
			t.plainResponse(chatId, "That supporter is not active right now\\. Link again once the support is active\\.")
		default:
			t.reportError(chatId, "/link", err)
		}
		return nil
	}

	t.plainResponse(chatId, fmt.Sprintf(
		"Linked\\! You are supporter `%d` of campaign `%d`\\.\nUse `/check %d` to get the group invite\\.",
		supporterId, campaignId, campaignId))
	return nil
}

// check answers the access question for the caller and, when access is
// granted, replies with the campaign's group invite link.
func (t *TgBot) check(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id

	args := strings.Fields(ctx.EffectiveMessage.Text)
	if len(args) < 2 {
		t.plainResponse(chatId, "Usage: `/check <campaign>`")
		return nil
	}
	campaignId, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		t.plainResponse(chatId, "Campaign must be a numeric id\\. Usage: `/check <campaign>`")
		return nil
	}

	params := &entity.CheckParams{
		CampaignId: campaignId,
		TelegramId: strconv.FormatInt(chatId, 10),
	}
	result, err := t.core.CheckSupporter(context.Background(), params)
	if err != nil {
		t.reportError(chatId, "/check", err)
		return nil
	}
	if !result.Active {
		t.plainResponse(chatId, fmt.Sprintf("Access denied: %s\\.", Sanitize(result.Reason)))
		return nil
	}

	campaign, err := t.core.Campaign(context.Background(), campaignId)
	if err != nil {
		t.reportError(chatId, "/check", err)
		return nil
	}
	t.plainResponse(chatId, fmt.Sprintf(
		"You are an active supporter of *%s*\\.\nJoin the group: %s",
		Sanitize(campaign.Name), Sanitize(campaign.GroupLink)))
	return nil
}

func (t *TgBot) help(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id

	var sb strings.Builder
	sb.WriteString("*Commands:*\n")
	sb.WriteString("`/campaigns` — list campaigns\n")
	sb.WriteString("`/link <campaign> <supporter>` — link your account to a supporter id\n")
	sb.WriteString("`/check <campaign>` — check access and get the group invite\n")
	sb.WriteString("`/stop` — disable notifications\n")
	if t.isAdmin(chatId) {
		sb.WriteString("\n*Admin:*\n")
		sb.WriteString("`/sync` — run supporter reconciliation now\n")
		sb.WriteString("`/report` — show the last sync report\n")
		sb.WriteString("`/subscribers` — list registered subscribers\n")
	}
	t.plainResponse(chatId, sb.String())
	return nil
}
