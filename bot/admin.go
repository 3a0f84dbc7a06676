package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"

	"apoiasync/entity"
)

// syncCmd triggers a reconciliation run on demand, outside the scheduler.
func (t *TgBot) syncCmd(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id
	if !t.isAdmin(chatId) {
		return nil
	}

	t.plainResponse(chatId, "Starting sync run\\.\\.\\.")
	report, err := t.core.SyncAll(context.Background())
	if err != nil {
		t.reportError(chatId, "/sync", err)
		return nil
	}
	t.plainResponse(chatId, formatReport(report))
	return nil
}

// lastReport replays the most recent persisted sync report without
// triggering a new run.
func (t *TgBot) lastReport(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id
	if !t.isAdmin(chatId) {
		return nil
	}
	if t.db == nil {
		t.plainResponse(chatId, "Report log is not connected\\.")
		return nil
	}

	report, err := t.db.LastSyncReport()
	if err != nil {
		t.reportError(chatId, "/report", err)
		return nil
	}
	if report == nil {
		t.plainResponse(chatId, "No sync run recorded yet\\.")
		return nil
	}
	t.plainResponse(chatId, formatReport(report))
	return nil
}

func (t *TgBot) subscribers(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id
	if !t.isAdmin(chatId) {
		return nil
	}
	if t.db == nil {
		t.plainResponse(chatId, "Subscriber registry is not connected\\.")
		return nil
	}

	subscribers, err := t.db.GetSubscribers()
	if err != nil {
		t.reportError(chatId, "/subscribers", err)
		return nil
	}
	if len(subscribers) == 0 {
		t.plainResponse(chatId, "No subscribers registered\\.")
		return nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*Subscribers* \\(%d\\):\n", len(subscribers)))
	for _, subscriber := range subscribers {
		state := "disabled"
		if subscriber.Enabled {
			state = "enabled"
		}
		sb.WriteString(fmt.Sprintf("`%d` @%s — %s\n",
			subscriber.TelegramId, Sanitize(subscriber.Username), state))
	}
	t.plainResponse(chatId, sb.String())
	return nil
}

// SyncFinished implements scheduler.Notifier: scheduled run reports go to
// admins whose notifications are enabled.
func (t *TgBot) SyncFinished(report *entity.SyncReport) {
	t.notifyAdmins(formatReport(report))
}

// SyncFailed implements scheduler.Notifier.
func (t *TgBot) SyncFailed(err error) {
	t.notifyAdmins("Sync run failed: `" + Sanitize(err.Error()) + "`")
}

func formatReport(report *entity.SyncReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*Sync run* `%s`\n", Sanitize(report.RunId)))
	sb.WriteString(fmt.Sprintf("Campaigns: %d, applied: %d, failures: %d\n",
		len(report.Campaigns), report.Applied(), report.Failures()))
	for _, result := range report.Campaigns {
		if result.Failed() {
			sb.WriteString(fmt.Sprintf("`%d`: FAILED after %d records — %s\n",
				result.CampaignId, result.Applied, Sanitize(result.Error)))
			continue
		}
		line := fmt.Sprintf("`%d`: %d applied", result.CampaignId, result.Applied)
		if result.Skipped > 0 {
			line += fmt.Sprintf(", %d skipped", result.Skipped)
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}
