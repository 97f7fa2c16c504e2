package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"

	"liveqa/entity"
)

const (
	commandTimeout = 10 * time.Second
	latestSessions = 10
)

func (t *TgBot) start(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id
	if t.isAdmin(chatId) {
		t.plainResponse(chatId, "Welcome back\\. Use /help to see admin commands\\.")
		return nil
	}
	t.plainResponse(chatId, fmt.Sprintf("Your chat id is `%d`\\. Ask an administrator to add it to the bot config\\.", chatId))
	return nil
}

func (t *TgBot) help(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id

	var sb strings.Builder
	sb.WriteString("*Available Commands*\n\n")
	sb.WriteString("`/start` \\- Show your chat id\n")
	sb.WriteString("`/help` \\- Show this help\n")

	if t.isAdmin(chatId) {
		sb.WriteString("\n*Admin Commands:*\n")
		sb.WriteString("`/invite` \\- Create a moderator invite link\n")
		sb.WriteString("`/sessions` \\- List latest sessions\n")
		sb.WriteString("`/level <debug|info|warn|error>` \\- Set forwarded log level\n")
	}

	t.plainResponse(chatId, sb.String())
	return nil
}

func (t *TgBot) level(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id
	if !t.isAdmin(chatId) {
		t.plainResponse(chatId, "Admin access required\\.")
		return nil
	}

	args := strings.Fields(ctx.EffectiveMessage.Text)
	if len(args) < 2 {
		t.plainResponse(chatId, fmt.Sprintf("Current log level: %s\nAvailable levels: debug, info, warn, error", Sanitize(t.logLevel().String())))
		return nil
	}

	level, ok := ParseLevel(args[1])
	if !ok {
		t.plainResponse(chatId, "Unknown level\\. Available levels: debug, info, warn, error")
		return nil
	}
	t.mu.Lock()
	t.minLogLevel = level
	t.mu.Unlock()

	t.log.With(slog.Int64("user_id", chatId), slog.String("level", level.String())).Info("log level changed")
	t.plainResponse(chatId, fmt.Sprintf("Log level set to %s", Sanitize(level.String())))
	return nil
}

func (t *TgBot) invite(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id
	if !t.isAdmin(chatId) {
		t.plainResponse(chatId, "Admin access required\\.")
		return nil
	}
	if t.core == nil {
		t.plainResponse(chatId, "Service is not ready\\.")
		return nil
	}

	c, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	invite, err := t.core.CreateInvite(c, nil)
	if err != nil {
		t.reportError(chatId, "/invite", err)
		return nil
	}
	t.plainResponse(chatId, formatInvite(invite))
	return nil
}

func (t *TgBot) sessions(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id
	if !t.isAdmin(chatId) {
		t.plainResponse(chatId, "Admin access required\\.")
		return nil
	}
	if t.core == nil {
		t.plainResponse(chatId, "Service is not ready\\.")
		return nil
	}

	c, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	q := &entity.SessionListQuery{
		PageQuery: entity.PageQuery{Page: 1, Limit: latestSessions},
		SortBy:    entity.SortByCreatedAt,
		SortOrder: entity.SortDesc,
	}
	items, pagination, err := t.core.ListSessions(c, q)
	if err != nil {
		t.reportError(chatId, "/sessions", err)
		return nil
	}
	total := len(items)
	if pagination != nil {
		total = pagination.Total
	}
	t.plainResponse(chatId, formatSessions(items, total))
	return nil
}

// ParseLevel accepts the slog level names in any case.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

func formatInvite(invite *entity.InviteWithUrl) string {
	return fmt.Sprintf("Invite created\nLink: %s\nExpires: `%s`",
		Sanitize(invite.InviteUrl),
		Sanitize(invite.ExpiresAt.UTC().Format("2006-01-02 15:04 MST")),
	)
}

func formatSessions(items []*entity.SessionListItem, total int) string {
	if len(items) == 0 {
		return "No sessions yet\\."
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*Latest sessions* \\(%d of %d\\)\n\n", len(items), total))
	for _, s := range items {
		sb.WriteString(fmt.Sprintf("*%s* \\- %s\n`%s` questions: %d\n",
			Sanitize(s.Name), Sanitize(s.Speaker), Sanitize(s.UniqueUrlSlug), s.QuestionCount))
	}
	return sb.String()
}
