package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"gearguard/internal/entities"
	"gearguard/pkg/telegram"
	"gearguard/pkg/utils"

	"go.uber.org/zap"
)

// OverdueNotifier получает результат проверки просроченных заявок.
type OverdueNotifier interface {
	Name() string
	NotifyOverdue(ctx context.Context, overdue []entities.MaintenanceRequest, today time.Time) error
}

// logOverdueNotifier пишет сводку в лог. Работает всегда.
type logOverdueNotifier struct {
	logger *zap.Logger
}

func NewLogOverdueNotifier(logger *zap.Logger) OverdueNotifier {
	return &logOverdueNotifier{logger: logger}
}

func (n *logOverdueNotifier) Name() string { return "log" }

func (n *logOverdueNotifier) NotifyOverdue(_ context.Context, overdue []entities.MaintenanceRequest, today time.Time) error {
	n.logger.Info("Проверка просроченных заявок",
		zap.String("today", today.Format(utils.DateLayout)),
		zap.Int("count", len(overdue)))
	for _, r := range overdue {
		n.logger.Warn("Просроченная заявка",
			zap.String("requestID", r.ID),
			zap.String("subject", r.Subject),
			zap.String("equipment", r.EquipmentName),
			zap.String("stage", string(r.Stage)),
			zap.Stringp("scheduledDate", utils.FormatDatePtr(r.ScheduledDate)),
			zap.Stringp("technician", r.TechnicianName))
	}
	return nil
}

// telegramOverdueNotifier отправляет сводку в чат Telegram.
type telegramOverdueNotifier struct {
	bot    telegram.ServiceInterface
	chatID int64
	logger *zap.Logger
}

func NewTelegramOverdueNotifier(bot telegram.ServiceInterface, chatID int64, logger *zap.Logger) OverdueNotifier {
	return &telegramOverdueNotifier{bot: bot, chatID: chatID, logger: logger}
}

func (n *telegramOverdueNotifier) Name() string { return "telegram" }

func (n *telegramOverdueNotifier) NotifyOverdue(ctx context.Context, overdue []entities.MaintenanceRequest, today time.Time) error {
	if len(overdue) == 0 {
		return nil
	}
	return n.bot.SendMessage(ctx, n.chatID, FormatOverdueMessage(overdue, today))
}

// telegramMessageLimit - ограничение Telegram на длину сообщения с запасом.
const telegramMessageLimit = 3500

// FormatOverdueMessage собирает HTML-сводку по просроченным заявкам.
func FormatOverdueMessage(overdue []entities.MaintenanceRequest, today time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Просроченные заявки на %s: %d</b>\n", today.Format(utils.DateLayout), len(overdue))
	for i, r := range overdue {
		line := fmt.Sprintf("• %s - %s (%s), срок %s\n",
			html.EscapeString(r.Subject),
			html.EscapeString(r.EquipmentName),
			r.Stage,
			utils.SafeDeref(utils.FormatDatePtr(r.ScheduledDate)))
		if b.Len()+len(line) > telegramMessageLimit {
			fmt.Fprintf(&b, "… и ещё %d\n", len(overdue)-i)
			break
		}
		b.WriteString(line)
	}
	return b.String()
}
