package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type ServiceInterface interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

type Service struct {
	bot    *tgbotapi.BotAPI
	logger *zap.Logger
}

// NewService подключается к боту. Пустой токен означает, что уведомления
// в Telegram выключены; тогда возвращается nil без ошибки.
func NewService(botToken string, logger *zap.Logger) (ServiceInterface, error) {
	if botToken == "" {
		logger.Info("Telegram-уведомления отключены")
		return nil, nil
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к Telegram-боту: %w", err)
	}
	logger.Info("Telegram-бот подключён", zap.String("username", bot.Self.UserName))

	return &Service{bot: bot, logger: logger}, nil
}

func (s *Service) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("ошибка отправки сообщения в Telegram: %w", err)
	}
	return nil
}
