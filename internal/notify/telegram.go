// Package notify reports upload outcomes to a Telegram chat.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"clip-publisher/internal/logging"
	"clip-publisher/internal/model"
)

// Notifier receives terminal upload results. A nil *TelegramNotifier is a
// valid no-op, so callers never need to branch on configuration.
type Notifier interface {
	NotifyResult(video string, res *model.UploadResult)
}

type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    *logging.Logger
}

func NewTelegramNotifier(token string, chatID int64, log *logging.Logger) (*TelegramNotifier, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	return &TelegramNotifier{api: api, chatID: chatID, log: log}, nil
}

func (n *TelegramNotifier) NotifyResult(video string, res *model.UploadResult) {
	if n == nil {
		return
	}

	var text string
	switch res.Status {
	case model.StatusSuccess:
		text = fmt.Sprintf("✅ %s: uploaded %s", res.Platform, video)
		if res.URL != "" {
			text += "\n" + res.URL
		}
		if res.Details["verified"] == "false" {
			text += "\n(no confirmation signal, check manually)"
		}
	case model.StatusFailed:
		text = fmt.Sprintf("❌ %s: failed to upload %s\n%s", res.Platform, video, res.Error)
	default:
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := n.api.Send(msg); err != nil {
		n.log.Warnf("telegram notify: %v", err)
	}
}
