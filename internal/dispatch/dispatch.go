package dispatch

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"promo-bot/internal/models"
	"promo-bot/pkg/logger"
)

// MaxCaptionLen is the Telegram photo caption limit.
const MaxCaptionLen = 1024

// CaptionKind selects the caption template for a batch send. Delivery
// mechanics are identical for every kind.
type CaptionKind int

const (
	CaptionNew CaptionKind = iota
	CaptionReminder
	CaptionExpiring
	CaptionManual
)

// Caption renders the template for the kind.
func (k CaptionKind) Caption(p *models.Promotion) string {
	switch k {
	case CaptionReminder:
		return fmt.Sprintf("⏰ Напоминаем об акции: %s\n📅 Даты проведения: %s — %s",
			p.Name, p.StartDate, p.EndDate)
	case CaptionExpiring:
		return fmt.Sprintf("⚠️ Внимание! Акция '%s' завершается через 3 дня!\n📅 Последний день: %s",
			p.Name, p.EndDate)
	case CaptionManual:
		return fmt.Sprintf("📣 Акция: %s\n📅 Даты: %s — %s",
			p.Name, p.StartDate, p.EndDate)
	default:
		return fmt.Sprintf("📣 Новая акция: %s\n📅 Даты проведения: %s — %s",
			p.Name, p.StartDate, p.EndDate)
	}
}

// Dispatcher delivers promotion notifications. Per-target failures are
// logged and never abort the rest of a batch; there is no retry.
type Dispatcher struct {
	api *tgbotapi.BotAPI
}

func New(api *tgbotapi.BotAPI) *Dispatcher {
	return &Dispatcher{api: api}
}

// SendPromotion sends the promotion photo with the kind's caption to every
// target chat.
func (d *Dispatcher) SendPromotion(p *models.Promotion, chatIDs []string, kind CaptionKind) {
	caption := kind.Caption(p)
	for _, cid := range chatIDs {
		if err := d.sendPhoto(cid, p.Photo, caption); err != nil {
			zap.L().Error("failed to send promotion",
				zap.String(logger.FieldChatID, cid),
				zap.String("promotion", p.Name),
				zap.Error(err))
		}
	}
}

// SendDetails delivers the full promotion view to a single chat: the photo
// with the first caption piece, then any overflow pieces as separate
// messages. Unlike batch sends the error is returned so the requester can
// be told about the failure.
func (d *Dispatcher) SendDetails(p *models.Promotion, chatID int64) error {
	text := DetailsCaption(p)
	parts := SplitTextWithLink(text, MaxCaptionLen)
	if len(parts) == 0 {
		return nil
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(p.Photo))
	photo.Caption = parts[0]
	photo.ParseMode = tgbotapi.ModeHTML
	if _, err := d.api.Send(photo); err != nil {
		return fmt.Errorf("failed to send photo: %w", err)
	}

	for _, part := range parts[1:] {
		msg := tgbotapi.NewMessage(chatID, part)
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := d.api.Send(msg); err != nil {
			return fmt.Errorf("failed to send overflow text: %w", err)
		}
	}
	return nil
}

func (d *Dispatcher) sendPhoto(chatID, path, caption string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("bad chat id %q: %w", chatID, err)
	}
	photo := tgbotapi.NewPhoto(id, tgbotapi.FilePath(path))
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	_, err = d.api.Send(photo)
	return err
}

// DetailsCaption renders the full-detail view text.
func DetailsCaption(p *models.Promotion) string {
	return fmt.Sprintf(
		"<b>Акция:</b> %s\n<b>Даты проведения:</b> %s — %s\n<b>Описание:</b> %s\n<b>Ссылка:</b> %s",
		p.Name, p.StartDate, p.EndDate, p.Description, p.Link)
}
