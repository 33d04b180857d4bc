package handlers

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"promo-bot/internal/bot"
	"promo-bot/internal/dispatch"
	"promo-bot/internal/events"
	"promo-bot/internal/models"
	"promo-bot/internal/promo"
	"promo-bot/pkg/logger"
)

// HandleStart greets an already registered chat or starts the registration
// workflow. Registration is the only flow open to everyone.
func HandleStart(b *bot.Bot, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	key := strconv.FormatInt(chatID, 10)

	if name, ok := b.Store.ShopName(key); ok {
		b.SendMessage(chatID, fmt.Sprintf("Привет, %s! Используйте команду /promotions для просмотра акций.", name), nil)
		return
	}

	b.SetState(chatID, &models.UserState{State: models.StateAwaitStoreName})
	b.SendMessage(chatID, "Привет! Пожалуйста, укажите название магазина:", nil)
}

// HandleMessage advances whatever text-input workflow the chat is in.
// Messages outside a workflow are ignored.
func HandleMessage(b *bot.Bot, message *tgbotapi.Message) {
	state := b.GetState(message.Chat.ID)
	if state == nil {
		return
	}

	switch state.State {
	case models.StateAwaitStoreName:
		handleStoreName(b, message)
	case models.StatePromoName:
		handlePromoName(b, message, state)
	case models.StatePromoDates:
		handlePromoDates(b, message, state)
	case models.StatePromoDesc:
		handlePromoDescription(b, message, state)
	case models.StatePromoPhoto:
		handlePromoPhoto(b, message, state)
	case models.StatePromoLink:
		handlePromoLink(b, message, state)
	default:
		// Button-driven states have nothing to do with free text.
	}
}

func handleStoreName(b *bot.Bot, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	name := strings.TrimSpace(message.Text)
	if name == "" {
		b.SendMessage(chatID, "Название магазина не может быть пустым. Попробуйте снова.", nil)
		return
	}

	key := strconv.FormatInt(chatID, 10)
	if err := b.Store.RegisterChat(key, name); err != nil {
		zap.L().Error("failed to persist chat registry",
			zap.String(logger.FieldChatID, key), zap.Error(err))
	}
	zap.L().Info("registered shop chat",
		zap.String(logger.FieldChatID, key), zap.String("shop", name))

	b.ClearState(chatID)
	b.SendMessage(chatID,
		fmt.Sprintf("Спасибо! Вы зарегистрированы как %s. Используйте команду /promotions для просмотра акций.", name), nil)
}

// HandleCancel terminates the chat's current workflow, discarding any
// scratch draft.
func HandleCancel(b *bot.Bot, message *tgbotapi.Message) {
	state := b.GetState(message.Chat.ID)
	if state == nil {
		return
	}
	b.ClearState(message.Chat.ID)

	switch state.State {
	case models.StatePromoName, models.StatePromoDates, models.StatePromoDesc,
		models.StatePromoPhoto, models.StatePromoLink, models.StatePromoShops:
		b.SendMessage(message.Chat.ID, "Добавление акции отменено.", nil)
	case models.StateEditShops:
		b.SendMessage(message.Chat.ID, "Редактирование отменено.", nil)
	default:
		b.SendMessage(message.Chat.ID, "Действие отменено.", nil)
	}
}

// HandlePromotions is the view path: list promotions that are active today
// and target the requesting chat.
func HandlePromotions(b *bot.Bot, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	key := strconv.FormatInt(chatID, 10)

	active := promo.ActiveForChat(b.Store.Snapshot(), key, time.Now())
	zap.L().Info("view promotions request",
		zap.String(logger.FieldChatID, key), zap.Int("active", len(active)))

	if len(active) == 0 {
		b.SendMessage(chatID, "Нет актуальных акций.", nil)
		return
	}

	ids := make([]string, 0, len(active))
	for id := range active {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		c, errC := strconv.Atoi(ids[j])
		if errA == nil && errC == nil {
			return a < c
		}
		return ids[i] < ids[j]
	})

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, id := range ids {
		p := active[id]
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(p.Name, "promo_"+id),
		))
	}
	b.SendMessage(chatID, "Выберите акцию:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

// HandleCallbackQuery decodes the button payload once and routes the event
// to its workflow.
func HandleCallbackQuery(b *bot.Bot, d *dispatch.Dispatcher, callback *tgbotapi.CallbackQuery) {
	ev := events.Decode(callback.Data)

	switch ev.Kind {
	case events.KindViewPromo:
		handlePromotionSelection(b, d, callback, ev.ID)

	case events.KindDeleteSelect:
		handleDeleteSelect(b, callback, ev.ID)
	case events.KindDeleteConfirm:
		handleDeleteConfirm(b, callback, ev.ID)
	case events.KindDeleteCancel:
		handleDeleteCancel(b, callback)

	case events.KindShopToggle:
		handleCreateShopToggle(b, callback, ev.ID)
	case events.KindShopsDone:
		handleCreateShopsDone(b, d, callback)

	case events.KindSendPromoSelect:
		handleSendPromoSelect(b, callback, ev.ID)
	case events.KindSendShopToggle:
		handleSendShopToggle(b, callback, ev.ID)
	case events.KindSendAll:
		handleSendAll(b, d, callback)
	case events.KindSendDone:
		handleSendDone(b, d, callback)

	case events.KindEditSelect:
		handleEditSelect(b, callback, ev.ID)
	case events.KindEditShopToggle:
		handleEditShopToggle(b, callback, ev.ID)
	case events.KindEditDone:
		handleEditDone(b, callback)

	default:
		zap.L().Warn("unknown callback payload", zap.String("data", callback.Data))
	}

	b.AnswerCallbackQuery(callback.ID, "")
}

func handlePromotionSelection(b *bot.Bot, d *dispatch.Dispatcher, callback *tgbotapi.CallbackQuery, promoID string) {
	chatID := callback.Message.Chat.ID

	p, ok := b.Store.Get(promoID)
	if !ok {
		b.SendMessage(chatID, "Акция не найдена.", nil)
		return
	}

	// The button list has served its purpose.
	del := tgbotapi.NewDeleteMessage(chatID, callback.Message.MessageID)
	if _, err := b.API.Request(del); err != nil {
		zap.L().Warn("failed to delete promotion list message", zap.Error(err))
	}

	if err := d.SendDetails(&p, chatID); err != nil {
		zap.L().Error("failed to send promotion details",
			zap.Int64(logger.FieldChatID, chatID),
			zap.String(logger.FieldPromoID, promoID),
			zap.Error(err))
		b.SendMessage(chatID, "Не удалось отправить фото акции", nil)
	}
}
