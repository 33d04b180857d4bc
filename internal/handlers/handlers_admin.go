package handlers

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"promo-bot/internal/bot"
	"promo-bot/internal/dispatch"
	"promo-bot/internal/models"
	"promo-bot/internal/promo"
	"promo-bot/internal/store"
	"promo-bot/pkg/logger"
)

// Creation workflow: name -> dates -> description -> photo -> link -> shops.

func HandleAddPromotion(b *bot.Bot, message *tgbotapi.Message) {
	if !b.IsAdmin(message.From.ID) {
		b.SendMessage(message.Chat.ID, "Только администратор может добавлять акции.", nil)
		return
	}

	b.SetState(message.Chat.ID, &models.UserState{
		State: models.StatePromoName,
		Draft: &models.PromotionDraft{Selected: make(map[string]struct{})},
	})
	b.SendMessage(message.Chat.ID, "Введите название акции:", nil)
}

func handlePromoName(b *bot.Bot, message *tgbotapi.Message, state *models.UserState) {
	name := strings.TrimSpace(message.Text)
	if name == "" {
		b.SendMessage(message.Chat.ID, "Название акции не может быть пустым. Попробуйте снова.", nil)
		return
	}

	state.Draft.Name = name
	state.State = models.StatePromoDates
	b.SendMessage(message.Chat.ID,
		"Введите даты начала и окончания акции через тире (например: 03.06.2025 - 31.07.2025):", nil)
}

func handlePromoDates(b *bot.Bot, message *tgbotapi.Message, state *models.UserState) {
	start, end, err := promo.ParseDateRange(message.Text)
	if err != nil {
		zap.L().Warn("failed to parse promotion dates",
			zap.String("input", message.Text), zap.Error(err))
		b.SendMessage(message.Chat.ID,
			"Формат даты неверен. Введите даты в формате: '03.06.2025 - 31.07.2025'", nil)
		return
	}

	state.Draft.StartDate = start.Format(promo.ISODate)
	state.Draft.EndDate = end.Format(promo.ISODate)
	state.State = models.StatePromoDesc
	b.SendMessage(message.Chat.ID, "Введите описание акции:", nil)
}

func handlePromoDescription(b *bot.Bot, message *tgbotapi.Message, state *models.UserState) {
	state.Draft.Description = message.Text
	state.State = models.StatePromoPhoto
	b.SendMessage(message.Chat.ID, "Отправьте изображение акции:", nil)
}

func handlePromoPhoto(b *bot.Bot, message *tgbotapi.Message, state *models.UserState) {
	if len(message.Photo) == 0 {
		b.SendMessage(message.Chat.ID, "Пожалуйста, отправьте изображение.", nil)
		return
	}

	// The last PhotoSize is the largest rendition.
	fileID := message.Photo[len(message.Photo)-1].FileID
	path, err := b.DownloadPhoto(fileID)
	if err != nil {
		zap.L().Error("failed to download promotion photo",
			zap.String("file_id", fileID), zap.Error(err))
		b.SendMessage(message.Chat.ID, "Не удалось сохранить изображение. Попробуйте снова.", nil)
		return
	}

	state.Draft.Photo = path
	state.State = models.StatePromoLink
	b.SendMessage(message.Chat.ID, "Введите ссылку на акцию:", nil)
}

func handlePromoLink(b *bot.Bot, message *tgbotapi.Message, state *models.UserState) {
	link := strings.TrimSpace(message.Text)
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		b.SendMessage(message.Chat.ID, "Ссылка должна начинаться с http:// или https://", nil)
		return
	}

	state.Draft.Link = link
	state.State = models.StatePromoShops

	keyboard := b.ShopToggleKeyboard(func(id string) bool {
		_, ok := state.Draft.Selected[id]
		return ok
	}, "shop_", "shops_done", false)
	b.SendMessage(message.Chat.ID, "Выберите магазины для акции:", keyboard)
}

func handleCreateShopToggle(b *bot.Bot, callback *tgbotapi.CallbackQuery, shopID string) {
	chatID := callback.Message.Chat.ID
	state := b.GetState(chatID)
	if state == nil || state.State != models.StatePromoShops || state.Draft == nil {
		return
	}

	if _, ok := state.Draft.Selected[shopID]; ok {
		delete(state.Draft.Selected, shopID)
	} else {
		state.Draft.Selected[shopID] = struct{}{}
	}

	keyboard := b.ShopToggleKeyboard(func(id string) bool {
		_, ok := state.Draft.Selected[id]
		return ok
	}, "shop_", "shops_done", false)
	if err := b.EditReplyMarkup(chatID, callback.Message.MessageID, keyboard); err != nil {
		zap.L().Warn("failed to update shop keyboard", zap.Error(err))
	}
}

func handleCreateShopsDone(b *bot.Bot, d *dispatch.Dispatcher, callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	state := b.GetState(chatID)
	if state == nil || state.State != models.StatePromoShops || state.Draft == nil {
		return
	}

	if len(state.Draft.Selected) == 0 {
		keyboard := b.ShopToggleKeyboard(func(id string) bool { return false }, "shop_", "shops_done", false)
		b.EditMessage(chatID, callback.Message.MessageID,
			"Вы не выбрали ни одного магазина. Выберите магазины для акции:", &keyboard)
		return
	}

	id, err := b.Store.Create(state.Draft)
	if err != nil {
		zap.L().Error("failed to persist new promotion",
			zap.String(logger.FieldPromoID, id), zap.Error(err))
	}
	zap.L().Info("promotion created",
		zap.String(logger.FieldPromoID, id), zap.String("name", state.Draft.Name))

	p, _ := b.Store.Get(id)
	b.ClearState(chatID)
	b.EditMessage(chatID, callback.Message.MessageID, "✅ Акция успешно добавлена!", nil)

	d.SendPromotion(&p, p.Shops, dispatch.CaptionNew)
}

// Deletion workflow. Stateless: each step re-derives the promotion from the
// button payload.

func HandleDeletePromotion(b *bot.Bot, message *tgbotapi.Message) {
	if !b.IsAdmin(message.From.ID) {
		b.SendMessage(message.Chat.ID, "Только администратор может удалять акции.", nil)
		return
	}
	if b.Store.Count() == 0 {
		b.SendMessage(message.Chat.ID, "Нет акций для удаления.", nil)
		return
	}

	keyboard := b.PromotionListKeyboard("delete_")
	b.SendMessage(message.Chat.ID, "Выберите акцию для удаления:", keyboard)
}

func handleDeleteSelect(b *bot.Bot, callback *tgbotapi.CallbackQuery, promoID string) {
	chatID := callback.Message.Chat.ID

	p, ok := b.Store.Get(promoID)
	if !ok {
		b.EditMessage(chatID, callback.Message.MessageID, "Акция не найдена.", nil)
		return
	}

	keyboard := b.DeleteConfirmKeyboard(promoID)
	b.EditMessage(chatID, callback.Message.MessageID,
		fmt.Sprintf("Вы уверены, что хотите удалить акцию '%s'?", p.Name), &keyboard)
}

func handleDeleteConfirm(b *bot.Bot, callback *tgbotapi.CallbackQuery, promoID string) {
	chatID := callback.Message.Chat.ID

	err := b.Store.Delete(promoID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		b.EditMessage(chatID, callback.Message.MessageID, "Акция уже удалена.", nil)
		return
	case err != nil:
		zap.L().Error("failed to persist promotion deletion",
			zap.String(logger.FieldPromoID, promoID), zap.Error(err))
	}

	zap.L().Info("promotion deleted", zap.String(logger.FieldPromoID, promoID))
	b.EditMessage(chatID, callback.Message.MessageID, "Акция успешно удалена.", nil)
}

func handleDeleteCancel(b *bot.Bot, callback *tgbotapi.CallbackQuery) {
	b.EditMessage(callback.Message.Chat.ID, callback.Message.MessageID, "Удаление отменено.", nil)
}

// Editing workflow: only the shop targeting is editable. Toggles mutate the
// live record; done persists.

func HandleEditPromotion(b *bot.Bot, message *tgbotapi.Message) {
	if !b.IsAdmin(message.From.ID) {
		b.SendMessage(message.Chat.ID, "Только администратор может редактировать акции.", nil)
		return
	}
	if b.Store.Count() == 0 {
		b.SendMessage(message.Chat.ID, "Нет акций для редактирования.", nil)
		return
	}

	keyboard := b.PromotionListKeyboard("edit_")
	b.SendMessage(message.Chat.ID, "Выберите акцию для редактирования:", keyboard)
}

func handleEditSelect(b *bot.Bot, callback *tgbotapi.CallbackQuery, promoID string) {
	chatID := callback.Message.Chat.ID

	p, ok := b.Store.Get(promoID)
	if !ok {
		b.EditMessage(chatID, callback.Message.MessageID, "Акция не найдена.", nil)
		return
	}

	b.SetState(chatID, &models.UserState{State: models.StateEditShops, PromoID: promoID})

	var current []string
	for _, cid := range p.Shops {
		name, ok := b.Store.ShopName(cid)
		if !ok {
			name = "Неизвестный магазин"
		}
		current = append(current, name)
	}

	keyboard := b.ShopToggleKeyboard(p.HasShop, "edit_shop_", "edit_shops_done", false)
	b.EditMessage(chatID, callback.Message.MessageID,
		fmt.Sprintf("Текущие магазины для акции '%s':\n%s\n\nВыберите магазины для изменения:",
			p.Name, strings.Join(current, "\n")), &keyboard)
}

func handleEditShopToggle(b *bot.Bot, callback *tgbotapi.CallbackQuery, shopID string) {
	chatID := callback.Message.Chat.ID
	state := b.GetState(chatID)
	if state == nil || state.State != models.StateEditShops {
		return
	}

	p, ok := b.Store.ToggleShop(state.PromoID, shopID)
	if !ok {
		b.ClearState(chatID)
		b.EditMessage(chatID, callback.Message.MessageID, "Акция не найдена.", nil)
		return
	}

	keyboard := b.ShopToggleKeyboard(p.HasShop, "edit_shop_", "edit_shops_done", false)
	if err := b.EditReplyMarkup(chatID, callback.Message.MessageID, keyboard); err != nil {
		zap.L().Warn("failed to update shop keyboard", zap.Error(err))
	}
}

func handleEditDone(b *bot.Bot, callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	state := b.GetState(chatID)
	if state == nil || state.State != models.StateEditShops {
		return
	}

	if err := b.Store.SavePromotions(); err != nil {
		zap.L().Error("failed to persist edited promotion",
			zap.String(logger.FieldPromoID, state.PromoID), zap.Error(err))
	}
	b.ClearState(chatID)
	b.EditMessage(chatID, callback.Message.MessageID, "✅ Список магазинов успешно обновлен!", nil)
}

// Manual send workflow. Toggles mutate a scratch selection, not the
// promotion record.

func HandleSendPromo(b *bot.Bot, message *tgbotapi.Message) {
	if !b.IsAdmin(message.From.ID) {
		b.SendMessage(message.Chat.ID, "Только администратор может рассылать акции.", nil)
		return
	}
	if b.Store.Count() == 0 {
		b.SendMessage(message.Chat.ID, "Нет доступных акций для рассылки.", nil)
		return
	}

	b.SetState(message.Chat.ID, &models.UserState{State: models.StateSendSelectPromo})
	keyboard := b.PromotionListKeyboard("sendpromo_")
	b.SendMessage(message.Chat.ID, "Выберите акцию для ручной рассылки:", keyboard)
}

func handleSendPromoSelect(b *bot.Bot, callback *tgbotapi.CallbackQuery, promoID string) {
	chatID := callback.Message.Chat.ID

	if _, ok := b.Store.Get(promoID); !ok {
		b.ClearState(chatID)
		b.EditMessage(chatID, callback.Message.MessageID, "Акция не найдена.", nil)
		return
	}

	state := &models.UserState{
		State:    models.StateSendSelectShops,
		PromoID:  promoID,
		Selected: make(map[string]struct{}),
	}
	b.SetState(chatID, state)

	keyboard := b.ShopToggleKeyboard(func(id string) bool { return false },
		"sendshop_", "sendshops_done", true)
	b.EditMessage(chatID, callback.Message.MessageID,
		"Выберите магазины, куда отправить акцию:", &keyboard)
}

func handleSendShopToggle(b *bot.Bot, callback *tgbotapi.CallbackQuery, shopID string) {
	chatID := callback.Message.Chat.ID
	state := b.GetState(chatID)
	if state == nil || state.State != models.StateSendSelectShops {
		return
	}

	if _, ok := state.Selected[shopID]; ok {
		delete(state.Selected, shopID)
	} else {
		state.Selected[shopID] = struct{}{}
	}

	keyboard := b.ShopToggleKeyboard(func(id string) bool {
		_, ok := state.Selected[id]
		return ok
	}, "sendshop_", "sendshops_done", true)
	if err := b.EditReplyMarkup(chatID, callback.Message.MessageID, keyboard); err != nil {
		zap.L().Warn("failed to update shop keyboard", zap.Error(err))
	}
}

func handleSendAll(b *bot.Bot, d *dispatch.Dispatcher, callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	state := b.GetState(chatID)
	if state == nil || state.State != models.StateSendSelectShops {
		return
	}

	p, ok := b.Store.Get(state.PromoID)
	if !ok {
		b.ClearState(chatID)
		b.EditMessage(chatID, callback.Message.MessageID, "Акция не найдена.", nil)
		return
	}

	var targets []string
	for _, c := range b.Store.Chats() {
		targets = append(targets, c.ID)
	}
	d.SendPromotion(&p, targets, dispatch.CaptionManual)

	b.ClearState(chatID)
	b.EditMessage(chatID, callback.Message.MessageID, "✅ Акция успешно отправлена во все магазины.", nil)
}

func handleSendDone(b *bot.Bot, d *dispatch.Dispatcher, callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	state := b.GetState(chatID)
	if state == nil || state.State != models.StateSendSelectShops {
		return
	}

	if len(state.Selected) == 0 {
		keyboard := b.ShopToggleKeyboard(func(id string) bool { return false },
			"sendshop_", "sendshops_done", true)
		b.EditMessage(chatID, callback.Message.MessageID,
			"Не выбрано ни одного магазина. Выберите магазины, куда отправить акцию:", &keyboard)
		return
	}

	p, ok := b.Store.Get(state.PromoID)
	if !ok {
		b.ClearState(chatID)
		b.EditMessage(chatID, callback.Message.MessageID, "Акция не найдена.", nil)
		return
	}

	targets := make([]string, 0, len(state.Selected))
	for id := range state.Selected {
		targets = append(targets, id)
	}
	sort.Strings(targets)
	d.SendPromotion(&p, targets, dispatch.CaptionManual)

	b.ClearState(chatID)
	b.EditMessage(chatID, callback.Message.MessageID, "✅ Акция успешно отправлена выбранным магазинам.", nil)
}
